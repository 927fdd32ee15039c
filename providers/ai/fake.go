package ai

import (
	"context"
	"errors"
	"net/http"
	"sync"
)

// ErrFakeExhausted is returned by Fake once every scripted reply was used.
var ErrFakeExhausted = errors.New("fake provider: no scripted reply left")

// FakeReply is one scripted answer. Err takes precedence over Content.
type FakeReply struct {
	Content      string
	FinishReason string
	Usage        *Usage
	Err          error
}

// Fake is an in-memory Provider that replays scripted replies in order and
// records every request it receives. When Respond is set it is used instead
// of the script. Fake is safe for concurrent use.
type Fake struct {
	Model   string
	Respond func(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	mu       sync.Mutex
	replies  []FakeReply
	requests []ChatRequest
}

var _ Provider = (*Fake)(nil)

// NewFake returns a Fake that answers with the given contents in order.
func NewFake(contents ...string) *Fake {
	f := &Fake{Model: "fake"}
	for _, c := range contents {
		f.replies = append(f.replies, FakeReply{Content: c, FinishReason: FinishReasonStop})
	}
	return f
}

// Push appends scripted replies.
func (f *Fake) Push(replies ...FakeReply) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, replies...)
	return f
}

// Requests returns a copy of the requests received so far.
func (f *Fake) Requests() []ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ChatRequest(nil), f.requests...)
}

func (f *Fake) SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.requests = append(f.requests, request)
	respond := f.Respond
	var reply FakeReply
	scripted := len(f.replies) > 0
	if respond == nil && scripted {
		reply = f.replies[0]
		f.replies = f.replies[1:]
	}
	f.mu.Unlock()

	if respond != nil {
		return respond(ctx, request)
	}
	if !scripted {
		return nil, ErrFakeExhausted
	}
	if reply.Err != nil {
		return nil, reply.Err
	}

	model := request.Model
	if model == "" {
		model = f.Model
	}
	return &ChatResponse{
		Id:           "fake",
		Model:        model,
		Content:      reply.Content,
		FinishReason: reply.FinishReason,
		Usage:        reply.Usage,
	}, nil
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) WithAPIKey(string) Provider { return f }

func (f *Fake) WithBaseURL(string) Provider { return f }

func (f *Fake) WithHttpClient(*http.Client) Provider { return f }
