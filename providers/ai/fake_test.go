package ai

import (
	"context"
	"errors"
	"testing"
)

func TestFake_ReplaysInOrder(t *testing.T) {
	fake := NewFake("first", "second")
	ctx := context.Background()

	for _, want := range []string{"first", "second"} {
		resp, err := fake.SendMessage(ctx, ChatRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
		if err != nil {
			t.Fatalf("SendMessage() error = %v", err)
		}
		if resp.Content != want || resp.FinishReason != FinishReasonStop || resp.Model != "fake" {
			t.Errorf("SendMessage() = %+v, want content %q", resp, want)
		}
	}

	if _, err := fake.SendMessage(ctx, ChatRequest{}); !errors.Is(err, ErrFakeExhausted) {
		t.Errorf("expected ErrFakeExhausted, got %v", err)
	}
	if got := len(fake.Requests()); got != 3 {
		t.Errorf("Requests() recorded %d requests, want 3", got)
	}
}

func TestFake_ScriptedError(t *testing.T) {
	boom := errors.New("boom")
	fake := NewFake().Push(FakeReply{Err: boom}, FakeReply{Content: "ok", Usage: &Usage{TotalTokens: 3}})

	if _, err := fake.SendMessage(context.Background(), ChatRequest{}); !errors.Is(err, boom) {
		t.Fatalf("expected scripted error, got %v", err)
	}
	resp, err := fake.SendMessage(context.Background(), ChatRequest{Model: "m1"})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if resp.Model != "m1" || resp.Usage.TotalTokens != 3 {
		t.Errorf("SendMessage() = %+v", resp)
	}
}

func TestFake_Respond(t *testing.T) {
	fake := &Fake{Respond: func(_ context.Context, r ChatRequest) (*ChatResponse, error) {
		return &ChatResponse{Content: "echo: " + r.Messages[0].Content}, nil
	}}

	resp, err := fake.SendMessage(context.Background(), ChatRequest{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	if err != nil || resp.Content != "echo: x" {
		t.Errorf("SendMessage() = %+v, %v", resp, err)
	}
}

func TestFake_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := NewFake("unused")
	if _, err := fake.SendMessage(ctx, ChatRequest{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(fake.Requests()) != 0 {
		t.Error("canceled calls should not be recorded")
	}
}

func TestUsage_Add(t *testing.T) {
	u := Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3}
	u.Add(&Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30})
	u.Add(nil)
	if u != (Usage{PromptTokens: 11, CompletionTokens: 22, TotalTokens: 33}) {
		t.Errorf("Add() = %+v", u)
	}
}
