package function

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/leofalp/promptfn/core/client"
	"github.com/leofalp/promptfn/core/marker"
	"github.com/leofalp/promptfn/core/parse"
	"github.com/leofalp/promptfn/core/schema"
	"github.com/leofalp/promptfn/core/template"
	"github.com/leofalp/promptfn/providers/observability"
)

// DefaultRoot is the binding name field placeholders start with, as in
// {arg.message}.
const DefaultRoot = "arg"

// Backend runs a rendered prompt. *client.Client implements it.
type Backend interface {
	Run(ctx context.Context, prompt string) (*client.Result, error)
}

var _ Backend = (*client.Client)(nil)

// Config describes one implementation of a function.
type Config[In, Out any] struct {
	// Name identifies the implementation, e.g. "fooimpl".
	Name string
	// Function is the contract the implementation fulfils.
	Function string
	// Template is the prompt source.
	Template string
	// Root is the binding name for field placeholders. Defaults to "arg".
	Root string
	// Bind exposes an input as a template.Record. When nil, In must itself
	// implement template.Record.
	Bind func(In) template.Record
	// Output is the type the response is deserialized into.
	Output schema.Type
	// Schema holds the enums and classes Output refers to.
	Schema *schema.Set
	// Markers overrides the marker table built from Output and Schema.
	Markers *marker.Table
	// Client runs rendered prompts.
	Client Backend
	// Observer, when set, traces each stage of Invoke.
	Observer observability.Provider
}

// Impl is a compiled prompt function. It is read-only after New and safe for
// concurrent Invoke calls.
type Impl[In, Out any] struct {
	name     string
	function string
	root     string
	tmpl     *template.Template
	markers  *marker.Table
	bind     func(In) template.Record
	output   *parse.Deserializer[Out]
	client   Backend
	observer observability.Provider
}

// New compiles the template and the marker table once. Besides syntax and
// schema errors it rejects templates that use markers the table does not
// define, returning *template.UnknownMarkerError.
func New[In, Out any](cfg Config[In, Out]) (*Impl[In, Out], error) {
	if cfg.Name == "" || cfg.Function == "" {
		return nil, errors.New("function: Name and Function are required")
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("function %s/%s: Client is required", cfg.Function, cfg.Name)
	}

	tmpl, err := template.Compile(cfg.Template)
	if err != nil {
		return nil, fmt.Errorf("function %s/%s: %w", cfg.Function, cfg.Name, err)
	}

	markers := cfg.Markers
	if markers == nil {
		markers, err = marker.FromSchema(cfg.Output, cfg.Schema)
		if err != nil {
			return nil, fmt.Errorf("function %s/%s: %w", cfg.Function, cfg.Name, err)
		}
	}
	for _, token := range tmpl.Markers() {
		if _, ok := markers.Resolve(token); !ok {
			return nil, &template.UnknownMarkerError{Token: token}
		}
	}

	output, err := parse.NewDeserializer[Out](cfg.Output, cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("function %s/%s: %w", cfg.Function, cfg.Name, err)
	}

	root := cfg.Root
	if root == "" {
		root = DefaultRoot
	}
	bind := cfg.Bind
	if bind == nil {
		bind = func(in In) template.Record {
			r, _ := any(in).(template.Record)
			return r
		}
	}

	return &Impl[In, Out]{
		name:     cfg.Name,
		function: cfg.Function,
		root:     root,
		tmpl:     tmpl,
		markers:  markers,
		bind:     bind,
		output:   output,
		client:   cfg.Client,
		observer: cfg.Observer,
	}, nil
}

func (f *Impl[In, Out]) Name() string { return f.name }

func (f *Impl[In, Out]) Function() string { return f.function }

// Markers returns the marker table used for rendering.
func (f *Impl[In, Out]) Markers() *marker.Table { return f.markers }

// Prompt renders the prompt for in without calling the backend.
func (f *Impl[In, Out]) Prompt(in In) (string, error) {
	return f.tmpl.Render(f.root, f.bind(in), f.markers)
}

// Parse deserializes a raw backend answer the way Invoke does.
func (f *Impl[In, Out]) Parse(raw string) (Out, error) {
	return f.output.FromString(raw)
}

// Invoke renders the prompt for in, runs it on the backend and deserializes
// the answer. Errors from each stage are returned unchanged.
func (f *Impl[In, Out]) Invoke(ctx context.Context, in In) (Out, error) {
	var zero Out

	if f.observer == nil {
		prompt, err := f.Prompt(in)
		if err != nil {
			return zero, err
		}
		result, err := f.client.Run(ctx, prompt)
		if err != nil {
			return zero, err
		}
		return f.Parse(result.Generated)
	}
	return f.invokeObserved(ctx, in)
}

func (f *Impl[In, Out]) invokeObserved(ctx context.Context, in In) (out Out, err error) {
	attrs := []observability.Attribute{
		observability.String(observability.AttrFunctionName, f.function),
		observability.String(observability.AttrFunctionImpl, f.name),
	}
	start := time.Now()

	ctx, span := f.observer.StartSpan(ctx, observability.SpanFunctionInvoke,
		append(attrs, observability.String(observability.AttrOutputType, f.output.Target().String()))...)
	defer func() {
		f.observer.Counter(observability.MetricInvokeCount).Add(ctx, 1, attrs...)
		if err != nil {
			f.observer.Counter(observability.MetricInvokeErrors).Add(ctx, 1, attrs...)
		}
		f.observer.Histogram(observability.MetricInvokeDuration).Record(ctx, time.Since(start).Seconds(), attrs...)
		observability.EndSpan(span, err)
	}()

	_, renderSpan := f.observer.StartSpan(ctx, observability.SpanFunctionRender, attrs...)
	prompt, err := f.Prompt(in)
	renderSpan.SetAttributes(observability.Int(observability.AttrPromptLength, len(prompt)))
	observability.EndSpan(renderSpan, err)
	if err != nil {
		return out, err
	}

	result, err := f.client.Run(ctx, prompt)
	if err != nil {
		return out, err
	}
	span.SetAttributes(
		observability.String(observability.AttrLLMModel, result.Model),
		observability.Int(observability.AttrResponseLength, len(result.Generated)),
	)

	_, parseSpan := f.observer.StartSpan(ctx, observability.SpanFunctionParse, attrs...)
	out, err = f.Parse(result.Generated)
	observability.EndSpan(parseSpan, err)
	if err != nil {
		f.observer.Debug(ctx, "response did not deserialize",
			append(attrs, observability.Error(err))...)
	}
	return out, err
}

// InvokeAny is the type-erased form of Invoke used by Registry. An input of
// the wrong type yields *InputTypeError.
func (f *Impl[In, Out]) InvokeAny(ctx context.Context, input any) (any, error) {
	in, ok := input.(In)
	if !ok {
		return nil, &InputTypeError{
			Function: f.function,
			Name:     f.name,
			Want:     reflect.TypeFor[In]().String(),
			Got:      fmt.Sprintf("%T", input),
		}
	}
	out, err := f.Invoke(ctx, in)
	if err != nil {
		return nil, err
	}
	return out, nil
}
