package function

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/leofalp/promptfn/core/schema"
	"github.com/leofalp/promptfn/providers/ai"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	foo := newFoo(t, fakeClient(t, ai.NewFake()))

	if err := Register(reg, foo); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	inv, ok := reg.Lookup("FooFunction", "fooimpl")
	if !ok || inv != Invoker(foo) {
		t.Fatalf("Lookup() = %v, %v", inv, ok)
	}
	if _, ok := reg.Lookup("FooFunction", "other"); ok {
		t.Error("Lookup() found an unregistered implementation")
	}
	if _, ok := reg.Lookup("Missing", "fooimpl"); ok {
		t.Error("Lookup() found an implementation of an unregistered function")
	}
}

func TestRegistry_Duplicate(t *testing.T) {
	reg := NewRegistry()
	foo := newFoo(t, fakeClient(t, ai.NewFake()))

	if err := reg.Add(foo); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	err := reg.Add(foo)
	var dup *DuplicateImplementationError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateImplementationError, got %v", err)
	}
	if dup.Function != "FooFunction" || dup.Name != "fooimpl" {
		t.Errorf("unexpected error %+v", dup)
	}

	// the same name under another function is fine
	if err := reg.Register("OtherFunction", "fooimpl", foo); err != nil {
		t.Errorf("Register() error = %v", err)
	}
}

func TestRegistry_ListingIsSorted(t *testing.T) {
	reg := NewRegistry()
	backend := fakeClient(t, ai.NewFake())
	for _, name := range []string{"zeta", "alpha", "mid"} {
		impl := newFoo(t, backend, func(c *Config[inputType, outputType]) { c.Name = name })
		if err := reg.Add(impl); err != nil {
			t.Fatalf("Add(%s) error = %v", name, err)
		}
	}
	other := newFoo(t, backend, func(c *Config[inputType, outputType]) { c.Function = "AFunction" })
	if err := reg.Add(other); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if diff := cmp.Diff([]string{"alpha", "mid", "zeta"}, reg.Implementations("FooFunction")); diff != "" {
		t.Errorf("Implementations() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"AFunction", "FooFunction"}, reg.Functions()); diff != "" {
		t.Errorf("Functions() mismatch (-want +got):\n%s", diff)
	}
	if got := reg.Implementations("Missing"); len(got) != 0 {
		t.Errorf("Implementations(Missing) = %v", got)
	}
}

func TestRegistry_Invoke(t *testing.T) {
	reg := NewRegistry()
	fake := ai.NewFake(`{"sentiment": "Negative", "is_positive": false}`)
	if err := Register(reg, newFoo(t, fakeClient(t, fake))); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	out, err := reg.Invoke(context.Background(), "FooFunction", "fooimpl", inputType{B: "meh"})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if diff := cmp.Diff(outputType{Sentiment: "Negative"}, out); diff != "" {
		t.Errorf("Invoke() mismatch (-want +got):\n%s", diff)
	}

	t.Run("unknown implementation", func(t *testing.T) {
		_, err := reg.Invoke(context.Background(), "FooFunction", "barimpl", inputType{})
		var unknown *UnknownImplementationError
		if !errors.As(err, &unknown) || unknown.Name != "barimpl" {
			t.Errorf("expected UnknownImplementationError, got %v", err)
		}
	})

	t.Run("wrong input type", func(t *testing.T) {
		_, err := reg.Invoke(context.Background(), "FooFunction", "fooimpl", "not an input")
		var typeErr *InputTypeError
		if !errors.As(err, &typeErr) {
			t.Fatalf("expected InputTypeError, got %v", err)
		}
		if typeErr.Want != "function.inputType" || typeErr.Got != "string" {
			t.Errorf("unexpected error %+v", typeErr)
		}
	})

	t.Run("failure returns nil output", func(t *testing.T) {
		out, err := reg.Invoke(context.Background(), "FooFunction", "fooimpl", inputType{})
		if !errors.Is(err, ai.ErrFakeExhausted) || out != nil {
			t.Errorf("Invoke() = %v, %v", out, err)
		}
	})
}

func TestRegistry_Concurrent(t *testing.T) {
	reg := NewRegistry()
	backend := fakeClient(t, ai.NewFake())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			impl, err := New(Config[int, int]{
				Name:     fmt.Sprintf("impl%02d", i),
				Function: "Double",
				Template: "double it",
				Output:   schema.Int(),
				Client:   backend,
			})
			if err != nil {
				t.Error(err)
				return
			}
			if err := Register(reg, impl); err != nil {
				t.Error(err)
			}
			_ = reg.Implementations("Double")
			_, _ = reg.Lookup("Double", impl.Name())
		}(i)
	}
	wg.Wait()

	if got := len(reg.Implementations("Double")); got != 16 {
		t.Errorf("registered %d implementations, want 16", got)
	}
}
