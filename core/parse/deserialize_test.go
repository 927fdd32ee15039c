package parse

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/leofalp/promptfn/core/schema"
)

func sentimentSet(t *testing.T) *schema.Set {
	t.Helper()
	set, err := schema.NewSet(
		[]schema.Enum{{Name: "Sentiment", Values: []schema.EnumValue{
			{Name: "Positive"}, {Name: "Negative"}, {Name: "Neutral"},
		}}},
		[]schema.Class{
			{Name: "OutputType", Fields: []schema.Field{
				{Name: "sentiment", Type: schema.EnumRef("Sentiment"), Description: "this is a description"},
				{Name: "is_positive", Type: schema.Bool()},
			}},
			{Name: "Review", Fields: []schema.Field{
				{Name: "title", Alias: "headline", Type: schema.String()},
				{Name: "stars", Type: schema.Int()},
				{Name: "score", Type: schema.Float()},
				{Name: "note", Type: schema.Optional(schema.String())},
				{Name: "tags", Type: schema.List(schema.String())},
				{Name: "verdict", Type: schema.ClassRef("OutputType")},
				{Name: "extra", Type: schema.Map(schema.Int())},
				{Name: "id", Type: schema.Union(schema.Int(), schema.String())},
			}},
		},
	)
	if err != nil {
		t.Fatalf("NewSet() error = %v", err)
	}
	return set
}

type outputType struct {
	Sentiment  string `json:"sentiment"`
	IsPositive bool   `json:"is_positive"`
}

func TestDeserializer_RoundTrip(t *testing.T) {
	set := sentimentSet(t)
	d, err := NewDeserializer[outputType](schema.ClassRef("OutputType"), set)
	if err != nil {
		t.Fatalf("NewDeserializer() error = %v", err)
	}

	inputs := map[string]string{
		"pure JSON":     `{"sentiment": "Positive", "is_positive": true}`,
		"with prose":    "Sure! Here is my analysis:\n{\"sentiment\": \"Positive\", \"is_positive\": true}\nLet me know if you need more.",
		"code fence":    "```json\n{\"sentiment\": \"Positive\", \"is_positive\": true}\n```",
		"extra keys":    `{"reasoning": "upbeat", "sentiment": "Positive", "is_positive": true}`,
		"string bool":   `{"sentiment": "Positive", "is_positive": "true"}`,
		"needs repair":  `{sentiment: 'Positive', is_positive: true,}`,
		"schema-shaped": `{"sentiment": {"type": "Sentiment", "value": "Positive"}, "is_positive": {"type": "bool", "value": true}}`,
	}

	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			got, err := d.FromString(raw)
			if err != nil {
				t.Fatalf("FromString() error = %v", err)
			}
			want := outputType{Sentiment: "Positive", IsPositive: true}
			if got != want {
				t.Errorf("FromString() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestDeserialize_EnumValueError(t *testing.T) {
	set := sentimentSet(t)

	for _, raw := range []string{
		`{"sentiment": "Happy", "is_positive": true}`,
		"Here you go: {\"sentiment\": \"Happy\", \"is_positive\": true}",
	} {
		_, err := Deserialize(raw, schema.ClassRef("OutputType"), set)

		var enumErr *EnumValueError
		if !errors.As(err, &enumErr) {
			t.Fatalf("expected EnumValueError for %q, got %v", raw, err)
		}
		if enumErr.Path != "sentiment" || enumErr.Value != "Happy" || enumErr.Enum != "Sentiment" {
			t.Errorf("EnumValueError = %+v", enumErr)
		}
	}
}

func TestDeserialize_EnumIsCaseSensitive(t *testing.T) {
	set := sentimentSet(t)

	_, err := Deserialize(`{"sentiment": "positive", "is_positive": true}`, schema.ClassRef("OutputType"), set)
	var enumErr *EnumValueError
	if !errors.As(err, &enumErr) {
		t.Fatalf("expected EnumValueError, got %v", err)
	}
}

func TestDeserialize_MissingField(t *testing.T) {
	set := sentimentSet(t)

	_, err := Deserialize(`{"is_positive": true}`, schema.ClassRef("OutputType"), set)

	var desErr *DeserializationError
	if !errors.As(err, &desErr) {
		t.Fatalf("expected DeserializationError, got %v", err)
	}
	if desErr.Path != "sentiment" {
		t.Errorf("Path = %q, want %q", desErr.Path, "sentiment")
	}
}

func TestDeserialize_NoPayload(t *testing.T) {
	set := sentimentSet(t)

	_, err := Deserialize("I'm sorry, I can't do that.", schema.ClassRef("OutputType"), set)
	if !errors.Is(err, ErrNoPayload) {
		t.Fatalf("expected ErrNoPayload, got %v", err)
	}
	var desErr *DeserializationError
	if !errors.As(err, &desErr) {
		t.Fatalf("expected DeserializationError, got %T", err)
	}
}

func TestDeserialize_SkipsProseBraces(t *testing.T) {
	set := sentimentSet(t)

	raw := "Thinking about {the user} here...\n{\"sentiment\": \"Neutral\", \"is_positive\": false}"
	got, err := Deserialize(raw, schema.ClassRef("OutputType"), set)
	if err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	obj := got.(*Object)
	if v, _ := obj.Get("sentiment"); v != "Neutral" {
		t.Errorf("sentiment = %v, want Neutral", v)
	}
}

func TestDeserialize_RichClass(t *testing.T) {
	set := sentimentSet(t)

	raw := `Review follows.
{
  "headline": "Great",
  "stars": 5,
  "score": "4.5",
  "tags": "solo",
  "verdict": {"sentiment": "Positive", "is_positive": true},
  "extra": {"b": 2, "a": "1"},
  "id": "abc-1"
}`

	got, err := Deserialize(raw, schema.ClassRef("Review"), set)
	if err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}

	obj, ok := got.(*Object)
	if !ok {
		t.Fatalf("expected *Object, got %T", got)
	}

	wantKeys := []string{"title", "stars", "score", "note", "tags", "verdict", "extra", "id"}
	if diff := cmp.Diff(wantKeys, obj.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	want := map[string]any{
		"title":   "Great",
		"stars":   int64(5),
		"score":   4.5,
		"note":    nil,
		"tags":    []any{"solo"},
		"verdict": map[string]any{"sentiment": "Positive", "is_positive": true},
		"extra":   map[string]any{"a": int64(1), "b": int64(2)},
		"id":      "abc-1",
	}
	if diff := cmp.Diff(want, obj.Map()); diff != "" {
		t.Errorf("Map() mismatch (-want +got):\n%s", diff)
	}

	encoded, err := obj.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	wantJSON := `{"title":"Great","stars":5,"score":4.5,"note":null,"tags":["solo"],` +
		`"verdict":{"sentiment":"Positive","is_positive":true},"extra":{"a":1,"b":2},"id":"abc-1"}`
	if string(encoded) != wantJSON {
		t.Errorf("MarshalJSON() = %s, want %s", encoded, wantJSON)
	}
}

func TestDeserialize_PrimitiveCoercion(t *testing.T) {
	set := sentimentSet(t)

	tests := []struct {
		name    string
		raw     string
		target  schema.Type
		want    any
		wantErr bool
	}{
		{name: "bool literal", raw: "true", target: schema.Bool(), want: true},
		{name: "bool quoted", raw: `"false"`, target: schema.Bool(), want: false},
		{name: "bool ambiguous yes", raw: "yes", target: schema.Bool(), wantErr: true},
		{name: "bool ambiguous 1", raw: "1", target: schema.Bool(), wantErr: true},
		{name: "bool capitalised", raw: "True", target: schema.Bool(), wantErr: true},
		{name: "int", raw: "42", target: schema.Int(), want: int64(42)},
		{name: "int integral float", raw: "3.0", target: schema.Int(), want: int64(3)},
		{name: "int fractional", raw: "3.5", target: schema.Int(), wantErr: true},
		{name: "int trailing garbage", raw: "42 apples", target: schema.Int(), wantErr: true},
		{name: "int max", raw: "9223372036854775807", target: schema.Int(), want: int64(math.MaxInt64)},
		{name: "int min", raw: "-9223372036854775808", target: schema.Int(), want: int64(math.MinInt64)},
		{name: "int above range", raw: "9223372036854775808", target: schema.Int(), wantErr: true},
		{name: "int below range", raw: "-9223372036854775809", target: schema.Int(), wantErr: true},
		{name: "int integral float above range", raw: "9223372036854775807.0", target: schema.Int(), wantErr: true},
		{name: "int exponent above range", raw: "1e19", target: schema.Int(), wantErr: true},
		{name: "int above range in object", raw: `{"n": 9223372036854775808}`, target: schema.Map(schema.Int()), wantErr: true},
		{name: "float", raw: "2.5e1", target: schema.Float(), want: 25.0},
		{name: "float NaN", raw: "NaN", target: schema.Float(), wantErr: true},
		{name: "float garbage", raw: "2.5kg", target: schema.Float(), wantErr: true},
		{name: "string raw", raw: "  just text \n", target: schema.String(), want: "just text"},
		{name: "string quoted", raw: `"quoted \"text\""`, target: schema.String(), want: `quoted "text"`},
		{name: "enum bare", raw: "Negative", target: schema.EnumRef("Sentiment"), want: "Negative"},
		{name: "enum backticks", raw: "`Neutral`", target: schema.EnumRef("Sentiment"), want: "Neutral"},
		{name: "enum unknown", raw: "Meh", target: schema.EnumRef("Sentiment"), wantErr: true},
		{name: "optional null", raw: "null", target: schema.Optional(schema.ClassRef("OutputType")), want: nil},
		{name: "union first match", raw: "7", target: schema.Union(schema.Int(), schema.String()), want: int64(7)},
		{name: "union text fallback", raw: "seven", target: schema.Union(schema.Int(), schema.String()), want: "seven"},
		{name: "list of ints", raw: "Numbers: [1, 2, 3]", target: schema.List(schema.Int()), want: []any{int64(1), int64(2), int64(3)}},
		{name: "list element error", raw: `[1, "x"]`, target: schema.List(schema.Int()), wantErr: true},
		{name: "string rejects object", raw: `{"a": 1}`, target: schema.List(schema.String()), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Deserialize(tt.raw, tt.target, set)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Deserialize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Deserialize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeserialize_NestedErrorPath(t *testing.T) {
	set := sentimentSet(t)

	raw := `{"headline": "x", "stars": 1, "score": 1, "tags": [], "extra": {},
"id": 1, "verdict": {"sentiment": "Angry", "is_positive": false}}`

	_, err := Deserialize(raw, schema.ClassRef("Review"), set)
	var enumErr *EnumValueError
	if !errors.As(err, &enumErr) {
		t.Fatalf("expected EnumValueError, got %v", err)
	}
	if enumErr.Path != "verdict.sentiment" {
		t.Errorf("Path = %q, want verdict.sentiment", enumErr.Path)
	}

	raw = `{"headline": "x", "stars": 1, "score": 1, "tags": ["a", 2, {}], "extra": {},
"id": 1, "verdict": {"sentiment": "Positive", "is_positive": false}}`
	_, err = Deserialize(raw, schema.ClassRef("Review"), set)
	var desErr *DeserializationError
	if !errors.As(err, &desErr) {
		t.Fatalf("expected DeserializationError, got %v", err)
	}
	if desErr.Path != "tags[2]" {
		t.Errorf("Path = %q, want tags[2]", desErr.Path)
	}
}

func TestDeserialize_UndeclaredTarget(t *testing.T) {
	_, err := Deserialize("{}", schema.ClassRef("Missing"), sentimentSet(t))
	var desErr *DeserializationError
	if !errors.As(err, &desErr) {
		t.Fatalf("expected DeserializationError, got %v", err)
	}

	if _, err := NewDeserializer[any](schema.ClassRef("Missing"), sentimentSet(t)); err == nil {
		t.Error("NewDeserializer() should reject undeclared classes")
	}
}

func TestDeserializer_AnyReturnsCanonical(t *testing.T) {
	d, err := NewDeserializer[any](schema.ClassRef("OutputType"), sentimentSet(t))
	if err != nil {
		t.Fatalf("NewDeserializer() error = %v", err)
	}

	got, err := d.FromString(`{"sentiment": "Negative", "is_positive": false}`)
	if err != nil {
		t.Fatalf("FromString() error = %v", err)
	}
	if _, ok := got.(*Object); !ok {
		t.Errorf("FromString() = %T, want *Object", got)
	}
}

func TestDeserialize_Deterministic(t *testing.T) {
	set := sentimentSet(t)
	raw := `{"headline": "x", "stars": 1, "score": 1, "tags": [], "extra": {"z": "bad", "a": "worse"}, "id": 1,
"verdict": {"sentiment": "Positive", "is_positive": false}}`

	_, first := Deserialize(raw, schema.ClassRef("Review"), set)
	for i := 0; i < 10; i++ {
		_, err := Deserialize(raw, schema.ClassRef("Review"), set)
		if err == nil || err.Error() != first.Error() {
			t.Fatalf("run %d: error = %v, want %v", i, err, first)
		}
	}
	var desErr *DeserializationError
	if !errors.As(first, &desErr) || desErr.Path != "extra.a" {
		t.Errorf("expected error on extra.a, got %v", first)
	}
}
