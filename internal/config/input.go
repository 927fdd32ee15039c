package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"gopkg.in/yaml.v3"

	"github.com/leofalp/promptfn/core/template"
)

// LoadInput reads a YAML (or JSON) document holding the input record.
// "-" reads from stdin.
func LoadInput(path string) (template.Map, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return ParseInput(data)
}

// ParseInput decodes a YAML mapping into a template.Map. An empty document
// yields an empty record.
func ParseInput(data []byte) (template.Map, error) {
	var in map[string]any
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	if in == nil {
		in = map[string]any{}
	}
	return template.Map(in), nil
}

// PrepareInput returns a copy of in where every string field declared with
// html: true is converted to Markdown.
func (f *Function) PrepareInput(in template.Map) (template.Map, error) {
	out := make(template.Map, len(in))
	for k, v := range in {
		out[k] = v
	}

	for _, field := range f.Inputs {
		if !field.HTML {
			continue
		}
		v, ok := out[field.Name]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("input %q: html conversion needs a string, got %T", field.Name, v)
		}
		md, err := htmltomarkdown.ConvertString(s)
		if err != nil {
			return nil, fmt.Errorf("input %q: convert html: %w", field.Name, err)
		}
		out[field.Name] = strings.TrimSpace(md)
	}
	return out, nil
}
