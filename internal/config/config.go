package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/leofalp/promptfn/core/schema"
	"github.com/leofalp/promptfn/providers/ai"
)

// Provider names accepted in client.provider.
const (
	ProviderOpenAI = "openai"
	ProviderFake   = "fake"
)

// Function is a prompt function implementation described in a YAML file.
type Function struct {
	Name     string
	Function string
	Template string
	Root     string
	Schema   *schema.Set
	Output   schema.Type
	Inputs   []InputField
	Client   ClientConfig
}

// InputField describes one top-level input field. String fields marked HTML
// are converted to Markdown before rendering.
type InputField struct {
	Name string `yaml:"name"`
	HTML bool   `yaml:"html"`
}

// ClientConfig selects and configures the backend.
type ClientConfig struct {
	Provider     string
	Model        string
	BaseURL      string
	APIKeyEnv    string
	SystemPrompt string
	Temperature  *float32
	MaxTokens    int
	Timeout      time.Duration // zero disables the timeout middleware
	Retries      int           // zero disables the retry middleware
	LogLevel     string        // "", "minimal", "standard" or "verbose"
}

// APIKey returns the value of the environment variable named by APIKeyEnv.
func (c ClientConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// GenerationConfig returns the sampling settings to send with each request.
func (c ClientConfig) GenerationConfig() ai.GenerationConfig {
	return ai.GenerationConfig{MaxTokens: c.MaxTokens, Temperature: c.Temperature}
}

const defaultTimeout = 60 * time.Second

// rawFunction is used for YAML unmarshaling (snake_case keys, durations and
// type expressions as strings).
type rawFunction struct {
	Name     string       `yaml:"name"`
	Function string       `yaml:"function"`
	Template string       `yaml:"template"`
	Root     string       `yaml:"root"`
	Enums    []rawEnum    `yaml:"enums"`
	Classes  []rawClass   `yaml:"classes"`
	Output   string       `yaml:"output"`
	Inputs   []InputField `yaml:"inputs"`
	Client   rawClient    `yaml:"client"`
}

type rawEnum struct {
	Name   string         `yaml:"name"`
	Values []rawEnumValue `yaml:"values"`
}

// rawEnumValue accepts either a bare name or a {name, description} mapping.
type rawEnumValue struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

func (v *rawEnumValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		v.Name = node.Value
		return nil
	}
	type plain rawEnumValue
	return node.Decode((*plain)(v))
}

type rawClass struct {
	Name   string     `yaml:"name"`
	Fields []rawField `yaml:"fields"`
}

type rawField struct {
	Name        string `yaml:"name"`
	Alias       string `yaml:"alias"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

type rawClient struct {
	Provider     string   `yaml:"provider"`
	Model        string   `yaml:"model"`
	BaseURL      string   `yaml:"base_url"`
	APIKeyEnv    string   `yaml:"api_key_env"`
	SystemPrompt string   `yaml:"system_prompt"`
	Temperature  *float32 `yaml:"temperature"`
	MaxTokens    int      `yaml:"max_tokens"`
	Timeout      string   `yaml:"timeout"`
	Retries      int      `yaml:"retries"`
	LogLevel     string   `yaml:"log_level"`
}

// Load reads and parses the function file at path.
func Load(path string) (*Function, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read function file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates a function file. Type expressions are resolved
// against the enums and classes declared in the same file.
func Parse(data []byte) (*Function, error) {
	var raw rawFunction
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse function file: %w", err)
	}

	if raw.Name == "" {
		return nil, errors.New("function file: name is required")
	}
	if raw.Function == "" {
		return nil, errors.New("function file: function is required")
	}
	if raw.Output == "" {
		return nil, errors.New("function file: output is required")
	}

	set, err := buildSet(raw)
	if err != nil {
		return nil, err
	}

	output, err := schema.ParseType(raw.Output, set)
	if err != nil {
		return nil, fmt.Errorf("parse output %q: %w", raw.Output, err)
	}

	clientCfg, err := buildClient(raw.Client)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(raw.Inputs))
	for _, in := range raw.Inputs {
		if in.Name == "" {
			return nil, errors.New("inputs: field name is required")
		}
		if seen[in.Name] {
			return nil, fmt.Errorf("inputs: field %q declared twice", in.Name)
		}
		seen[in.Name] = true
	}

	return &Function{
		Name:     raw.Name,
		Function: raw.Function,
		Template: raw.Template,
		Root:     raw.Root,
		Schema:   set,
		Output:   output,
		Inputs:   raw.Inputs,
		Client:   clientCfg,
	}, nil
}

// buildSet declares every enum and class first, then resolves field types so
// classes may refer to each other regardless of order.
func buildSet(raw rawFunction) (*schema.Set, error) {
	enums := make([]schema.Enum, 0, len(raw.Enums))
	for _, e := range raw.Enums {
		enum := schema.Enum{Name: e.Name}
		for _, v := range e.Values {
			enum.Values = append(enum.Values, schema.EnumValue{Name: v.Name, Description: v.Description})
		}
		enums = append(enums, enum)
	}

	shells := make([]schema.Class, 0, len(raw.Classes))
	for _, c := range raw.Classes {
		shells = append(shells, schema.Class{Name: c.Name})
	}
	names, err := schema.NewSet(enums, shells)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	classes := make([]schema.Class, 0, len(raw.Classes))
	for _, c := range raw.Classes {
		class := schema.Class{Name: c.Name}
		for _, f := range c.Fields {
			typ, err := schema.ParseType(f.Type, names)
			if err != nil {
				return nil, fmt.Errorf("parse classes.%s.%s type %q: %w", c.Name, f.Name, f.Type, err)
			}
			class.Fields = append(class.Fields, schema.Field{
				Name:        f.Name,
				Alias:       f.Alias,
				Type:        typ,
				Description: f.Description,
			})
		}
		classes = append(classes, class)
	}

	set, err := schema.NewSet(enums, classes)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return set, nil
}

func buildClient(raw rawClient) (ClientConfig, error) {
	cfg := ClientConfig{
		Provider:     raw.Provider,
		Model:        raw.Model,
		BaseURL:      raw.BaseURL,
		APIKeyEnv:    raw.APIKeyEnv,
		SystemPrompt: raw.SystemPrompt,
		Temperature:  raw.Temperature,
		MaxTokens:    raw.MaxTokens,
		Timeout:      defaultTimeout,
		Retries:      raw.Retries,
		LogLevel:     raw.LogLevel,
	}

	switch cfg.Provider {
	case "":
		cfg.Provider = ProviderOpenAI
	case ProviderOpenAI, ProviderFake:
	default:
		return cfg, fmt.Errorf("client.provider %q is not supported", raw.Provider)
	}

	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return cfg, fmt.Errorf("parse client.timeout %q: %w", raw.Timeout, err)
		}
		if d < 0 {
			return cfg, fmt.Errorf("client.timeout must not be negative, got %s", d)
		}
		cfg.Timeout = d
	}
	if cfg.Retries < 0 {
		return cfg, fmt.Errorf("client.retries must not be negative, got %d", cfg.Retries)
	}

	switch cfg.LogLevel {
	case "", "minimal", "standard", "verbose":
	default:
		return cfg, fmt.Errorf("client.log_level %q is not one of minimal, standard, verbose", cfg.LogLevel)
	}
	return cfg, nil
}

// LoadEnv loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
