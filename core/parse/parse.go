package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/leofalp/promptfn/internal/utils"
)

// ParseStringAs parses content into T without a descriptor. Scalars (string,
// bool, ints, uints, floats) are converted directly, also when the model
// wrapped them as {"type": ..., "value": ...}. Other types are decoded from
// the first JSON candidate in content that unmarshals, after jsonrepair when
// needed. Unknown keys are dropped and missing fields keep their zero value;
// use Deserialize when the shape must be checked.
//
//	person, err := ParseStringAs[Person]("Sure: {name: 'John', age: 30}")
//	n, err := ParseStringAs[int]("42")
func ParseStringAs[T any](content string) (T, error) {
	var result T
	rv := reflect.ValueOf(&result).Elem()

	switch rv.Kind() {
	case reflect.String:
		if strings.HasPrefix(content, "{") {
			if unwrapped, err := tryUnwrapPrimitive(content); err == nil {
				content = unwrapped
			}
		}
		rv.SetString(content)
		return result, nil

	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		err := setScalar(rv, content)
		if err == nil {
			return result, nil
		}
		if unwrapped, uerr := tryUnwrapPrimitive(content); uerr == nil && setScalar(rv, unwrapped) == nil {
			return result, nil
		}
		return result, fmt.Errorf("failed to parse content as %s: %w", rv.Kind(), err)
	}

	var firstErr error
	for _, candidate := range extractCandidates(content) {
		err := decodeInto(candidate, &result)
		if err == nil {
			return result, nil
		}
		if firstErr == nil {
			firstErr = err
		}
		result = *new(T)
	}
	if firstErr == nil {
		firstErr = ErrNoPayload
	}
	return result, fmt.Errorf("failed to unmarshal content as %T: %w (original content: %s)", result, firstErr, utils.TruncateStringDefault(content))
}

// setScalar stores text in the bool or numeric value v, rejecting overflow.
func setScalar(v reflect.Value, text string) error {
	switch v.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(text, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(text, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(text, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(f)
	}
	return nil
}

// decodeInto unmarshals candidate into out, falling back to jsonrepair and
// then to unwrapping {"type": ..., "value": ...} envelopes.
func decodeInto[T any](candidate string, out *T) error {
	err := json.Unmarshal([]byte(candidate), out)
	if err == nil {
		return nil
	}
	if candidate[0] != '{' && candidate[0] != '[' {
		return err
	}

	repairedJSON, repairErr := jsonrepair.JSONRepair(candidate)
	if repairErr != nil {
		return fmt.Errorf("unmarshal error: %w, repair error: %v", err, repairErr)
	}
	if err = json.Unmarshal([]byte(repairedJSON), out); err == nil {
		return nil
	}

	unwrapped, unwrapErr := unwrapSchemaValues(repairedJSON)
	if unwrapErr == nil {
		if uerr := json.Unmarshal([]byte(unwrapped), out); uerr == nil {
			return nil
		}
	}
	return fmt.Errorf("repaired JSON %s: %w", utils.TruncateStringDefault(repairedJSON), err)
}

// schemaWrapped returns the value of a {"type": ..., "value": ...} envelope,
// the shape models produce when they echo a schema instead of data.
func schemaWrapped(v any) (any, bool) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 2 {
		return nil, false
	}
	if _, hasType := m["type"]; !hasType {
		return nil, false
	}
	value, hasValue := m["value"]
	return value, hasValue
}

// tryUnwrapPrimitive returns the text form of an enveloped scalar.
func tryUnwrapPrimitive(content string) (string, error) {
	var data any
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return "", err
	}
	value, ok := schemaWrapped(data)
	if !ok {
		return "", errors.New("not a schema-wrapped value")
	}
	if s, isString := value.(string); isString {
		return s, nil
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// unwrapSchemaValues removes every envelope in a JSON document:
//
//	{"name": {"type": "string", "value": "John"}} -> {"name": "John"}
func unwrapSchemaValues(jsonStr string) (string, error) {
	var data any
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return "", err
	}
	encoded, err := json.Marshal(recursiveUnwrap(data))
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func recursiveUnwrap(data any) any {
	if value, ok := schemaWrapped(data); ok {
		return recursiveUnwrap(value)
	}
	switch v := data.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = recursiveUnwrap(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = recursiveUnwrap(val)
		}
		return out
	default:
		return data
	}
}
