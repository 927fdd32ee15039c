// Package parse turns raw LLM text into structured values. Because language
// models frequently wrap JSON in narrative prose, markdown code fences, or
// schema-style envelopes, this package applies a layered recovery strategy:
// candidate extraction, automatic JSON repair, then validation, before
// falling back to a clear error.
//
// There are two entry points:
//
//   - [Deserialize] and [Deserializer] validate the payload against a
//     schema.Type descriptor: required fields, enum membership, strict
//     primitive coercion, optionals and unions. Failures are reported as
//     [*DeserializationError] or [*EnumValueError].
//   - [ParseStringAs] is the schema-less loose parser that decodes straight
//     into a Go type, for callers that only need best-effort decoding.
//
// Everything here is pure: no I/O, deterministic for a given input.
package parse
