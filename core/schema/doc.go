// Package schema describes the shape a prompt function's output must take.
// A [Type] is a small tagged descriptor (primitive, enum, class, list, map,
// optional, union) and a [Set] holds the enum and class declarations those
// descriptors refer to by name.
//
// Descriptors are produced once, usually by generated code or by
// internal/config, and are never mutated afterwards. They feed both the
// marker table (output-shape hints sent to the model) and the deserializer
// (validation of what comes back).
package schema
