// Package ai defines the provider-agnostic request and response types and
// the [Provider] interface that language-model backends implement.
//
// Concrete providers live in subpackages (see openai). [Fake] is a scripted
// provider for tests and dry runs.
package ai
