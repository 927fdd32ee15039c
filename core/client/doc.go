// Package client is the backend collaborator of a prompt function: it sends
// one rendered prompt to an [ai.Provider] and hands back the generated text.
//
// A [Client] is built with [New] and functional options ([WithModel],
// [WithSystemPrompt], [WithGenerationConfig], [WithMiddleware],
// [WithObserver]). It keeps no conversation state, so one Client can serve
// any number of concurrent Run calls. Retry, timeout and logging live in the
// middleware subpackage.
package client
