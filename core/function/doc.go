// Package function ties the pieces of a typed prompt function together.
//
// An [Impl] renders its template against a typed input, sends the prompt to
// a [Backend] and deserializes the answer into a typed output:
//
//	impl, err := function.New(function.Config[Message, Verdict]{
//	    Name:     "fooimpl",
//	    Function: "ClassifyMessage",
//	    Template: src,
//	    Bind:     messageFields.Bind,
//	    Output:   schema.ClassRef("OutputType"),
//	    Schema:   set,
//	    Client:   c,
//	})
//	verdict, err := impl.Invoke(ctx, Message{Text: "I love it"})
//
// Render, backend and deserialization errors reach the caller unchanged and
// nothing is retried. Implementations can be registered by name in a
// [Registry] so callers pick one without changing call sites.
package function
