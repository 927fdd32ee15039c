package observability

// Attribute keys, span names and metric names shared by the packages that
// report through a Provider.

// --- Function attributes ---

const (
	// AttrFunctionName is the contract name an implementation fulfils.
	AttrFunctionName = "function.name"

	// AttrFunctionImpl is the implementation identifier.
	AttrFunctionImpl = "function.impl"

	// AttrPromptLength is the length in bytes of the rendered prompt.
	AttrPromptLength = "prompt.length"

	// AttrOutputType is the output type descriptor, e.g. "OutputType" or "int[]".
	AttrOutputType = "output.type"

	// AttrResponseLength is the length in bytes of the generated text.
	AttrResponseLength = "response.length"
)

// --- LLM attributes ---

const (
	AttrLLMProvider     = "llm.provider"
	AttrLLMModel        = "llm.model"
	AttrLLMEndpoint     = "llm.endpoint"
	AttrLLMResponseID   = "llm.response.id"
	AttrLLMFinishReason = "llm.finish_reason"

	AttrLLMTokensPrompt     = "llm.tokens.prompt"     // #nosec G101 -- LLM tokens, not credentials
	AttrLLMTokensCompletion = "llm.tokens.completion" // #nosec G101
	AttrLLMTokensTotal      = "llm.tokens.total"      // #nosec G101
)

// --- HTTP attributes ---

const (
	AttrHTTPMethod           = "http.method"
	AttrHTTPStatusCode       = "http.status_code"
	AttrHTTPURL              = "http.url"
	AttrHTTPRequestBodySize  = "http.request.body.size"
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- General attributes ---

const (
	AttrError             = "error"
	AttrErrorType         = "error.type"
	AttrDuration          = "duration"
	AttrStatus            = "status"
	AttrStatusDescription = "status_description"
)

// --- Span names ---

const (
	// SpanFunctionInvoke wraps a whole Invoke call.
	SpanFunctionInvoke = "function.invoke"

	// SpanFunctionRender covers template rendering.
	SpanFunctionRender = "function.render"

	// SpanFunctionParse covers output deserialization.
	SpanFunctionParse = "function.parse"

	// SpanClientRun covers one backend round trip.
	SpanClientRun = "client.run"

	// SpanLLMRequest covers the HTTP request to the provider.
	SpanLLMRequest = "llm.request"
)

// --- Metric names ---

const (
	MetricInvokeCount    = "promptfn.invoke.count"
	MetricInvokeErrors   = "promptfn.invoke.errors"
	MetricInvokeDuration = "promptfn.invoke.duration"
	MetricTokensTotal    = "promptfn.tokens.total" // #nosec G101

	MetricClientRequests = "promptfn.client.requests"
	MetricClientDuration = "promptfn.client.duration"
)
