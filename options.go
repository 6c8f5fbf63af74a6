package sidekick

// ResponseFormat selects the shape of the model's reply.
type ResponseFormat string

const (
	// ResponseFormatText returns plain text (default).
	ResponseFormatText ResponseFormat = "text"
	// ResponseFormatJSON asks the model for a JSON object without a schema.
	ResponseFormatJSON ResponseFormat = "json"
)

// ResponseSchema requests structured output conforming to a JSON Schema.
// Providers that support strict schema enforcement use it; others fall back
// to a forced tool call carrying the schema.
type ResponseSchema struct {
	// Name identifies the schema to the provider.
	Name string
	// Description explains the expected payload.
	Description string
	// Schema is the JSON Schema object the response must conform to.
	Schema []byte
}

// Options contains configuration for a chat request.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature *float64
	// Tools are the capability definitions bound to this request.
	Tools []Tool
	// ToolChoice controls how the model uses the bound tools.
	ToolChoice ToolChoice
	// ResponseFormat requests plain text or free-form JSON.
	ResponseFormat ResponseFormat
	// ResponseSchema requests structured output; takes precedence over
	// ResponseFormat when set.
	ResponseSchema *ResponseSchema
}

// Option is a functional option for configuring chat requests.
type Option func(*Options)

// WithModel sets the model to use for the request.
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature (0.0 to 2.0).
func WithTemperature(t float64) Option {
	return func(o *Options) {
		o.Temperature = &t
	}
}

// WithTools binds capability definitions to the request.
func WithTools(tools []Tool) Option {
	return func(o *Options) {
		o.Tools = tools
	}
}

// WithToolChoice controls how the model uses the bound tools.
func WithToolChoice(choice ToolChoice) Option {
	return func(o *Options) {
		o.ToolChoice = choice
	}
}

// WithResponseFormat requests a response format without a schema.
func WithResponseFormat(f ResponseFormat) Option {
	return func(o *Options) {
		o.ResponseFormat = f
	}
}

// WithResponseSchema requests structured output conforming to the schema.
func WithResponseSchema(schema ResponseSchema) Option {
	return func(o *Options) {
		o.ResponseSchema = &schema
	}
}

// ApplyOptions applies functional options to an Options struct.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
