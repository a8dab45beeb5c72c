package markitdown

// Option configures an Engine.
type Option func(*Engine)

// WithKeepDataURIs keeps full base64 data URIs in the output instead of
// truncating them to data:mime/type;base64...
func WithKeepDataURIs(keep bool) Option {
	return func(e *Engine) {
		e.keepDataURIs = keep
	}
}
