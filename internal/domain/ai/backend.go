package ai

// DefaultDisabledReason is reported when no API key was supplied at startup.
const DefaultDisabledReason = "Groq API key not configured. Please set GROQ_API_KEY in .env file"

// Backend is either Configured or Disabled. Callers type-switch on it.
type Backend interface {
	isBackend()
}

// Configured carries a live completion client.
type Configured struct {
	Client Completer
}

// Disabled means the credential was missing at startup; no network call is ever made.
type Disabled struct {
	Reason string
}

func (Configured) isBackend() {}
func (Disabled) isBackend()   {}

// Message returns the operator-facing reason, falling back to the default.
func (d Disabled) Message() string {
	if d.Reason == "" {
		return DefaultDisabledReason
	}
	return d.Reason
}

// Select returns Disabled when apiKey is empty, otherwise Configured with the client from build.
func Select(apiKey string, build func(apiKey string) Completer) Backend {
	if apiKey == "" {
		return Disabled{Reason: DefaultDisabledReason}
	}
	return Configured{Client: build(apiKey)}
}
