package compliance

// ValidationError means the caller sent something we cannot act on (HTTP 400).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ConfigurationError means the operator has to fix the deployment (HTTP 500).
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

// ServiceError wraps a failure from the completion service or storage (HTTP 500).
// Error returns the upstream message unchanged.
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string { return e.Err.Error() }
func (e *ServiceError) Unwrap() error { return e.Err }
