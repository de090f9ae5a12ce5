package services

// EmbeddingError represents a failed call to the embedding provider:
// unreachable endpoint, quota exhaustion, or malformed input.
// The embedding client never retries; the caller owns retry policy.
type EmbeddingError struct {
	Operation string
	Err       error
	Message   string
}

func (e *EmbeddingError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Operation + ": " + e.Err.Error()
	}
	return e.Operation + ": unknown error"
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// NewEmbeddingError creates a new embedding error
func NewEmbeddingError(operation string, err error, message string) *EmbeddingError {
	return &EmbeddingError{
		Operation: operation,
		Err:       err,
		Message:   message,
	}
}

// CompletionError represents a failed call to the generative completion
// provider, before or during streaming. When it arrives mid-stream the
// partial answer already delivered remains valid but is not authoritative.
type CompletionError struct {
	Operation string
	Err       error
	Message   string
}

func (e *CompletionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Operation + ": " + e.Err.Error()
	}
	return e.Operation + ": unknown error"
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// NewCompletionError creates a new completion error
func NewCompletionError(operation string, err error, message string) *CompletionError {
	return &CompletionError{
		Operation: operation,
		Err:       err,
		Message:   message,
	}
}
