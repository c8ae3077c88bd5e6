package extract

import "fmt"

// DocumentParseError reports an input document that could not be turned into
// text: not a PDF, corrupt, or a page whose text layer cannot be read.
type DocumentParseError struct {
	Reason string
	Err    error
}

func (e *DocumentParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("document parse: %s: %v", e.Reason, e.Err)
	}
	return "document parse: " + e.Reason
}

func (e *DocumentParseError) Unwrap() error { return e.Err }

// UpstreamError reports a failed round trip to the completion service.
type UpstreamError struct {
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion service returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("completion service: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ExtractionParseError reports model output that does not decode into a
// product.
type ExtractionParseError struct {
	Reason string
	Err    error
}

func (e *ExtractionParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction parse: %s: %v", e.Reason, e.Err)
	}
	return "extraction parse: " + e.Reason
}

func (e *ExtractionParseError) Unwrap() error { return e.Err }

// ValidationError reports a malformed extraction request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
