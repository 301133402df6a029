package schema

import "fmt"

// maxBodyExcerpt bounds the upstream body excerpt carried in errors.
const maxBodyExcerpt = 300

// ValidationError reports bad or missing request input. Maps to HTTP 400.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string { return e.Reason }

// ConfigError reports a missing required credential or setting.
type ConfigError struct {
	Setting string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Setting)
}

// UpstreamError reports a downstream HTTP/service failure, carrying the
// response status and a truncated body excerpt for diagnosis.
type UpstreamError struct {
	Service string
	Status  int
	Body    string
}

func (e UpstreamError) Error() string {
	body := e.Body
	if len(body) > maxBodyExcerpt {
		body = body[:maxBodyExcerpt]
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Service, body)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Service, e.Status, body)
}

// NewUpstreamError builds an UpstreamError with the body excerpt truncated.
func NewUpstreamError(service string, status int, body string) UpstreamError {
	if len(body) > maxBodyExcerpt {
		body = body[:maxBodyExcerpt]
	}
	return UpstreamError{Service: service, Status: status, Body: body}
}

// TimeoutError reports a deadline exceeded on an outbound call.
type TimeoutError struct {
	Op string
}

func (e TimeoutError) Error() string { return fmt.Sprintf("%s: deadline exceeded", e.Op) }

// MalformedOutputError reports that the model's final answer could not be
// recovered as a structured document.
type MalformedOutputError struct {
	Detail string
}

func (e MalformedOutputError) Error() string {
	return fmt.Sprintf("model output is not valid JSON: %s", e.Detail)
}
