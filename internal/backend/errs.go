package backend

import "fmt"

var (
	ErrBuildRequest   = fmt.Errorf("building request failed")
	ErrSendRequest    = fmt.Errorf("sending request failed")
	ErrDecodeResponse = fmt.Errorf("decoding response failed")
)

// APIError is a non-2xx answer from the backend. Detail carries the
// human-readable message from the response body when the backend sent one.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend responded %d", e.StatusCode)
}
