package client

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when the base URL or credentials are missing
var ErrNotConfigured = errors.New("woocommerce client not configured")

// UpstreamError reports a non-success status from the upstream API
type UpstreamError struct {
	Operation  string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failed with status %d", e.Operation, e.StatusCode)
}

// StatusCode extracts the upstream status from err, or 0 when err is not an *UpstreamError
func StatusCode(err error) int {
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.StatusCode
	}
	return 0
}
