package feishu

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth means no tenant access token could be obtained.
	ErrAuth = errors.New("feishu auth failed")
	// ErrFetch means the bitable records endpoint failed or rejected the call.
	ErrFetch = errors.New("feishu fetch failed")
)

// Token related codes returned by the open platform when the bearer token
// is missing, invalid or expired.
const (
	codeTenantTokenInvalid = 99991663
	codeAccessTokenInvalid = 99991668
)

// APIError is a reply carrying a non-zero code.
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("feishu api code %d: %s", e.Code, e.Msg)
}

func (e *APIError) tokenInvalid() bool {
	return e.Code == codeTenantTokenInvalid || e.Code == codeAccessTokenInvalid
}
