// File: payeer/errors.go
package payeer

import (
	"encoding/json"
	"fmt"
)

// APIError is returned when the API reports failure through a non-empty
// errors field. Errors holds the field verbatim; its shape varies by action,
// so callers that care inspect the raw JSON themselves.
type APIError struct {
	Errors json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payeer: api error: %s", e.Errors)
}

// InvalidAccountError is returned when a transfer recipient matches neither
// the wallet-number form nor the email form. It is raised locally, before any
// request is sent.
type InvalidAccountError struct {
	Account string
}

func (e *InvalidAccountError) Error() string {
	return fmt.Sprintf("payeer: invalid account format: %q", e.Account)
}
