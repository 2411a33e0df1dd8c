package spotify

import "fmt"

// AuthError is returned when a token exchange with the provider fails, either
// because the grant was rejected or because the call itself did not complete.
// Callers should treat it as "re-authorization required" rather than retry.
type AuthError struct {
	StatusCode  int    // 0 when the request never completed
	Code        string // provider "error" field, if present
	Description string // provider "error_description" field, if present
	Err         error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("spotify token exchange: %v", e.Err)
	}
	if e.Code != "" {
		return fmt.Sprintf("spotify token exchange: %s (status %d): %s", e.Code, e.StatusCode, e.Description)
	}
	return fmt.Sprintf("spotify token exchange: status %d", e.StatusCode)
}

func (e *AuthError) Unwrap() error { return e.Err }

// APIError is returned when a catalog call fails: any non-2xx response or a
// transport failure. Body carries the provider's error payload when available.
type APIError struct {
	StatusCode int // 0 when the request never completed
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("spotify api: %v", e.Err)
	}
	return fmt.Sprintf("spotify api: status %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error { return e.Err }
