package api

import "fmt"

// Error is a typed failure from the server. The Type string is the
// server's symbolic error type; sync code branches on the classifier
// methods rather than status codes.
type Error struct {
	Code    int
	Type    string
	Message string
}

func (e *Error) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("server error %d (%s): %s", e.Code, e.Type, e.Message)
	}
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

// NotFound reports a missing document, the signal that triggers
// create-on-miss in the sync layer.
func (e *Error) NotFound() bool {
	return e.Type == "document_not_found" || e.Code == 404
}

// Conflict reports that a create lost the race to another session. The
// sync layer treats it as non-fatal and refetches.
func (e *Error) Conflict() bool {
	return e.Type == "document_already_exists" || e.Code == 409
}

// Unauthorized reports a rejected or expired session token.
func (e *Error) Unauthorized() bool {
	return e.Type == "unauthorized" || e.Code == 401
}
