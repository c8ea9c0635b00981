package gateway

import (
	"fmt"
	"net/http"
)

// Op names a gateway operation.
type Op string

const (
	OpList   Op = "list"
	OpGet    Op = "get"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// RequestFailed is the single error kind returned by the gateway. Status is
// zero when no response was received.
type RequestFailed struct {
	Op     Op
	ID     string
	Status int
	Err    error
}

func (e *RequestFailed) Error() string {
	target := "users"
	if e.ID != "" {
		target = "user " + e.ID
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s %s failed: %d %s", e.Op, target, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%s %s failed: %v", e.Op, target, e.Err)
}

func (e *RequestFailed) Unwrap() error {
	return e.Err
}
