// Package access decides who may touch which todo.
//
// The caller is always passed in explicitly; nothing here reads request or
// process state.
package access

import (
	"todo-service/internal/apperr"
	"todo-service/internal/model"
)

// Caller is the identity bound to a request after token authentication.
type Caller struct {
	ID   int64
	Role model.Role
}

func (c Caller) IsAdmin() bool {
	return c.Role.IsAdmin()
}

type Capability int

const (
	CapOwnerRead Capability = iota
	CapOwnerWrite
	// CapAdminRead is used on admin routes, which were already gated by
	// RequireAdmin and are scoped by an explicit user id.
	CapAdminRead
)

const (
	MsgUnauthorizedTodo = "Unauthorized access to todo"
	MsgAdminRequired    = "Access denied. Admin permissions required."
	MsgUnauthenticated  = "Unauthorized access"
)

// Authorize checks caller against todo for the given capability.
func Authorize(todo *model.Todo, caller Caller, capability Capability) error {
	switch capability {
	case CapAdminRead:
		return nil
	case CapOwnerRead, CapOwnerWrite:
		if todo == nil || todo.UserID != caller.ID {
			return apperr.Unauthorized(MsgUnauthorizedTodo)
		}
		return nil
	default:
		return apperr.Unauthorized(MsgUnauthorizedTodo)
	}
}

// RequireAdmin is the role gate for admin routes.
func RequireAdmin(caller *Caller) error {
	if caller == nil || caller.ID == 0 {
		return apperr.Unauthenticated(MsgUnauthenticated)
	}
	if !caller.IsAdmin() {
		return apperr.Forbidden(MsgAdminRequired)
	}
	return nil
}
