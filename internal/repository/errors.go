// Package repository contains the database access layer. Sentinel error
// values defined here let handlers map storage outcomes onto HTTP statuses
// without inspecting driver errors themselves.
package repository

import "errors"

// ErrEmailExists is returned when an INSERT into users trips the unique
// index on email. The index, not an application-level pre-check, is the
// authority: two concurrent signups for the same address race past any
// pre-check, but exactly one survives the constraint. Handlers translate
// this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a lookup matches no row. Handlers translate
// it into 404 or, on identity resolution paths, a generic 401.
var ErrNotFound = errors.New("not found")
