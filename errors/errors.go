// Package errors provides the errors package for bitlayout. It includes all of the stdlib's
// functions and types.
package errors

import (
	"github.com/gostdlib/base/context"
	"github.com/gostdlib/base/errors"
)

//go:generate stringer -type=Category -linecomment

// Category represents the category of the error.
type Category uint32

func (c Category) Category() string {
	return c.String()
}

const (
	// CatUnknown represents an unknown category. This should not be used.
	CatUnknown Category = Category(0) // Unknown
	// CatUser represents an error that is caused by a bad layout or bad storage handed to us.
	CatUser Category = Category(1) // User
	// CatInternal represents an internal error.
	CatInternal Category = Category(2) // Internal
)

//go:generate stringer -type=Type -linecomment

// Type represents the type of the error.
type Type uint16

func (t Type) Type() string {
	return t.String()
}

const (
	// TypeUnknown represents an unknown type.
	TypeUnknown Type = Type(0) // Unknown
	// TypeBug represents a bug in the calling code. This is only bugs that are known bugs and
	// not because of bad user input. An example would be a switch statement that doesn't cover
	// all cases. The default case should return an error of this type.
	TypeBug Type = Type(1) // Bug
	// TypeParameter represents an error with a parameter that didn't pass validation.
	TypeParameter Type = Type(2) // Parameter
	// TypeLayout represents a layout descriptor that failed validation.
	TypeLayout Type = Type(3) // Layout
	// TypeStorage represents storage that cannot hold the layout it was bound to.
	TypeStorage Type = Type(4) // Storage
	// TypeFS represents an error with the file system.
	TypeFS Type = Type(5) // FS
)

// Error is the error type for this module. Error implements github.com/gostdlib/base/errors.E .
type Error = errors.Error

// E creates an Error in category c of type t. The error reports the caller's file and line.
func E(ctx context.Context, c Category, t Type, msg error, options ...errors.EOption) Error {
	opts := append([]errors.EOption{errors.WithCallNum(2)}, options...)
	return errors.E(ctx, c, t, msg, opts...)
}
