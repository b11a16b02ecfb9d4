package db

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound signals a missing key.
	ErrKeyNotFound = errors.New("key not found")
	// ErrIndexExists signals that an FT index already exists.
	ErrIndexExists = errors.New("index already exists")
	// ErrIndexNotFound signals a missing FT index.
	ErrIndexNotFound = errors.New("index not found")
)

// Op identifies the store operation that failed.
type Op string

const (
	OpGet         Op = "get"
	OpSet         Op = "set"
	OpSetNX       Op = "setnx"
	OpExists      Op = "exists"
	OpJSONSet     Op = "json.set"
	OpJSONGet     Op = "json.get"
	OpCreateIndex Op = "ft.create"
	OpIndexInfo   Op = "ft.info"
	OpSearch      Op = "ft.search"
)

// Error wraps a store error with the operation that produced it.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("db %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
