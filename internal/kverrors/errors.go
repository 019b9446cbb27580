// Package kverrors implements the closed error taxonomy shared by every
// core package: the lexer, parser, code generator, VM, and storage engine
// all report failures as a *Error carrying one of the fixed Kind values
// below, so callers can switch on Kind without string-matching messages.
package kverrors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind is one of the fixed error categories. There is no open extension
// point: every failure in the core maps to exactly one of these.
type Kind string

const (
	Syntax        Kind = "SyntaxError"
	Parse         Kind = "ParseError"
	Query         Kind = "QueryError"
	JSON          Kind = "JsonError"
	Storage       Kind = "StorageError"
	KeyMissing    Kind = "KeyNotFound"
	KeyDuplicate  Kind = "KeyAlreadyExists"
	Execution     Kind = "ExecutionError"
	IndexConflict Kind = "IndexError"
)

// Error is the single error type used throughout the core.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewSyntax(format string, args ...any) *Error  { return New(Syntax, format, args...) }
func NewParse(format string, args ...any) *Error   { return New(Parse, format, args...) }
func NewQuery(format string, args ...any) *Error   { return New(Query, format, args...) }
func NewJSON(format string, args ...any) *Error    { return New(JSON, format, args...) }
func NewStorage(format string, args ...any) *Error { return New(Storage, format, args...) }
func NewExecution(format string, args ...any) *Error {
	return New(Execution, format, args...)
}
func NewIndex(format string, args ...any) *Error { return New(IndexConflict, format, args...) }

// NewKeyNotFound and NewKeyAlreadyExists carry the key itself so callers
// don't have to re-derive the message format in multiple places.
func NewKeyNotFound(key string) *Error {
	return New(KeyMissing, "key %q not found", key)
}

func NewKeyAlreadyExists(key string) *Error {
	return New(KeyDuplicate, "key %q already exists", key)
}

// Is reports whether err is a *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// envelope is the caller-facing error representation: a single JSON
// object with an "error" field, per the external-interface contract.
type envelope struct {
	Error string `json:"error"`
}

// Envelope renders e as the newline-terminated JSON object callers of the
// core are expected to surface verbatim.
func Envelope(err error) string {
	msg := err.Error()
	b, marshalErr := json.Marshal(envelope{Error: msg})
	if marshalErr != nil {
		return `{"error":"internal error formatting error response"}` + "\n"
	}
	return string(b) + "\n"
}
