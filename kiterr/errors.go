// Package kiterr defines the error values reported by the Kitten compiler.
package kiterr

import (
	"fmt"
	"strings"
)

// ErrorType defines the category of the error.
type ErrorType string

const (
	TypeSyntax   ErrorType = "SyntaxError"
	TypeSemantic ErrorType = "SemanticError"
	TypeLoad     ErrorType = "LoadError"
)

// KittenError is the interface for all compiler errors.
type KittenError interface {
	error
	Type() ErrorType
}

// BaseError provides common fields for Kitten errors.
type BaseError struct {
	Msg     string
	ErrType ErrorType
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Msg)
}

func (e *BaseError) Type() ErrorType {
	return e.ErrType
}

// Position is a line/column location inside a source file. Lines and
// columns start at 1; the zero value means "unknown".
type Position struct {
	FilePath string
	Line     int
	Column   int
}

func (p Position) String() string {
	switch {
	case p.Line == 0:
		return p.FilePath
	case p.FilePath == "":
		return fmt.Sprintf("line %d:%d", p.Line, p.Column)
	default:
		return fmt.Sprintf("%s:%d:%d", p.FilePath, p.Line, p.Column)
	}
}

// SyntaxError represents an error during lexing or parsing.
type SyntaxError struct {
	BaseError
	Position
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("[%s] %s %s", e.ErrType, e.Position, e.Msg)
}

// SemanticError represents a type-checking error.
type SemanticError struct {
	BaseError
	Position
}

func (e *SemanticError) Error() string {
	if e.Line > 0 || e.FilePath != "" {
		return fmt.Sprintf("[%s] %s %s", e.ErrType, e.Position, e.Msg)
	}
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Msg)
}

// LoadError reports a class that could not be located or read.
type LoadError struct {
	BaseError
	Class string
	Cause error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] class %s: %s: %v", e.ErrType, e.Class, e.Msg, e.Cause)
	}
	return fmt.Sprintf("[%s] class %s: %s", e.ErrType, e.Class, e.Msg)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// MultiError collects multiple Kitten errors.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s) occurred:\n", len(m.Errors)))
	for _, err := range m.Errors {
		sb.WriteString(fmt.Sprintf("- %v\n", err))
	}
	return sb.String()
}

func (m *MultiError) Type() ErrorType {
	if len(m.Errors) > 0 {
		if ke, ok := m.Errors[0].(KittenError); ok {
			return ke.Type()
		}
	}
	return "MultiError"
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// NewSyntaxError creates a new SyntaxError.
func NewSyntaxError(pos Position, msg string) *SyntaxError {
	return &SyntaxError{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: TypeSyntax,
		},
		Position: pos,
	}
}

// NewSemanticError creates a SemanticError without a position.
func NewSemanticError(msg string) *SemanticError {
	return &SemanticError{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: TypeSemantic,
		},
	}
}

// NewSemanticErrorAt creates a SemanticError at the given position.
func NewSemanticErrorAt(pos Position, msg string) *SemanticError {
	return &SemanticError{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: TypeSemantic,
		},
		Position: pos,
	}
}

// NewLoadError creates a LoadError for the named class.
func NewLoadError(class, msg string, cause error) *LoadError {
	return &LoadError{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: TypeLoad,
		},
		Class: class,
		Cause: cause,
	}
}
