package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Erros base do pipeline
var (
	ErrSchema     = errors.New("schema error")
	ErrField      = errors.New("field error")
	ErrEmptyGroup = errors.New("empty group")
)

// SchemaError indica que colunas obrigatórias não existem na entrada. É fatal.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", ErrSchema.Error(), strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// FieldError indica um valor malformado em uma linha. Não é fatal: o campo vira ausente.
type FieldError struct {
	Line   int
	Column string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: line %d column %s value %q: %s", ErrField.Error(), e.Line, e.Column, e.Value, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrField
}

// EmptyGroupError indica uma agregação sobre um grupo sem registros
type EmptyGroupError struct {
	Group string
}

func (e *EmptyGroupError) Error() string {
	if e.Group == "" {
		return ErrEmptyGroup.Error()
	}
	return fmt.Sprintf("%s: %s", ErrEmptyGroup.Error(), e.Group)
}

func (e *EmptyGroupError) Unwrap() error {
	return ErrEmptyGroup
}
