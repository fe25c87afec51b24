package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrValidation        = errors.New("datos inválidos")
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrPersistence       = errors.New("error de persistencia")
	ErrInvalidState      = errors.New("transición de estado no permitida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrEmptyCart         = errors.New("el carrito está vacío")
)

// ErrorKind clasifica un error para quien lo muestra (UI, reportes, CLI).
type ErrorKind string

const (
	KindNone        ErrorKind = ""
	KindValidation  ErrorKind = "validation"
	KindNotFound    ErrorKind = "not_found"
	KindStock       ErrorKind = "stock"
	KindPersistence ErrorKind = "persistence"
	KindState       ErrorKind = "state"
)

// KindOf devuelve la categoría del error según el sentinel que envuelve.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInsufficientStock):
		return KindStock
	case errors.Is(err, ErrInvalidState):
		return KindState
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDuplicate), errors.Is(err, ErrEmptyCart):
		return KindValidation
	default:
		return KindPersistence
	}
}

// ValidationError describe un dato mal formado detectado antes de cualquier efecto.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError construye un ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// StockError indica que la cantidad pedida supera el stock disponible.
// Cause guarda el fallo del almacén cuando la deducción no pudo escribirse.
type StockError struct {
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
	Cause       error
}

func (e *StockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = fmt.Sprintf("producto %d", e.ProductID)
	}
	msg := fmt.Sprintf("stock insuficiente para %s: disponible %d, solicitado %d", name, e.Available, e.Requested)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *StockError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrInsufficientStock, e.Cause}
	}
	return []error{ErrInsufficientStock}
}

// StateError indica una transición de estado ilegal (p. ej. reembolsar una venta cancelada).
// Detail reemplaza la mención al estado cuando el bloqueo no es de una venta.
type StateError struct {
	From   string
	Action string
	Detail string
}

func (e *StateError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("no se puede %s: %s", e.Action, e.Detail)
	}
	return fmt.Sprintf("no se puede %s una venta en estado %s", e.Action, e.From)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }

// PersistenceError envuelve un fallo del almacén subyacente.
func PersistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
