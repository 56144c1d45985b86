package domain

import (
	"errors"
	"fmt"
)

// Kind clasifica los resultados de dominio para que cada frontera los maneje de forma explícita.
type Kind string

const (
	KindInvalidPayload       Kind = "INVALID_PAYLOAD"
	KindUnrecognizedFormat   Kind = "UNRECOGNIZED_FORMAT"
	KindSerialNotFound       Kind = "SERIAL_NOT_FOUND"
	KindDuplicateMovement    Kind = "DUPLICATE_MOVEMENT"
	KindRangeAlreadyConsumed Kind = "RANGE_ALREADY_CONSUMED"
	KindInsufficientStock    Kind = "INSUFFICIENT_STOCK"
	KindIncompleteRollback   Kind = "INCOMPLETE_ROLLBACK"
	KindOverlappingRange     Kind = "OVERLAPPING_RANGE"
	KindDeliveryFailure      Kind = "DELIVERY_FAILURE"
	KindConnectionFailure    Kind = "CONNECTION_FAILURE"
	KindInvalidInput         Kind = "INVALID_INPUT"
	KindNotFound             Kind = "NOT_FOUND"
)

// Error es el error de dominio etiquetado. Msg lleva los identificadores (producto, lote, serie,
// cantidad) necesarios para reintentar la operación.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is compara por Kind, así errors.Is(err, domain.ErrInsufficientStock) funciona con mensajes distintos.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Errores de dominio (centinelas por Kind).
var (
	ErrInvalidPayload       = &Error{Kind: KindInvalidPayload, Msg: "QR inválido"}
	ErrUnrecognizedFormat   = &Error{Kind: KindUnrecognizedFormat, Msg: "QR inválido: formato no reconocido"}
	ErrSerialNotFound       = &Error{Kind: KindSerialNotFound, Msg: "serie no registrada en ingreso"}
	ErrDuplicateMovement    = &Error{Kind: KindDuplicateMovement, Msg: "salida duplicada"}
	ErrRangeAlreadyConsumed = &Error{Kind: KindRangeAlreadyConsumed, Msg: "rango con salidas registradas"}
	ErrInsufficientStock    = &Error{Kind: KindInsufficientStock, Msg: "stock insuficiente"}
	ErrIncompleteRollback   = &Error{Kind: KindIncompleteRollback, Msg: "ajuste incompleto"}
	ErrOverlappingRange     = &Error{Kind: KindOverlappingRange, Msg: "rango superpuesto"}
	ErrDeliveryFailure      = &Error{Kind: KindDeliveryFailure, Msg: "falla de entrega"}
	ErrConnectionFailure    = &Error{Kind: KindConnectionFailure, Msg: "sin conexión a la base de datos"}
	ErrInvalidInput         = &Error{Kind: KindInvalidInput, Msg: "entrada inválida"}
	ErrNotFound             = &Error{Kind: KindNotFound, Msg: "recurso no encontrado"}
)

// Errorf construye un error de dominio del Kind indicado.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap construye un error de dominio que conserva la causa.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf devuelve el Kind del primer error de dominio en la cadena, o "" si no hay ninguno.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
