package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrSessionConflict   = errors.New("ya existe una sesión de conteo activa")
	ErrInvalidState      = errors.New("la sesión no admite la operación en su estado actual")
	ErrUnsavedMovements  = errors.New("la sesión tiene movimientos sin confirmar")
	ErrMalformedOtp      = errors.New("código OTP con formato inválido")
	ErrOtpMismatch       = errors.New("código OTP incorrecto o vencido")
	ErrDependencyFailure = errors.New("colaborador externo no disponible")
)

// LineViolations agrupa las violaciones de validación de una línea (por SKU).
type LineViolations struct {
	SKUID    string
	Messages []string
}

// ValidationError acumula todas las violaciones pendientes de una sesión.
// Nunca se trunca al primer error: el llamador presenta la lista completa.
type ValidationError struct {
	Lines []LineViolations
}

// Error implementa error con un resumen por SKU.
func (e *ValidationError) Error() string {
	if len(e.Lines) == 0 {
		return "validación fallida"
	}
	skus := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		skus = append(skus, l.SKUID)
	}
	return fmt.Sprintf("validación fallida en %d línea(s): %s", len(e.Lines), strings.Join(skus, ", "))
}
