package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound        = errors.New("recurso no encontrado")
	ErrInvalidInput    = errors.New("entrada inválida")
	ErrUnauthorized    = errors.New("no autorizado")
	ErrForbidden       = errors.New("acceso denegado")
	ErrNetwork         = errors.New("error de conexión con el servidor")
	ErrInvalidResponse = errors.New("respuesta inválida del servidor")
	ErrFeatureDisabled = errors.New("funcionalidad deshabilitada")
	ErrSessionCorrupt  = errors.New("datos de sesión corruptos")
)

// ValidationError errores de validación del lado cliente. Nunca llega a la red.
// Errors contiene cada regla violada, no solo la primera.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError construye el error solo si hay violaciones; nil en caso contrario.
func NewValidationError(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}

// HTTPError respuesta no-2xx del backend.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP Error: %d %s", e.Status, http.StatusText(e.Status))
}

// AuthenticationError 401/403 del backend. Ante un 401 el cliente HTTP fuerza el logout antes de devolverlo;
// un 403 solo se informa.
type AuthenticationError struct {
	HTTPError
}

func (e *AuthenticationError) Unwrap() error {
	if e.Status == http.StatusForbidden {
		return ErrForbidden
	}
	return ErrUnauthorized
}

// NotFoundError 404 en la lectura de un recurso individual.
type NotFoundError struct {
	HTTPError
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NetworkError fallo de transporte: no se recibió respuesta.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return ErrNetwork.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() []error { return []error{ErrNetwork, e.Err} }

// IsAuthError indica si err es un rechazo de autenticación (401/403).
func IsAuthError(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}

// IsValidationError indica si err proviene de la validación local.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// StatusOf devuelve el código HTTP asociado a err, o 0 si no lo tiene.
func StatusOf(err error) int {
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return authErr.Status
	}
	var nfErr *NotFoundError
	if errors.As(err, &nfErr) {
		return nfErr.Status
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}
