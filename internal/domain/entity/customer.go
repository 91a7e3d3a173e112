package entity

import "github.com/shopspring/decimal"

// Estados válidos de un cliente (columna estado VARCHAR(20) DEFAULT 'Activo').
const (
	EstadoActivo     = "Activo"
	EstadoInactivo   = "Inactivo"
	EstadoPendiente  = "Pendiente"
	EstadoSuspendido = "Suspendido"
)

// EstadosValidos lista los estados aceptados por el backend.
var EstadosValidos = []string{EstadoActivo, EstadoInactivo, EstadoPendiente, EstadoSuspendido}

// Customer representa un cliente del registro. El sistema de registro es el backend;
// el panel solo guarda una copia transitoria y posiblemente desactualizada.
type Customer struct {
	ID          int64  // SERIAL, asignado por el servidor
	CodigoAlte  string // código alternativo, único, opcional
	RazonSocial string
	Nombre      string // nombre de contacto
	Direccion   string
	Telefono    string
	RUT         string
	Estado      string
	Latitud     *decimal.Decimal // NUMERIC(10,7)
	Longitud    *decimal.Decimal // NUMERIC(11,8)
}

// HasLocation indica si el cliente tiene ambas coordenadas.
func (c *Customer) HasLocation() bool {
	return c.Latitud != nil && c.Longitud != nil
}

// IsActive indica si el cliente está activo (estado vacío equivale a Activo).
func (c *Customer) IsActive() bool {
	return c.Estado == "" || c.Estado == EstadoActivo
}
