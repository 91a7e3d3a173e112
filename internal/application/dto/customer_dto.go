package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/panel-clientes/internal/domain/entity"
)

// CustomerRequest cuerpo de POST/PUT /api/clientes. Los opcionales solo se envían con valor.
type CustomerRequest struct {
	CodigoAlte  string           `json:"codigoalte,omitempty"`
	RazonSocial string           `json:"razonsocial"`
	Nombre      string           `json:"nombre"`
	Direccion   string           `json:"direccion"`
	Telefono    string           `json:"telefono,omitempty"`
	RUT         string           `json:"rut,omitempty"`
	Estado      string           `json:"estado,omitempty"`
	Latitud     *decimal.Decimal `json:"latitud,omitempty"`
	Longitud    *decimal.Decimal `json:"longitud,omitempty"`
}

// ToEntity copia los campos del formulario a un cliente de dominio.
func (r CustomerRequest) ToEntity() entity.Customer {
	return entity.Customer{
		CodigoAlte:  r.CodigoAlte,
		RazonSocial: r.RazonSocial,
		Nombre:      r.Nombre,
		Direccion:   r.Direccion,
		Telefono:    r.Telefono,
		RUT:         r.RUT,
		Estado:      r.Estado,
		Latitud:     r.Latitud,
		Longitud:    r.Longitud,
	}
}

// CustomerRecord cliente tal como lo devuelve el backend. NUMERIC llega como string o número;
// decimal.Decimal acepta ambos.
type CustomerRecord struct {
	ID          int64            `json:"id"`
	CodigoAlte  string           `json:"codigoalte"`
	RazonSocial string           `json:"razonsocial"`
	Nombre      string           `json:"nombre"`
	Direccion   string           `json:"direccion"`
	Telefono    string           `json:"telefono"`
	RUT         string           `json:"rut"`
	Estado      string           `json:"estado"`
	Latitud     *decimal.Decimal `json:"latitud"`
	Longitud    *decimal.Decimal `json:"longitud"`
}

// ToEntity convierte el registro del backend al cliente de dominio.
func (r CustomerRecord) ToEntity() entity.Customer {
	return entity.Customer{
		ID:          r.ID,
		CodigoAlte:  r.CodigoAlte,
		RazonSocial: r.RazonSocial,
		Nombre:      r.Nombre,
		Direccion:   r.Direccion,
		Telefono:    r.Telefono,
		RUT:         r.RUT,
		Estado:      r.Estado,
		Latitud:     r.Latitud,
		Longitud:    r.Longitud,
	}
}

// RecordFromEntity inversa de ToEntity; la usa el backend simulado.
func RecordFromEntity(c entity.Customer) CustomerRecord {
	return CustomerRecord{
		ID:          c.ID,
		CodigoAlte:  c.CodigoAlte,
		RazonSocial: c.RazonSocial,
		Nombre:      c.Nombre,
		Direccion:   c.Direccion,
		Telefono:    c.Telefono,
		RUT:         c.RUT,
		Estado:      c.Estado,
		Latitud:     c.Latitud,
		Longitud:    c.Longitud,
	}
}

// CustomerRow fila de la tabla de clientes.
type CustomerRow struct {
	ID          int64    `json:"id"`
	CodigoAlte  string   `json:"codigoalte"`
	RazonSocial string   `json:"razonsocial"`
	Nombre      string   `json:"nombre"`
	Direccion   string   `json:"direccion"`
	Telefono    string   `json:"telefono"`
	RUT         string   `json:"rut"`
	Estado      string   `json:"estado"`
	Latitud     *float64 `json:"latitud"`
	Longitud    *float64 `json:"longitud"`
	Empresa     string   `json:"empresa"`
	Email       string   `json:"email"`
}

// CustomerPage página de filas para la tabla.
type CustomerPage struct {
	Items []CustomerRow `json:"items"`
	PageResponse
}

// MapLocation datos del modal de ubicación.
type MapLocation struct {
	ID            int64    `json:"id"`
	RazonSocial   string   `json:"razonsocial"`
	Direccion     string   `json:"direccion"`
	HasLocation   bool     `json:"hasLocation"`
	Latitud       *float64 `json:"latitud,omitempty"`
	Longitud      *float64 `json:"longitud,omitempty"`
	OpenStreetMap string   `json:"openStreetMap,omitempty"`
	GoogleMaps    string   `json:"googleMaps,omitempty"`
}
