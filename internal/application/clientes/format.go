package clientes

import (
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/panel-clientes/internal/application/dto"
	"github.com/jhoicas/panel-clientes/internal/domain/entity"
)

// EmailPlaceholder el backend no guarda email de clientes; la tabla muestra este texto.
const EmailPlaceholder = "No especificado"

// FormatForTable convierte un cliente a fila de tabla: estado por defecto Activo,
// empresa como alias de razón social y coordenadas numéricas.
func FormatForTable(c entity.Customer) dto.CustomerRow {
	estado := c.Estado
	if estado == "" {
		estado = entity.EstadoActivo
	}
	return dto.CustomerRow{
		ID:          c.ID,
		CodigoAlte:  c.CodigoAlte,
		RazonSocial: c.RazonSocial,
		Nombre:      c.Nombre,
		Direccion:   c.Direccion,
		Telefono:    c.Telefono,
		RUT:         c.RUT,
		Estado:      estado,
		Latitud:     toFloat(c.Latitud),
		Longitud:    toFloat(c.Longitud),
		Empresa:     c.RazonSocial,
		Email:       EmailPlaceholder,
	}
}

// FormatAllForTable aplica FormatForTable a la lista.
func FormatAllForTable(list []entity.Customer) []dto.CustomerRow {
	rows := make([]dto.CustomerRow, 0, len(list))
	for _, c := range list {
		rows = append(rows, FormatForTable(c))
	}
	return rows
}

// FormatForAPI convierte una fila editada al cuerpo del backend. Los opcionales
// solo se incluyen con valor y se recortan al tamaño de su columna.
func FormatForAPI(row dto.CustomerRow) dto.CustomerRequest {
	razon := row.RazonSocial
	if razon == "" {
		razon = row.Empresa
	}
	req := dto.CustomerRequest{
		RazonSocial: razon,
		Nombre:      row.Nombre,
		Direccion:   row.Direccion,
		CodigoAlte:  truncate(row.CodigoAlte, MaxCodigoAlte),
		Telefono:    truncate(row.Telefono, MaxTelefono),
		RUT:         truncate(row.RUT, MaxRUT),
		Estado:      truncate(row.Estado, MaxEstado),
	}
	if row.Latitud != nil {
		d := decimal.NewFromFloat(*row.Latitud)
		req.Latitud = &d
	}
	if row.Longitud != nil {
		d := decimal.NewFromFloat(*row.Longitud)
		req.Longitud = &d
	}
	return req
}

func toFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
