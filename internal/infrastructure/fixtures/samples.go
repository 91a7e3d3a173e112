// Package fixtures agrupa los datos de ejemplo y el backend simulado para desarrollo y tests.
// Solo lo importan los tests y cmd/mockapi.
package fixtures

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/panel-clientes/internal/domain/entity"
)

func coord(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// SampleCustomers clientes de ejemplo con RUT válidos. Devuelve una copia nueva en cada llamada.
func SampleCustomers() []entity.Customer {
	return []entity.Customer{
		{
			ID: 1, CodigoAlte: "CLI-001", RazonSocial: "Tech Solutions S.L.", Nombre: "Juan Pérez",
			Direccion: "Av. Providencia 1234, Santiago", Telefono: "+56 9 1234 5678", RUT: "12.345.678-5",
			Estado: entity.EstadoActivo, Latitud: coord("-33.4263"), Longitud: coord("-70.6200"),
		},
		{
			ID: 2, CodigoAlte: "CLI-002", RazonSocial: "Innovate Corp", Nombre: "María García",
			Direccion: "Calle Valparaíso 567, Viña del Mar", Telefono: "+56 9 8765 4321", RUT: "98.765.432-5",
			Estado: entity.EstadoActivo, Latitud: coord("-33.0245"), Longitud: coord("-71.5518"),
		},
		{
			ID: 3, CodigoAlte: "CLI-003", RazonSocial: "Global Services", Nombre: "Carlos López",
			Direccion: "Av. Alemania 890, Temuco", Telefono: "(45) 221 3344", RUT: "11.222.333-9",
			Estado: entity.EstadoInactivo,
		},
	}
}
