package clientes_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/panel-clientes/internal/application/clientes"
	"github.com/jhoicas/panel-clientes/internal/application/dto"
	"github.com/jhoicas/panel-clientes/internal/domain/entity"
)

func TestFormatForTable(t *testing.T) {
	row := clientes.FormatForTable(entity.Customer{
		ID:          3,
		RazonSocial: "Global Services",
		Nombre:      "Carlos López",
		Direccion:   "Plaza Central 789",
		Latitud:     dec("-33.4734"),
	})
	assert.Equal(t, int64(3), row.ID)
	assert.Equal(t, entity.EstadoActivo, row.Estado, "estado vacío se muestra como Activo")
	assert.Equal(t, "Global Services", row.Empresa)
	assert.Equal(t, clientes.EmailPlaceholder, row.Email)
	require.NotNil(t, row.Latitud)
	assert.InDelta(t, -33.4734, *row.Latitud, 1e-9)
	assert.Nil(t, row.Longitud)
}

func TestFormatForAPI(t *testing.T) {
	lat, lng := -33.4489, -70.6483
	req := clientes.FormatForAPI(dto.CustomerRow{
		Empresa:    "Alias SpA",
		Nombre:     "Ana",
		Direccion:  "Calle 1",
		CodigoAlte: strings.Repeat("x", 60),
		Telefono:   "+56 9 1234 5678 9999 0000",
		Latitud:    &lat,
		Longitud:   &lng,
	})
	assert.Equal(t, "Alias SpA", req.RazonSocial, "empresa reemplaza a razón social vacía")
	assert.Len(t, req.CodigoAlte, 50)
	assert.Len(t, req.Telefono, 20)
	assert.Empty(t, req.RUT)
	assert.Empty(t, req.Estado)
	require.NotNil(t, req.Latitud)
	assert.Equal(t, "-33.4489", req.Latitud.String())
	assert.Equal(t, "-70.6483", req.Longitud.String())
}

func TestPaginate(t *testing.T) {
	rows := []dto.CustomerRow{
		{ID: 1, RazonSocial: "Beta", Nombre: "Ana", Estado: "Activo"},
		{ID: 2, RazonSocial: "alfa", Nombre: "Bruno", Estado: "Inactivo"},
		{ID: 3, RazonSocial: "Gamma", Nombre: "Carla", Estado: "Activo"},
	}

	page := clientes.Paginate(rows, dto.PageRequest{Sort: "razonsocial"})
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, []int64{2, 1, 3}, ids(page.Items))

	page = clientes.Paginate(rows, dto.PageRequest{Sort: "id", Order: "desc", Size: 2})
	assert.Equal(t, []int64{3, 2}, ids(page.Items))
	page = clientes.Paginate(rows, dto.PageRequest{Sort: "id", Order: "desc", Size: 2, Page: 2})
	assert.Equal(t, []int64{1}, ids(page.Items))
	page = clientes.Paginate(rows, dto.PageRequest{Page: 9})
	assert.Empty(t, page.Items)
	page = clientes.Paginate(rows, dto.PageRequest{Page: 1 << 62, Size: 100})
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.Total)
	page = clientes.Paginate(rows, dto.PageRequest{Page: math.MaxInt, Size: 2})
	assert.Empty(t, page.Items)

	page = clientes.Paginate(rows, dto.PageRequest{Estado: "activo"})
	assert.Equal(t, []int64{1, 3}, ids(page.Items))
	page = clientes.Paginate(rows, dto.PageRequest{Query: "CARL"})
	assert.Equal(t, []int64{3}, ids(page.Items))
}

func ids(rows []dto.CustomerRow) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestLocation(t *testing.T) {
	lat, lng := -33.4489, -70.6693
	loc := clientes.Location(dto.CustomerRow{ID: 5, RazonSocial: "Tech", Direccion: "Av. 1", Latitud: &lat, Longitud: &lng})
	assert.True(t, loc.HasLocation)
	assert.Equal(t, "https://www.openstreetmap.org/?mlat=-33.4489&mlon=-70.6693#map=15/-33.4489/-70.6693", loc.OpenStreetMap)
	assert.Equal(t, "https://www.google.com/maps?q=-33.4489,-70.6693", loc.GoogleMaps)

	sin := clientes.Location(dto.CustomerRow{ID: 6, Empresa: "Alias", Latitud: &lat})
	assert.False(t, sin.HasLocation)
	assert.Empty(t, sin.OpenStreetMap)
	assert.Equal(t, "Alias", sin.RazonSocial)
}

func TestFilter_SinPaginar(t *testing.T) {
	rows := []dto.CustomerRow{
		{ID: 1, RazonSocial: "Beta", Estado: "Activo"},
		{ID: 2, RazonSocial: "alfa", Estado: "Activo"},
		{ID: 3, RazonSocial: "Gamma", Estado: "Inactivo"},
	}
	out := clientes.Filter(rows, dto.PageRequest{Estado: "activo", Sort: "razonsocial"})
	require.Len(t, out, 2)
	assert.Equal(t, int64(2), out[0].ID)
	assert.Equal(t, int64(1), out[1].ID)
}
