package clientes

import (
	"fmt"
	"strconv"

	"github.com/jhoicas/panel-clientes/internal/application/dto"
)

// Zoom del mapa de ubicación.
const MapZoom = 15

// Location datos del modal de ubicación. Sin ambas coordenadas HasLocation es false y no hay enlaces.
func Location(row dto.CustomerRow) dto.MapLocation {
	loc := dto.MapLocation{
		ID:          row.ID,
		RazonSocial: nonEmpty(row.RazonSocial, row.Empresa),
		Direccion:   row.Direccion,
	}
	if row.Latitud == nil || row.Longitud == nil {
		return loc
	}
	lat, lng := coordString(*row.Latitud), coordString(*row.Longitud)
	loc.HasLocation = true
	loc.Latitud, loc.Longitud = row.Latitud, row.Longitud
	loc.OpenStreetMap = fmt.Sprintf("https://www.openstreetmap.org/?mlat=%s&mlon=%s#map=%d/%s/%s", lat, lng, MapZoom, lat, lng)
	loc.GoogleMaps = fmt.Sprintf("https://www.google.com/maps?q=%s,%s", lat, lng)
	return loc
}

func coordString(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
