package clientes

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/panel-clientes/internal/application/dto"
	"github.com/jhoicas/panel-clientes/internal/domain"
	"github.com/jhoicas/panel-clientes/internal/domain/entity"
	"github.com/jhoicas/panel-clientes/pkg/rut"
)

// Límites de columnas.
const (
	MaxRazonSocial = 255
	MaxNombre      = 255
	MaxCodigoAlte  = 50
	MaxTelefono    = 20
	MaxRUT         = 20
	MaxEstado      = 20

	MaxLatDecimals = 7 // NUMERIC(10,7)
	MaxLngDecimals = 8 // NUMERIC(11,8)
)

var (
	telefonoRe = regexp.MustCompile(`^[+]?[0-9\s\-()]{7,20}$`)

	latMin, latMax = decimal.NewFromInt(-90), decimal.NewFromInt(90)
	lngMin, lngMax = decimal.NewFromInt(-180), decimal.NewFromInt(180)
)

// ValidateCustomer valida el registro completo y devuelve todas las reglas violadas.
func ValidateCustomer(in dto.CustomerRequest) []string {
	var errs []string

	if strings.TrimSpace(in.RazonSocial) == "" {
		errs = append(errs, "Razón social es requerida")
	}
	if strings.TrimSpace(in.Nombre) == "" {
		errs = append(errs, "Nombre es requerido")
	}
	if strings.TrimSpace(in.Direccion) == "" {
		errs = append(errs, "Dirección es requerida")
	}

	if tooLong(in.RazonSocial, MaxRazonSocial) {
		errs = append(errs, "Razón social no puede exceder 255 caracteres")
	}
	if tooLong(in.Nombre, MaxNombre) {
		errs = append(errs, "Nombre no puede exceder 255 caracteres")
	}
	if tooLong(in.CodigoAlte, MaxCodigoAlte) {
		errs = append(errs, "Código alternativo no puede exceder 50 caracteres")
	}
	if tooLong(in.Telefono, MaxTelefono) {
		errs = append(errs, "Teléfono no puede exceder 20 caracteres")
	}
	if tooLong(in.RUT, MaxRUT) {
		errs = append(errs, "RUT no puede exceder 20 caracteres")
	}
	if tooLong(in.Estado, MaxEstado) {
		errs = append(errs, "Estado no puede exceder 20 caracteres")
	}

	if in.RUT != "" && !rut.Validate(in.RUT) {
		errs = append(errs, "RUT inválido")
	}
	if !ValidTelefono(in.Telefono) {
		errs = append(errs, "Formato de teléfono inválido")
	}
	if !ValidEstado(in.Estado) {
		errs = append(errs, "Estado inválido. Debe ser: Activo, Inactivo, Pendiente o Suspendido")
	}

	errs = append(errs, ValidateCoordinates(in.Latitud, in.Longitud)...)
	return errs
}

// Validate envuelve las violaciones como *domain.ValidationError (nil si no hay).
func Validate(in dto.CustomerRequest) error {
	return domain.NewValidationError(ValidateCustomer(in))
}

// ValidTelefono teléfono opcional con formato +56 9 1234 5678, (56) 9 1234 5678, etc.
func ValidTelefono(telefono string) bool {
	return telefono == "" || telefonoRe.MatchString(telefono)
}

// ValidEstado estado vacío (se asume Activo) o uno de los cuatro válidos.
func ValidEstado(estado string) bool {
	if estado == "" {
		return true
	}
	for _, e := range entity.EstadosValidos {
		if estado == e {
			return true
		}
	}
	return false
}

// ValidateCoordinates rangos y precisión de latitud/longitud; nil = ausente.
func ValidateCoordinates(lat, lng *decimal.Decimal) []string {
	var errs []string
	if lat != nil {
		if lat.LessThan(latMin) || lat.GreaterThan(latMax) {
			errs = append(errs, "Latitud debe estar entre -90 y 90 grados")
		}
		if FractionalDigits(*lat) > MaxLatDecimals {
			errs = append(errs, "Latitud no puede tener más de 7 decimales")
		}
	}
	if lng != nil {
		if lng.LessThan(lngMin) || lng.GreaterThan(lngMax) {
			errs = append(errs, "Longitud debe estar entre -180 y 180 grados")
		}
		if FractionalDigits(*lng) > MaxLngDecimals {
			errs = append(errs, "Longitud no puede tener más de 8 decimales")
		}
	}
	return errs
}

// FractionalDigits cantidad de decimales significativos (sin ceros a la derecha).
func FractionalDigits(d decimal.Decimal) int {
	s := d.String()
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return 0
	}
	return len(s) - i - 1
}

func tooLong(s string, limit int) bool {
	return utf8.RuneCountInString(s) > limit
}
