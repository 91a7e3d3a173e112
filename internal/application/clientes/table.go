package clientes

import (
	"cmp"
	"slices"
	"strings"

	"github.com/jhoicas/panel-clientes/internal/application/dto"
)

// Columnas ordenables de la tabla.
var sortable = map[string]func(a, b dto.CustomerRow) int{
	"id":          func(a, b dto.CustomerRow) int { return cmp.Compare(a.ID, b.ID) },
	"codigoalte":  func(a, b dto.CustomerRow) int { return strings.Compare(a.CodigoAlte, b.CodigoAlte) },
	"razonsocial": func(a, b dto.CustomerRow) int { return compareFold(a.RazonSocial, b.RazonSocial) },
	"empresa":     func(a, b dto.CustomerRow) int { return compareFold(a.Empresa, b.Empresa) },
	"nombre":      func(a, b dto.CustomerRow) int { return compareFold(a.Nombre, b.Nombre) },
	"direccion":   func(a, b dto.CustomerRow) int { return compareFold(a.Direccion, b.Direccion) },
	"rut":         func(a, b dto.CustomerRow) int { return strings.Compare(a.RUT, b.RUT) },
	"estado":      func(a, b dto.CustomerRow) int { return strings.Compare(a.Estado, b.Estado) },
}

// Paginate filtra (texto libre y estado), ordena y pagina las filas de la tabla.
func Paginate(rows []dto.CustomerRow, req dto.PageRequest) dto.CustomerPage {
	req.DefaultPage()
	filtered := Filter(rows, req)

	total := len(filtered)
	// páginas fuera de rango quedan vacías; se compara antes de multiplicar para no desbordar
	start := total
	if req.Page-1 <= total/req.Size {
		start = min((req.Page-1)*req.Size, total)
	}
	end := min(start+req.Size, total)
	return dto.CustomerPage{
		Items:        filtered[start:end],
		PageResponse: dto.PageResponse{Page: req.Page, Size: req.Size, Total: total},
	}
}

// Filter aplica los filtros y el orden de req sin paginar. Devuelve una copia.
func Filter(rows []dto.CustomerRow, req dto.PageRequest) []dto.CustomerRow {
	filtered := make([]dto.CustomerRow, 0, len(rows))
	q := strings.ToLower(strings.TrimSpace(req.Query))
	for _, r := range rows {
		if req.Estado != "" && !strings.EqualFold(r.Estado, req.Estado) {
			continue
		}
		if q != "" && !matches(r, q) {
			continue
		}
		filtered = append(filtered, r)
	}

	if less, ok := sortable[strings.ToLower(req.Sort)]; ok {
		slices.SortStableFunc(filtered, func(a, b dto.CustomerRow) int {
			if req.Order == "desc" {
				return less(b, a)
			}
			return less(a, b)
		})
	}
	return filtered
}

func matches(r dto.CustomerRow, q string) bool {
	for _, field := range []string{r.RazonSocial, r.Nombre, r.Direccion, r.CodigoAlte, r.RUT, r.Telefono} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
