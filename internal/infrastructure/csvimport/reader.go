// Package csvimport lee clientes desde exportaciones CSV de planillas (UTF-8 o Latin-1)
// y los crea a través del servicio de clientes.
package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/panel-clientes/internal/application/dto"
)

// Codificaciones aceptadas.
const (
	EncodingUTF8   = "utf8"
	EncodingLatin1 = "latin1"
)

// ErrSinEncabezado el archivo no trae la columna obligatoria razonsocial.
var ErrSinEncabezado = errors.New("csvimport: falta la columna razonsocial en el encabezado")

// columnas alias de encabezado → campo. Las claves van en minúsculas sin espacios ni guiones bajos.
var columnas = map[string]string{
	"razonsocial": "razonsocial", "razónsocial": "razonsocial", "empresa": "razonsocial",
	"nombre": "nombre", "contacto": "nombre",
	"direccion": "direccion", "dirección": "direccion",
	"telefono": "telefono", "teléfono": "telefono", "fono": "telefono",
	"rut":    "rut",
	"estado": "estado",
	"codigoalte": "codigoalte", "codigo": "codigoalte", "código": "codigoalte", "codigoalternativo": "codigoalte",
	"latitud": "latitud", "lat": "latitud",
	"longitud": "longitud", "lng": "longitud", "lon": "longitud",
}

// Row fila leída con su número de línea (1 = encabezado).
type Row struct {
	Line    int
	Request dto.CustomerRequest
}

// RowError fila que no se pudo interpretar.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string { return fmt.Sprintf("línea %d: %v", e.Line, e.Err) }

// Read interpreta el CSV. El separador (',' o ';') se detecta en el encabezado;
// con ';' las coordenadas aceptan coma decimal.
func Read(r io.Reader, encoding string) ([]Row, []RowError, error) {
	if encoding == EncodingLatin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	br := bufio.NewReader(r)
	head, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, nil, fmt.Errorf("csvimport: leer encabezado: %w", err)
	}
	if bytes.HasPrefix(head, []byte("\xef\xbb\xbf")) {
		_, _ = br.Discard(3)
		head = head[3:]
	}

	cr := csv.NewReader(br)
	cr.Comma = detectComma(head)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("csvimport: leer encabezado: %w", err)
	}
	index := mapHeader(header)
	if _, ok := index["razonsocial"]; !ok {
		return nil, nil, ErrSinEncabezado
	}

	var (
		rows []Row
		bad  []RowError
	)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			bad = append(bad, RowError{Line: line, Err: err})
			continue
		}
		if blank(rec) {
			continue
		}
		req, err := toRequest(rec, index, cr.Comma == ';')
		if err != nil {
			bad = append(bad, RowError{Line: line, Err: err})
			continue
		}
		rows = append(rows, Row{Line: line, Request: req})
	}
	return rows, bad, nil
}

func detectComma(head []byte) rune {
	first := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		first = head[:i]
	}
	if bytes.Count(first, []byte{';'}) > bytes.Count(first, []byte{','}) {
		return ';'
	}
	return ','
}

func mapHeader(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
		if field, ok := columnas[key]; ok {
			if _, dup := idx[field]; !dup {
				idx[field] = i
			}
		}
	}
	return idx
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func toRequest(rec []string, idx map[string]int, commaDecimal bool) (dto.CustomerRequest, error) {
	get := func(field string) string {
		i, ok := idx[field]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	req := dto.CustomerRequest{
		RazonSocial: get("razonsocial"),
		Nombre:      get("nombre"),
		Direccion:   get("direccion"),
		Telefono:    get("telefono"),
		RUT:         get("rut"),
		Estado:      get("estado"),
		CodigoAlte:  get("codigoalte"),
	}
	var err error
	if req.Latitud, err = coordinate(get("latitud"), commaDecimal); err != nil {
		return req, fmt.Errorf("latitud: %w", err)
	}
	if req.Longitud, err = coordinate(get("longitud"), commaDecimal); err != nil {
		return req, fmt.Errorf("longitud: %w", err)
	}
	return req, nil
}

func coordinate(s string, commaDecimal bool) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	if commaDecimal {
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
