// Package rut valida y formatea el RUT chileno (identificador nacional del cliente).
//
// El dígito verificador se calcula con módulo 11: se recorren los dígitos del cuerpo
// de derecha a izquierda multiplicando por la serie 2..7 (cíclica), se obtiene
// 11 - (suma % 11) y se mapea 11 → '0', 10 → 'k', resto → el dígito.
package rut

import (
	"fmt"
	"regexp"
	"strings"
)

var cleanRe = regexp.MustCompile(`^\d{7,8}[\dkK]$`)

// Strip elimina puntos y guiones: "12.345.678-5" → "123456785".
func Strip(rut string) string {
	return strings.NewReplacer(".", "", "-", "").Replace(rut)
}

// CheckDigit calcula el dígito verificador para el cuerpo numérico (sin DV).
func CheckDigit(body string) (byte, error) {
	if body == "" {
		return 0, fmt.Errorf("rut: cuerpo vacío")
	}
	sum := 0
	multiplier := 2
	for i := len(body) - 1; i >= 0; i-- {
		c := body[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("rut: carácter no numérico %q en el cuerpo", c)
		}
		sum += int(c-'0') * multiplier
		if multiplier == 7 {
			multiplier = 2
		} else {
			multiplier++
		}
	}
	switch v := 11 - sum%11; v {
	case 11:
		return '0', nil
	case 10:
		return 'k', nil
	default:
		return byte('0' + v), nil
	}
}

// Validate indica si el RUT (con o sin puntos/guion) tiene un dígito verificador correcto.
// Acepta 'k' o 'K'.
func Validate(rut string) bool {
	clean := Strip(rut)
	if !cleanRe.MatchString(clean) {
		return false
	}
	body, dv := clean[:len(clean)-1], strings.ToLower(clean[len(clean)-1:])
	expected, err := CheckDigit(body)
	if err != nil {
		return false
	}
	return dv[0] == expected
}

// Format agrega puntos cada 3 dígitos y el guion antes del DV: "123456785" → "12.345.678-5".
// Si la entrada tiene menos de 2 caracteres se devuelve limpia.
func Format(rut string) string {
	clean := Strip(rut)
	if len(clean) < 2 {
		return clean
	}
	body, dv := clean[:len(clean)-1], clean[len(clean)-1:]

	var b strings.Builder
	for i, r := range body {
		if i > 0 && (len(body)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte('-')
	b.WriteString(dv)
	return b.String()
}
