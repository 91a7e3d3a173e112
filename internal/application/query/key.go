package query

import (
	"fmt"
	"strings"
)

// Key clave jerárquica de caché, p. ej. {"clientes"} o {"cliente", "7"}.
// Una familia es cualquier prefijo de segmentos.
type Key []string

// NewKey construye una clave a partir de segmentos de cualquier tipo.
func NewKey(parts ...any) Key {
	k := make(Key, len(parts))
	for i, p := range parts {
		k[i] = fmt.Sprint(p)
	}
	return k
}

func (k Key) String() string { return strings.Join(k, ":") }

// Family primer segmento; etiqueta de métricas.
func (k Key) Family() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}

// HasPrefix indica si p es prefijo (por segmentos) de k.
func (k Key) HasPrefix(p Key) bool {
	if len(p) > len(k) {
		return false
	}
	for i := range p {
		if k[i] != p[i] {
			return false
		}
	}
	return true
}
