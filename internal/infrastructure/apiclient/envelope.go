package apiclient

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Unwrap devuelve data cuando el cuerpo es {success, data, message}; si no, el cuerpo tal cual.
func Unwrap(raw json.RawMessage) json.RawMessage {
	if !gjson.ValidBytes(raw) {
		return raw
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return raw
	}
	data := root.Get("data")
	if data.Exists() && data.Type != gjson.Null {
		return json.RawMessage(data.Raw)
	}
	return raw
}

// Lookup devuelve el primer path gjson presente y no nulo.
func Lookup(raw json.RawMessage, paths ...string) (json.RawMessage, bool) {
	if !gjson.ValidBytes(raw) {
		return nil, false
	}
	for _, p := range paths {
		r := gjson.GetBytes(raw, p)
		if r.Exists() && r.Type != gjson.Null {
			return json.RawMessage(r.Raw), true
		}
	}
	return nil, false
}

// LookupString como Lookup pero exige un string no vacío.
func LookupString(raw json.RawMessage, paths ...string) (string, bool) {
	if !gjson.ValidBytes(raw) {
		return "", false
	}
	for _, p := range paths {
		r := gjson.GetBytes(raw, p)
		if r.Type == gjson.String && r.Str != "" {
			return r.Str, true
		}
	}
	return "", false
}

// IsExplicitFailure indica si el cuerpo trae success:false.
func IsExplicitFailure(raw json.RawMessage) bool {
	r := gjson.GetBytes(raw, "success")
	return r.Exists() && r.Type == gjson.False
}
