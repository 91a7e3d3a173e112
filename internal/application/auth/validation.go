package auth

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/panel-clientes/internal/application/dto"
)

// Mensajes de validación del formulario de registro.
const (
	MsgNombreRequerido   = "El nombre completo es requerido"
	MsgUsuarioRequerido  = "El usuario es requerido"
	MsgUsuarioCorto      = "El usuario debe tener al menos 3 caracteres"
	MsgEmailRequerido    = "El email es requerido"
	MsgEmailInvalido     = "Por favor ingresa un email válido"
	MsgPasswordRequerida = "La contraseña es requerida"
	MsgPasswordCorta     = "La contraseña debe tener al menos 6 caracteres"
	MsgPasswordsDistinta = "Las contraseñas no coinciden"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// registerMessages mensaje por campo y regla.
var registerMessages = map[string]map[string]string{
	"NombreCompleto":  {"notblank": MsgNombreRequerido},
	"Username":        {"notblank": MsgUsuarioRequerido, "min": MsgUsuarioCorto},
	"Email":           {"notblank": MsgEmailRequerido, "basicemail": MsgEmailInvalido},
	"Password":        {"notblank": MsgPasswordRequerida, "min": MsgPasswordCorta},
	"ConfirmPassword": {"eqfield": MsgPasswordsDistinta},
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("basicemail", func(fl validator.FieldLevel) bool {
		return emailRe.MatchString(fl.Field().String())
	})
	return v
}

// normalizeRegister recorta los campos de texto; las contraseñas se envían tal cual.
func normalizeRegister(in dto.RegisterRequest) dto.RegisterRequest {
	in.NombreCompleto = strings.TrimSpace(in.NombreCompleto)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	return in
}

// validateRegister devuelve una violación por campo, en el orden del formulario.
func validateRegister(v *validator.Validate, in dto.RegisterRequest) []string {
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if msg, ok := registerMessages[fe.StructField()][fe.Tag()]; ok {
			msgs = append(msgs, msg)
			continue
		}
		msgs = append(msgs, fe.Error())
	}
	return msgs
}
