package auth

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/jhoicas/panel-clientes/internal/application/dto"
	"github.com/jhoicas/panel-clientes/internal/domain"
	"github.com/jhoicas/panel-clientes/internal/domain/entity"
)

// parseUser interpreta el objeto usuario del backend. El id puede llegar como número o string.
func parseUser(raw json.RawMessage) (*entity.User, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("usuario: %w", domain.ErrInvalidResponse)
	}
	obj := gjson.ParseBytes(raw)
	if !obj.IsObject() {
		return nil, fmt.Errorf("usuario no es un objeto: %w", domain.ErrInvalidResponse)
	}
	return &entity.User{
		ID:          obj.Get("id").String(),
		Username:    obj.Get("username").String(),
		DisplayName: obj.Get("nombre_completo").String(),
		Email:       obj.Get("email").String(),
	}, nil
}

func encodeUser(u entity.User) (string, error) {
	b, err := json.Marshal(dto.UserFromEntity(u))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
