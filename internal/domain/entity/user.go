package entity

// User usuario autenticado del panel, tal como lo devuelve el backend.
type User struct {
	ID          string
	Username    string
	DisplayName string // nombre_completo
	Email       string
}
