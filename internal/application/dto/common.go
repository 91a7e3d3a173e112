package dto

// Result resultado etiquetado de las operaciones del servicio de clientes.
// Los fallos esperados nunca se devuelven como error de Go: Success=false y Error con el mensaje.
type Result[T any] struct {
	Success bool     `json:"success"`
	Data    T        `json:"data"`
	Error   string   `json:"error,omitempty"`
	Errors  []string `json:"errors,omitempty"` // cada regla violada cuando falla la validación
	Status  int      `json:"-"`                // estado HTTP del backend cuando lo hubo
	Err     error    `json:"-"`                // error tipado original, para clasificar el fallo
}

// Ok construye un resultado exitoso.
func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail construye un resultado fallido con el valor cero de T.
func Fail[T any](msg string) Result[T] {
	return Result[T]{Success: false, Error: msg}
}

// FailErr resultado fallido que conserva el error original.
func FailErr[T any](msg string, status int, err error) Result[T] {
	return Result[T]{Success: false, Error: msg, Status: status, Err: err}
}

// PageRequest paginación, orden y filtros del listado de clientes.
type PageRequest struct {
	Page   int    `query:"page"`
	Size   int    `query:"size"`
	Sort   string `query:"sort"`
	Order  string `query:"order"` // asc | desc
	Query  string `query:"q"`
	Estado string `query:"estado"`
}

// DefaultPage aplica valores por defecto si Page/Size son cero o inválidos.
func (p *PageRequest) DefaultPage() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Size <= 0 {
		p.Size = 10
	}
	if p.Size > 100 {
		p.Size = 100
	}
	if p.Order != "desc" {
		p.Order = "asc"
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Page  int `json:"page"`
	Size  int `json:"size"`
	Total int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Errors   []string `json:"errors,omitempty"`
	Redirect string   `json:"redirect,omitempty"`
}

// HealthResponse estado de conexión con el backend externo.
type HealthResponse struct {
	Status      string `json:"status"` // connected | error
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
}
