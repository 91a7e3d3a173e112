package dto

// DashboardStats indicadores del panel de bienvenida, ya normalizados.
type DashboardStats struct {
	ClientesActivos     int    `json:"clientesActivos"`
	RutasActivas        int    `json:"rutasActivas"`
	TasaConversion      int    `json:"tasaConversion"`
	ReportesGenerados   int    `json:"reportesGenerados"`
	UltimaActualizacion string `json:"ultimaActualizacion"`
	Simulado            bool   `json:"simulado,omitempty"`
}

// DashboardResponse respuesta de GET /dashboard.
type DashboardResponse struct {
	User  *UserResponse  `json:"user"`
	Stats DashboardStats `json:"stats"`
}
