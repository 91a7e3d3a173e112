package entity

// SessionState estado de la máquina de sesión.
type SessionState int

const (
	// SessionResolving la rehidratación aún no se ejecutó.
	SessionResolving SessionState = iota
	SessionUnauthenticated
	SessionAuthenticating
	SessionAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case SessionResolving:
		return "resolving"
	case SessionUnauthenticated:
		return "unauthenticated"
	case SessionAuthenticating:
		return "authenticating"
	case SessionAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session vista inmutable de la sesión actual.
// IsAuthenticated es true solo si Token y el usuario están presentes.
type Session struct {
	UserID          string
	Username        string
	DisplayName     string
	Email           string
	Token           string
	IsAuthenticated bool
}
