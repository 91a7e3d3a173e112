// Package auth mantiene la sesión del operador: token + usuario en memoria y en
// almacenamiento durable, con login, registro, logout y rehidratación al arrancar.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/jhoicas/panel-clientes/internal/application/dto"
	"github.com/jhoicas/panel-clientes/internal/domain"
	"github.com/jhoicas/panel-clientes/internal/domain/entity"
	"github.com/jhoicas/panel-clientes/internal/domain/repository"
	"github.com/jhoicas/panel-clientes/internal/infrastructure/apiclient"
	"github.com/jhoicas/panel-clientes/pkg/jwt"
)

// Mensajes de resultado de login/registro.
const (
	MsgUsuarioVacio         = "Por favor ingresa tu usuario"
	MsgPasswordVacia        = "Por favor ingresa tu contraseña"
	MsgCredenciales         = "Usuario o contraseña incorrectos"
	MsgErrorLogin           = "Error en el login"
	MsgErrorRegistro        = "Error en el registro"
	MsgRespuestaInvalida    = "Respuesta inválida del servidor"
	MsgDatosRegistroInvalid = "Los datos devueltos por el servidor no son válidos"
	MsgErrorConexion        = "Error de conexión con el servidor"
	MsgErrorGuardarSesion   = "No se pudo guardar la sesión"
	MsgLoginExitoso         = "Login exitoso"
	MsgRegistroExitoso      = "Registro exitoso"
	MsgRefreshFallido       = "No se pudo refrescar el token"
)

// Poster la parte del cliente HTTP que usa la sesión.
type Poster interface {
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
}

// Options opciones del store.
type Options struct {
	TokenRefresh bool // habilita RefreshToken
	Logger       zerolog.Logger
	Now          func() time.Time // reloj; tests
}

// Store dueño de la sesión actual. Seguro para uso concurrente.
type Store struct {
	api            Poster
	kv             repository.KeyValueStore
	log            zerolog.Logger
	validate       *validator.Validate
	refreshEnabled bool
	now            func() time.Time

	mu        sync.RWMutex
	state     entity.SessionState
	token     string
	user      *entity.User
	listeners []func()
}

// NewStore construye el store en estado Resolving; la sesión se resuelve con Rehydrate.
func NewStore(api Poster, kv repository.KeyValueStore, opts Options) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		api:            api,
		kv:             kv,
		log:            opts.Logger,
		validate:       newValidator(),
		refreshEnabled: opts.TokenRefresh,
		now:            now,
		state:          entity.SessionResolving,
	}
}

// OnLogout registra una función que se ejecuta tras cada logout (p. ej. vaciar la caché).
func (s *Store) OnLogout(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Rehydrate lee token y usuario del almacenamiento. Par completo y válido: Authenticated sin red.
// Par incompleto, usuario ilegible o token vencido: se borran ambas claves.
func (s *Store) Rehydrate(ctx context.Context) error {
	token, tokErr := s.kv.Get(ctx, repository.KeyAuthToken)
	userData, userErr := s.kv.Get(ctx, repository.KeyUserData)

	for _, err := range []error{tokErr, userErr} {
		if err != nil && !errors.Is(err, repository.ErrKeyNotFound) {
			s.setUnauthenticated()
			return fmt.Errorf("auth: leer sesión: %w", err)
		}
	}

	if tokErr != nil || userErr != nil || token == "" || userData == "" {
		if tokErr == nil || userErr == nil {
			s.log.Warn().Msg("auth: sesión incompleta en almacenamiento, se descarta")
		}
		s.purge(ctx)
		return nil
	}

	user, err := parseUser(json.RawMessage(userData))
	if err != nil {
		s.log.Warn().Err(err).Msg("auth: user_data corrupto, se descarta")
		s.purge(ctx)
		return nil
	}
	if jwt.IsExpired(token, s.now()) {
		s.log.Info().Msg("auth: token almacenado vencido")
		s.purge(ctx)
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.state = entity.SessionAuthenticated
	s.mu.Unlock()
	s.log.Info().Str("username", user.Username).Msg("auth: sesión rehidratada")
	return nil
}

// Login autentica contra el backend. Nunca devuelve error de Go: los fallos van en el resultado.
// El almacenamiento solo se escribe si el login tiene éxito.
func (s *Store) Login(ctx context.Context, username, password string) dto.AuthResult {
	if isBlank(username) {
		return dto.AuthResult{Error: MsgUsuarioVacio}
	}
	if isBlank(password) {
		return dto.AuthResult{Error: MsgPasswordVacia}
	}

	s.setState(entity.SessionAuthenticating)
	raw, err := s.api.Post(ctx, apiclient.PathLogin, dto.LoginRequest{Username: username, Password: password})
	if err != nil {
		s.setUnauthenticated()
		if domain.IsAuthError(err) {
			return dto.AuthResult{Error: MsgCredenciales}
		}
		s.log.Error().Err(err).Msg("auth: login fallido")
		return dto.AuthResult{Error: apiclient.ErrorMessage(err, MsgErrorConexion)}
	}

	if apiclient.IsExplicitFailure(raw) {
		s.setUnauthenticated()
		msg, ok := apiclient.LookupString(raw, "error")
		if !ok {
			msg = MsgErrorLogin
		}
		return dto.AuthResult{Error: msg}
	}

	token, okTok := apiclient.LookupString(raw, "data.token", "token")
	userRaw, okUser := apiclient.Lookup(raw, "data.usuario", "usuario", "user")
	if !okTok || !okUser {
		s.setUnauthenticated()
		s.log.Error().RawJSON("body", raw).Msg("auth: estructura de respuesta de login inesperada")
		return dto.AuthResult{Error: MsgRespuestaInvalida}
	}
	user, err := parseUser(userRaw)
	if err != nil {
		s.setUnauthenticated()
		return dto.AuthResult{Error: MsgRespuestaInvalida}
	}
	if user.Username == "" {
		user.Username = username
	}
	return s.establish(ctx, token, user, raw, MsgLoginExitoso)
}

// Register valida el perfil localmente y, si es válido, crea la cuenta y abre sesión.
func (s *Store) Register(ctx context.Context, in dto.RegisterRequest) dto.AuthResult {
	in = normalizeRegister(in)
	if msgs := validateRegister(s.validate, in); len(msgs) > 0 {
		return dto.AuthResult{Error: msgs[0]}
	}

	s.setState(entity.SessionAuthenticating)
	raw, err := s.api.Post(ctx, apiclient.PathRegister, dto.RegisterPayload{
		NombreCompleto: in.NombreCompleto,
		Username:       in.Username,
		Email:          in.Email,
		Password:       in.Password,
	})
	if err != nil {
		s.setUnauthenticated()
		s.log.Error().Err(err).Msg("auth: registro fallido")
		return dto.AuthResult{Error: apiclient.ErrorMessage(err, MsgErrorConexion)}
	}

	if apiclient.IsExplicitFailure(raw) {
		s.setUnauthenticated()
		msg, ok := apiclient.LookupString(raw, "error")
		if !ok {
			msg = MsgErrorRegistro
		}
		return dto.AuthResult{Error: msg}
	}

	token, okTok := apiclient.LookupString(raw, "data.token")
	userRaw, okUser := apiclient.Lookup(raw, "data.usuario")
	if !okTok || !okUser {
		s.setUnauthenticated()
		s.log.Error().RawJSON("body", raw).Msg("auth: estructura de respuesta de registro inesperada")
		return dto.AuthResult{Error: MsgDatosRegistroInvalid}
	}
	user, err := parseUser(userRaw)
	if err != nil {
		s.setUnauthenticated()
		return dto.AuthResult{Error: MsgDatosRegistroInvalid}
	}
	if user.Username == "" {
		user.Username = in.Username
	}
	if user.DisplayName == "" {
		user.DisplayName = in.NombreCompleto
	}
	if user.Email == "" {
		user.Email = in.Email
	}
	return s.establish(ctx, token, user, raw, MsgRegistroExitoso)
}

// establish persiste el par token+usuario y pasa a Authenticated.
func (s *Store) establish(ctx context.Context, token string, user *entity.User, raw json.RawMessage, defMsg string) dto.AuthResult {
	encoded, err := encodeUser(*user)
	if err != nil {
		s.setUnauthenticated()
		return dto.AuthResult{Error: MsgErrorGuardarSesion}
	}
	if err := s.kv.Set(ctx, repository.KeyUserData, encoded); err == nil {
		err = s.kv.Set(ctx, repository.KeyAuthToken, token)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("auth: guardar sesión")
		_ = s.kv.Remove(ctx, repository.KeyAuthToken, repository.KeyUserData)
		s.setUnauthenticated()
		return dto.AuthResult{Error: MsgErrorGuardarSesion}
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.state = entity.SessionAuthenticated
	s.mu.Unlock()

	msg, ok := apiclient.LookupString(raw, "message")
	if !ok {
		msg = defMsg
	}
	resp := dto.UserFromEntity(*user)
	s.log.Info().Str("username", user.Username).Msg("auth: sesión iniciada")
	return dto.AuthResult{Success: true, User: &resp, Token: token, Message: msg}
}

// Logout cierra la sesión. Siempre tiene éxito y es idempotente.
func (s *Store) Logout(ctx context.Context) {
	s.purge(ctx)
	s.mu.RLock()
	listeners := append([]func(){}, s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}

// RefreshToken pide un token nuevo al backend. Si falla, cierra la sesión.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	if !s.refreshEnabled {
		return "", domain.ErrFeatureDisabled
	}
	raw, err := s.api.Post(ctx, apiclient.PathRefresh, nil)
	if err != nil {
		s.Logout(ctx)
		return "", fmt.Errorf("auth: refrescar token: %w", err)
	}
	token, ok := apiclient.LookupString(raw, "token", "data.token")
	if !ok {
		s.Logout(ctx)
		return "", fmt.Errorf("auth: %s: %w", MsgRefreshFallido, domain.ErrInvalidResponse)
	}
	if err := s.kv.Set(ctx, repository.KeyAuthToken, token); err != nil {
		s.Logout(ctx)
		return "", fmt.Errorf("auth: guardar token: %w", err)
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return token, nil
}

// CheckExpiry cierra la sesión si el exp del token ya pasó. Devuelve true si cerró.
func (s *Store) CheckExpiry(ctx context.Context) bool {
	s.mu.RLock()
	token, state := s.token, s.state
	s.mu.RUnlock()
	if state != entity.SessionAuthenticated || !jwt.IsExpired(token, s.now()) {
		return false
	}
	s.log.Info().Msg("auth: token vencido, cerrando sesión")
	s.Logout(ctx)
	return true
}

// Token implementa apiclient.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// State estado actual de la máquina de sesión.
func (s *Store) State() entity.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsAuthenticated true solo con token y usuario presentes.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == entity.SessionAuthenticated && s.token != "" && s.user != nil
}

// Snapshot copia inmutable de la sesión.
func (s *Store) Snapshot() entity.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != entity.SessionAuthenticated || s.token == "" || s.user == nil {
		return entity.Session{}
	}
	return entity.Session{
		UserID:          s.user.ID,
		Username:        s.user.Username,
		DisplayName:     s.user.DisplayName,
		Email:           s.user.Email,
		Token:           s.token,
		IsAuthenticated: true,
	}
}

// CurrentUser usuario actual o nil.
func (s *Store) CurrentUser() *entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) purge(ctx context.Context) {
	s.setUnauthenticated()
	if err := s.kv.Remove(ctx, repository.KeyAuthToken, repository.KeyUserData); err != nil {
		s.log.Warn().Err(err).Msg("auth: limpiar almacenamiento")
	}
}

func (s *Store) setUnauthenticated() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.state = entity.SessionUnauthenticated
	s.mu.Unlock()
}

func (s *Store) setState(st entity.SessionState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func isBlank(v string) bool { return strings.TrimSpace(v) == "" }
