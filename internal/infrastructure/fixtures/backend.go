package fixtures

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/panel-clientes/internal/application/clientes"
	"github.com/jhoicas/panel-clientes/internal/application/dto"
	"github.com/jhoicas/panel-clientes/internal/domain/entity"
	"github.com/jhoicas/panel-clientes/internal/infrastructure/apiclient"
	"github.com/jhoicas/panel-clientes/internal/infrastructure/fixtures/simulated"
	"github.com/jhoicas/panel-clientes/pkg/jwt"
)

// PathStats endpoint de estadísticas del backend simulado (ver DASHBOARD_STATS_PATH).
const PathStats = "/api/dashboard/stats"

// Usuario de demostración que siembra el backend simulado.
const (
	DemoUsername = "admin"
	DemoPassword = "admin123"
)

// BackendOptions configuración del backend simulado.
type BackendOptions struct {
	JWTSecret   string
	Issuer      string
	TokenTTL    time.Duration // por defecto 60 min
	BcryptCost  int           // por defecto bcrypt.DefaultCost; tests usan bcrypt.MinCost
	SeedDemo    bool          // siembra DemoUsername y SampleCustomers
	WithStats   bool          // expone PathStats
	WithRefresh bool          // expone apiclient.PathRefresh
	Logger      zerolog.Logger
}

type account struct {
	user entity.User
	hash []byte
}

// Backend implementación en memoria del contrato del backend externo de usuarios y clientes.
type Backend struct {
	opts BackendOptions

	mu        sync.RWMutex
	accounts  map[string]account // por username
	customers map[int64]entity.Customer
	nextID    int64
}

// NewBackend construye el backend simulado.
func NewBackend(opts BackendOptions) (*Backend, error) {
	if opts.JWTSecret == "" {
		return nil, errors.New("fixtures: JWTSecret vacío")
	}
	if opts.Issuer == "" {
		opts.Issuer = "panel-mockapi"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	b := &Backend{
		opts:      opts,
		accounts:  make(map[string]account),
		customers: make(map[int64]entity.Customer),
		nextID:    1,
	}
	if opts.SeedDemo {
		if _, err := b.AddUser(entity.User{Username: DemoUsername, DisplayName: "Administrador", Email: "admin@example.com"}, DemoPassword); err != nil {
			return nil, err
		}
		for _, c := range SampleCustomers() {
			b.customers[c.ID] = c
			if c.ID >= b.nextID {
				b.nextID = c.ID + 1
			}
		}
	}
	return b, nil
}

// AddUser registra un usuario con su contraseña hasheada. Asigna un uuid si no trae ID.
func (b *Backend) AddUser(u entity.User, password string) (entity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.opts.BcryptCost)
	if err != nil {
		return entity.User{}, err
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.accounts[strings.ToLower(u.Username)]; exists {
		return entity.User{}, errUsernameTaken
	}
	b.accounts[strings.ToLower(u.Username)] = account{user: u, hash: hash}
	return u, nil
}

var errUsernameTaken = errors.New("El nombre de usuario ya está en uso")

// Customers copia ordenada por id de los clientes almacenados.
func (b *Backend) Customers() []entity.Customer {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]entity.Customer, 0, len(b.customers))
	for _, c := range b.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Token emite un JWT para username; útil para preparar sesiones en tests.
func (b *Backend) Token(u entity.User) (string, error) {
	return jwt.Generate(b.opts.JWTSecret, u.ID, u.Username, b.opts.Issuer, int(b.opts.TokenTTL/time.Minute))
}

// App monta las rutas del backend en una aplicación Fiber nueva.
func (b *Backend) App() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	b.Register(app)
	return app
}

// Register monta las rutas en app.
func (b *Backend) Register(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "message": "API de clientes funcionando"})
	})
	app.Post(apiclient.PathLogin, b.login)
	app.Post(apiclient.PathRegister, b.register)

	auth := requireBearer(b.opts.JWTSecret)
	if b.opts.WithRefresh {
		app.Post(apiclient.PathRefresh, auth, b.refresh)
	}
	if b.opts.WithStats {
		app.Get(PathStats, auth, b.stats)
	}
	g := app.Group(apiclient.PathClientes, auth)
	g.Get("/", b.listCustomers)
	g.Post("/", b.createCustomer)
	g.Get("/:id", b.getCustomer)
	g.Put("/:id", b.updateCustomer)
	g.Delete("/:id", b.deleteCustomer)
}

func (b *Backend) issue(c *fiber.Ctx, status int, u entity.User, msg string) error {
	tok, err := b.Token(u)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Error al generar el token")
	}
	out := dto.UserFromEntity(u)
	return ok(c, status, fiber.Map{"token": tok, "usuario": out}, msg)
}

func (b *Backend) login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cuerpo inválido")
	}
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return fail(c, fiber.StatusBadRequest, "Usuario y contraseña son requeridos")
	}
	b.mu.RLock()
	acc, found := b.accounts[strings.ToLower(in.Username)]
	b.mu.RUnlock()
	if !found || bcrypt.CompareHashAndPassword(acc.hash, []byte(in.Password)) != nil {
		return fail(c, fiber.StatusUnauthorized, "Credenciales inválidas")
	}
	b.opts.Logger.Debug().Str("username", acc.user.Username).Msg("mockapi: login")
	return b.issue(c, fiber.StatusOK, acc.user, "Login exitoso")
}

func (b *Backend) register(c *fiber.Ctx) error {
	var in dto.RegisterPayload
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cuerpo inválido")
	}
	if strings.TrimSpace(in.Username) == "" || in.Password == "" || strings.TrimSpace(in.Email) == "" {
		return fail(c, fiber.StatusBadRequest, "Todos los campos son requeridos")
	}
	u, err := b.AddUser(entity.User{Username: in.Username, DisplayName: in.NombreCompleto, Email: in.Email}, in.Password)
	if errors.Is(err, errUsernameTaken) {
		return fail(c, fiber.StatusConflict, err.Error())
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Error al registrar el usuario")
	}
	return b.issue(c, fiber.StatusCreated, u, "Usuario registrado exitosamente")
}

func (b *Backend) refresh(c *fiber.Ctx) error {
	username, _ := c.Locals(localUsername).(string)
	b.mu.RLock()
	acc, found := b.accounts[strings.ToLower(username)]
	b.mu.RUnlock()
	if !found {
		return fail(c, fiber.StatusUnauthorized, "Usuario no encontrado")
	}
	tok, err := b.Token(acc.user)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Error al generar el token")
	}
	return c.JSON(fiber.Map{"success": true, "token": tok})
}

func (b *Backend) stats(c *fiber.Ctx) error {
	activos := 0
	for _, cu := range b.Customers() {
		if cu.IsActive() {
			activos++
		}
	}
	return ok(c, fiber.StatusOK, fiber.Map{
		"clientesActivos":     activos,
		"rutasActivas":        simulated.BaseRutasActivas,
		"tasaConversion":      simulated.BaseTasaConversion,
		"reportesGenerados":   simulated.BaseReportesGenerados,
		"ultimaActualizacion": time.Now().UTC().Format(time.RFC3339),
	}, "")
}

func (b *Backend) listCustomers(c *fiber.Ctx) error {
	list := b.Customers()
	out := make([]dto.CustomerRecord, 0, len(list))
	for _, cu := range list {
		out = append(out, dto.RecordFromEntity(cu))
	}
	return ok(c, fiber.StatusOK, out, "")
}

func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}

func (b *Backend) getCustomer(c *fiber.Ctx) error {
	id, valid := parseID(c)
	if !valid {
		return fail(c, fiber.StatusBadRequest, "ID inválido")
	}
	b.mu.RLock()
	cu, found := b.customers[id]
	b.mu.RUnlock()
	if !found {
		return fail(c, fiber.StatusNotFound, "Cliente no encontrado")
	}
	return ok(c, fiber.StatusOK, dto.RecordFromEntity(cu), "")
}

// decodeCustomer lee el cuerpo y lo valida con las mismas reglas que el panel.
func decodeCustomer(c *fiber.Ctx) (entity.Customer, []string, error) {
	var in dto.CustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return entity.Customer{}, nil, err
	}
	if errs := clientes.ValidateCustomer(in); len(errs) > 0 {
		return entity.Customer{}, errs, nil
	}
	cu := in.ToEntity()
	if cu.Estado == "" {
		cu.Estado = entity.EstadoActivo
	}
	return cu, nil, nil
}

func invalidCustomer(c *fiber.Ctx, errs []string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false, "error": strings.Join(errs, ", "), "errors": errs,
	})
}

// codigoTaken requiere b.mu tomado.
func (b *Backend) codigoTaken(codigo string, except int64) bool {
	if codigo == "" {
		return false
	}
	for id, cu := range b.customers {
		if id != except && strings.EqualFold(cu.CodigoAlte, codigo) {
			return true
		}
	}
	return false
}

func (b *Backend) createCustomer(c *fiber.Ctx) error {
	cu, errs, err := decodeCustomer(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Cuerpo inválido")
	}
	if len(errs) > 0 {
		return invalidCustomer(c, errs)
	}
	b.mu.Lock()
	if b.codigoTaken(cu.CodigoAlte, 0) {
		b.mu.Unlock()
		return fail(c, fiber.StatusConflict, "El código alternativo ya existe")
	}
	cu.ID = b.nextID
	b.nextID++
	b.customers[cu.ID] = cu
	b.mu.Unlock()
	return ok(c, fiber.StatusCreated, dto.RecordFromEntity(cu), "Cliente creado exitosamente")
}

func (b *Backend) updateCustomer(c *fiber.Ctx) error {
	id, valid := parseID(c)
	if !valid {
		return fail(c, fiber.StatusBadRequest, "ID inválido")
	}
	cu, errs, err := decodeCustomer(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Cuerpo inválido")
	}
	if len(errs) > 0 {
		return invalidCustomer(c, errs)
	}
	b.mu.Lock()
	if _, found := b.customers[id]; !found {
		b.mu.Unlock()
		return fail(c, fiber.StatusNotFound, "Cliente no encontrado")
	}
	if b.codigoTaken(cu.CodigoAlte, id) {
		b.mu.Unlock()
		return fail(c, fiber.StatusConflict, "El código alternativo ya existe")
	}
	cu.ID = id
	b.customers[id] = cu
	b.mu.Unlock()
	return ok(c, fiber.StatusOK, dto.RecordFromEntity(cu), "Cliente actualizado exitosamente")
}

func (b *Backend) deleteCustomer(c *fiber.Ctx) error {
	id, valid := parseID(c)
	if !valid {
		return fail(c, fiber.StatusBadRequest, "ID inválido")
	}
	b.mu.Lock()
	_, found := b.customers[id]
	delete(b.customers, id)
	b.mu.Unlock()
	if !found {
		return fail(c, fiber.StatusNotFound, "Cliente no encontrado")
	}
	return ok(c, fiber.StatusOK, nil, "Cliente eliminado exitosamente")
}
