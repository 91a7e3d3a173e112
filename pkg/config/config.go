package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración del panel (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	API       APIConfig
	Storage   StorageConfig
	Query     QueryConfig
	Dashboard DashboardConfig
	Features  FeatureFlags
	Scheduler SchedulerConfig
	MockAPI   MockAPIConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// HTTPConfig configuración del servidor HTTP del panel.
type HTTPConfig struct {
	Host      string
	Port      int
	PublicURL string // URL pública del panel (QR del reporte); vacío = sin QR
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// APIConfig backend externo de clientes/usuarios.
type APIConfig struct {
	BaseURL         string
	Timeout         time.Duration
	RateLimitPerSec float64 // 0 = sin límite
}

// StorageConfig almacenamiento durable de la sesión (token + usuario).
type StorageConfig struct {
	Driver        string // memory, sqlite, redis, postgres
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	DatabaseURL   string
}

// QueryConfig ventanas de caché y política de reintentos de lecturas.
type QueryConfig struct {
	StaleTime  time.Duration
	ExpireTime time.Duration
	Retries    int
	RetryBase  time.Duration
	RetryMax   time.Duration
}

// DashboardConfig endpoint de estadísticas. Vacío = calcular desde la lista de clientes.
type DashboardConfig struct {
	StatsPath string
}

// FeatureFlags capacidades opcionales.
type FeatureFlags struct {
	TokenRefresh  bool // POST /api/auth/refresh; el backend puede no tenerlo
	SimulatedData bool // datos de ejemplo del proveedor de fixtures
}

// SchedulerConfig tareas periódicas (expiración de token, GC de caché).
type SchedulerConfig struct {
	Enabled bool
	Spec    string // expresión cron
}

// MockAPIConfig backend simulado para desarrollo local (cmd/mockapi).
type MockAPIConfig struct {
	Port      int
	JWTSecret string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, API_BASE_URL, STORAGE_DRIVER, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return FromViper(v)
}

// FromViper construye la configuración desde una instancia de Viper ya poblada (útil en tests).
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "panel-clientes"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host:      getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:      getInt(v, "HTTP_PORT", 8080),
			PublicURL: strings.TrimRight(getString(v, "HTTP_PUBLIC_URL", ""), "/"),
		},
		API: APIConfig{
			BaseURL:         strings.TrimRight(getString(v, "API_BASE_URL", "https://managerial-teresa-pablo-sarasua-df7cefa1.koyeb.app"), "/"),
			Timeout:         time.Duration(getInt(v, "API_TIMEOUT_SECONDS", 15)) * time.Second,
			RateLimitPerSec: getFloat(v, "API_RATE_LIMIT_PER_SEC", 0),
		},
		Storage: StorageConfig{
			Driver:        getString(v, "STORAGE_DRIVER", "sqlite"),
			SQLitePath:    getString(v, "STORAGE_SQLITE_PATH", "panel.db"),
			RedisAddr:     getString(v, "REDIS_ADDR", "localhost:6379"),
			RedisPassword: getString(v, "REDIS_PASSWORD", ""),
			RedisDB:       getInt(v, "REDIS_DB", 0),
			RedisPrefix:   getString(v, "REDIS_PREFIX", "panel:"),
			DatabaseURL:   getString(v, "DATABASE_URL", ""),
		},
		Query: QueryConfig{
			StaleTime:  time.Duration(getInt(v, "QUERY_STALE_SECONDS", 300)) * time.Second,
			ExpireTime: time.Duration(getInt(v, "QUERY_EXPIRE_SECONDS", 600)) * time.Second,
			Retries:    getInt(v, "QUERY_RETRIES", 3),
			RetryBase:  time.Duration(getInt(v, "QUERY_RETRY_BASE_MS", 1000)) * time.Millisecond,
			RetryMax:   time.Duration(getInt(v, "QUERY_RETRY_MAX_MS", 30000)) * time.Millisecond,
		},
		Dashboard: DashboardConfig{
			StatsPath: getString(v, "DASHBOARD_STATS_PATH", ""),
		},
		Features: FeatureFlags{
			TokenRefresh:  getBool(v, "FEATURE_TOKEN_REFRESH", false),
			SimulatedData: getBool(v, "FEATURE_SIMULATED_DATA", false),
		},
		Scheduler: SchedulerConfig{
			Enabled: getBool(v, "SCHEDULER_ENABLED", true),
			Spec:    getString(v, "SCHEDULER_SPEC", "@every 1m"),
		},
		MockAPI: MockAPIConfig{
			Port:      getInt(v, "MOCKAPI_PORT", 8090),
			JWTSecret: getString(v, "MOCKAPI_JWT_SECRET", "mockapi-dev-secret"),
		},
	}

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("config: API_BASE_URL vacío")
	}
	if cfg.Query.ExpireTime < cfg.Query.StaleTime {
		return nil, fmt.Errorf("config: QUERY_EXPIRE_SECONDS (%s) menor que QUERY_STALE_SECONDS (%s)",
			cfg.Query.ExpireTime, cfg.Query.StaleTime)
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if v.IsSet(key) {
		f, err := strconv.ParseFloat(v.GetString(key), 64)
		if err != nil {
			return def
		}
		return f
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		b, err := strconv.ParseBool(v.GetString(key))
		if err != nil {
			return def
		}
		return b
	}
	return def
}
