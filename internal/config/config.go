package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	CatalogDBPath         string
	CatalogMigrationsPath string

	DB                   DBConfig
	OrdersMigrationsPath string

	MongoURI    string
	MongoDBName string

	RedisAddr     string
	RedisPassword string

	KafkaBrokers []string
	OrdersTopic  string

	StoreName string

	JWTSecret string
	JWTIssuer string

	AIEndpoint string
	AIAPIKey   string
	AITimeout  time.Duration

	Store StoreSettings
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

// StoreSettings are the tunables an operator usually keeps in the YAML file.
type StoreSettings struct {
	Checkout          CheckoutDefaults `yaml:"checkout"`
	LowStockThreshold int              `yaml:"low_stock_threshold"`
	SuggestDebounce   time.Duration    `yaml:"suggest_debounce"`
	RateLimit         RateLimit        `yaml:"rate_limit"`
}

type CheckoutDefaults struct {
	ShippingChargeInsideZone  float64 `yaml:"shipping_charge_inside_zone"`
	ShippingChargeOutsideZone float64 `yaml:"shipping_charge_outside_zone"`
	TaxAmount                 float64 `yaml:"tax_amount"`
}

type RateLimit struct {
	MaxRequests int           `yaml:"max_requests"`
	Window      time.Duration `yaml:"window"`
}

func defaultStoreSettings() StoreSettings {
	return StoreSettings{
		Checkout: CheckoutDefaults{
			ShippingChargeInsideZone:  60,
			ShippingChargeOutsideZone: 120,
			TaxAmount:                 0,
		},
		LowStockThreshold: 5,
		SuggestDebounce:   800 * time.Millisecond,
		RateLimit: RateLimit{
			MaxRequests: 120,
			Window:      time.Minute,
		},
	}
}

// Load reads .env (if present), the optional YAML file named by CONFIG_FILE,
// then environment variables. Environment wins over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	settings := defaultStoreSettings()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fileSettings, err := LoadStoreSettings(path)
		if err != nil {
			return nil, err
		}
		settings = *fileSettings
	}

	settings.Checkout.ShippingChargeInsideZone = getEnvAsFloat("SHIPPING_INSIDE_ZONE", settings.Checkout.ShippingChargeInsideZone)
	settings.Checkout.ShippingChargeOutsideZone = getEnvAsFloat("SHIPPING_OUTSIDE_ZONE", settings.Checkout.ShippingChargeOutsideZone)
	settings.Checkout.TaxAmount = getEnvAsFloat("TAX_AMOUNT", settings.Checkout.TaxAmount)
	settings.LowStockThreshold = getEnvAsInt("LOW_STOCK_THRESHOLD", settings.LowStockThreshold)

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		CatalogDBPath:         getEnv("CATALOG_DB_PATH", "./catalog.db"),
		CatalogMigrationsPath: getEnv("CATALOG_MIGRATIONS_PATH", "internal/catalog/repository/migrations"),

		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "cartify"),
		},
		OrdersMigrationsPath: getEnv("ORDERS_MIGRATIONS_PATH", "internal/orders/repository/migrations"),

		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "cartify"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		OrdersTopic:  getEnv("ORDERS_TOPIC", "order-events"),

		StoreName: getEnv("STORE_NAME", "Cartify"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),
		JWTIssuer: getEnv("JWT_ISSUER", ""),

		AIEndpoint: getEnv("AI_ENDPOINT", "http://localhost:9000"),
		AIAPIKey:   getEnv("AI_API_KEY", ""),
		AITimeout:  getEnvAsDuration("AI_TIMEOUT", 15*time.Second),

		Store: settings,
	}, nil
}

// LoadStoreSettings parses a YAML settings file. Missing keys keep their defaults.
func LoadStoreSettings(path string) (*StoreSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return ParseStoreSettings(data)
}

func ParseStoreSettings(data []byte) (*StoreSettings, error) {
	settings := defaultStoreSettings()
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if settings.Checkout.ShippingChargeInsideZone < 0 ||
		settings.Checkout.ShippingChargeOutsideZone < 0 ||
		settings.Checkout.TaxAmount < 0 {
		return nil, fmt.Errorf("checkout charges must not be negative")
	}
	return &settings, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
