package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings"
	"time"

	"github.com/joho/godotenv" // For loading .env files
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the application configuration
type Config struct {
	AppPort       string        // Application port
	DBDriver      string        // mysql, postgres or sqlite
	DBUser        string        // Database user
	DBPassword    string        // Database password
	DBHost        string        // Database host
	DBPort        string        // Database port
	DBName        string        // Database name
	DBPath        string        // SQLite file or URI
	JWTSecret     string        // JWT secret key
	RedisAddr     string        // Redis server address, empty disables caching
	RedisPass     string        // Redis password
	RedisDB       int           // Redis database number
	IsProd        bool          // Is production environment
	LogLevel      string        // logrus level name
	AuditInterval time.Duration // Period of the reconciliation job, 0 disables it
	AdminPhone    string        // Phone number of the bootstrap staff user
	AdminPassword string        // Password of the bootstrap staff user
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	auditInterval, _ := time.ParseDuration(os.Getenv("AUDIT_INTERVAL"))
	return &Config{
		AppPort:       getEnv("APP_PORT", "8080"),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        os.Getenv("DB_PORT"),
		DBName:        os.Getenv("DB_NAME"),
		DBPath:        getEnv("DB_PATH", "ledger.db"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPass:     os.Getenv("REDIS_PASS"),
		RedisDB:       redisDB,
		IsProd:        os.Getenv("IS_PROD") == "true",
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		AuditInterval: auditInterval,
		AdminPhone:    os.Getenv("SUPER_ADMIN_PHONE_NUMBER"),
		AdminPassword: os.Getenv("SUPER_ADMIN_PASSWORD"),
	}
}

// DSN builds the Data Source Name for the configured driver
func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverPostgres:
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return "host=" + c.DBHost + " port=" + port + " user=" + c.DBUser + " password=" + c.DBPassword + " dbname=" + c.DBName + " sslmode=disable"
	case DriverSQLite:
		// Foreign keys are off by default in SQLite
		if strings.Contains(c.DBPath, "?") {
			return c.DBPath + "&_foreign_keys=on"
		}
		return c.DBPath + "?_foreign_keys=on"
	default:
		port := c.DBPort
		if port == "" {
			port = "3306"
		}
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true"
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
