package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables

	"github.com/joho/godotenv" // godotenv loads a local .env file when present
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets.
type Config struct {
	Env         string // application environment (e.g. "dev", "prod")
	Port        string // HTTP port to listen on
	DBDriver    string // database driver: "sqlite" or "mysql"
	DBUser      string // database username (mysql only)
	DBPass      string // database password (optional)
	DBHost      string // database host address (mysql only)
	DBPort      string // database port number (mysql only)
	DBName      string // database name (mysql only)
	GeminiKey   string // API key for the Gemini language model
	GeminiModel string // Gemini model identifier
	RabbitURL   string // AMQP broker URL (optional; empty disables events)
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file in the working directory is loaded first so local
// development does not need exported variables.  Required variables are
// enforced by must() and missing values cause the program to exit with a
// fatal log message.
func Load() Config {
	_ = godotenv.Load() // absent .env is fine; real env always wins

	cfg := Config{
		Env:         getenv("APP_ENV", "dev"),                   // environment (dev/prod)
		Port:        getenv("APP_PORT", "8080"),                 // port to bind the HTTP server
		DBDriver:    getenv("DB_DRIVER", "sqlite"),              // storage backend
		GeminiKey:   must("GEMINI_API_KEY"),                     // key for the NLU calls
		GeminiModel: getenv("GEMINI_MODEL", "gemini-2.5-flash"), // model identifier
		RabbitURL:   os.Getenv("RABBITMQ_URL"),                  // broker URL (empty allowed)
	}
	if cfg.DBDriver == "mysql" {
		cfg.DBUser = must("DB_USER")      // database user
		cfg.DBPass = os.Getenv("DB_PASS") // database password (empty allowed)
		cfg.DBHost = must("DB_HOST")      // database host
		cfg.DBPort = must("DB_PORT")      // database port
		cfg.DBName = must("DB_NAME")      // database name
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// getenv retrieves an environment variable with a fallback default.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
