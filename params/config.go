package params

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Engine struct {
	// QueueSize bounds how many submitted commands may wait for the engine
	// goroutine before Submit blocks.
	QueueSize int
	// StatsInterval is the period of the engine_progress log line. 0 disables it.
	StatsInterval time.Duration
	// Verify recomputes the price index after every command. Slow; meant for
	// debugging replays.
	Verify bool
}

type Log struct {
	File    string // empty logs to stderr only
	Verbose bool
}

type Config struct {
	Engine Engine
	Log    Log
}

func Default() Config {
	return Config{
		Engine: Engine{
			QueueSize:     1024,
			StatsInterval: 10 * time.Second,
		},
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if n := os.Getenv("ENGINE_QUEUE_SIZE"); n != "" {
		if v, err := strconv.Atoi(n); err == nil && v > 0 {
			cfg.Engine.QueueSize = v
		}
	}
	if ms := os.Getenv("ENGINE_STATS_INTERVAL_MS"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v >= 0 {
			cfg.Engine.StatsInterval = time.Duration(v) * time.Millisecond
		}
	}
	cfg.Engine.Verify = getBool("ENGINE_VERIFY", cfg.Engine.Verify)

	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
	cfg.Log.Verbose = getBool("VERBOSE", cfg.Log.Verbose)

	return cfg
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true"
	}
	return defaultValue
}
