package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings for the moodlit client.
type Config struct {
	// APIBaseURL is the root of the backend REST service, e.g.
	// "https://api.example.com". Endpoint paths are appended verbatim.
	APIBaseURL string
	// MLBaseURL is the root of the emotion-prediction service.
	MLBaseURL string
	// MutationTimeout bounds state-changing calls (submit, edit, archive,
	// decision). Read-only list fetches are cancellable but not timed out.
	MutationTimeout time.Duration
	// ConfigDir holds the state database, logs and keyring fallback file.
	ConfigDir string
	// StatePath is the client state store; a .json extension selects the
	// JSON store, anything else SQLite.
	StatePath string
	Debug     bool
}

// Load builds a Config from defaults, an optional .env file and the
// environment. Flags parsed by the CLI layer may override the result.
func Load() *Config {
	// Missing .env is fine; the process environment still applies.
	_ = godotenv.Load()

	dir := getEnv("MOODLIT_CONFIG_DIR", defaultConfigDir())

	cfg := &Config{
		APIBaseURL:      getEnv("MOODLIT_API_URL", "http://localhost:8080"),
		MLBaseURL:       getEnv("MOODLIT_ML_URL", "http://localhost:5000"),
		MutationTimeout: time.Duration(getEnvInt("MOODLIT_MUTATION_TIMEOUT_SECONDS", 10)) * time.Second,
		ConfigDir:       dir,
		StatePath:       getEnv("MOODLIT_STATE_PATH", filepath.Join(dir, "state.db")),
		Debug:           getEnv("MOODLIT_DEBUG", "") != "",
	}
	return cfg
}

func defaultConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".moodlit"
	}
	return filepath.Join(base, "moodlit")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
