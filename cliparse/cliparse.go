package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            int
	DatabaseURL     string
	DatabaseType    string
	ControllerSalt  string
	ParticipantSalt string
	BaseURL         string
	RedisURL        string
	Scoring         string
	LogLevel        string
	LogFile         string
	SeedFile        string
}

// ParseFlags loads .env, validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	// .env never overrides variables that are already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	fset := flag.NewFlagSet("livepoll", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fset.IntVar(&cfg.Port, "p", 0, "Server port")
	fset.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fset.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite, postgres or memory)")
	fset.StringVar(&cfg.BaseURL, "base-url", "", "Public base URL used in join links")
	fset.StringVar(&cfg.RedisURL, "redis-url", "", "Redis URL for fanning out notifications across instances")

	// Secrets (prefer env variables, but allow CLI for dev)
	fset.StringVar(&cfg.ControllerSalt, "controller-salt", "", "Controller key salt (prefer env)")
	fset.StringVar(&cfg.ParticipantSalt, "participant-salt", "", "Participant token salt (prefer env)")

	fset.StringVar(&cfg.Scoring, "scoring", "", "Quiz scoring (correct or speed)")
	fset.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error, disabled)")
	fset.StringVar(&cfg.LogFile, "log-file", "", "Also write JSON logs to this rotating file")
	fset.StringVar(&cfg.SeedFile, "seed", "", "JSON file of polls to import at startup")

	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	switch cfg.DatabaseType {
	case "sqlite", "postgres", "memory":
	default:
		return Config{}, fmt.Errorf("unknown database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" && cfg.DatabaseType != "memory" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	envDefault(&cfg.BaseURL, "PUBLIC_BASE_URL", "http://localhost:"+strconv.Itoa(cfg.Port))
	envDefault(&cfg.RedisURL, "REDIS_URL", "")
	envDefault(&cfg.LogLevel, "LOG_LEVEL", "info")
	envDefault(&cfg.LogFile, "LOG_FILE", "")

	envDefault(&cfg.Scoring, "QUIZ_SCORING", "correct")
	if cfg.Scoring != "correct" && cfg.Scoring != "speed" {
		return Config{}, fmt.Errorf("unknown scoring %q (use correct or speed)", cfg.Scoring)
	}

	// Secrets - MUST be provided
	if cfg.ControllerSalt == "" {
		cfg.ControllerSalt = os.Getenv("CONTROLLER_KEY_SALT")
	}
	if cfg.ControllerSalt == "" {
		return Config{}, errors.New("CONTROLLER_KEY_SALT required")
	}

	if cfg.ParticipantSalt == "" {
		cfg.ParticipantSalt = os.Getenv("PARTICIPANT_TOKEN_SALT")
	}
	if cfg.ParticipantSalt == "" {
		return Config{}, errors.New("PARTICIPANT_TOKEN_SALT required")
	}

	return cfg, nil
}

func envDefault(v *string, key, def string) {
	if *v != "" {
		return
	}
	if *v = os.Getenv(key); *v == "" {
		*v = def
	}
}
