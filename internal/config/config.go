package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	AMQP     AMQPConfig
	Trust    TrustConfig
	Gap      GapConfig
	Seed     SeedConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	ConnectTimeout time.Duration
	PoolMaxConns   int32
	PoolMinConns   int32
}

// Enabled reports whether a journal database was configured at all. The
// graph runs fine without one; events are then kept in memory only.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

type AMQPConfig struct {
	URL   string
	Queue string
}

func (c AMQPConfig) Enabled() bool {
	return c.URL != ""
}

// TrustConfig overrides pieces of the scoring policy. Zero values mean
// "use the built-in default"; the app layer folds these into the policy.
type TrustConfig struct {
	ClaimDelta         float64
	ProvisionalCeiling float64
	PassDelta          float64
	FailPenalty        float64
	DecayAfterDays     int
	DecayIntervalDays  int
	DecayStep          float64
	SweepInterval      time.Duration
}

type GapConfig struct {
	Workers          int
	ComplexityWeight float64
}

type SeedConfig struct {
	DemoJobs bool
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}
	optOr := func(key, def string) string {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		return def
	}
	optInt := func(key string, def int) int {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return def
		}
		return v
	}
	optFloat := func(key string, def float64) float64 {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			return def
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return def
		}
		return v
	}
	optDuration := func(key string, def time.Duration) time.Duration {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			return def
		}
		v, err := time.ParseDuration(raw)
		if err != nil {
			return def
		}
		return v
	}
	optBool := func(key string) bool {
		switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
		case "1", "true", "yes":
			return true
		}
		return false
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
	}

	cfg.Database = DatabaseConfig{
		Host:           opt("DB_HOST"),
		Port:           optOr("DB_PORT", "5432"),
		User:           opt("DB_USER"),
		Password:       opt("DB_PASSWORD"),
		Name:           opt("DB_NAME"),
		SSLMode:        optOr("DB_SSL_MODE", "disable"),
		ConnectTimeout: optDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:   int32(optInt("DB_POOL_MAX_CONNS", 8)),
		PoolMinConns:   int32(optInt("DB_POOL_MIN_CONNS", 0)),
	}

	cfg.AMQP = AMQPConfig{
		URL:   opt("AMQP_URL"),
		Queue: optOr("AMQP_QUEUE", "verification.outcomes"),
	}

	cfg.Trust = TrustConfig{
		ClaimDelta:         optFloat("TRUST_CLAIM_DELTA", 0),
		ProvisionalCeiling: optFloat("TRUST_PROVISIONAL_CEILING", 0),
		PassDelta:          optFloat("TRUST_PASS_DELTA", 0),
		FailPenalty:        optFloat("TRUST_FAIL_PENALTY", 0),
		DecayAfterDays:     optInt("TRUST_DECAY_AFTER_DAYS", 0),
		DecayIntervalDays:  optInt("TRUST_DECAY_INTERVAL_DAYS", 0),
		DecayStep:          optFloat("TRUST_DECAY_STEP", 0),
		SweepInterval:      optDuration("TRUST_SWEEP_INTERVAL", 0),
	}

	cfg.Gap = GapConfig{
		Workers:          optInt("GAP_WORKERS", 0),
		ComplexityWeight: optFloat("GAP_COMPLEXITY_WEIGHT", 0),
	}

	cfg.Seed = SeedConfig{
		DemoJobs: optBool("SEED_DEMO_JOBS"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}
