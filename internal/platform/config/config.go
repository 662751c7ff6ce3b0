package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Server captures process level configuration.
type Server struct {
	Addr          string `yaml:"addr"`
	RegulatedMode bool   `yaml:"regulated_mode"`

	Session       SessionConfig       `yaml:"session"`
	Workflow      WorkflowConfig      `yaml:"workflow"`
	Collaborators CollaboratorsConfig `yaml:"collaborators"`
	Redis         RedisConfig         `yaml:"redis"`
	Postgres      PostgresConfig      `yaml:"postgres"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Log           LogConfig           `yaml:"log"`
}

type SessionConfig struct {
	SigningKey    string        `yaml:"signing_key"`
	Issuer        string        `yaml:"issuer"`
	Audience      string        `yaml:"audience"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	// StartsPerMinute caps POST /sessions per client IP. Zero disables it.
	StartsPerMinute int `yaml:"starts_per_minute"`
}

// WorkflowConfig tunes the per-session timers.
type WorkflowConfig struct {
	PollInterval  time.Duration `yaml:"poll_interval"`
	DebounceDelay time.Duration `yaml:"debounce_delay"`
}

// CollaboratorsConfig points at the identity and verification services.
// Empty URLs select the in-process development collaborators.
type CollaboratorsConfig struct {
	IdentityURL     string        `yaml:"identity_url"`
	VerificationURL string        `yaml:"verification_url"`
	APIKey          string        `yaml:"api_key"`
	Timeout         time.Duration `yaml:"timeout"`
	RatePerSecond   float64       `yaml:"rate_per_second"`
	Burst           int           `yaml:"burst"`
	LocalLatency    time.Duration `yaml:"local_latency"`
}

// RedisConfig holds draft store connection settings. An empty URL keeps
// drafts in memory.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	DraftTTL     time.Duration `yaml:"draft_ttl"`
}

// PostgresConfig holds the submission archive and audit outbox DSN. Empty
// keeps both in memory.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"max_conns"`
}

// KafkaConfig enables submission events when Brokers is set.
type KafkaConfig struct {
	Brokers     []string `yaml:"brokers"`
	ClientID    string   `yaml:"client_id"`
	Topic       string   `yaml:"topic"`
	AuditGroup  string   `yaml:"audit_group"`
	Partitions  int32    `yaml:"partitions"`
	Replication int16    `yaml:"replication"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns the development configuration.
func Defaults() Server {
	return Server{
		Addr: ":8080",
		Session: SessionConfig{
			// Development only; production sets CASL_SESSION_SIGNING_KEY.
			SigningKey:      "dev-secret-key-change-in-production",
			Issuer:          "caslkey",
			Audience:        "caslkey-guests",
			TokenTTL:        2 * time.Hour,
			IdleTimeout:     30 * time.Minute,
			SweepInterval:   time.Minute,
			StartsPerMinute: 30,
		},
		Workflow: WorkflowConfig{
			PollInterval:  3 * time.Second,
			DebounceDelay: 300 * time.Millisecond,
		},
		Collaborators: CollaboratorsConfig{
			Timeout:       5 * time.Second,
			RatePerSecond: 20,
			Burst:         5,
			LocalLatency:  150 * time.Millisecond,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			DraftTTL:     7 * 24 * time.Hour,
		},
		Postgres: PostgresConfig{MaxConns: 10},
		Kafka: KafkaConfig{
			ClientID:    "caslkey",
			Topic:       "caslkey.submissions",
			AuditGroup:  "caslkey-audit",
			Partitions:  3,
			Replication: 1,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// FromEnv builds a Server config from defaults and environment variables so
// main stays lean.
func FromEnv() Server {
	cfg := Defaults()
	applyEnv(&cfg)
	return cfg
}

// Load reads the YAML file named by CASL_CONFIG_FILE, if any, over the
// defaults. Environment variables win over the file.
func Load() (Server, error) {
	cfg := Defaults()
	if path := os.Getenv("CASL_CONFIG_FILE"); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Server{}, err
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func overlayFile(cfg *Server, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the server cannot run with.
func (c Server) Validate() error {
	if c.Addr == "" {
		return errors.New("config: addr is required")
	}
	if c.Session.SigningKey == "" {
		return errors.New("config: session signing key is required")
	}
	if c.RegulatedMode && c.Session.SigningKey == Defaults().Session.SigningKey {
		return errors.New("config: regulated mode requires a non-default session signing key")
	}
	if c.Workflow.PollInterval <= 0 {
		return errors.New("config: poll interval must be positive")
	}
	if c.Workflow.DebounceDelay < 0 {
		return errors.New("config: debounce delay must not be negative")
	}
	if c.Session.TokenTTL <= 0 {
		return errors.New("config: token ttl must be positive")
	}
	return nil
}

func applyEnv(cfg *Server) {
	setString(&cfg.Addr, "CASL_ADDR")
	setBool(&cfg.RegulatedMode, "REGULATED_MODE")

	setString(&cfg.Session.SigningKey, "CASL_SESSION_SIGNING_KEY")
	setDuration(&cfg.Session.TokenTTL, "CASL_SESSION_TTL")
	setDuration(&cfg.Session.IdleTimeout, "CASL_SESSION_IDLE_TIMEOUT")
	setInt(&cfg.Session.StartsPerMinute, "CASL_SESSION_STARTS_PER_MINUTE")

	setDuration(&cfg.Workflow.PollInterval, "CASL_POLL_INTERVAL")
	setDuration(&cfg.Workflow.DebounceDelay, "CASL_DEBOUNCE_DELAY")

	setString(&cfg.Collaborators.IdentityURL, "CASL_IDENTITY_URL")
	setString(&cfg.Collaborators.VerificationURL, "CASL_VERIFICATION_URL")
	setString(&cfg.Collaborators.APIKey, "CASL_COLLABORATOR_API_KEY")
	setDuration(&cfg.Collaborators.Timeout, "CASL_COLLABORATOR_TIMEOUT")

	setString(&cfg.Redis.URL, "REDIS_URL")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = splitList(brokers)
	}
	setString(&cfg.Kafka.Topic, "KAFKA_SUBMISSIONS_TOPIC")

	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "true"
	}
}

func setInt(dst *int, key string) {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		*dst = v
	}
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
