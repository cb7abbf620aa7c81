package env

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Environment variable names.
const (
	KeyBankPath          = "DEFECTHUNT_BANK"
	KeyStore             = "DEFECTHUNT_STORE"
	KeySQLitePath        = "DEFECTHUNT_SQLITE_PATH"
	KeyRedisAddr         = "DEFECTHUNT_REDIS_ADDR"
	KeyRedisPassword     = "DEFECTHUNT_REDIS_PASSWORD"
	KeyRedisDB           = "DEFECTHUNT_REDIS_DB"
	KeyRedisChannel      = "DEFECTHUNT_REDIS_CHANNEL"
	KeyPostgresDSN       = "DEFECTHUNT_POSTGRES_DSN"
	KeyStoreTimeout      = "DEFECTHUNT_STORE_TIMEOUT"
	KeyLogMode           = "DEFECTHUNT_LOG_MODE"
	KeyVerbose           = "DEFECTHUNT_VERBOSE"
	KeyReplayConcurrency = "DEFECTHUNT_REPLAY_CONCURRENCY"
	KeyListenAddr        = "DEFECTHUNT_LISTEN"
	KeyStoreAttempts     = "DEFECTHUNT_STORE_ATTEMPTS"
	KeyAMQPURL           = "DEFECTHUNT_AMQP_URL"
	KeyAMQPQueue         = "DEFECTHUNT_AMQP_QUEUE"
	KeyTrace             = "DEFECTHUNT_TRACE"
	KeyLogFile           = "DEFECTHUNT_LOG_FILE"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Settings is the typed runtime configuration.
type Settings struct {
	BankPath          string
	Store             string
	SQLitePath        string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RedisChannel      string
	PostgresDSN       string
	StoreTimeout      time.Duration
	LogMode           string
	LogFile           string
	Verbose           bool
	ReplayConcurrency int
	ListenAddr        string

	// StoreAttempts bounds tries per storage call for the
	// network backends; 1 disables retrying.
	StoreAttempts int

	// AMQPURL, when set, also publishes events to AMQPQueue.
	AMQPURL   string
	AMQPQueue string

	// Trace prints OpenTelemetry spans to stderr.
	Trace bool
}

// DefaultSettings returns the settings used when nothing is
// configured.
func DefaultSettings() Settings {
	return Settings{
		BankPath:          "bank.yaml",
		Store:             StoreSQLite,
		SQLitePath:        "defecthunt.db",
		RedisAddr:         "localhost:6379",
		RedisChannel:      "defecthunt.events",
		StoreTimeout:      5 * time.Second,
		LogMode:           "production",
		ReplayConcurrency: 4,
		ListenAddr:        ":8088",
		StoreAttempts:     3,
		AMQPQueue:         "defecthunt.events",
	}
}

// LoadSettings reads Settings from l, falling back to
// DefaultSettings for unset keys, and validates the result.
func LoadSettings(l Source) (Settings, error) {
	s := DefaultSettings()

	s.BankPath = GetString(l, KeyBankPath, s.BankPath)
	s.Store = GetString(l, KeyStore, s.Store)
	s.SQLitePath = GetString(l, KeySQLitePath, s.SQLitePath)
	s.RedisAddr = GetString(l, KeyRedisAddr, s.RedisAddr)
	s.RedisPassword = l.Get(KeyRedisPassword)
	s.RedisChannel = GetString(l, KeyRedisChannel, s.RedisChannel)
	s.PostgresDSN = l.Get(KeyPostgresDSN)
	s.LogMode = GetString(l, KeyLogMode, s.LogMode)
	s.LogFile = l.Get(KeyLogFile)
	s.ListenAddr = GetString(l, KeyListenAddr, s.ListenAddr)
	s.AMQPURL = l.Get(KeyAMQPURL)
	s.AMQPQueue = GetString(l, KeyAMQPQueue, s.AMQPQueue)

	var err error
	if s.RedisDB, err = GetInt(l, KeyRedisDB, s.RedisDB); err != nil {
		return Settings{}, err
	}
	if s.ReplayConcurrency, err = GetInt(l, KeyReplayConcurrency, s.ReplayConcurrency); err != nil {
		return Settings{}, err
	}
	if s.Verbose, err = GetBool(l, KeyVerbose, s.Verbose); err != nil {
		return Settings{}, err
	}
	if s.Trace, err = GetBool(l, KeyTrace, s.Trace); err != nil {
		return Settings{}, err
	}
	if s.StoreAttempts, err = GetInt(l, KeyStoreAttempts, s.StoreAttempts); err != nil {
		return Settings{}, err
	}
	if s.StoreTimeout, err = GetDuration(l, KeyStoreTimeout, s.StoreTimeout); err != nil {
		return Settings{}, err
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate reports the first inconsistent setting.
func (s Settings) Validate() error {
	switch s.Store {
	case StoreMemory:
	case StoreSQLite:
		if s.SQLitePath == "" {
			return errors.New("sqlite store requires " + KeySQLitePath)
		}
	case StoreRedis:
		if s.RedisAddr == "" {
			return errors.New("redis store requires " + KeyRedisAddr)
		}
	case StorePostgres:
		if s.PostgresDSN == "" {
			return errors.New("postgres store requires " + KeyPostgresDSN)
		}
	default:
		return fmt.Errorf("%s: unknown store %q", KeyStore, s.Store)
	}
	if s.ReplayConcurrency < 1 {
		return fmt.Errorf("%s must be at least 1", KeyReplayConcurrency)
	}
	if s.StoreAttempts < 1 {
		return fmt.Errorf("%s must be at least 1", KeyStoreAttempts)
	}
	if s.AMQPURL != "" && s.AMQPQueue == "" {
		return errors.New("amqp publishing requires " + KeyAMQPQueue)
	}
	if s.StoreTimeout <= 0 {
		return fmt.Errorf("%s must be positive", KeyStoreTimeout)
	}
	return nil
}

// Secrets lists the credentials present in s, for log masking.
func (s Settings) Secrets() []string {
	var out []string
	if s.RedisPassword != "" {
		out = append(out, s.RedisPassword)
	}
	for _, dsn := range []string{s.PostgresDSN, s.AMQPURL} {
		if u, err := url.Parse(dsn); err == nil && u.User != nil {
			if pw, ok := u.User.Password(); ok && pw != "" {
				out = append(out, pw)
			}
		}
	}
	return out
}

// Redacted returns the settings as strings suitable for logging,
// with credentials masked.
func (s Settings) Redacted() map[string]string {
	return map[string]string{
		"bank":          s.BankPath,
		"store":         s.Store,
		"sqlite_path":   s.SQLitePath,
		"redis_addr":    s.RedisAddr,
		"redis_pass":    RedactSecret(s.RedisPassword),
		"redis_channel": s.RedisChannel,
		"postgres_dsn":  RedactURL(s.PostgresDSN),
		"amqp_url":      RedactURL(s.AMQPURL),
		"amqp_queue":    s.AMQPQueue,
		"log_mode":      s.LogMode,
		"log_file":      s.LogFile,
		"listen":        s.ListenAddr,
	}
}
