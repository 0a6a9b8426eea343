package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "FAMCARE"

// boundKeys lists every leaf key so AutomaticEnv can resolve it during
// Unmarshal even when no config file mentions it.
var boundKeys = []string{
	"server.port", "server.read_timeout", "server.write_timeout", "server.shutdown_timeout", "server.allowed_origins",
	"worker.health_port", "worker.concurrency", "worker.handler_timeout", "worker.max_retries", "worker.retry_backoff",
	"database.host", "database.port", "database.user", "database.password", "database.db_name", "database.ssl_mode",
	"database.max_open_conns", "database.max_idle_conns", "database.conn_max_lifetime", "database.conn_max_idle_time",
	"database.migration_path", "database.auto_migrate",
	"redis.addr", "redis.password", "redis.db", "redis.pool_size", "redis.dial_timeout", "redis.read_timeout",
	"redis.write_timeout", "redis.key_prefix",
	"kafka.brokers", "kafka.group_id", "kafka.auto_offset_reset", "kafka.write_timeout", "kafka.required_acks", "kafka.enabled",
	"minio.endpoint", "minio.access_key", "minio.secret_key", "minio.bucket", "minio.region", "minio.use_ssl",
	"log.level", "log.format", "log.output_paths",
	"metrics.enabled", "metrics.namespace", "metrics.path",
	"evaluation.session_ttl", "evaluation.lock_ttl",
	"report.fetch_timeout", "report.archive_enabled", "report.archive_prefix",
}

// newViper builds a Viper instance with YAML file type, the FAMCARE_ env
// prefix and a "." → "_" key replacer, so "database.host" resolves to
// FAMCARE_DATABASE_HOST.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range boundKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the YAML file at configPath, merges FAMCARE_* environment
// overrides, applies defaults and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from FAMCARE_* environment variables only.
//
//	FAMCARE_<SECTION>_<FIELD>   e.g.  FAMCARE_DATABASE_HOST, FAMCARE_REDIS_ADDR
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// LoadOrEnv loads configPath when it is non-empty and falls back to the
// environment otherwise.
func LoadOrEnv(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	return Load(configPath)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the re-parsed Config
// whenever the file changes on disk. Invalid intermediate edits are reported
// through onError (when non-nil) and never reach onChange. Only the log level
// is applied at runtime by the binaries.
func Watch(configPath string, onChange func(*Config), onError func(error)) {
	v := newViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig()

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// MustLoad wraps Load and panics on any error.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
