package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"server port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"worker port out of range", func(c *Config) { c.Worker.HealthPort = 70000 }, "worker.health_port"},
		{"worker concurrency", func(c *Config) { c.Worker.Concurrency = 0 }, "worker.concurrency"},
		{"negative retries", func(c *Config) { c.Worker.MaxRetries = -1 }, "worker.max_retries"},
		{"database host", func(c *Config) { c.Database.Host = "" }, "database.host"},
		{"database user", func(c *Config) { c.Database.User = "" }, "database.user"},
		{"database name", func(c *Config) { c.Database.DBName = "" }, "database.db_name"},
		{"database pool", func(c *Config) { c.Database.MaxOpenConns = 0 }, "database.max_open_conns"},
		{"redis addr", func(c *Config) { c.Redis.Addr = "" }, "redis.addr"},
		{"redis db", func(c *Config) { c.Redis.DB = -1 }, "redis.db"},
		{"kafka enabled without brokers", func(c *Config) {
			c.Kafka.Enabled = true
			c.Kafka.Brokers = nil
		}, "kafka.brokers"},
		{"kafka disabled ignores brokers", func(c *Config) { c.Kafka.Brokers = nil }, ""},
		{"offset reset", func(c *Config) { c.Kafka.AutoOffsetReset = "middle" }, "kafka.auto_offset_reset"},
		{"archive without endpoint", func(c *Config) { c.Report.ArchiveEnabled = true }, "report.archive_enabled"},
		{"archive with endpoint", func(c *Config) {
			c.Report.ArchiveEnabled = true
			c.MinIO.Endpoint = "minio:9000"
		}, ""},
		{"session ttl", func(c *Config) { c.Evaluation.SessionTTL = -1 }, "evaluation.session_ttl"},
		{"lock ttl", func(c *Config) { c.Evaluation.LockTTL = -1 }, "evaluation.lock_ttl"},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "text" }, "log.format"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}
