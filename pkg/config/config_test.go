package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-qr/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "stock", cfg.DB.Schema)
	assert.Equal(t, 15*time.Second, cfg.Sync.Timeout)
	assert.Equal(t, 50, cfg.Sync.FlushLimit)
	assert.Equal(t, 200, cfg.Sync.SnapshotChunkSize)
	assert.Equal(t, "stock.topic", cfg.Broker.Exchange)
}

func TestLoad_EnvGana(t *testing.T) {
	t.Setenv("SYNC_TIMEOUT", "5")
	t.Setenv("SYNC_RELAY_INTERVAL", "2m")
	t.Setenv("SYNC_FLUSH_LIMIT", "10")
	t.Setenv("HTTP_PORT", "9090")
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Sync.Timeout)
	assert.Equal(t, 2*time.Minute, cfg.Sync.RelayInterval)
	assert.Equal(t, 10, cfg.Sync.FlushLimit)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestLoad_DriverInvalido(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestSyncConfig_Validate(t *testing.T) {
	base := config.SyncConfig{Sink: config.SinkSheets, SheetsURL: "https://script.example", FlushLimit: 50, SnapshotChunkSize: 200}
	assert.NoError(t, base.Validate())

	sinURL := base
	sinURL.SheetsURL = ""
	assert.Error(t, sinURL.Validate())

	desconocido := base
	desconocido.Sink = "kafka"
	assert.Error(t, desconocido.Validate())

	none := base
	none.Sink, none.SheetsURL = config.SinkNone, ""
	assert.NoError(t, none.Validate())
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "stock", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/stock?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
