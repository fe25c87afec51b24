package config_test

import (
	"testing"

	"github.com/jhoicas/vento-pos/pkg/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "vento.db", cfg.DB.Path)
	assert.True(t, decimal.NewFromInt(16).Equal(cfg.POS.TaxPercent))
	assert.True(t, decimal.RequireFromString("36.50").Equal(cfg.POS.DefaultRate))
	assert.Equal(t, "VES", cfg.POS.CurrencyCode)
	assert.Equal(t, "@daily", cfg.Backup.Schedule)
	assert.Equal(t, 7, cfg.Backup.Keep)
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("POS_TAX_PERCENT", "12.5")
	t.Setenv("BACKUP_KEEP", "3")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.True(t, decimal.RequireFromString("12.5").Equal(cfg.POS.TaxPercent))
	assert.Equal(t, 3, cfg.Backup.Keep)
}

func TestLoad_DriverInvalido(t *testing.T) {
	t.Setenv("DB_DRIVER", "mongo")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_ImpuestoMalFormado(t *testing.T) {
	t.Setenv("POS_TAX_PERCENT", "dieciseis")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadWithFlags_FlagsTienenPrioridad(t *testing.T) {
	t.Setenv("DB_PATH", "desde-env.db")

	cfg, rest, err := config.LoadWithFlags([]string{"--db-path", "flag.db", "report", "--from", "2024-01-01"})
	require.NoError(t, err)

	assert.Equal(t, "flag.db", cfg.DB.Path)
	assert.Equal(t, []string{"report", "--from", "2024-01-01"}, rest)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{User: "pos", Password: "p@ss/word", Host: "db", Port: 5432, DBName: "vento", SSLMode: "disable"}

	assert.Equal(t, "postgres://pos:p%40ss%2Fword@db:5432/vento?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
