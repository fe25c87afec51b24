package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/vento-pos/internal/domain"
	"github.com/jhoicas/vento-pos/pkg/config"
	"github.com/jhoicas/vento-pos/pkg/logger"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		App: config.AppConfig{Env: "test", Name: "Bodega Test"},
		DB:  config.DBConfig{Driver: config.DriverSQLite, Path: filepath.Join(dir, "vento.db")},
		POS: config.POSConfig{
			TaxPercent:   decimal.NewFromInt(16),
			CurrencyCode: "VES",
			DefaultRate:  decimal.RequireFromString("36.50"),
			CashierName:  "caja-1",
		},
		Backup: config.BackupConfig{Dir: filepath.Join(dir, "backups"), Schedule: "@daily", Keep: 2},
	}
	a, err := newApp(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestApp_SellReceiptReportCancel(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	dir := t.TempDir()

	require.NoError(t, a.run(ctx, "product", []string{"add", "--name", "Harina PAN", "--cost", "1.20", "--stock", "10", "--barcode", "7591002000011"}))
	require.NoError(t, a.run(ctx, "sell", []string{"--item", "7591002000011:3", "--payment", "card", "--customer", "Ana"}))

	p, err := a.catalog.FindByBarcode(ctx, "7591002000011")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 7, p.StockQuantity)
	assert.True(t, a.checkout.Cart().IsEmpty())

	receipt := filepath.Join(dir, "recibo.pdf")
	require.NoError(t, a.run(ctx, "receipt", []string{"--sale", "1", "--out", receipt}))
	b, err := os.ReadFile(receipt)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "%PDF"))

	report := filepath.Join(dir, "ventas.csv")
	require.NoError(t, a.run(ctx, "report", []string{"--format", "csv", "--out", report}))
	b, err = os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(b), "REC-")
	assert.Contains(t, string(b), "Ana")

	require.NoError(t, a.run(ctx, "cancel", []string{"--sale", "1", "--reason", "error de caja"}))
	p, err = a.catalog.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, p.StockQuantity)

	err = a.run(ctx, "refund", []string{"--sale", "1"})
	require.Error(t, err)
	assert.Equal(t, domain.KindState, domain.KindOf(err))
}

func TestApp_SellUnknownProduct(t *testing.T) {
	a := newTestApp(t)
	err := a.run(context.Background(), "sell", []string{"--item", "99:1"})
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	assert.True(t, a.checkout.Cart().IsEmpty())
}

func TestApp_BackupAndRate(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	require.NoError(t, a.run(ctx, "rate", []string{"--set", "40", "--source", "bcv"}))
	cur, err := a.currency.Current(ctx)
	require.NoError(t, err)
	assert.True(t, cur.Rate.Equal(decimal.NewFromInt(40)))

	require.NoError(t, a.run(ctx, "backup", []string{"--name", "cierre"}))
	list, err := a.backup.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "cierre", list[0].Name)
	require.NoError(t, a.run(ctx, "backup", []string{"--verify", "cierre"}))
}

func TestApp_UnknownCommand(t *testing.T) {
	a := newTestApp(t)
	require.Error(t, a.run(context.Background(), "facturar", nil))
}

func TestParseItem(t *testing.T) {
	tests := []struct {
		raw     string
		ref     string
		qty     int
		wantErr bool
	}{
		{raw: "12:3", ref: "12", qty: 3},
		{raw: "7591002000011", ref: "7591002000011", qty: 1},
		{raw: "12:x", wantErr: true},
		{raw: ":2", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			ref, qty, err := parseItem(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ref, ref)
			assert.Equal(t, tt.qty, qty)
		})
	}
}
