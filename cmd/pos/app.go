package main

import (
	"context"
	"fmt"
	"time"

	appbackup "github.com/jhoicas/vento-pos/internal/application/backup"
	"github.com/jhoicas/vento-pos/internal/application/catalog"
	"github.com/jhoicas/vento-pos/internal/application/currency"
	"github.com/jhoicas/vento-pos/internal/application/reporting"
	"github.com/jhoicas/vento-pos/internal/application/sales"
	"github.com/jhoicas/vento-pos/internal/domain/pos"
	"github.com/jhoicas/vento-pos/internal/domain/repository"
	infrabackup "github.com/jhoicas/vento-pos/internal/infrastructure/backup"
	"github.com/jhoicas/vento-pos/internal/infrastructure/export"
	infrapdf "github.com/jhoicas/vento-pos/internal/infrastructure/pdf"
	"github.com/jhoicas/vento-pos/internal/infrastructure/postgres"
	"github.com/jhoicas/vento-pos/internal/infrastructure/sqlite"
	"github.com/jhoicas/vento-pos/pkg/config"
	"github.com/jhoicas/vento-pos/pkg/logger"
)

// store repositorios del driver elegido. snapshot es nil cuando el driver no admite respaldos de archivo.
type store struct {
	products repository.ProductRepository
	sales    repository.SaleRepository
	rates    repository.ExchangeRateRepository
	tx       sales.TxRunner
	snapshot appbackup.Snapshotter
	close    func()
}

func openStore(ctx context.Context, cfg config.DBConfig) (*store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &store{
			products: postgres.NewProductRepository(pool),
			sales:    postgres.NewSaleRepository(pool),
			rates:    postgres.NewExchangeRateRepository(pool),
			tx:       postgres.NewTxRunner(pool),
			close:    pool.Close,
		}, nil
	default:
		db, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return &store{
			products: sqlite.NewProductRepository(db),
			sales:    sqlite.NewSaleRepository(db),
			rates:    sqlite.NewExchangeRateRepository(db),
			tx:       sqlite.NewTxRunner(db),
			snapshot: infrabackup.NewSQLiteSnapshotter(db),
			close:    func() { _ = sqlite.Close(db) },
		}, nil
	}
}

// app casos de uso cableados sobre el store.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	store     *store
	catalog   *catalog.UseCase
	currency  *currency.UseCase
	checkout  *sales.CheckoutUseCase
	reporting *reporting.UseCase
	backup    *appbackup.UseCase // nil sin snapshotter
}

func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app, error) {
	st, err := openStore(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}

	receipts, err := sales.SeedReceiptSequence(ctx, st.sales)
	if err != nil {
		st.close()
		return nil, fmt.Errorf("secuencia de recibos: %w", err)
	}

	currencyUC := currency.NewUseCase(st.rates, st.products, cfg.POS.DefaultRate, log)
	catalogUC := catalog.NewUseCase(st.products, st.sales, currencyUC, log)

	cart := pos.NewCart()
	if err := cart.SetTaxPercent(cfg.POS.TaxPercent); err != nil {
		st.close()
		return nil, fmt.Errorf("POS_TAX_PERCENT: %w", err)
	}
	checkoutUC := sales.NewCheckoutUseCase(st.tx, st.products, st.sales, cart, receipts, currencyUC, log, sales.Options{
		CurrencyCode: cfg.POS.CurrencyCode,
		CashierName:  cfg.POS.CashierName,
	})

	pdfGen := infrapdf.NewMarotoGenerator(cfg.App.Name, cfg.POS.CurrencyCode)
	reportingUC := reporting.NewUseCase(st.sales, map[reporting.Format]reporting.ReportExporter{
		reporting.FormatCSV:  export.NewCSVExporter(),
		reporting.FormatXLSX: export.NewXLSXExporter(),
		reporting.FormatPDF:  pdfGen,
	}, pdfGen, log).WithLocation(time.Local)

	a := &app{
		cfg:       cfg,
		log:       log,
		store:     st,
		catalog:   catalogUC,
		currency:  currencyUC,
		checkout:  checkoutUC,
		reporting: reportingUC,
	}
	if st.snapshot != nil {
		a.backup = appbackup.NewUseCase(st.snapshot, cfg.Backup.Dir, log)
	}
	return a, nil
}

// Close libera la conexión al almacén.
func (a *app) Close() {
	if a.store != nil && a.store.close != nil {
		a.store.close()
	}
}
