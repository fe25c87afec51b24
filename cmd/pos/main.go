// Comando pos: caja registradora Vento sobre SQLite (o PostgreSQL).
//
//	pos [--config .env] [--db-driver sqlite|postgres] [--db-path vento.db] <comando> [flags]
//
// Comandos: migrate, product, sell, cancel, refund, receipt, report, rate, backup, serve-backups.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/vento-pos/pkg/config"
	"github.com/jhoicas/vento-pos/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, args, err := config.LoadWithFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		return 2
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(args) == 0 {
		usage()
		return 2
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("inicializar aplicación")
		return 1
	}
	defer a.Close()

	if err := a.run(ctx, args[0], args[1:]); err != nil {
		log.Error().Err(err).Str("command", args[0]).Msg("comando fallido")
		return 1
	}
	return 0
}

func usage() {
	fmt.Fprint(os.Stderr, `uso: pos [--config archivo] [--db-driver sqlite|postgres] [--db-path ruta] <comando>

comandos:
  migrate                                   aplica migraciones pendientes
  product add --name N --cost USD [--stock N] [--sku S] [--barcode B] [--margin %]
  product list [--low|--out|--search texto|--category c]
  product stock --id ID (--set N | --adjust ±N)
  sell --item ID:CANT [--item ...] [--payment cash] [--customer nombre]
  cancel --sale ID [--reason texto]         cancela una venta y repone stock
  refund --sale ID [--reason texto]         reembolsa una venta completada
  receipt --sale ID [--out archivo.pdf]     genera el recibo en PDF
  report --from AAAA-MM-DD --to AAAA-MM-DD --format csv|xlsx|pdf [--out archivo] [--top N]
  rate [--set TASA --source manual] [--history N] [--clean DIAS]
  backup [--name nombre] [--list] [--cleanup] [--delete nombre] [--verify nombre]
  serve-backups                             respaldos programados hasta SIGINT/SIGTERM
`)
}
