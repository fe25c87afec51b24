package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/jhoicas/vento-pos/internal/application/dto"
	"github.com/jhoicas/vento-pos/internal/application/reporting"
	"github.com/jhoicas/vento-pos/internal/domain/entity"
	infrabackup "github.com/jhoicas/vento-pos/internal/infrastructure/backup"
)

const dateLayout = "2006-01-02"

var errNoBackups = errors.New("respaldos disponibles solo con DB_DRIVER=sqlite")

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "migrate":
		a.log.Info().Str("driver", a.cfg.DB.Driver).Msg("migraciones aplicadas")
		return nil
	case "product":
		return a.product(ctx, args)
	case "sell":
		return a.sell(ctx, args)
	case "cancel", "refund":
		return a.reverse(ctx, cmd, args)
	case "receipt":
		return a.receipt(ctx, args)
	case "report":
		return a.report(ctx, args)
	case "rate":
		return a.rate(ctx, args)
	case "backup":
		return a.backupCmd(ctx, args)
	case "serve-backups":
		return a.serveBackups(ctx)
	default:
		usage()
		return fmt.Errorf("comando desconocido %q", cmd)
	}
}

func newFlags(name string) *pflag.FlagSet {
	return pflag.NewFlagSet(name, pflag.ContinueOnError)
}

// product add | list | stock
func (a *app) product(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("uso: product add|list|stock")
	}
	switch args[0] {
	case "add":
		fs := newFlags("product add")
		name := fs.String("name", "", "nombre")
		sku := fs.String("sku", "", "SKU")
		barcode := fs.String("barcode", "", "código de barras")
		category := fs.String("category", "", "categoría")
		cost := fs.String("cost", "0", "costo en USD")
		margin := fs.String("margin", "", "margen %")
		stock := fs.Int("stock", 0, "stock inicial")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		costUSD, err := decimal.NewFromString(*cost)
		if err != nil {
			return fmt.Errorf("--cost: %w", err)
		}
		req := dto.CreateProductRequest{
			SKU: *sku, Barcode: *barcode, Name: *name, Category: *category,
			CostUSD: costUSD, StockQuantity: *stock,
		}
		if *margin != "" {
			m, err := decimal.NewFromString(*margin)
			if err != nil {
				return fmt.Errorf("--margin: %w", err)
			}
			req.MarginPercent = &m
		}
		p, err := a.catalog.Create(ctx, req)
		if err != nil {
			return err
		}
		fmt.Printf("producto %d creado: %s a %s\n", p.ID, p.Name, p.SalePrice.StringFixed(2))
		return nil

	case "list":
		fs := newFlags("product list")
		low := fs.Bool("low", false, "solo stock bajo")
		out := fs.Bool("out", false, "solo agotados")
		search := fs.String("search", "", "buscar por nombre")
		category := fs.String("category", "", "filtrar por categoría")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		var (
			list []*entity.Product
			err  error
		)
		switch {
		case *low:
			list, err = a.catalog.FindLowStock(ctx)
		case *out:
			list, err = a.catalog.FindOutOfStock(ctx)
		case *search != "":
			list, err = a.catalog.SearchByName(ctx, *search)
		case *category != "":
			list, err = a.catalog.FindByCategory(ctx, *category)
		default:
			list, err = a.catalog.FindAll(ctx)
		}
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSKU\tNOMBRE\tPRECIO\tSTOCK\tESTADO")
		for _, p := range list {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n", p.ID, p.SKU, p.Name, p.SalePrice.StringFixed(2), p.StockQuantity, p.StockStatus())
		}
		return tw.Flush()

	case "stock":
		fs := newFlags("product stock")
		id := fs.Int64("id", 0, "producto")
		set := fs.Int("set", -1, "fijar stock")
		adjust := fs.Int("adjust", 0, "sumar/restar unidades")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *set >= 0 {
			return a.catalog.UpdateStock(ctx, *id, *set)
		}
		n, err := a.catalog.AdjustStock(ctx, *id, *adjust)
		if err != nil {
			return err
		}
		fmt.Printf("producto %d: stock %d\n", *id, n)
		return nil
	}
	return fmt.Errorf("subcomando de product desconocido %q", args[0])
}

// sell --item ID:CANT ... cierra una venta con los items indicados.
func (a *app) sell(ctx context.Context, args []string) error {
	fs := newFlags("sell")
	items := fs.StringArray("item", nil, "producto:cantidad (ID, SKU o código de barras)")
	payment := fs.String("payment", "cash", "cash|card|transfer|mobile|mixed|credit")
	customer := fs.String("customer", "", "nombre del cliente")
	document := fs.String("document", "", "documento del cliente")
	phone := fs.String("phone", "", "teléfono del cliente")
	discount := fs.String("discount", "0", "descuento en moneda local")
	notes := fs.String("notes", "", "notas")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(*items) == 0 {
		return fmt.Errorf("sell: indique al menos un --item")
	}

	d, err := decimal.NewFromString(*discount)
	if err != nil {
		return fmt.Errorf("--discount: %w", err)
	}
	if err := a.checkout.Cart().SetDiscountAmount(d); err != nil {
		return err
	}
	for _, raw := range *items {
		ref, qty, err := parseItem(raw)
		if err != nil {
			return err
		}
		if id, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
			err = a.checkout.AddProduct(ctx, id, qty)
		} else {
			err = a.checkout.AddProductByBarcode(ctx, ref, qty)
		}
		if err != nil {
			a.checkout.Cart().Clear()
			return err
		}
	}

	res := a.checkout.Checkout(ctx, dto.CheckoutRequest{
		PaymentMethod:    *payment,
		CustomerName:     *customer,
		CustomerDocument: *document,
		CustomerPhone:    *phone,
		Notes:            *notes,
		CashierName:      a.cfg.POS.CashierName,
	})
	if !res.Success {
		a.checkout.Cart().Clear()
		return res.Err
	}
	fmt.Printf("venta %d registrada: recibo %s total %s\n", res.SaleID, res.ReceiptNumber, res.Total.StringFixed(2))
	return nil
}

func parseItem(raw string) (string, int, error) {
	ref, qtyStr, found := strings.Cut(raw, ":")
	if ref == "" {
		return "", 0, fmt.Errorf("--item inválido %q", raw)
	}
	if !found {
		return ref, 1, nil
	}
	qty, err := strconv.Atoi(qtyStr)
	if err != nil {
		return "", 0, fmt.Errorf("--item %q: cantidad inválida", raw)
	}
	return ref, qty, nil
}

// cancel|refund --sale ID --reason texto
func (a *app) reverse(ctx context.Context, cmd string, args []string) error {
	fs := newFlags(cmd)
	id := fs.Int64("sale", 0, "ID de la venta")
	reason := fs.String("reason", "", "motivo")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var err error
	if cmd == "cancel" {
		err = a.checkout.CancelSale(ctx, *id, *reason)
	} else {
		err = a.checkout.RefundSale(ctx, *id, *reason)
	}
	if err != nil {
		return err
	}
	fmt.Printf("venta %d: %s\n", *id, cmd)
	return nil
}

func (a *app) receipt(ctx context.Context, args []string) error {
	fs := newFlags("receipt")
	id := fs.Int64("sale", 0, "ID de la venta")
	out := fs.String("out", "", "archivo destino (por defecto <recibo>.pdf)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	b, name, err := a.reporting.Receipt(ctx, *id)
	if err != nil {
		return err
	}
	if *out == "" {
		*out = name
	}
	if err := os.WriteFile(*out, b, 0o644); err != nil {
		return fmt.Errorf("escribir recibo: %w", err)
	}
	fmt.Println(*out)
	return nil
}

// report --from --to (fechas locales, --to inclusive) --format --out
func (a *app) report(ctx context.Context, args []string) error {
	now := time.Now()
	fs := newFlags("report")
	fromStr := fs.String("from", now.Format("2006-01")+"-01", "desde (AAAA-MM-DD)")
	toStr := fs.String("to", now.Format(dateLayout), "hasta, inclusive (AAAA-MM-DD)")
	format := fs.String("format", string(reporting.FormatCSV), "csv|xlsx|pdf")
	out := fs.String("out", "", "archivo destino (por defecto stdout)")
	limit := fs.Int("top", reporting.DefaultTopLimit, "tamaño del ranking de productos")
	if err := fs.Parse(args); err != nil {
		return err
	}
	from, err := time.ParseInLocation(dateLayout, *fromStr, time.Local)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	to, err := time.ParseInLocation(dateLayout, *toStr, time.Local)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("crear %s: %w", *out, err)
		}
		defer f.Close()
		w = f
	}
	req := dto.ReportRequest{From: from, To: to.AddDate(0, 0, 1), Limit: *limit}
	return a.reporting.Export(ctx, req, reporting.Format(*format), w)
}

// rate [--set TASA --source manual] [--history N] [--clean DIAS]
func (a *app) rate(ctx context.Context, args []string) error {
	fs := newFlags("rate")
	set := fs.String("set", "", "nueva tasa (moneda local por USD)")
	source := fs.String("source", "manual", "manual|bcv|dolartoday|binance")
	history := fs.Int("history", 0, "mostrar las últimas N tasas")
	clean := fs.Int("clean", 0, "borrar tasas de más de N días")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *set != "":
		r, err := decimal.NewFromString(*set)
		if err != nil {
			return fmt.Errorf("--set: %w", err)
		}
		res, err := a.currency.UpdateRate(ctx, dto.UpdateRateRequest{Rate: r, Source: *source})
		if err != nil {
			return err
		}
		fmt.Printf("tasa %s (%s, %s%%), %d productos recalculados\n",
			res.Rate.StringFixed(2), res.Trend, res.ChangePercent.StringFixed(2), res.Repriced)
	case *history > 0:
		list, err := a.currency.History(ctx, *history)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "FECHA\tTASA\tFUENTE\tCAMBIO %")
		for _, r := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Rate.StringFixed(2), r.Source, r.ChangePercent.StringFixed(2))
		}
		return tw.Flush()
	case *clean > 0:
		n, err := a.currency.CleanHistory(ctx, *clean)
		if err != nil {
			return err
		}
		fmt.Printf("%d tasas borradas\n", n)
	default:
		cur, err := a.currency.Current(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("tasa vigente %s (%s)\n", cur.Rate.StringFixed(2), cur.Source)
	}
	return nil
}

// backup [--name] [--list] [--cleanup] [--delete nombre] [--verify nombre]
func (a *app) backupCmd(ctx context.Context, args []string) error {
	if a.backup == nil {
		return errNoBackups
	}
	fs := newFlags("backup")
	name := fs.String("name", "", "nombre del respaldo")
	list := fs.Bool("list", false, "listar respaldos")
	cleanup := fs.Bool("cleanup", false, "conservar solo BACKUP_KEEP respaldos")
	del := fs.String("delete", "", "borrar un respaldo")
	verify := fs.String("verify", "", "verificar checksum de un respaldo")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *list:
		all, err := a.backup.List(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NOMBRE\tFECHA\tTAMAÑO")
		for _, b := range all {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", b.Name, b.CreatedAt.Local().Format("2006-01-02 15:04"), b.Size)
		}
		return tw.Flush()
	case *cleanup:
		n, err := a.backup.Cleanup(ctx, a.cfg.Backup.Keep)
		fmt.Printf("%d respaldos borrados\n", n)
		return err
	case *del != "":
		return a.backup.Delete(ctx, *del)
	case *verify != "":
		ok, err := a.backup.Verify(ctx, *verify)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("respaldo %s alterado: checksum no coincide", *verify)
		}
		fmt.Println("checksum correcto")
		return nil
	}
	info, err := a.backup.Create(ctx, *name)
	if err != nil {
		return err
	}
	fmt.Println(info.Path)
	return nil
}

// serveBackups corre el scheduler hasta que ctx se cancele (SIGINT/SIGTERM).
func (a *app) serveBackups(ctx context.Context) error {
	if a.backup == nil {
		return errNoBackups
	}
	s, err := infrabackup.NewScheduler(a.backup, a.cfg.Backup.Schedule, a.cfg.Backup.Keep, time.Local, a.log)
	if err != nil {
		return err
	}
	s.Start()
	<-ctx.Done()
	a.log.Info().Msg("apagando respaldos programados")
	s.Stop()
	return nil
}
