package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"SignalWatch/internal/model"
	"SignalWatch/internal/notifier"
	"SignalWatch/internal/portfolio"
	"SignalWatch/internal/scheduler"
	"SignalWatch/internal/web"
)

// withApp builds the shared components, runs fn and releases them.
func withApp(fn func(ctx context.Context, cmd *cli.Command, a *app) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(ctx, cmd, a)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func serveAction(ctx context.Context, cmd *cli.Command, a *app) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := scheduler.Deps{
		Analyzer:  a.analyzer,
		Portfolio: a.portfolio,
		Recorder:  a.openRecorder(),
		Formatter: notifier.NewFormatter(a.cfg.Currency),
		Watchlist: a.cfg.Analysis.Watchlist,
		Valuation: a.valuateOptions(),
		Log:       a.log,
	}

	var tn *notifier.TelegramNotifier
	if a.cfg.TelegramEnabled() {
		chatID, err := a.cfg.ChatID()
		if err != nil {
			return err
		}
		tn, err = notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, chatID, a.cfg.Proxy, a.log)
		if err != nil {
			return err
		}
		deps.Notifier = tn
	} else {
		a.log.Info("telegram not configured, notifications disabled")
	}

	sched := scheduler.NewScheduler(ctx, deps)
	if err := sched.RegisterAll(a.cfg.Schedule.SellScanCron, a.cfg.Schedule.ValuationCron, a.cfg.Schedule.ScreenCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	srv := web.NewServer(web.Deps{
		Analyzer:  a.analyzer,
		Portfolio: a.portfolio,
		Watchlist: a.cfg.Analysis.Watchlist,
		Valuation: a.valuateOptions(),
		Log:       a.log,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(ctx, a.cfg.Web.Addr) })
	if tn != nil {
		g.Go(func() error {
			tn.StartPolling(ctx, sched.HandleCommand)
			return nil
		})
	}
	if cmd.Bool("run-on-start") {
		g.Go(func() error {
			sched.RunSellScanNow()
			return nil
		})
	}

	a.log.Info("signalwatch is running", zap.String("addr", a.cfg.Web.Addr))
	err := g.Wait()
	a.log.Info("signalwatch stopped")
	return err
}

func analyzeAction(ctx context.Context, cmd *cli.Command, a *app) error {
	symbol := cmd.Args().First()
	if symbol == "" {
		return fmt.Errorf("usage: analyze SYMBOL")
	}
	res, err := a.analyzer.Analyze(ctx, symbol, model.Period(cmd.String("period")), model.Interval(cmd.String("interval")))
	if err != nil {
		return err
	}
	if !cmd.Bool("with-history") {
		res.History = nil
	}
	return printJSON(res)
}

func screenAction(ctx context.Context, cmd *cli.Command, a *app) error {
	symbols := cmd.Args().Slice()
	if len(symbols) == 0 {
		symbols = a.cfg.Analysis.Watchlist
	}
	return printJSON(a.analyzer.ScreenBuy(ctx, symbols))
}

func sellAction(ctx context.Context, _ *cli.Command, a *app) error {
	return printJSON(a.analyzer.SellSignals(ctx, a.portfolio.Snapshot()))
}

func valueAction(ctx context.Context, _ *cli.Command, a *app) error {
	return printJSON(portfolio.Valuate(ctx, a.portfolio.Snapshot(), a.fetcher, a.valuateOptions()))
}

func addAction(ctx context.Context, cmd *cli.Command, a *app) error {
	p, err := a.portfolio.Add(ctx, portfolio.Purchase{
		Symbol:       strings.ToUpper(cmd.Args().First()),
		Name:         cmd.String("name"),
		Shares:       cmd.Float("shares"),
		AveragePrice: cmd.Float("price"),
		PurchaseDate: cmd.String("date"),
		Notes:        cmd.String("notes"),
	})
	if err != nil {
		return err
	}
	return printJSON(p)
}

func removeAction(_ context.Context, cmd *cli.Command, a *app) error {
	symbol := cmd.Args().First()
	if symbol == "" {
		return fmt.Errorf("usage: remove SYMBOL")
	}
	return printJSON(a.portfolio.Remove(strings.ToUpper(symbol)))
}

func listAction(_ context.Context, _ *cli.Command, a *app) error {
	return printJSON(a.portfolio.Snapshot())
}

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load(".env")

	cmd := &cli.Command{
		Name:  "signalwatch",
		Usage: "Technical buy/sell signals and portfolio tracking",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
				Value:   "configs/config.yaml",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP API, the scheduler and the Telegram bot",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "run-on-start",
						Usage:   "Run a sell scan immediately",
						Sources: cli.EnvVars("RUN_ON_START"),
					},
				},
				Action: withApp(serveAction),
			},
			{
				Name:      "analyze",
				Usage:     "Evaluate buy and sell signals for one symbol",
				ArgsUsage: "SYMBOL",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "period", Aliases: []string{"p"}, Usage: "History range (1d, 5d, 1mo, 3mo, 6mo, 1y, 2y, 5y, max)"},
					&cli.StringFlag{Name: "interval", Aliases: []string{"i"}, Usage: "Bar width (1d, 1wk, 1mo)"},
					&cli.BoolFlag{Name: "with-history", Usage: "Include the price bars in the output"},
				},
				Action: withApp(analyzeAction),
			},
			{
				Name:      "screen",
				Usage:     "Rank symbols by buy signal strength",
				ArgsUsage: "[SYMBOL...]",
				Action:    withApp(screenAction),
			},
			{
				Name:   "sell",
				Usage:  "Scan the portfolio for sell signals",
				Action: withApp(sellAction),
			},
			{
				Name:   "value",
				Usage:  "Value the portfolio at current prices",
				Action: withApp(valueAction),
			},
			{
				Name:      "add",
				Usage:     "Record a purchase",
				ArgsUsage: "SYMBOL",
				Flags: []cli.Flag{
					&cli.FloatFlag{Name: "shares", Aliases: []string{"n"}, Usage: "Number of shares", Required: true},
					&cli.FloatFlag{Name: "price", Usage: "Price per share", Required: true},
					&cli.StringFlag{
						Name:  "date",
						Usage: "Purchase date in `YYYY-MM-DD` format",
						Value: time.Now().Format("2006-01-02"),
					},
					&cli.StringFlag{Name: "name", Usage: "Display name (defaults to the quote name)"},
					&cli.StringFlag{Name: "notes", Usage: "Free-form notes"},
				},
				Action: withApp(addAction),
			},
			{
				Name:      "remove",
				Usage:     "Remove a holding",
				ArgsUsage: "SYMBOL",
				Action:    withApp(removeAction),
			},
			{
				Name:   "list",
				Usage:  "Print the portfolio",
				Action: withApp(listAction),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
