package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"apiadventures/internal/api"
	"apiadventures/internal/config"
	"apiadventures/internal/domain"
	"apiadventures/internal/http/handlers"
	applog "apiadventures/internal/log"
	"apiadventures/internal/repos"
	"apiadventures/internal/services"
	"apiadventures/internal/validate"
	"apiadventures/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "apiadventures: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apiadventures",
		Short: "Product catalogue with an offline cache",
		Long: `apiadventures fetches the product catalogue from the remote API, keeps an
offline copy in SQLite and refreshes it in the background.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newServeCmd(),
		newRefreshCmd(),
		newProductsCmd(),
	)
	return cmd
}

// app holds the process-scoped handles every command shares.
type app struct {
	cfg    config.Config
	db     *sqlx.DB
	repo   *repos.ProductRepo
	client *api.Client
	loader *services.ProductLoader
	logOut io.Closer
}

func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	applog.SetLevel(cfg.LogLevel)

	a := &app{cfg: cfg}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			applog.Warn(nil, "log.file.open.fail", err, map[string]any{"path": cfg.LogFile})
		} else {
			applog.SetOutput(io.MultiWriter(os.Stdout, f))
			a.logOut = f
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		a.close()
		return nil, err
	}
	a.db = db
	a.repo = repos.NewProductRepo(db)

	var limiter *rate.Limiter
	if cfg.APIRatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.APIRatePerSecond), cfg.APIRateBurst)
	}
	a.client = api.NewClient(api.NewHTTPClient(cfg.APITimeout, limiter), cfg.APIBaseURL, cfg.APIEndpoint)
	a.loader = services.NewProductLoader(a.client, a.repo, cfg.CachePolicy)
	return a, nil
}

func (a *app) probe() worker.Probe {
	hp, err := a.client.HostPort()
	if err != nil {
		applog.Warn(nil, "worker.probe.disabled", err, map[string]any{"url": a.client.URL()})
		return nil
	}
	return worker.DialProbe(hp, a.cfg.ConnectivityTimeout)
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.logOut != nil {
		applog.SetOutput(os.Stdout)
		_ = a.logOut.Close()
	}
}

func newServeCmd() *cobra.Command {
	var accessLog bool
	var noSchedule bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the product API and refresh the cache on a schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			vm := services.NewProductsViewModel(a.loader)
			unsubscribe := vm.Store().Subscribe(func(o domain.Outcome) {
				v := domain.View(o)
				applog.Info(nil, "products.view.render", map[string]any{
					"state":    v.State,
					"reason":   v.Reason,
					"products": len(v.Products),
				})
			})
			defer unsubscribe()

			var refresher *worker.Refresher
			if !noSchedule {
				refresher = worker.NewRefresher(a.loader, a.probe(), a.cfg.RefreshSchedule)
				if err := refresher.Start(); err != nil {
					return err
				}
				defer refresher.Stop()
			}

			srv := handlers.NewApp(handlers.NewDeps(vm, a.repo, refresher), handlers.AppConfig{AccessLog: accessLog})

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				vm.Run(ctx)
				return nil
			})
			g.Go(func() error {
				applog.Info(nil, "server.start", map[string]any{"port": a.cfg.Port})
				return srv.Listen(":" + a.cfg.Port)
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				applog.Info(nil, "server.stop", nil)
				return srv.ShutdownWithContext(shutdownCtx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().BoolVar(&accessLog, "access-log", true, "Write a line per HTTP request")
	cmd.Flags().BoolVar(&noSchedule, "no-schedule", false, "Disable the background refresh")
	return cmd
}

func newRefreshCmd() *cobra.Command {
	var skipProbe bool
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Run one cache refresh and exit non-zero unless it succeeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			probe := a.probe()
			if skipProbe {
				probe = nil
			}
			run := worker.NewRefresher(a.loader, probe, a.cfg.RefreshSchedule).RunOnce(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", run.Result, run.Detail)
			if run.Result != worker.Success {
				return errors.New("refresh " + string(run.Result))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipProbe, "skip-probe", false, "Refresh without checking connectivity first")
	return cmd
}

func newProductsCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Print the cached products as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if category != "" {
				cat, ok := validate.Category(category)
				if !ok {
					return fmt.Errorf("unknown category %q", category)
				}
				category = cat
			}
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			stored, err := a.repo.StoredProducts(cmd.Context())
			if err != nil {
				return err
			}
			list := domain.ProductList{Products: make([]domain.CategorizedProduct, 0, len(stored))}
			for _, p := range stored {
				if cp, ok := domain.Categorize(p); ok && (category == "" || cp.Category() == category) {
					list.Products = append(list.Products, cp)
				}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(domain.View(list).Products)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only print Equipment or Food")
	return cmd
}
