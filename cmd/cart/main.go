package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	cartv1 "github.com/dwikikusuma/storefront-cart/api/cart/v1"
	cartapp "github.com/dwikikusuma/storefront-cart/internal/cart/app"
	cartgrpc "github.com/dwikikusuma/storefront-cart/internal/cart/grpc"
	"github.com/dwikikusuma/storefront-cart/internal/cart/httpapi"
	"github.com/dwikikusuma/storefront-cart/internal/cart/infra/auth"
	"github.com/dwikikusuma/storefront-cart/internal/cart/infra/memory"
	cartpg "github.com/dwikikusuma/storefront-cart/internal/cart/infra/postgres"
	cartredis "github.com/dwikikusuma/storefront-cart/internal/cart/infra/redis"
	checkoutapp "github.com/dwikikusuma/storefront-cart/internal/checkout/app"
	checkoutadapter "github.com/dwikikusuma/storefront-cart/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/storefront-cart/pkg/config"
	"github.com/dwikikusuma/storefront-cart/pkg/logger"
	"github.com/dwikikusuma/storefront-cart/pkg/postgres"
	"github.com/dwikikusuma/storefront-cart/pkg/redisx"
	"github.com/dwikikusuma/storefront-cart/pkg/shutdown"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

func main() {
	app := &cli.App{
		Name:  "cart",
		Usage: "storefront cart service",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the gRPC and HTTP servers",
				Action: serve,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "migrate", Usage: "apply postgres migrations before serving"},
				},
			},
			{
				Name:   "migrate",
				Usage:  "apply postgres migrations and exit",
				Action: migrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(logger.Options{Service: "cart", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	ctx, cancel := shutdown.WithSignals(c.Context)
	defer cancel()

	store, err := openStore(ctx, cfg, c.Bool("migrate"), log)
	if err != nil {
		log.Error("cart store open failed", slog.String("store", cfg.Cart.Store), slog.Any("err", err))
		return err
	}
	defer store.close()

	sessions := cartapp.NewSessions(store.CartStore, auth.ContextSource{}, cartapp.Options{
		NotificationTTL:   cfg.Cart.NotificationTTL,
		NotificationLimit: cfg.Cart.NotificationLimit,
		SessionIdle:       cfg.Cart.SessionIdle,
	}, log)
	defer sessions.Close()

	shipping, err := decimal.NewFromString(cfg.Checkout.Shipping)
	if err != nil {
		return fmt.Errorf("parse CHECKOUT_SHIPPING: %w", err)
	}
	checkoutSvc := checkoutapp.NewService(checkoutadapter.NewCartSessionReader(sessions), checkoutapp.Options{
		ShopName:       cfg.Checkout.ShopName,
		WhatsAppNumber: cfg.Checkout.WhatsAppNumber,
		Shipping:       shipping,
		CurrencySymbol: cfg.Checkout.CurrencySymbol,
	}, log)

	verifier := auth.NewTokenVerifier(cfg.Auth.Tokens)
	if len(cfg.Auth.Tokens) == 0 {
		log.Warn("AUTH_TOKENS is empty, every caller is treated as signed out")
	}

	cartSrv := cartgrpc.NewServer(sessions)
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		cartgrpc.LoggingInterceptor(log),
		cartgrpc.AuthInterceptor(verifier),
	))
	cartv1.RegisterCartServiceServer(grpcServer, cartSrv)

	grpcAddr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Error("listen failed", slog.Any("err", err), slog.String("addr", grpcAddr))
		return err
	}

	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	httpServer := &http.Server{
		Addr: httpAddr,
		Handler: httpapi.NewRouter(httpapi.Deps{
			Cart:     cartSrv,
			Checkout: checkoutSvc,
			Verifier: verifier,
			Log:      log,
			Ready:    store.ready,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("grpc starting", slog.String("addr", grpcAddr))
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("http server starting", slog.String("addr", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return sessions.RunSweeper(gctx, cfg.Cart.SweepInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")

		if !shutdown.Graceful(shutdown.DefaultTimeout, grpcServer.GracefulStop, grpcServer.Stop) {
			log.Warn("graceful stop timeout, forcing stop")
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdown.DefaultTimeout)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown error", slog.Any("err", err))
		}
		return nil
	})

	err = g.Wait()
	if err != nil {
		log.Error("server stopped with error", slog.Any("err", err))
	}
	log.Info("bye")
	return err
}

func migrate(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(logger.Options{Service: "cart-migrate", Env: cfg.AppEnv, Level: cfg.LogLevel})

	db, err := postgres.Open(pgConfig(cfg))
	if err != nil {
		log.Error("db open failed", slog.Any("err", err))
		return err
	}
	defer db.Close()

	if err := cartpg.Migrate(db); err != nil {
		log.Error("migrate failed", slog.Any("err", err))
		return err
	}
	log.Info("migrations applied")
	return nil
}

type cartStore struct {
	cartapp.CartStore
	ready func(context.Context) error
	close func()
}

func openStore(ctx context.Context, cfg config.Config, runMigrations bool, log *slog.Logger) (cartStore, error) {
	switch cfg.Cart.Store {
	case config.StoreRedis:
		rdb, err := redisx.Open(ctx, redisx.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return cartStore{}, err
		}
		log.Info("cart store ready", slog.String("store", config.StoreRedis), slog.String("addr", cfg.Redis.Addr))
		return cartStore{
			CartStore: cartredis.NewCartStore(rdb, cfg.Cart.RedisTTL),
			ready:     func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			close:     func() { _ = rdb.Close() },
		}, nil

	case config.StorePostgres:
		db, err := postgres.Open(pgConfig(cfg))
		if err != nil {
			return cartStore{}, err
		}
		if runMigrations {
			if err := cartpg.Migrate(db); err != nil {
				_ = db.Close()
				return cartStore{}, err
			}
		}
		log.Info("cart store ready", slog.String("store", config.StorePostgres), slog.String("host", cfg.Postgres.Host))
		return cartStore{
			CartStore: cartpg.NewCartStore(db),
			ready:     db.PingContext,
			close:     func() { _ = db.Close() },
		}, nil

	default:
		log.Warn("using in-memory cart store, carts are lost on restart")
		return cartStore{
			CartStore: memory.NewCartStore(),
			close:     func() {},
		}, nil
	}
}

func pgConfig(cfg config.Config) postgres.Config {
	return postgres.Config{
		Host:    cfg.Postgres.Host,
		Port:    cfg.Postgres.Port,
		User:    cfg.Postgres.User,
		Pass:    cfg.Postgres.Pass,
		DB:      cfg.Postgres.DB,
		SSLMode: cfg.Postgres.SSLMode,
	}
}
