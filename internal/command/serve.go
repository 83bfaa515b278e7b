package command

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/isdelr/fuego-api/internal/api"
	apimiddleware "github.com/isdelr/fuego-api/internal/api/middleware"
	"github.com/isdelr/fuego-api/internal/auth"
	"github.com/isdelr/fuego-api/internal/cache"
	"github.com/isdelr/fuego-api/internal/config"
	"github.com/isdelr/fuego-api/internal/database"
	"github.com/isdelr/fuego-api/internal/jobs"
	"github.com/isdelr/fuego-api/internal/services"
	"github.com/isdelr/fuego-api/internal/store"
	"github.com/isdelr/fuego-api/internal/websocket"
)

// Server timeouts.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 15 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "migrate the database and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			cfg := configFrom(cmd.Context())

			db, err := database.New(cmd.Context(), cfg.DatabaseDriver, cfg.DatabaseURL, cfg.DBMaxOpenConns)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()
			if err = database.Migrate(cmd.Context(), db, cfg.DatabaseDriver); err != nil {
				return err
			}
			st := store.NewSQLStore(db, cfg.DatabaseDriver)

			lists, closeCache, err := taskCache(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeCache(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			grp, ctx := errgroup.WithContext(cmd.Context())

			hub := websocket.NewHub()
			grp.Go(func() error {
				hub.Run(ctx)
				return nil
			})

			if err = startSweeper(ctx, grp, cfg, st); err != nil {
				return err
			}

			codec := auth.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL)
			router := api.NewRouter(api.Dependencies{
				Logger:         log.Logger,
				Users:          services.NewUserService(st, auth.NewBcryptHasher(), codec),
				Tasks:          services.NewTaskService(st, lists, hub),
				Tokens:         codec,
				Resolver:       st,
				Hub:            hub,
				Limiter:        apimiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
				AllowedOrigins: cfg.CORSAllowedHosts,

				TrustProxyHeaders: cfg.TrustProxyHeaders,
			})

			addr := fmt.Sprintf(":%d", cfg.ServerPort)
			var lc net.ListenConfig
			listener, err := lc.Listen(ctx, "tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}

			log.Info().Str("address", listener.Addr().String()).Msg("Server starting")
			serveHTTP(ctx, grp, &http.Server{Handler: router}, listener)

			err = grp.Wait()
			log.Info().Msg("Server exiting")
			return err
		},
	}
}

// serveHTTP runs srv on listener and shuts it down gracefully once ctx is done.
func serveHTTP(ctx context.Context, grp *errgroup.Group, srv *http.Server, listener net.Listener) {
	srv.ReadHeaderTimeout = readHeaderTimeout
	srv.ReadTimeout = readTimeout
	srv.WriteTimeout = writeTimeout

	grp.Go(func() error {
		err := srv.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	grp.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// taskCache connects to Redis when REDIS_ADDR is set and falls back to no
// caching otherwise.
func taskCache(ctx context.Context, cfg *config.Config) (cache.TaskLists, func() error, error) {
	if cfg.RedisAddr == "" {
		return cache.Noop{}, func() error { return nil }, nil
	}
	lists, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.CacheTTL)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("Task list cache enabled")
	return lists, lists.Close, nil
}

func startSweeper(ctx context.Context, grp *errgroup.Group, cfg *config.Config, st *store.SQLStore) error {
	if cfg.OrphanSweepSchedule == "" {
		return nil
	}
	sweeper, err := jobs.NewOrphanSweeper(st, cfg.OrphanSweepSchedule)
	if err != nil {
		return err
	}
	log.Info().Str("schedule", cfg.OrphanSweepSchedule).Msg("Orphan task sweeper enabled")
	grp.Go(func() error {
		sweeper.Run(ctx)
		return nil
	})
	return nil
}
