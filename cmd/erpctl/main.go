// Command erpctl is the operator console for the poultry ERP backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/config"
	"github.com/mamadbah2/erp-avicola/internal/querycache"
	supabaserepo "github.com/mamadbah2/erp-avicola/internal/repository/supabase"
	"github.com/mamadbah2/erp-avicola/internal/service/dashboard"
	"github.com/mamadbah2/erp-avicola/internal/service/inventory"
	"github.com/mamadbah2/erp-avicola/internal/service/modules"
	"github.com/mamadbah2/erp-avicola/internal/service/session"
	"github.com/mamadbah2/erp-avicola/pkg/clients/supabase"
	"github.com/mamadbah2/erp-avicola/pkg/logger"
)

var (
	envFile  string
	email    string
	password string
	timeout  time.Duration
)

// app holds the services a command runs against, signed in as the operator.
type app struct {
	sessions  *session.Store
	modules   *modules.Store
	dashboard *dashboard.Service
	inventory *inventory.Service
	logger    *zap.Logger
}

var rootCmd = &cobra.Command{
	Use:           "erpctl",
	Short:         "Operate the poultry ERP from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load configuration from this .env file")
	rootCmd.PersistentFlags().StringVarP(&email, "email", "e", os.Getenv("ERP_EMAIL"), "Sign-in email (default $ERP_EMAIL)")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", "", "Sign-in password (default $ERP_PASSWORD)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall command timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// connect loads configuration, builds the services and signs in. The session
// lives in memory only and is revoked by the returned close func.
func connect(ctx context.Context) (*app, func(), error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Server.LogLevel
	if level == "" {
		level = "warn"
	}
	log, err := logger.New(level)
	if err != nil {
		return nil, nil, err
	}

	if password == "" {
		password = os.Getenv("ERP_PASSWORD")
	}
	if email == "" || password == "" {
		return nil, nil, errors.New("sign in: --email and --password (or ERP_EMAIL and ERP_PASSWORD) are required")
	}

	rest, auth := supabase.NewClients(cfg.Supabase, &supabase.MemoryStorage{})
	repo := supabaserepo.NewRepository(rest, log.Named("repo.supabase"))
	cache := querycache.New(querycache.NewMemoryBackend(), cfg.Cache.StaleTime, log.Named("querycache"))

	a := &app{
		sessions:  session.NewStore(auth, repo, log.Named("svc.session")),
		modules:   modules.NewStore(repo, log.Named("svc.modules")),
		dashboard: dashboard.NewService(repo, cache, log.Named("svc.dashboard")),
		inventory: inventory.NewService(repo, cache, log.Named("svc.inventory")),
		logger:    log,
	}

	if _, err := a.sessions.SignIn(ctx, email, password); err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		signOutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.sessions.SignOut(signOutCtx); err != nil {
			log.Warn("sign out failed", zap.Error(err))
		}
		a.sessions.Close()
		_ = log.Sync()
	}
	return a, closeFn, nil
}

// withApp runs fn with a signed-in app under the command timeout.
func withApp(fn func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		a, closeFn, err := connect(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		return fn(ctx, cmd, args, a)
	}
}
