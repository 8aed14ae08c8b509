package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/goalpath/internal/config"
	"github.com/abhisek/goalpath/internal/goals"
	"github.com/abhisek/goalpath/internal/llm"
	"github.com/abhisek/goalpath/internal/logging"
	"github.com/abhisek/goalpath/internal/planner"
	"github.com/abhisek/goalpath/internal/rewards"
	"github.com/abhisek/goalpath/internal/store"
)

// env holds the dependencies of one command invocation.
type env struct {
	cfg    *config.Config
	log    *zap.Logger
	flush  func()
	local  *store.SQLite // event log, and goals unless firestore is selected
	remote store.Store   // nil unless firestore is selected
	svc    *goals.Service
}

// Close stops the service and releases all resources.
func (e *env) Close() {
	if e.svc != nil {
		e.svc.Stop()
	}
	if e.remote != nil {
		_ = e.remote.Close()
	}
	if e.local != nil {
		_ = e.local.Close()
	}
	if e.flush != nil {
		e.flush()
	}
}

// loadConfig reads configuration and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		cfg.UserID = u
	}
	return cfg, nil
}

// openLocal opens the SQLite database without starting a goal service.
func openLocal(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, flush, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: log, flush: flush}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	e.local, err = store.Open(dbPath, store.WithLogger(log))
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	return e, nil
}

// openEnv builds the goal service for the configured user and waits for
// the first goal list. With withAI the planner is wired when an LLM
// provider is configured.
func openEnv(cmd *cobra.Command, withAI bool) (*env, error) {
	e, err := openLocal(cmd)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var goalStore store.Store = e.local
	if e.cfg.Store == config.StoreFirestore {
		fs, err := store.OpenFirestore(ctx, store.FirestoreConfig{
			ProjectID:       e.cfg.FirestoreProject,
			CredentialsFile: e.cfg.FirestoreCredentials,
		}, store.WithLogger(e.log))
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("open firestore: %w", err)
		}
		e.remote = fs
		goalStore = fs
	}

	events := e.local.EventRepo()
	opts := []goals.Option{
		goals.WithLogger(e.log),
		goals.WithLocation(e.cfg.Location),
		goals.WithLedger(rewards.NewLedger(e.cfg.UserID, events, e.log)),
	}

	if withAI {
		if p, err := newPlanner(ctx, events, e.log); err != nil {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
			fmt.Fprintln(os.Stderr, "AI features will be unavailable.")
		} else {
			opts = append(opts, goals.WithPlanner(p))
		}
	}

	e.svc = goals.NewService(e.cfg.UserID, goalStore, opts...)
	if err := e.svc.Start(ctx); err != nil {
		e.Close()
		return nil, fmt.Errorf("start: %w", err)
	}
	return e, nil
}

func newPlanner(ctx context.Context, events store.EventRepo, log *zap.Logger) (*planner.Service, error) {
	cfg, err := llm.Resolve()
	if err != nil {
		return nil, err
	}
	provider, err := llm.NewProvider(ctx, cfg, events, log)
	if err != nil {
		return nil, err
	}
	return planner.NewService(provider, planner.DefaultConfig(), log), nil
}
