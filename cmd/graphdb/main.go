// Command graphdb is spec §6's CLI: "serve --config <path>" and
// "query --query <text>", exit code 0 on success and non-zero on
// initialization or query failure. Grounded on straga-Mimir_lite's
// cmd/nornicdb/main.go for the cobra command tree, the config ->
// component-wiring -> signal-handled-serve shape, and the stdout banner
// style — trimmed to spec §6's two subcommands (no bolt port, embeddings,
// UI, or Mimir-import flags, none of which the expanded spec's scope
// names).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kkkqkx123/graphdb/internal/auth"
	"github.com/kkkqkx123/graphdb/internal/catalog"
	"github.com/kkkqkx123/graphdb/internal/config"
	"github.com/kkkqkx123/graphdb/internal/grapherr"
	"github.com/kkkqkx123/graphdb/internal/httpapi"
	"github.com/kkkqkx123/graphdb/internal/index"
	"github.com/kkkqkx123/graphdb/internal/kv"
	"github.com/kkkqkx123/graphdb/internal/logging"
	"github.com/kkkqkx123/graphdb/internal/optimizer"
	"github.com/kkkqkx123/graphdb/internal/queryparser"
	"github.com/kkkqkx123/graphdb/internal/service"
	"github.com/kkkqkx123/graphdb/internal/txn"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "graphdb",
		Short: "graphdb - an embeddable graph database with a Cypher-style query surface",
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("graphdb v%s\n", version)
		},
	})

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the graphdb HTTP server",
		RunE:  runServe,
	}
	serveCmd.Flags().String("config", "", "Path to the TOML config file (overridable via GRAPHDB_CONFIG)")
	rootCmd.AddCommand(serveCmd)

	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Run a single statement against a graphdb instance and print the result",
		RunE:  runQuery,
	}
	queryCmd.Flags().String("config", "", "Path to the TOML config file (overridable via GRAPHDB_CONFIG)")
	queryCmd.Flags().String("query", "", "Statement to run")
	queryCmd.Flags().String("space", "", "Space to bind the session to before running the statement")
	rootCmd.AddCommand(queryCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// components bundles everything loadConfig wires up, shared by both
// subcommands so "serve" and "query" build identical stacks.
type components struct {
	cfg   *config.Config
	log   *logging.Logger
	store kv.Store
	txns  *txn.Manager
	svc   *service.GraphService
	authn *auth.Authenticator
}

func bootstrap(cmd *cobra.Command) (*components, error) {
	configPath, _ := cmd.Flags().GetString("config")
	resolved := config.ResolvePath(configPath)

	var cfg config.Config
	if resolved == "" {
		cfg = config.Default()
	} else {
		loaded, err := config.Load(resolved)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = *loaded
	}

	log := logging.New(logging.ParseLevel(cfg.Logging.Level))

	if err := os.MkdirAll(cfg.Storage.Path, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	store, err := kv.NewBadgerStore(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	txns := txn.NewManager(store, txn.ManagerConfig{
		MaxTransactions: cfg.Transaction.MaxTransactions,
		CleanupInterval: cfg.Transaction.CleanupInterval,
		DefaultTimeout:  cfg.Transaction.DefaultTimeout,
		SingleWriter:    cfg.Transaction.SingleWriter,
	})
	txns.StartSweeper()

	cat := catalog.New()

	idxSvc, err := index.NewService(store, cfg.Cache.IndexLookupCapacity)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("building index service: %w", err)
	}

	authCfg := auth.Config{
		MinPasswordLength: cfg.Auth.MinPasswordLength,
		MaxFailedLogins:   cfg.Auth.MaxFailedLogins,
		LockoutDuration:   cfg.Auth.LockoutDuration,
		SessionTTL:        cfg.Auth.SessionTTL,
		SeedDefaultUsers:  cfg.Auth.SeedDefaultUsers,
	}
	authn, err := auth.NewAuthenticator(authCfg)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating authenticator: %w", err)
	}

	svcCfg := service.Config{
		OptimizerProfile:      optimizer.Profile(cfg.Optimizer.CostProfile),
		OptimizerMaxIteration: cfg.Optimizer.MaxRounds,
		OptimizerMaxExplore:   cfg.Optimizer.MaxRounds,
		DisabledRules:         cfg.Optimizer.DisabledRules,
		TxnDefaultOpts: txn.Options{
			Timeout:        cfg.Transaction.DefaultTimeout,
			Durability:     cfg.Durability(),
			TwoPhaseCommit: cfg.Transaction.TwoPhaseCommit,
		},
	}
	svc := service.New(store, txns, cat, idxSvc, authn, queryparser.NewParser(), svcCfg)

	return &components{cfg: &cfg, log: log, store: store, txns: txns, svc: svc, authn: authn}, nil
}

func (c *components) Close() {
	c.txns.StopSweeper()
	c.store.Close()
}

// runServe implements `graphdb serve --config <path>`: wires the full
// stack, starts the HTTP server, and blocks until SIGINT/SIGTERM the way
// the teacher's runServe does.
func runServe(cmd *cobra.Command, args []string) error {
	c, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	httpCfg := httpapi.DefaultConfig()
	httpCfg.BindAddress = c.cfg.HTTP.BindAddress
	httpCfg.Port = c.cfg.HTTP.Port

	srv := httpapi.New(c.svc, c.authn, c.cfg.Auth.Enabled, c.log, httpCfg)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("starting HTTP server: %w", err)
	}

	c.log.Info("graphdb listening on %s", srv.Addr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	c.log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		return fmt.Errorf("stopping HTTP server: %w", err)
	}
	return nil
}

// runQuery implements `graphdb query --query <text>`: opens the same
// storage/service stack as serve, without an HTTP listener, runs one
// statement as an unauthenticated admin-equivalent local session, prints
// the result, and exits non-zero on any failure (spec §6 "Exit code 0 on
// success; non-zero on initialization or query failure").
func runQuery(cmd *cobra.Command, args []string) error {
	statement, _ := cmd.Flags().GetString("query")
	if statement == "" {
		return fmt.Errorf("query: --query is required")
	}
	spaceName, _ := cmd.Flags().GetString("space")

	c, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	if _, err := c.authn.CreateUser("cli", "cli-local-0000", []auth.Role{auth.RoleAdmin}); err != nil &&
		grapherr.AsGraphError(err).Code != grapherr.CodeResourceAlreadyExists {
		return fmt.Errorf("provisioning local cli user: %w", err)
	}
	sessionID, _, err := c.authn.Authenticate("cli", "cli-local-0000")
	if err != nil {
		return fmt.Errorf("authenticating local cli user: %w", err)
	}

	sess, err := c.svc.CreateSession(sessionID)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	if spaceName != "" {
		if err := c.svc.UseSpace(sess.ID, spaceName); err != nil {
			return fmt.Errorf("selecting space %q: %w", spaceName, err)
		}
	}

	result, err := c.svc.Query(context.Background(), sess.ID, statement)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	fmt.Printf("columns: %v\n", result.Columns)
	for _, row := range result.Rows {
		fmt.Printf("%v\n", row)
	}
	fmt.Printf("rows_scanned=%d rows_returned=%d elapsed=%.4fs\n",
		result.Stats.RowsScanned, result.Stats.RowsReturned, result.Stats.ElapsedSeconds)
	return nil
}
