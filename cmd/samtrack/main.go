package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"samtrack/internal/config"
	"samtrack/internal/llm"
	"samtrack/internal/report"
	"samtrack/internal/server"
	"samtrack/internal/store"
	"samtrack/internal/summary"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

// codeError returns an exitErr for the given code.
func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

var (
	cfgPath string
	verbose bool
	logger  *zap.Logger
)

func main() {
	root := &cobra.Command{
		Use:     "samtrack",
		Short:   "Track government contract opportunities with AI summaries",
		Long:    "samtrack tracks government contract opportunities and bulk-generates five-bullet AI summaries of their descriptions.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zcfg := zap.NewProductionConfig()
			if verbose {
				zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = zcfg.Build()
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "samtrack.yaml", "Config file path")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	var summarizeFlags struct {
		force  bool
		format string
	}
	summarizeCmd := &cobra.Command{
		Use:   "summarize",
		Short: "Generate AI summaries for all visible opportunities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(cmd.Context(), summarizeFlags.force, summarizeFlags.format)
		},
	}
	summarizeCmd.Flags().BoolVar(&summarizeFlags.force, "force", false, "Regenerate rows that already have a summary")
	summarizeCmd.Flags().StringVar(&summarizeFlags.format, "format", "text", "Output format: text or json")

	importCmd := &cobra.Command{
		Use:   "import <csv-file>",
		Short: "Import opportunities from a portal CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args[0])
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tracker HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(summarizeCmd, importCmd, serveCmd)

	if err := root.Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		// cobra already printed the error
		os.Exit(1)
	}
}

// openDeps loads configuration and opens the store.
func openDeps() (*config.Config, *store.Store, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, codeError(3, "loading config: %s", err)
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, codeError(3, "opening store: %s", err)
	}
	return cfg, st, nil
}

// buildSummarizer constructs the summary client when a credential is
// present. Returns nil when unconfigured; the orchestrator's pre-flight
// gate guarantees an unconfigured run never reaches the client.
func buildSummarizer(cfg *config.Config) (server.Summarizer, error) {
	if !cfg.ProviderConfigured() {
		return nil, nil
	}
	provider, err := llm.NewProvider(cfg.Model, cfg.APIKey)
	if err != nil {
		return nil, codeError(4, "creating provider: %s", err)
	}
	return summary.New(provider, cfg.CallTimeout, logger), nil
}

func runSummarize(ctx context.Context, force bool, format string) error {
	renderer, err := report.NewRenderer(format)
	if err != nil {
		return codeError(3, "invalid format: %s", err)
	}

	cfg, st, err := openDeps()
	if err != nil {
		return err
	}
	defer st.Close()

	sum, err := buildSummarizer(cfg)
	if err != nil {
		return err
	}

	res, err := server.RunBulk(ctx, cfg, st, sum, force, logger)
	if err != nil {
		return codeError(5, "bulk run: %s", err)
	}

	out, err := renderer.Render(res)
	if err != nil {
		return codeError(3, "rendering result: %s", err)
	}
	if _, err := os.Stdout.Write(out); err != nil {
		return codeError(3, "writing output: %s", err)
	}
	if len(out) > 0 && out[len(out)-1] != '\n' {
		fmt.Fprintln(os.Stdout)
	}
	return nil
}

func runImport(path string) error {
	_, st, err := openDeps()
	if err != nil {
		return err
	}
	defer st.Close()

	f, err := os.Open(path)
	if err != nil {
		return codeError(3, "opening %s: %s", path, err)
	}
	defer f.Close()

	n, err := st.ImportCSV(f)
	if err != nil {
		return codeError(3, "importing %s: %s", path, err)
	}
	fmt.Printf("Imported %d opportunities\n", n)
	return nil
}

func runServe(ctx context.Context) error {
	cfg, st, err := openDeps()
	if err != nil {
		return err
	}
	defer st.Close()

	sum, err := buildSummarizer(cfg)
	if err != nil {
		return err
	}
	if !cfg.ProviderConfigured() {
		logger.Warn("no API key set; AI summary features are disabled",
			zap.String("env_var", config.CredentialVar(cfg.Model)))
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(cfg, st, sum, logger).Handler(),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	logger.Info("serving", zap.String("addr", cfg.ListenAddr), zap.Bool("production", cfg.Production))

	select {
	case err := <-errCh:
		return codeError(5, "server: %s", err)
	case <-ctx.Done():
		logger.Info("shutting down")
		return srv.Shutdown(context.Background())
	}
}
