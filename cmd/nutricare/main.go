package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"ai-nutricare/internal/app"
	"ai-nutricare/internal/config"
	"ai-nutricare/internal/database"
	"ai-nutricare/internal/gateway"
	"ai-nutricare/internal/logging"
	"ai-nutricare/internal/report"
	"ai-nutricare/internal/session"
	"ai-nutricare/internal/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg         *config.Config
	logger      *zap.Logger
	db          *database.DB
	application *app.App
)

// cliNamespace scopes the identity held by the command line.
const cliNamespace = "cli"

var rootCmd = &cobra.Command{
	Use:   "nutricare",
	Short: "AI-NutriCare - clinical analysis and 7-day diet plans from lab results",
	Long: `AI-NutriCare sends a lab report PDF or manually entered biomarkers to the
analysis service and shows the clinical summary and a 7-day meal plan.

Run without arguments to start the interactive dashboard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}

		// The dashboard owns the terminal, so it logs to a file.
		if cmd == cmd.Root() {
			logger, err = logging.NewFile(filepath.Join(filepath.Dir(cfg.DatabasePath), "nutricare.log"), level)
		} else {
			logger, err = logging.New(level)
		}
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		db, err = database.NewDB(cfg.DatabasePath, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}

		application = app.NewApp(
			cfg,
			logger,
			gateway.NewClient(cfg, logger),
			session.NewManager(storage.NewSQLiteKV(db.SQL, cliNamespace)),
			report.NewExporter(),
			cmd.OutOrStdout(),
		)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return application.Dashboard(cmd.Context(), cfg.Preferences())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(analyzeCmd, exportCmd, loginCmd, signupCmd, logoutCmd, whoamiCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes the command line and releases the database and logger
// whether or not the command failed.
func run(ctx context.Context, args []string) error {
	defer closeResources()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func closeResources() {
	if db != nil {
		_ = db.Close()
		db = nil
	}
	if logger != nil {
		_ = logger.Sync()
		logger = nil
	}
}
