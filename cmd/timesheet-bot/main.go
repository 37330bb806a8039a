package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/username/timesheet-bot/internal/config"
	"github.com/username/timesheet-bot/internal/timesheet"
	"github.com/username/timesheet-bot/internal/workday"
	"github.com/username/timesheet-bot/pkg/dateutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath string
	logger     = zap.NewNop()
)

// rootOptions holds the flags of the default fill/show/delete command
type rootOptions struct {
	date      string
	start     string
	end       string
	delete    bool
	show      bool
	dryRun    bool
	teeOutput string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "timesheet-bot",
		Short: "Harvest timesheet auto-filler",
		Long: "Fill a Harvest timesheet with the configured daily entries for every workday in a range,\n" +
			"skipping weekends and public holidays. Without flags the current work week is filled.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log settings
			cfg, err := config.Load(configPath)
			switch {
			case err == nil && cfg.Log.File != "":
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					logger = initLogger(cfg.Log.Level) // Fallback to console
				}
			case err == nil:
				logger = initLogger(cfg.Log.Level)
			default:
				logger = initLogger("info") // Default console logger
			}
			logger = logger.With(zap.String("run_id", uuid.NewString()))
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd.Context(), opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default ./config.yaml or $HOME/.timesheet-bot/config.yaml)")

	flags := rootCmd.Flags()
	flags.StringVar(&opts.date, "date", "", "A single date (DD/MM/YYYY)")
	flags.StringVar(&opts.start, "start", "", "Start date for range (DD/MM/YYYY)")
	flags.StringVar(&opts.end, "end", "", "End date for range (DD/MM/YYYY)")
	flags.BoolVar(&opts.delete, "delete", false, "Delete all time entries for the selected dates")
	flags.BoolVar(&opts.show, "show", false, "Show all time entries for the selected dates")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Preview actions without writing to Harvest")
	flags.StringVar(&opts.teeOutput, "tee-output", "", "Mirror output to file")

	rootCmd.MarkFlagsRequiredTogether("start", "end")
	rootCmd.MarkFlagsMutuallyExclusive("date", "start")
	rootCmd.MarkFlagsMutuallyExclusive("date", "end")
	rootCmd.MarkFlagsMutuallyExclusive("show", "delete")

	rootCmd.AddCommand(projectsCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(authCmd())

	return rootCmd
}

func runRoot(ctx context.Context, opts *rootOptions) error {
	restore, err := teeOutput(opts.teeOutput)
	if err != nil {
		return err
	}
	defer restore()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	a, err := newApp(ctx, cfg, opts.dryRun)
	if err != nil {
		return err
	}

	switch {
	case opts.show:
		return runShow(ctx, a, opts)
	case opts.delete:
		return runDelete(ctx, a, opts)
	default:
		return runFill(ctx, a, opts)
	}
}

// window returns the explicit date or range, or Monday..Friday of the current week
func window(a *app, opts *rootOptions) (dateutil.Date, dateutil.Date, error) {
	format := a.cfg.Dates.GetInputFormat()

	switch {
	case opts.date != "":
		d, err := workday.ParseDate(format, opts.date)
		return d, d, err
	case opts.start != "":
		from, err := workday.ParseDate(format, opts.start)
		if err != nil {
			return dateutil.Date{}, dateutil.Date{}, err
		}
		to, err := workday.ParseDate(format, opts.end)
		return from, to, err
	default:
		from, to := a.resolver.CurrentWeekBounds()
		return from, to, nil
	}
}

func runFill(ctx context.Context, a *app, opts *rootOptions) error {
	if err := a.cfg.ValidateEntries(); err != nil {
		return fmt.Errorf("invalid entries: %w", err)
	}

	from, to, err := window(a, opts)
	if err != nil {
		return err
	}

	logger.Info("Starting timesheet fill",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Int("entries", len(a.cfg.Entries)),
		zap.Bool("dry_run", a.sync.DryRun()))

	summary, err := a.sync.FillWorkdays(ctx, a.resolver.StreamRange(ctx, from, to), a.cfg.EntrySpecs(), a.printer.printDay)
	if err != nil {
		return fmt.Errorf("fill aborted: %w", err)
	}

	printFillSummary(summary, a.sync.DryRun())
	return nil
}

func runShow(ctx context.Context, a *app, opts *rootOptions) error {
	from, to, err := window(a, opts)
	if err != nil {
		return err
	}

	entries, err := a.sync.ListRange(ctx, from, to)
	if err != nil {
		return err
	}

	printEntries(entries, from, to)
	return nil
}

func runDelete(ctx context.Context, a *app, opts *rootOptions) error {
	from, to, err := window(a, opts)
	if err != nil {
		return err
	}

	syncPrintf("%s\n", headerStyle.Render(fmt.Sprintf("🗑  Deleting time entries %s .. %s", from, to)))

	outcomes, err := a.sync.DeleteRange(ctx, from, to)
	if err != nil {
		return err
	}

	printDeletes(outcomes, a.sync.DryRun())

	if failed := timesheet.CountDeletes(outcomes, timesheet.StatusFailed); failed > 0 {
		logger.Warn("Some entries could not be deleted", zap.Int("failed", failed))
	}
	return nil
}

// teeOutput mirrors console output to path until the returned func is called
func teeOutput(path string) (func(), error) {
	syncWriter = os.Stdout
	if path == "" {
		return func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create tee path: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open tee-output file: %w", err)
	}
	syncWriter = io.MultiWriter(os.Stdout, f)
	syncPrintf("📝 Output is mirrored to %s\n", path)

	return func() {
		syncWriter = os.Stdout
		f.Close()
	}, nil
}

func initLogger(level string) *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err == nil {
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	}

	l, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	return l
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	// Setup encoder
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Parse log level
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	// Create core with lumberjack writer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
