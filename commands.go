package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"daynight-wallpaper/internal/app"
	"daynight-wallpaper/internal/clock"
	"daynight-wallpaper/internal/config"
	"daynight-wallpaper/internal/history"
	"daynight-wallpaper/internal/ini"
	"daynight-wallpaper/internal/logging"
)

var (
	flagConfig   string
	flagDataDir  string
	flagLogPath  string
	flagLogLevel string
	flagPoll     time.Duration
	flagHeadless bool
	flagNoWatch  bool
)

var rootCmd = &cobra.Command{
	Use:           "daynight-wallpaper",
	Short:         "Switch the desktop wallpaper between day and night images",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runApp,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", config.DefaultPath, "path to config.ini")
	pf.StringVar(&flagDataDir, "data-dir", "", "directory for history.db (defaults to the config's directory)")
	pf.StringVar(&flagLogPath, "log", logging.DefaultPath, "log file (empty disables file logging)")
	pf.StringVar(&flagLogLevel, "log-level", "error", "debug, info, warn, error or none")

	rootCmd.Flags().DurationVar(&flagPoll, "poll", time.Second, "how often the current hour is checked")
	rootCmd.Flags().BoolVar(&flagHeadless, "headless", false, "run without a tray icon")
	rootCmd.Flags().BoolVar(&flagNoWatch, "no-watch", false, "do not watch config.ini for changes")

	historyCmd.Flags().IntP("limit", "n", 10, "number of transitions to show")

	rootCmd.AddCommand(applyCmd, statusCmd, getCmd, setCmd, imageCmd, initCmd, historyCmd)
}

func newLogger(headless bool) (*zap.SugaredLogger, func() error, error) {
	opts := logging.Options{Path: flagLogPath, Level: flagLogLevel}
	if headless {
		opts.Tee = os.Stderr
	}
	return logging.New(opts)
}

func runApp(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger(flagHeadless)
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := app.New(app.Options{
		ConfigPath: flagConfig,
		DataDir:    flagDataDir,
		PollEvery:  flagPoll,
		Headless:   flagHeadless,
		NoWatch:    flagNoWatch,
		Logger:     logger,
	})
	if err != nil {
		logger.Errorw("startup failed", "error", err)
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Run(ctx)
}

// --- apply ---

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply the wallpaper for the current time once and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, closeLog, err := newLogger(true)
		if err != nil {
			return err
		}
		defer closeLog()

		a, err := app.New(app.Options{
			ConfigPath: flagConfig,
			DataDir:    flagDataDir,
			Headless:   true,
			NoWatch:    true,
			Logger:     logger,
		})
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Apply(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Applied %s wallpaper\n", a.Status().Phase)
		return nil
	},
}

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the configured window, current phase and last transition",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := config.NewStore(flagConfig)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		cfg, err := store.Load()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Config:  %s\n", store.Path)
		fmt.Fprintf(out, "Day:     %s\n", cfg.DayImage)
		fmt.Fprintf(out, "Night:   %s\n", cfg.NightImage)
		fmt.Fprintf(out, "Window:  %02d:00 - %02d:00\n", cfg.From, cfg.To)

		if p, err := clock.Classify(time.Now().Hour(), cfg.From, cfg.To); err != nil {
			fmt.Fprintf(out, "Now:     %v\n", err)
		} else {
			fmt.Fprintf(out, "Now:     %s\n", p)
			fmt.Fprintf(out, "Next:    %s at %02d:00\n", p.Other(), nextBoundary(p, cfg))
		}

		switch p, err := store.LoadState(); {
		case err == nil:
			fmt.Fprintf(out, "Stored:  %s\n", p)
		case errors.Is(err, ini.ErrNotFound):
			fmt.Fprintln(out, "Stored:  (none)")
		default:
			return err
		}

		hist, err := openHistory(store)
		if err != nil {
			return err
		}
		defer hist.Close()
		last, err := hist.Last(cmd.Context())
		switch {
		case err == nil:
			fmt.Fprintf(out, "Changed: %s -> %s %s\n", last.From, last.To, humanize.Time(last.At))
		case errors.Is(err, history.ErrNotFound):
			fmt.Fprintln(out, "Changed: never")
		default:
			return err
		}
		return nil
	},
}

// --- get / set ---

var getCmd = &cobra.Command{
	Use:   "get <section> <key>",
	Short: "Print a raw value from config.ini",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := config.NewStore(flagConfig)
		if err != nil {
			return err
		}
		v, err := ini.ReadValue(store.Path, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <section> <key> <value>",
	Short: "Write a raw value to config.ini",
	Long: `Write a raw value to config.ini.

Examples:
  daynight-wallpaper set Time FROM 6
  daynight-wallpaper set Path NIGHT ./images/night.png

The [State] section is owned by the running app and cannot be set here.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		section, key, value := args[0], args[1], args[2]
		if section == config.SectionState {
			return fmt.Errorf("[%s] is managed by the app", config.SectionState)
		}
		if section == config.SectionTime {
			if _, err := strconv.Atoi(value); err != nil {
				return fmt.Errorf("%s must be an hour, got %q", key, value)
			}
		}
		store, err := config.NewStore(flagConfig)
		if err != nil {
			return err
		}
		return ini.WriteValue(store.Path, section, key, value)
	},
}

var imageCmd = &cobra.Command{
	Use:   "image <day|night> <path>",
	Short: "Set the wallpaper image used for a phase",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := clock.ParsePhase(args[0])
		if err != nil {
			return err
		}
		store, err := config.NewStore(flagConfig)
		if err != nil {
			return err
		}
		if err := store.SetImage(p, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s image set to %s\n", p, args[1])
		return nil
	},
}

// nextBoundary returns the hour at which the phase after p begins.
func nextBoundary(p clock.Phase, cfg config.Config) int {
	if p == clock.Day {
		return cfg.To
	}
	return cfg.From
}

// --- init ---

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config.ini with default values if it does not exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := config.NewStore(flagConfig)
		if err != nil {
			return err
		}
		if err := ini.CreateDefault(store.Path); err != nil {
			if errors.Is(err, ini.ErrExists) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", store.Path)
				return nil
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", store.Path)
		return nil
	},
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent wallpaper transitions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := config.NewStore(flagConfig)
		if err != nil {
			return err
		}
		hist, err := openHistory(store)
		if err != nil {
			return err
		}
		defer hist.Close()

		recent, err := hist.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(recent) == 0 {
			fmt.Fprintln(out, "No transitions recorded")
			return nil
		}
		for _, t := range recent {
			fmt.Fprintf(out, "%s  %-5s -> %-5s  %s (%s)\n",
				t.At.Format("2006-01-02 15:04"), t.From, t.To, t.Image, humanize.Time(t.At))
		}
		return nil
	},
}

func openHistory(store *config.Store) (*history.Store, error) {
	dir := flagDataDir
	if dir == "" {
		dir = filepath.Dir(store.Path)
	}
	return history.Open(dir)
}
