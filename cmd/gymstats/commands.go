package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/2beens/gymstats/internal/config"
	"github.com/2beens/gymstats/internal/gymstats"
	"github.com/2beens/gymstats/internal/gymstats/analytics"
	"github.com/2beens/gymstats/internal/logging"
	"github.com/2beens/gymstats/internal/telemetry/metrics"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

type cliApp struct {
	env        string
	configPath string
	userID     string
	now        string

	backends *gymstats.Backends
	service  *analytics.Service
}

func newRootCmd() (*cobra.Command, *cliApp) {
	app := &cliApp{}

	rootCmd := &cobra.Command{
		Use:           "gymstats",
		Short:         "Fitness analytics over the gymstats record store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.open(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.env, "env", "development", "environment [prod | production | dev | development]")
	flags.StringVar(&app.configPath, "config", "./config.toml", "path to TOML config file")
	flags.StringVarP(&app.userID, "user", "u", "", "user id")
	flags.StringVar(&app.now, "now", "", "evaluate as of this date (YYYY-MM-DD), defaults to today")

	rootCmd.AddCommand(
		app.trendCmd(),
		app.plateausCmd(),
		app.suggestCmd(),
		app.predictCmd(),
		app.refreshCmd(),
		app.correlateCmd(),
		app.seedCmd(),
	)
	return rootCmd, app
}

func (a *cliApp) open(cmd *cobra.Command) error {
	_ = godotenv.Load()

	cfg, err := config.Load(a.env, a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogLevel:    cfg.LogLevel,
		Environment: cfg.Environment,
	})
	log.SetOutput(cmd.ErrOrStderr())

	a.backends, err = gymstats.OpenBackends(cmd.Context(), gymstats.OpenBackendsParams{
		Config:           cfg,
		PostgresPassword: os.Getenv("GYMSTATS_POSTGRES_PASS"),
		RedisPassword:    os.Getenv("GYMSTATS_REDIS_PASS"),
	})
	if err != nil {
		return fmt.Errorf("open backends: %w", err)
	}

	a.service, err = gymstats.NewAnalyticsService(
		cfg,
		a.backends.Store,
		a.backends.Cache,
		metrics.NewManager("gymstats", "cli", metrics.SetupPrometheus()),
	)
	if err != nil {
		_ = a.close()
		return fmt.Errorf("analytics service: %w", err)
	}
	return nil
}

func (a *cliApp) close() error {
	if a.backends == nil {
		return nil
	}
	err := a.backends.Close()
	a.backends = nil
	return err
}

func (a *cliApp) nowTime() (time.Time, error) {
	if a.now == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(dateLayout, a.now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now: use YYYY-MM-DD")
	}
	// end of that day, so records logged on it count
	return t.Add(24*time.Hour - time.Second), nil
}

type rangeFlags struct {
	from string
	to   string
}

func (rf *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&rf.from, "from", "", "range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&rf.to, "to", "", "range end (YYYY-MM-DD)")
}

func (rf *rangeFlags) params() (analytics.RangeParams, error) {
	var r analytics.RangeParams
	if rf.from != "" {
		t, err := time.Parse(dateLayout, rf.from)
		if err != nil {
			return r, fmt.Errorf("invalid --from: use YYYY-MM-DD")
		}
		r.From = &t
	}
	if rf.to != "" {
		t, err := time.Parse(dateLayout, rf.to)
		if err != nil {
			return r, fmt.Errorf("invalid --to: use YYYY-MM-DD")
		}
		end := t.Add(24*time.Hour - time.Second)
		r.To = &end
	}
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return r, fmt.Errorf("invalid range: --to before --from")
	}
	return r, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *cliApp) trendCmd() *cobra.Command {
	var rf rangeFlags
	var window int
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Body weight trend and moving average",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := rf.params()
			if err != nil {
				return err
			}
			report, err := a.service.WeightTrend(cmd.Context(), a.userID, r, window)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	rf.register(cmd)
	cmd.Flags().IntVar(&window, "window", analytics.DefaultMovingAverageWindow, "moving average window (points)")
	return cmd
}

func (a *cliApp) plateausCmd() *cobra.Command {
	var rf rangeFlags
	var exercise string
	cmd := &cobra.Command{
		Use:   "plateaus",
		Short: "Plateau periods and sticking points per exercise",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := rf.params()
			if err != nil {
				return err
			}
			reports, err := a.service.Plateaus(cmd.Context(), a.userID, exercise, r)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), reports)
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVarP(&exercise, "exercise", "e", "", "only this exercise")
	return cmd
}

func (a *cliApp) suggestCmd() *cobra.Command {
	var exercise string
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Next session suggestion (all exercises when --exercise is empty)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if exercise == "" {
				suggestions, err := a.service.SuggestAll(cmd.Context(), a.userID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), suggestions)
			}
			suggestion, err := a.service.SuggestNext(cmd.Context(), a.userID, exercise)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), suggestion)
		},
	}
	cmd.Flags().StringVarP(&exercise, "exercise", "e", "", "exercise name")
	return cmd
}

func (a *cliApp) predictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict",
		Short: "Goal achievement predictions for the active goals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now, err := a.nowTime()
			if err != nil {
				return err
			}
			predictions, err := a.service.PredictGoals(cmd.Context(), a.userID, now)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), predictions)
		},
	}
}

func (a *cliApp) refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Recompute and store the current value of the active goals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now, err := a.nowTime()
			if err != nil {
				return err
			}
			result, err := a.service.RefreshGoalProgress(cmd.Context(), a.userID, now)
			if result != nil {
				if printErr := printJSON(cmd.OutOrStdout(), result); printErr != nil {
					return printErr
				}
			}
			return err
		},
	}
}

func (a *cliApp) correlateCmd() *cobra.Command {
	var rf rangeFlags
	cmd := &cobra.Command{
		Use:   "correlate",
		Short: "Correlation between body weight and daily training volume",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := rf.params()
			if err != nil {
				return err
			}
			analysis, err := a.service.WeightVolumeCorrelation(cmd.Context(), a.userID, r)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), analysis)
		},
	}
	rf.register(cmd)
	return cmd
}

func (a *cliApp) seedCmd() *cobra.Command {
	var days int
	var seed int64
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the store with a generated demo history for --user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now, err := a.nowTime()
			if err != nil {
				return err
			}
			summary, err := gymstats.SeedStore(cmd.Context(), a.backends.Store, gymstats.SeedParams{
				UserID: a.userID,
				Days:   days,
				Now:    now,
				Faker:  gofakeit.New(seed),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().IntVar(&days, "days", 120, "days of history to generate")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed, same seed gives the same history")
	return cmd
}
