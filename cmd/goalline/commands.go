package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/goalline/internal/backtest"
	"github.com/yourusername/goalline/internal/models"
	"github.com/yourusername/goalline/internal/notify"
)

func newSyncCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync [championship-id...]",
		Short: "Pull fixtures and teams from the provider",
		Long:  `Syncs the given championships, or every configured championship when none is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := championshipIDs(args, opts.cfg.FootballAPI.Championships)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), opts.cfg, opts.log)
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := a.ingestion.SyncAll(cmd.Context(), ids)
			for _, m := range results {
				fmt.Fprintln(cmd.OutOrStdout(), m.String())
			}
			return err
		},
	}
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var home, away, team int64
	var asOf string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a fixture (--home/--away) or a single team (--team)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if team == 0 && (home == 0 || away == 0) {
				return fmt.Errorf("either --team or both --home and --away are required")
			}

			a, err := newApp(cmd.Context(), opts.cfg, opts.log)
			if err != nil {
				return err
			}
			defer a.Close()

			when, err := parseDay(asOf, a.location, time.Now())
			if err != nil {
				return err
			}

			if team != 0 {
				analysis, err := a.analysis.TeamAnalysis(cmd.Context(), team, when)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), analysis)
			}
			analysis, err := a.analysis.AnalyzeMatch(cmd.Context(), home, away, when)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), analysis)
		},
	}

	cmd.Flags().Int64Var(&home, "home", 0, "Home team ID")
	cmd.Flags().Int64Var(&away, "away", 0, "Away team ID")
	cmd.Flags().Int64Var(&team, "team", 0, "Team ID for a single-team breakdown")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Only use matches before this date (YYYY-MM-DD)")
	return cmd
}

func newScanCmd(opts *rootOptions) *cobra.Command {
	var championship int64
	var days int

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List upcoming fixtures with a qualifying scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts.cfg, opts.log)
			if err != nil {
				return err
			}
			defer a.Close()

			var champ *int64
			if championship > 0 {
				champ = &championship
			}
			if days <= 0 {
				days = opts.cfg.Analysis.DaysAhead
			}

			report, err := a.analysis.FindOpportunities(cmd.Context(), champ, time.Now(), days)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().Int64Var(&championship, "championship", 0, "Restrict to one championship")
	cmd.Flags().IntVar(&days, "days", 0, "Days ahead to scan (defaults to analysis.days_ahead)")
	return cmd
}

func newRecommendCmd(opts *rootOptions) *cobra.Command {
	var bankroll float64
	var date string
	var publish bool

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Build the daily recommendation portfolio",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts.cfg, opts.log)
			if err != nil {
				return err
			}
			defer a.Close()

			day, err := parseDay(date, a.location, a.today())
			if err != nil {
				return err
			}
			if bankroll <= 0 {
				bankroll = opts.cfg.Analysis.DefaultBankroll
			}

			recs, _, err := a.analysis.DailyRecommendations(cmd.Context(), bankroll, day)
			if err != nil {
				return err
			}
			if publish {
				if err := publishTelegram(cmd, a, recs); err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), recs)
		},
	}

	cmd.Flags().Float64Var(&bankroll, "bankroll", 0, "Bankroll to stake from (defaults to analysis.default_bankroll)")
	cmd.Flags().StringVar(&date, "date", "", "Fixture date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().BoolVar(&publish, "publish", false, "Also send the portfolio to the configured Telegram chat")
	return cmd
}

func publishTelegram(cmd *cobra.Command, a *app, recs *models.DailyRecommendations) error {
	if !a.cfg.Telegram.Enabled {
		return fmt.Errorf("telegram is not enabled in the configuration")
	}
	tg, err := notify.NewTelegramNotifier(a.cfg.Telegram, a.repos.Team, a.log)
	if err != nil {
		return err
	}
	return tg.Publish(cmd.Context(), recs)
}

func newBacktestCmd(opts *rootOptions) *cobra.Command {
	var start, end, output, equityCSV string
	var championship int64
	var monteCarlo bool

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay a championship period and report how the picks would have performed",
		RunE: func(cmd *cobra.Command, args []string) error {
			btCfg := opts.cfg.Backtest
			if start != "" {
				btCfg.StartDate = start
			}
			if end != "" {
				btCfg.EndDate = end
			}
			if championship > 0 {
				btCfg.ChampionshipID = championship
			}
			if output != "" {
				btCfg.OutputPath = output
			}
			bt, err := backtest.FromConfig(&btCfg, &opts.cfg.Analysis)
			if err != nil {
				return fmt.Errorf("invalid backtest config: %w", err)
			}

			a, err := newApp(cmd.Context(), opts.cfg, opts.log)
			if err != nil {
				return err
			}
			defer a.Close()

			engine, err := backtest.NewEngine(bt, a.repos.Match, a.scanner, opts.log)
			if err != nil {
				return err
			}
			state, m, err := engine.Run(cmd.Context())
			if err != nil {
				return err
			}

			var mc *backtest.MonteCarloResult
			if monteCarlo && len(state.Bets) > 0 {
				result, err := backtest.RunMonteCarlo(cmd.Context(), state.Bets, backtest.MonteCarloConfig{
					Iterations:      bt.MonteCarloIterations,
					InitialBankroll: bt.InitialBankroll,
				})
				if err != nil {
					return fmt.Errorf("monte carlo failed: %w", err)
				}
				mc = &result
			}

			report := backtest.NewReport(state, m, mc)
			fmt.Fprintln(cmd.OutOrStdout(), backtest.GenerateConsoleReport(report))

			if bt.OutputPath != "" {
				if err := backtest.WriteJSONReport(report, bt.OutputPath); err != nil {
					return err
				}
				opts.log.WithField("path", bt.OutputPath).Info("Backtest report written")
			}
			if equityCSV != "" {
				if err := backtest.WriteEquityCSV(state.EquityCurve, equityCSV); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start-date", "", "Override start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end-date", "", "Override end date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&championship, "championship", 0, "Override championship ID")
	cmd.Flags().StringVar(&output, "output", "", "Override JSON report path")
	cmd.Flags().StringVar(&equityCSV, "equity-csv", "", "Also write the equity curve as CSV")
	cmd.Flags().BoolVar(&monteCarlo, "monte-carlo", true, "Run a Monte Carlo simulation over the settled bets")
	return cmd
}

func championshipIDs(args []string, configured []int64) ([]int64, error) {
	if len(args) == 0 {
		if len(configured) == 0 {
			return nil, fmt.Errorf("no championship given and none configured")
		}
		return configured, nil
	}
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid championship id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
