package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
	"github.com/comitanigiacomo/dayrise-engine/internal/core/progress"
	"github.com/comitanigiacomo/dayrise-engine/internal/core/services"
)

type options struct {
	snapshot string
	timezone string
	user     string
	today    string
	maxWalk  int
	month    string
}

// session is what every subcommand needs: the loaded data, the user and a
// stats service pinned to the chosen day.
type session struct {
	svc   *services.StatsService
	input domain.StatsInput
	now   time.Time
}

func (o *options) open(ctx context.Context) (*session, error) {
	if o.snapshot == "" {
		return nil, fmt.Errorf("--snapshot is required")
	}

	loc, err := time.LoadLocation(o.timezone)
	if err != nil {
		return nil, fmt.Errorf("--tz: %w", domain.ErrInvalidTimezone)
	}

	now, err := parseToday(o.today, loc)
	if err != nil {
		return nil, err
	}

	snap, err := readSnapshot(o.snapshot)
	if err != nil {
		return nil, err
	}

	st, err := snap.load(ctx, progress.NewCalendar(loc))
	if err != nil {
		return nil, err
	}

	userID, err := st.resolveUser(o.user)
	if err != nil {
		return nil, err
	}

	svc := services.NewStatsService(st.routines, st.logs, nil, services.StatsConfig{
		MaxWalk: o.maxWalk,
		Now:     func() time.Time { return now },
	})

	return &session{
		svc:   svc,
		input: domain.StatsInput{UserID: userID, Location: loc},
		now:   now,
	}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "routinestats",
		Short: "Compute routine streaks and completion rates from an export",
		Long: `routinestats reads a JSON export of routines and logs and prints the
same numbers the API serves, computed offline.

The export holds "routines" and "logs" arrays. Timestamps are RFC 3339 or
"YYYY-MM-DD HH:MM:SS"; a single unreadable timestamp aborts the run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.snapshot, "snapshot", "s", "", "path to the JSON export")
	flags.StringVar(&opts.timezone, "tz", "UTC", "IANA timezone that decides calendar days")
	flags.StringVarP(&opts.user, "user", "u", "", "user id (optional when the export has one user)")
	flags.StringVar(&opts.today, "today", "", "evaluate as of this date, YYYY-MM-DD (default: now)")
	flags.IntVar(&opts.maxWalk, "max-walk", progress.DefaultMaxWalk, "longest streak a backward walk will count")

	root.AddCommand(&cobra.Command{
		Use:   "profile",
		Short: "Print the progress view: monthly rates, 28-day series, streaks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := s.svc.GetProfileStats(cmd.Context(), s.input)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), stats)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "home",
		Short: "Print today's routines with their streaks and period goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			summary, err := s.svc.GetHomeSummary(cmd.Context(), s.input)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	})

	monthly := &cobra.Command{
		Use:   "monthly",
		Short: "Print the completion rate of one month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}

			month := s.now.In(s.input.Location)
			if opts.month != "" {
				month, err = time.Parse("2006-01", opts.month)
				if err != nil {
					return fmt.Errorf("--month must be YYYY-MM: %w", err)
				}
			}

			rate, err := s.svc.GetMonthlyRate(cmd.Context(), s.input, month.Year(), month.Month())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rate)
		},
	}
	monthly.Flags().StringVarP(&opts.month, "month", "m", "", "month as YYYY-MM (default: the current one)")
	root.AddCommand(monthly)

	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
