package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/examsync-backend/internal/app"
	board "github.com/yungbote/examsync-backend/internal/modules/practice/leaderboard"
	"github.com/yungbote/examsync-backend/internal/platform/envutil"
	"github.com/yungbote/examsync-backend/internal/platform/logger"
)

const nameWidth = 24

var errNoSharedCache = errors.New("leaderboard refresh needs REDIS_ADDR; without it the snapshot stays in this process and the server never sees it (use --dry-run to only print)")

var rootCmd = &cobra.Command{
	Use:   "leaderboard_refresh",
	Short: "Recompute the leaderboard snapshot once",
	Long: "Runs one leaderboard aggregation under the shared single-writer lease and publishes the\n" +
		"result. Intended for cron deployments that set LEADERBOARD_SCHEDULER_DISABLED=true.",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().Bool("dry-run", false, "compute and print the top entries without publishing")
	rootCmd.Flags().Int("top", 10, "entries to print")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	top, _ := cmd.Flags().GetInt("top")

	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	a, err := app.NewJobRunner(log)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := checkPublishable(dryRun, a.Clients.Redis != nil); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.Services.LeaderboardAggregator.Config().Budget+time.Minute)
	defer cancel()

	if dryRun {
		snap, err := a.Services.LeaderboardAggregator.Compute(ctx)
		if err != nil {
			return fmt.Errorf("compute leaderboard: %w", err)
		}
		printSnapshot(snap, top)
		return nil
	}

	ran, err := a.Services.LeaderboardScheduler.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("refresh leaderboard: %w", err)
	}
	if !ran {
		fmt.Println("Another writer holds the leaderboard lease; nothing to do.")
		return nil
	}
	snap, err := a.Clients.LeaderboardCache.Load(ctx)
	if err != nil {
		return fmt.Errorf("read published snapshot: %w", err)
	}
	printSnapshot(snap, top)
	return nil
}

func printSnapshot(snap *board.Snapshot, top int) {
	if snap == nil {
		fmt.Println("No snapshot.")
		return
	}
	fmt.Printf("Window %s .. %s, %d participants\n",
		snap.PeriodStart.Format(time.RFC3339), snap.PeriodEnd.Format(time.RFC3339), snap.Participants)
	entries := snap.Top(top)
	if len(entries) == 0 {
		fmt.Println("No ranked users.")
		return
	}
	fmt.Printf("%-5s  %-36s  %-24s  %-8s  %s\n", "Rank", "User", "Name", "Attempts", "Accuracy")
	fmt.Println(strings.Repeat("─", 90))
	for _, e := range entries {
		name := truncate(e.DisplayName, nameWidth)
		fmt.Printf("%-5d  %-36s  %-24s  %-8d  %.1f%%\n", e.Rank, e.UserID, name, e.AttemptsInPeriod, e.AccuracyInPeriod*100)
	}
}

// checkPublishable refuses a publishing run that has no shared cache to publish into.
func checkPublishable(dryRun, sharedCache bool) error {
	if dryRun || sharedCache {
		return nil
	}
	return errNoSharedCache
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
