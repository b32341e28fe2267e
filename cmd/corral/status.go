package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"corral/internal/state"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent partitioning runs",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "Number of runs to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	projectRoot, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	dbPath := state.ProjectDBPath(projectRoot)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	db, err := state.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open state database: %w", err)
	}
	defer db.Close()

	runs, err := db.RecentRuns(statusLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	for _, run := range runs {
		fmt.Printf("%s  %s  %s\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			shortID(run.ID),
			statusString(run.Status))
		if run.Detail != "" {
			fmt.Printf("    %s\n", run.Detail)
		}
		if run.InputTokens > 0 || run.OutputTokens > 0 {
			fmt.Printf("    tokens: %d in / %d out\n", run.InputTokens, run.OutputTokens)
		}
		for _, att := range run.Attempts {
			fmt.Printf("    attempt %d: %s%s\n", att.Attempt, statusString(att.Status),
				attemptDuration(att.StartedAt, att.FinishedAt))
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func statusString(status string) string {
	switch status {
	case "success":
		return color.GreenString(status)
	case "running", "":
		return color.CyanString("running")
	case "invalid", "exhausted":
		return color.YellowString(status)
	default:
		return color.RedString(status)
	}
}

func attemptDuration(started time.Time, finished *time.Time) string {
	if finished == nil {
		return ""
	}
	return fmt.Sprintf(" (%s)", finished.Sub(started).Round(time.Second))
}
