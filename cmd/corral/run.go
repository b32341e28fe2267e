package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"corral/internal/agent"
	"corral/internal/checklist"
	"corral/internal/config"
	"corral/internal/corpus"
	"corral/internal/logging"
	"corral/internal/orchestrator"
	"corral/internal/partition"
	"corral/internal/reconcile"
	"corral/internal/state"
	"corral/internal/watch"
)

var (
	runPlain          bool
	runKeepPartitions bool
	runMaxAttempts    int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Orchestrate the partitioning loop",
	Long: `Run the full partitioning loop against the configured corpus.

The agent proposes a partition set; corral validates it against the
actual corpus files and, on failure, feeds the complete diagnostic
report back to the agent for another attempt. The loop ends when the
partition set is valid or the attempt budget is spent.

Existing partition records are cleared at the start of the run unless
--keep-partitions is given.`,
	Args: cobra.NoArgs,
	RunE: runPartitioning,
}

func init() {
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "Stream progress as plain text instead of the TUI")
	runCmd.Flags().BoolVar(&runKeepPartitions, "keep-partitions", false, "Keep existing partition records instead of starting fresh")
	runCmd.Flags().IntVar(&runMaxAttempts, "max-attempts", 0, "Override the configured attempt budget")
}

func runPartitioning(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if runMaxAttempts > 0 {
		cfg.Run.MaxAttempts = runMaxAttempts
	}

	projectRoot, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	snap, err := corpus.Build(cfg.Corpus.Dir)
	if err != nil {
		return fmt.Errorf("scan corpus: %w", err)
	}
	if snap.Len() == 0 {
		return fmt.Errorf("corpus %s contains no files; run `corral fetch` first", cfg.Corpus.Dir)
	}

	store := partition.NewStore(cfg.Partitions.Dir)
	if !runKeepPartitions {
		removed, err := store.Reset()
		if err != nil {
			return fmt.Errorf("reset partitions: %w", err)
		}
		if removed > 0 {
			fmt.Printf("Cleared %d existing partition records.\n", removed)
		}
	}
	resetChecklist(projectRoot, cfg.Run.ChecklistID)

	logger, err := logging.NewRunLogger(projectRoot)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := state.Open(state.ProjectDBPath(projectRoot))
	if err != nil {
		return fmt.Errorf("open state database: %w", err)
	}
	defer db.Close()

	journal, err := db.StartRun()
	if err != nil {
		return fmt.Errorf("start run journal: %w", err)
	}

	factory, client, err := newRunnerFactory(cfg, store)
	if err != nil {
		return err
	}
	proposer := agent.NewProposer(factory, projectRoot)

	orch := orchestrator.New(orchestrator.Config{
		MaxAttempts: cfg.Run.MaxAttempts,
		DataDir:     cfg.Corpus.Dir,
		Sources:     snap.TopLevelDirs(),
		Commands:    agentCommands(cfg.Agent.Backend),
	}, proposer, func() (*reconcile.Result, error) {
		return reconcile.Check(cfg.Corpus.Dir, store)
	}, logger)
	orch.Journal = journal

	watcher, err := watch.New(cfg.Partitions.Dir)
	if err != nil {
		logger.Warn("partition watcher unavailable", zap.Error(err))
		watcher = nil
	} else {
		defer watcher.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var result *reconcile.Result
	var runErr error
	if runPlain {
		result, runErr = runPlainMode(ctx, cfg, orch, proposer, watcher)
	} else {
		result, runErr = runWithTUI(ctx, cfg, orch, proposer, watcher)
	}

	if client != nil {
		in, out := client.Tracker().Totals()
		if err := journal.SetUsage(in, out); err != nil {
			logger.Warn("record token usage", zap.Error(err))
		}
	}
	finishJournal(journal, logger, result, runErr)

	if runErr == nil && result != nil {
		completeChecklist(projectRoot, cfg.Run.ChecklistID)
		fmt.Printf("\n%s %s\n", color.GreenString("✓"), result.Summary())
		return nil
	}

	var exhausted *orchestrator.ExhaustionError
	if errors.As(runErr, &exhausted) {
		fmt.Printf("\n%s %s\n\n", color.RedString("✗"), exhausted.Error())
		fmt.Println(exhausted.Result.Display())
	}
	return runErr
}

// agentCommands lists the operations offered to the agent in the
// prompt, per backend.
func agentCommands(backend string) []string {
	if backend == config.BackendAPI {
		return []string{
			"list_files",
			"list_partitions",
			"create_partition",
			"delete_partition",
			"validate_partitions",
		}
	}
	return []string{
		`corral create "<title>" "<description>" <path1> [path2] ...`,
		"corral list",
		"corral validate",
		"find", "ls", "cat", "head", "wc",
	}
}

// resetChecklist unchecks the step checklist for a fresh run. A
// missing checklist is not an error; init creates it but runs are
// allowed without one.
func resetChecklist(projectRoot, id string) {
	store := checklist.NewStore(filepath.Join(projectRoot, "checklists"))
	if err := store.Reset(id); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: reset checklist %s: %v\n", id, err)
	}
}

// completeChecklist checks off every item of the step checklist after
// a successful run.
func completeChecklist(projectRoot, id string) {
	store := checklist.NewStore(filepath.Join(projectRoot, "checklists"))
	c, err := store.Load(id)
	if err != nil {
		return
	}
	for _, item := range c.Items {
		if err := store.CheckOff(id, item.ID, nil); err != nil {
			fmt.Fprintf(os.Stderr, "warning: check off %s/%s: %v\n", id, item.ID, err)
		}
	}
}

// finishJournal records the run's terminal status.
func finishJournal(journal *state.Journal, logger *zap.Logger, result *reconcile.Result, runErr error) {
	status, detail := "success", ""
	switch {
	case runErr == nil:
		if result != nil {
			detail = result.Summary()
		}
	case errors.As(runErr, new(*orchestrator.ExhaustionError)):
		status, detail = "exhausted", runErr.Error()
	case errors.As(runErr, new(*orchestrator.AgentInvocationError)):
		status, detail = "agent_error", runErr.Error()
	default:
		status, detail = "error", runErr.Error()
	}
	if err := journal.FinishRun(status, detail); err != nil {
		logger.Warn("finish run journal", zap.Error(err))
	}
}
