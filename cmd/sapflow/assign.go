package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Veraticus/sapflow/internal/cli"
	"github.com/Veraticus/sapflow/internal/config"
	"github.com/Veraticus/sapflow/internal/engine"
)

func assignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign pending imputations to SAP orders",
		Long: `Resolve every pending imputation to a SAP production order.

Assignments not yet confirmed by SAP are removed first, so running this
command twice over the same data produces the same result. Press Ctrl-C
once to stop after the current imputation, twice to stop immediately.`,
		RunE: runAssign,
	}

	cmd.Flags().BoolP("verbose", "v", false, "Print every resolution step, not only warnings")
	cmd.Flags().Bool("export", false, "Write the mass-upload file when the run completes")

	return cmd
}

func runAssign(cmd *cobra.Command, _ []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	exportAfter, _ := cmd.Flags().GetBool("export")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close storage", "error", closeErr)
		}
	}()

	run := engine.NewRun(uuid.NewString(), cli.NewReporter(os.Stdout, verbose))

	interrupts := cli.NewInterruptHandler(os.Stdout)
	ctx := interrupts.HandleInterrupts(cmd.Context(), run.Cancel)
	defer interrupts.Stop()

	fmt.Println(cli.FormatTitle("Assigning imputations"))
	orchestrator := engine.NewWithConfig(store, engineConfig(cfg))
	summary, err := orchestrator.Execute(ctx, run)
	if err != nil {
		return fmt.Errorf("assignment run %s failed: %w", run.ID, err)
	}

	if !exportAfter || summary.Status != engine.StatusCompleted {
		return nil
	}
	return exportFile(cmd, cfg, store)
}

func engineConfig(cfg config.Config) engine.Config {
	ec := engine.DefaultConfig()
	ec.Resolver = cfg.ResolverOptions()
	return ec
}
