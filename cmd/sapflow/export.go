package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/sapflow/internal/cli"
	"github.com/Veraticus/sapflow/internal/config"
	"github.com/Veraticus/sapflow/internal/export"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the SAP mass-upload file",
		Long: `Write every assignment not yet confirmed by SAP to a semicolon-separated,
Windows-1252 encoded mass-upload file in the export directory.`,
		RunE: runExport,
	}

	cmd.Flags().String("dir", "", "Output directory (default: export.dir)")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.ExportDir = config.ExpandPath(dir)
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

	return exportFile(cmd, cfg, store)
}

func exportFile(cmd *cobra.Command, cfg config.Config, store export.Store) error {
	path, n, err := export.New(store, cfg.ExportDir).ExportFile(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to export assignments: %w", err)
	}
	if n == 0 {
		fmt.Println(cli.FormatWarning("No unloaded assignments to export"))
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Exported %d assignments to %s", n, path)))
	return nil
}
