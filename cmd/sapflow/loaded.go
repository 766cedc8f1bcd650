package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/sapflow/internal/cli"
	"github.com/Veraticus/sapflow/internal/common"
	"github.com/Veraticus/sapflow/internal/sapresponse"
)

func loadedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "loaded <response-file>",
		Short: "Mark assignments SAP confirmed as loaded",
		Long: `Read the response file SAP returns after a mass upload and mark every
assignment on a "Success" row as loaded. Loaded assignments are never
removed or re-exported by later runs.`,
		Args: cobra.ExactArgs(1),
		RunE: runLoaded,
	}
}

func runLoaded(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	file, err := os.Open(args[0]) // #nosec G304 -- path is supplied by the operator
	if err != nil {
		return common.NewUserError(fmt.Sprintf("Cannot open %s", args[0]), err)
	}
	defer func() { _ = file.Close() }()

	store, err := initStorage(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close storage", "error", closeErr)
		}
	}()

	result, err := sapresponse.Apply(cmd.Context(), store, file)
	if err != nil {
		return common.NewUserError("SAP response file is not valid", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("%d of %d successful rows marked as loaded", result.Marked, result.Succeeded)))
	if result.Unmatched > 0 {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("%d successful rows matched no assignment", result.Unmatched)))
	}
	if result.Invalid > 0 {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("%d rows could not be read", result.Invalid)))
	}
	return nil
}
