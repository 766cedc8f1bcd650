package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/sapflow/internal/cli"
)

func pendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List imputations waiting for assignment",
		RunE:  runPending,
	}
}

func runPending(cmd *cobra.Command, _ []string) error {
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

	pending, err := store.ListPendingImputations(cmd.Context())
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println(cli.FormatSuccess("No pending imputations"))
		return nil
	}

	rows := make([][]string, 0, len(pending))
	for _, p := range pending {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.Date.Format("02/01/2006"),
			p.EmployeeCode,
			p.Project,
			p.Vertex,
			strconv.FormatFloat(p.Hours, 'f', -1, 64),
		})
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("%d pending imputations", len(pending))))
	fmt.Println(cli.RenderTable([]string{"ID", "Date", "Employee", "Project", "Vertex", "Hours"}, rows))
	return nil
}

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent assignment runs",
		RunE:  runRuns,
	}

	cmd.Flags().IntP("limit", "n", 10, "Number of runs to show")

	return cmd
}

func runRuns(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

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

	runs, err := store.GetRecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println(cli.FormatInfo("No assignment runs recorded yet"))
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		duration := "-"
		if r.FinishedAt.Valid {
			duration = r.FinishedAt.Time.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Status,
			duration,
			strconv.Itoa(r.Pending),
			strconv.Itoa(r.Assigned),
			strconv.Itoa(r.Fallback),
			strconv.Itoa(r.Discarded),
			strconv.Itoa(r.Failed),
		})
	}

	fmt.Println(cli.RenderTable(
		[]string{"Run", "Started", "Status", "Took", "Pending", "Assigned", "Fallback", "Discarded", "Failed"}, rows))
	return nil
}
