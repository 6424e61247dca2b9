package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the fixed report once",
	Long:  "Runs every configured role and city against all sites, saves a relatorio_fixo_ file and sends it through the configured notifiers.",
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := mustApp(ctx, logger)
	defer a.Close()

	res, err := a.report.Generate(ctx)
	if err != nil {
		logger.Error("report failed", "error", err)
		return err
	}

	fmt.Printf("File:     %s\n", a.sink.Path(res.File))
	fmt.Printf("Queries:  %d\n", res.Queries)
	fmt.Printf("Postings: %d\n", res.Total)
	if res.EmailError != nil {
		fmt.Printf("Notify:   failed (%s)\n", *res.EmailError)
	} else if res.EmailSent {
		fmt.Println("Notify:   sent")
	}
	return nil
}
