package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/buscajob/buscajob/internal/adapter"
	"github.com/spf13/cobra"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the searchable sites",
	Long:  "Prints every registered site id and marks the ones searched when a request names none.",
	RunE:  runSites,
}

func init() {
	rootCmd.AddCommand(sitesCmd)
}

func runSites(cmd *cobra.Command, args []string) error {
	// Building the app only to list sites should stay quiet.
	a := mustApp(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer a.Close()

	defaults := a.cfg.Pipeline.DefaultSites
	if len(defaults) == 0 {
		defaults = adapter.DefaultSites
	}
	fmt.Printf("%-20s %s\n", "Site", "Default")
	fmt.Println(strings.Repeat("─", 30))

	sites := a.pipeline.Sites()
	for _, s := range sites {
		mark := ""
		if slices.Contains(defaults, s) {
			mark = "yes"
		}
		fmt.Printf("%-20s %s\n", s, mark)
	}

	fmt.Printf("\nTotal: %d sites\n", len(sites))
	return nil
}
