package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/buscajob/buscajob/internal/adapter"
	"github.com/buscajob/buscajob/internal/browse"
	"github.com/buscajob/buscajob/internal/model"
	"github.com/buscajob/buscajob/internal/pipeline"
	"github.com/spf13/cobra"
)

var browseFlags struct {
	role     string
	location string
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse search results interactively (TUI)",
	Long:  "Shows the site picker, runs the search and opens a split-pane view of all postings against the ones that matched.",
	RunE:  runBrowse,
}

func init() {
	browseCmd.Flags().StringVarP(&browseFlags.role, "role", "r", "", "job title to search for (required)")
	browseCmd.Flags().StringVarP(&browseFlags.location, "location", "l", "", "city or region")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(browseFlags.role) == "" {
		return fmt.Errorf("%w (use --role)", model.ErrRoleRequired)
	}

	// Any log output while the TUI is up corrupts the display.
	silentLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := mustApp(context.Background(), silentLogger)
	defer a.Close()

	preselected := a.cfg.Pipeline.DefaultSites
	if len(preselected) == 0 {
		preselected = adapter.DefaultSites
	}

	for {
		sites, ok, err := browse.RunSitePicker(a.pipeline.Sites(), preselected)
		if err != nil {
			return fmt.Errorf("site picker: %w", err)
		}
		if !ok {
			return nil
		}
		if len(sites) > 0 {
			preselected = sites
		}

		criteria := model.SearchCriteria{
			Role:     browseFlags.role,
			Location: browseFlags.location,
			Sites:    sites,
		}
		label := "default sites"
		if len(sites) > 0 {
			label = strings.Join(sites, ", ")
		}
		stages, err := browse.RunLoader(cmd.Context(), label, func(ctx context.Context) (pipeline.Stages, error) {
			return a.pipeline.RunStages(ctx, criteria)
		})
		if errors.Is(err, browse.ErrCancelled) {
			continue
		}
		if err != nil {
			fmt.Printf("Search failed: %v\n", err)
			continue
		}

		wantQuit, err := browse.RunBrowseTUI(criteria.Role, stages, a.store)
		if err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
		if wantQuit {
			return nil
		}
		// else: loop → back to picker
	}
}
