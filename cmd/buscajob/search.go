package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/buscajob/buscajob/internal/cache"
	"github.com/buscajob/buscajob/internal/model"
	"github.com/spf13/cobra"
)

var searchFlags struct {
	role          string
	location      string
	sites         []string
	contractTypes []string
	modalities    []string
	keywords      string
	salaryMin     float64
	salaryMax     float64
	asJSON        bool
	save          bool
	saveConfig    bool
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one search and print the postings",
	Long:  "Runs the pipeline once with the given criteria and prints the matching postings as a table or JSON.",
	RunE:  runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringVarP(&searchFlags.role, "role", "r", "", "job title to search for (required)")
	f.StringVarP(&searchFlags.location, "location", "l", "", "city or region")
	f.StringSliceVarP(&searchFlags.sites, "sites", "s", nil, "site ids to search (default: pipeline.default_sites)")
	f.StringSliceVar(&searchFlags.contractTypes, "contract", nil, "contract types to keep, e.g. CLT,PJ")
	f.StringSliceVar(&searchFlags.modalities, "modality", nil, "modalities to keep: HOME_OFFICE, HYBRID, ON_SITE")
	f.StringVarP(&searchFlags.keywords, "keywords", "k", "", "every word must appear in the title or description")
	f.Float64Var(&searchFlags.salaryMin, "salary-min", 0, "minimum salary")
	f.Float64Var(&searchFlags.salaryMax, "salary-max", 0, "maximum salary")
	f.BoolVar(&searchFlags.asJSON, "json", false, "print JSON instead of a table")
	f.BoolVar(&searchFlags.save, "save", false, "write the result to a resultados_ snapshot file")
	f.BoolVar(&searchFlags.saveConfig, "save-config", false, "store the criteria for scheduled runs")
	rootCmd.AddCommand(searchCmd)
}

func criteriaFromFlags(cmd *cobra.Command) model.SearchCriteria {
	c := model.SearchCriteria{
		Role:          searchFlags.role,
		Location:      searchFlags.location,
		Sites:         searchFlags.sites,
		ContractTypes: searchFlags.contractTypes,
		Modalities:    searchFlags.modalities,
		Keywords:      searchFlags.keywords,
	}
	if cmd.Flags().Changed("salary-min") {
		v := searchFlags.salaryMin
		c.SalaryMin = &v
	}
	if cmd.Flags().Changed("salary-max") {
		v := searchFlags.salaryMax
		c.SalaryMax = &v
	}
	return c
}

func runSearch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	criteria := criteriaFromFlags(cmd)
	if err := criteria.Validate(); err != nil {
		return fmt.Errorf("%w (use --role)", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := mustApp(ctx, logger)
	defer a.Close()

	postings, err := a.pipeline.Run(ctx, criteria)
	if err != nil {
		logger.Error("search failed", "error", err)
		return err
	}

	if err := a.cache.Put(ctx, cache.Result{Timestamp: time.Now(), Criteria: criteria, Postings: postings}); err != nil {
		logger.Warn("caching result failed", "error", err)
	}
	if searchFlags.save {
		name, err := a.sink.Save(criteria, postings)
		if err != nil {
			return err
		}
		logger.Info("result saved", "file", a.sink.Path(name))
	}
	if searchFlags.saveConfig {
		saved, err := a.store.SaveCriteria(ctx, criteria)
		if err != nil {
			return err
		}
		logger.Info("criteria saved", "config_id", saved.ID)
	}

	if searchFlags.asJSON {
		if postings == nil {
			postings = []model.JobPosting{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(postings)
	}
	printPostings(postings)
	return nil
}

func printPostings(postings []model.JobPosting) {
	if len(postings) == 0 {
		fmt.Println("No postings matched.")
		return
	}

	fmt.Printf("%-40s %-25s %-22s %-14s %s\n", "Title", "Company", "Location", "Site", "Salary")
	fmt.Println(strings.Repeat("─", 120))
	for _, p := range postings {
		fmt.Printf("%-40s %-25s %-22s %-14s %s\n",
			truncate(p.Title, 40), truncate(p.Company, 25), truncate(p.Location, 22), p.SourceSite, p.Salary)
	}
	fmt.Printf("\nTotal: %d postings\n", len(postings))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
