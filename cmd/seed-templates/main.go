package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dpshade/coverdraft/internal/config"
	"github.com/dpshade/coverdraft/internal/logger"
	"github.com/dpshade/coverdraft/internal/models"
	"github.com/dpshade/coverdraft/internal/storage"
)

// seed-templates restores the starter templates into an existing library.
// Without -overwrite only missing starters are written.
func main() {
	var overwrite bool
	var yes bool
	flag.BoolVar(&overwrite, "overwrite", false, "Replace starter templates that were edited")
	flag.BoolVar(&yes, "yes", false, "Do not ask for confirmation")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		fmt.Printf("Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	store, err := storage.NewTemplateStore(cfg.Library.Dir, log)
	if err != nil {
		fmt.Printf("Error opening template library: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()

	var missing, present []*models.Template
	for _, t := range storage.StarterTemplates() {
		if _, err := store.Get(ctx, t.ID); err == nil {
			present = append(present, t)
		} else {
			missing = append(missing, t)
		}
	}

	fmt.Printf("Library: %s\n", cfg.Library.Dir)
	fmt.Printf("Found %d of %d starter templates already present\n", len(present), len(present)+len(missing))

	pending := missing
	if overwrite {
		pending = append(pending, present...)
	}
	if len(pending) == 0 {
		fmt.Println("All starter templates are present - nothing to do")
		return
	}

	fmt.Printf("%d templates will be written:\n", len(pending))
	for _, t := range pending {
		fmt.Printf("  - %s (%s, %s)\n", t.JobTitle, t.Industry, t.ExperienceLevel)
	}

	if !yes {
		fmt.Print("\nProceed? (y/N): ")
		var response string
		fmt.Scanln(&response)
		if strings.ToLower(response) != "y" {
			fmt.Println("Cancelled")
			return
		}
	}

	n, err := store.SeedStarterTemplates(ctx, overwrite)
	if err != nil {
		fmt.Printf("Error writing templates: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Done! Wrote %d starter templates\n", n)
}
