package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/cognicore/stance/internal/cli"
	"github.com/cognicore/stance/pkg/stance/bayes"
	"github.com/cognicore/stance/pkg/stance/stoplist"
)

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file (required)")
		envFile    = flag.String("env", "", "Optional .env file with STANCE_* overrides")
		dictPath   = flag.String("dictionary", "", "Write the scored word dictionary to this file")
		suggest    = flag.Bool("suggest", false, "Print derived special word candidates")
	)
	flag.Parse()

	if *configPath == "" {
		log.Fatal("--config required")
	}

	ctx := context.Background()

	cfg, err := cli.LoadConfig(*configPath, *envFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	engine, components, cleanup, err := cli.BuildEngine(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	if err := cli.LoadCorpus(ctx, engine, cfg); err != nil {
		log.Fatal(err)
	}

	report, err := engine.Train(ctx)
	if err != nil {
		log.Fatalf("train: %v", err)
	}

	fmt.Printf("Model %q trained at %s\n", cfg.Model.Name, report.TrainedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  documents: %d positive, %d negative\n", report.PositiveDocs, report.NegativeDocs)
	for _, v := range bayes.Variants {
		fmt.Printf("  %s vocabulary: %d\n", v, report.Vocabulary[v])
	}
	fmt.Printf("  stored words: %d\n", report.Words)

	if *dictPath != "" {
		classes, _ := cfg.Classes()
		dict, err := engine.Dictionary(classes...)
		if err != nil {
			log.Fatalf("build dictionary: %v", err)
		}
		if err := dict.Save(*dictPath); err != nil {
			log.Fatalf("write dictionary: %v", err)
		}
		fmt.Printf("  dictionary: %d entries written to %s\n", dict.Len(), *dictPath)
	}

	if *suggest {
		stats := engine.Corpus().StopwordStats()
		candidates := components.Stoplist.SuggestCandidates(stats, stoplist.DefaultThresholds())
		if len(candidates) == 0 {
			fmt.Println("\nNo special word candidates.")
			return
		}
		fmt.Println("\nSpecial word candidates:")
		for _, c := range candidates {
			fmt.Printf("  %-20s score=%.3f df=%.1f%% entropy=%.3f\n",
				c.Token, c.Score, c.Reason.DFPercent, c.Reason.ClassEntropy)
		}
	}
}
