package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/cognicore/stance/internal/cli"
	"github.com/cognicore/stance/pkg/stance/eval"
)

type output struct {
	Folds   []eval.Report  `json:"folds"`
	Summary []eval.Summary `json:"summary,omitempty"`
}

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file (required)")
		envFile    = flag.String("env", "", "Optional .env file with STANCE_* overrides")
		fold       = flag.Int("fold", -1, "Run a single fold (0-4); all folds when negative")
		asJSON     = flag.Bool("json", false, "Print the report as JSON")
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
	engine, _, cleanup, err := cli.BuildEngine(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	if err := cli.LoadCorpus(ctx, engine, cfg); err != nil {
		log.Fatal(err)
	}

	var out output
	if *fold >= 0 {
		report, err := engine.Evaluate(ctx, *fold)
		if err != nil {
			log.Fatalf("evaluate fold %d: %v", *fold, err)
		}
		out.Folds = []eval.Report{report}
	} else {
		out.Folds, out.Summary, err = engine.CrossValidate(ctx)
		if err != nil {
			log.Fatalf("cross-validate: %v", err)
		}
	}

	if *asJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			log.Fatalf("marshal report: %v", err)
		}
		fmt.Println(string(data))
		return
	}
	printText(out)
}

func printText(out output) {
	for _, r := range out.Folds {
		fmt.Printf("--- Fold %d: train %d/%d, test %d/%d ---\n",
			r.Fold, r.TrainPositive, r.TrainNegative, r.TestPositive, r.TestNegative)
		for _, res := range r.Results {
			c, m := res.Confusion, res.Metrics
			fmt.Printf("  %-12s TP=%d TN=%d FP=%d FN=%d  accuracy=%s precision=%s recall=%s F=%s\n",
				res.Name, c.TP, c.TN, c.FP, c.FN, m.Accuracy, m.Precision, m.Recall, m.F)
		}
	}
	if len(out.Summary) == 0 {
		return
	}
	fmt.Println("\nSummary:")
	for _, s := range out.Summary {
		fmt.Printf("  %-12s accuracy=%.4f±%.4f F=%s (%d folds)\n",
			s.Name, s.MeanAccuracy, s.StdAccuracy, s.MeanF, s.DefinedF)
	}
}
