package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cognicore/stance/internal/cli"
	"github.com/cognicore/stance/pkg/stance/bayes"
	"github.com/cognicore/stance/pkg/stance/internalerr"
)

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file (required)")
		envFile    = flag.String("env", "", "Optional .env file with STANCE_* overrides")
		variant    = flag.String("variant", "multinomial", "Classifier variant: multinomial or binary")
	)
	flag.Parse()

	if *configPath == "" {
		log.Fatal("--config required")
	}
	v, err := bayes.ParseVariant(*variant)
	if err != nil {
		log.Fatal(err)
	}

	text, err := readInput(flag.Arg(0))
	if err != nil {
		log.Fatalf("read input: %v", err)
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

	// Without a persisted model, train from the configured corpus.
	if err := engine.Restore(ctx); err != nil {
		if !errors.Is(err, internalerr.ErrNotFound) {
			log.Fatalf("restore model: %v", err)
		}
		log.Printf("no stored model %q, training from corpus", cfg.Model.Name)
		if err := cli.LoadCorpus(ctx, engine, cfg); err != nil {
			log.Fatal(err)
		}
		if _, err := engine.Train(ctx); err != nil {
			log.Fatalf("train: %v", err)
		}
	}

	res, err := engine.Classify(ctx, text, v)
	if err != nil {
		log.Fatalf("classify: %v", err)
	}
	fmt.Printf("%s\n", res.Label)
	fmt.Printf("  variant: %s, words: %d\n", res.Variant, res.Words)
	fmt.Printf("  log score: positive %.4f, negative %.4f\n", res.LogPositive, res.LogNegative)
	fmt.Printf("  posterior: positive %.4f, negative %.4f\n", res.Positive, res.Negative)
}

func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}
