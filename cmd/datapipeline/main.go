package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/nuh1233/DataPipeline/pkg/pipeline"
	"github.com/nuh1233/DataPipeline/utils/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Best-effort .env load; absence is fine.
	_ = godotenv.Load()

	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	configFlag := flag.String("config", "datasets.json", "path to dataset config file (or set DATAPIPELINE_CONFIG env var)")
	flag.Parse()

	log := logger.New(*verboseFlag)

	if envConfig := os.Getenv("DATAPIPELINE_CONFIG"); envConfig != "" {
		*configFlag = envConfig
	}

	ctx := context.Background()

	switch command := flag.Arg(0); command {
	case "":
		return printUsage(*configFlag)

	case "all":
		results, err := pipeline.RunAll(ctx, log, *configFlag)
		if err != nil {
			return err
		}
		failed := 0
		for name, result := range results {
			if result.Failed() {
				failed++
				log.Error("dataset summary", "dataset", name, "status", "failed", "error", result.Err)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d datasets failed", failed, len(results))
		}
		return nil

	case "list":
		configs, err := pipeline.LoadConfigs(*configFlag)
		if err != nil {
			return err
		}
		fmt.Println("Available datasets:")
		for i, name := range pipeline.SortedNames(configs) {
			fmt.Printf("  %d. %s\n", i+1, name)
			fmt.Printf("     Output: %s\n", configs[name].OutputPath())
		}
		return nil

	default:
		_, err := pipeline.RunOne(ctx, log, *configFlag, command)
		return err
	}
}

func printUsage(configPath string) error {
	fmt.Println("Data Pipeline")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  datapipeline <dataset_name>   Process a single dataset")
	fmt.Println("  datapipeline all              Process all datasets")
	fmt.Println("  datapipeline list             List configured datasets")
	fmt.Println()

	configs, err := pipeline.LoadConfigs(configPath)
	if err != nil {
		fmt.Printf("No datasets available: %v\n", err)
		return nil
	}
	fmt.Println("Available datasets:")
	for i, name := range pipeline.SortedNames(configs) {
		fmt.Printf("  %d. %s -> %s\n", i+1, name, configs[name].OutputPath())
	}
	return nil
}
