// Package main provides the report command that lists recorded missing
// articles across all run files.
package main

import (
	"flag"
	"fmt"
	"os"

	"mfasync/internal/config"
	"mfasync/internal/report"
)

func main() {
	// Define command-line flags
	configFile := flag.String("config", "", "Path to YAML configuration file")
	outPath := flag.String("out", "", "Destination path the sync writes to")
	help := flag.Bool("help", false, "Show usage information")

	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}

	// Load configuration
	cfg := config.DefaultConfig()

	if *configFile != "" {
		loaded, err := config.LoadConfig(*configFile)
		if err != nil {
			fmt.Printf("⚠️  Failed to load config: %v (proceeding with defaults)\n", err)
		} else {
			cfg = loaded
		}
	}

	dest := cfg.Output.Path
	if *outPath != "" {
		dest = *outPath
	}

	fmt.Printf("📂 Reading run files beside: %s\n", dest)
	fmt.Println()

	summary, err := report.Collect(dest)
	if err != nil {
		fmt.Printf("❌ Failed to collect records: %v\n", err)
		os.Exit(1)
	}

	if len(summary.Records) == 0 {
		fmt.Println("No missing articles recorded.")
	} else {
		fmt.Print(report.RenderTable(summary.Records))
	}

	fmt.Println("\n------------------------------------------------")
	fmt.Printf("📈 Summary:\n")
	fmt.Printf("  Run files: %d\n", summary.Files)
	fmt.Printf("  Records:   %d\n", len(summary.Records))
	fmt.Printf("  Malformed: %d\n", summary.Malformed)

	if len(summary.BadFiles) > 0 {
		fmt.Printf("⚠️  Unreadable files: %d\n", len(summary.BadFiles))

		for _, path := range summary.BadFiles {
			fmt.Printf("  - %s\n", path)
		}
	}

	fmt.Println("------------------------------------------------")
}

func printUsage() {
	fmt.Println("Usage: ./bin/report [OPTIONS]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  ./bin/report")
	fmt.Println("  ./bin/report -out exports/missing_articles.csv")
}
