// Package main provides the sync command that reconciles the public article
// listing against the CMS and records what the CMS is missing.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"mfasync/internal/cms"
	"mfasync/internal/config"
	"mfasync/internal/crawler"
	"mfasync/internal/ledger"
	"mfasync/internal/logger"
	"mfasync/internal/reconcile"
)

const defaultConfigPath = "mfasync.yaml"

func main() {
	// Environment must be loaded before flag defaults read it.
	_ = godotenv.Load()

	// 1. Define Command-Line Flags
	// ----------------------------
	configPath := flag.String("config", "", "Path to YAML configuration file (optional)")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to the -config path and exit")
	initAuth := flag.Bool("init-auth", false, "Capture a CMS session interactively and exit")
	cmsBaseURL := flag.String("cms-base-url", os.Getenv("CMS_BASE_URL"), "CMS base URL, for example https://cms.example.org")
	publicListURL := flag.String("public-list-url", os.Getenv("PUBLIC_LIST_URL"), "Public article listing URL")
	storageState := flag.String("storage-state", "", "Path to the stored CMS session artifact")
	outPath := flag.String("out", "", "Destination path for missing article CSV files")
	startPage := flag.Int("start-page", 0, "First listing page to scan")
	endPage := flag.Int("end-page", 0, "Last listing page to scan")
	limitPerPage := flag.Int("limit-per-page", -1, "Process at most this many articles per page")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")

	flag.Parse()

	log := logger.NewLogger("info")

	// 2. Resolve Configuration
	// ------------------------
	// Precedence: flags, then environment, then config file, then defaults.
	// Environment values arrive through the flag defaults above.
	cfg := config.DefaultConfig()

	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)

		switch {
		case err != nil && *writeConfig:
			log.Warn(fmt.Sprintf("⚠️  Failed to load config: %v (writing defaults)", err))
		case err != nil:
			log.Error(fmt.Sprintf("❌ Failed to load config: %v", err))
			os.Exit(1)
		default:
			cfg = loaded
		}
	}

	if *cmsBaseURL != "" {
		cfg.CMS.BaseURL = *cmsBaseURL
	}

	if *publicListURL != "" {
		cfg.Public.ListURL = *publicListURL
	}

	if *storageState != "" {
		cfg.CMS.StorageState = *storageState
	}

	if *outPath != "" {
		cfg.Output.Path = *outPath
	}

	if *startPage != 0 {
		cfg.Public.StartPage = *startPage
	}

	if *endPage != 0 {
		cfg.Public.EndPage = *endPage
	}

	if *limitPerPage >= 0 {
		cfg.Public.LimitPerPage = *limitPerPage
	}

	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	if err := cfg.Validate(); err != nil {
		log.Error(fmt.Sprintf("❌ Invalid configuration: %v", err))
		flag.PrintDefaults()
		os.Exit(1)
	}

	log = logger.NewLogger(cfg.Logging.Level)
	log.Debug(fmt.Sprintf("Resolved %s", cfg))

	if *writeConfig {
		path := *configPath
		if path == "" {
			path = defaultConfigPath
		}

		if err := cfg.SaveConfig(path); err != nil {
			log.Error(fmt.Sprintf("❌ Failed to write config: %v", err))
			os.Exit(1)
		}

		log.Info(fmt.Sprintf("✅ Wrote configuration to %s", path))

		return
	}

	if cfg.CMS.BaseURL == "" {
		log.Error("❌ Missing CMS_BASE_URL (set the environment variable or pass -cms-base-url)")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// 3. Session Bootstrap Mode
	// -------------------------
	if *initAuth {
		log.Info("🔐 Capturing CMS session...")

		if err := cms.Bootstrap(os.Stdin, os.Stdout, cfg.CMS.BaseURL, cfg.CMS.StorageState, &cfg.Network, log); err != nil {
			log.Error(fmt.Sprintf("❌ Session capture failed: %v", err))
			os.Exit(1)
		}

		return
	}

	// 4. Load Session
	// ---------------
	session, err := cms.LoadSession(cfg.CMS.StorageState)
	if err != nil {
		if errors.Is(err, cms.ErrNoSessionArtifact) {
			log.Error("❌ No auth state stored, run -init-auth first")
		} else {
			log.Error(fmt.Sprintf("❌ Failed to load session: %v", err))
		}

		os.Exit(1)
	}

	verifier, err := cms.NewVerifier(session, cfg.CMS.BaseURL, &cfg.Network, log)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Failed to prepare CMS client: %v", err))
		os.Exit(1)
	}

	// 5. Open Ledger
	// --------------
	led, err := ledger.Open(cfg.Output.Path)
	if err != nil {
		if errors.Is(err, ledger.ErrLedgerLocked) {
			log.Error("❌ Another sync is already writing to this destination")
		} else {
			log.Error(fmt.Sprintf("❌ Failed to open ledger: %v", err))
		}

		os.Exit(1)
	}
	defer led.Close()

	// 6. Run Sync
	// -----------
	log.Info("🚀 Starting CMS sync")
	log.Info(fmt.Sprintf("📍 Public listing: %s", cfg.Public.ListURL))
	log.Info(fmt.Sprintf("🎯 CMS: %s", cfg.CMS.BaseURL))
	log.Info(fmt.Sprintf("Results file: %s", led.RunPath()))

	startTime := time.Now()

	reader := crawler.NewReaderWithDeps(
		cfg.Public.ListURL,
		crawler.NewScraperWithConfig(&cfg.Network),
		crawler.NewExtractor(),
		log,
	)

	runner := reconcile.NewRunner(reader, verifier, led, log)
	if cfg.Public.LimitPerPage > 0 {
		runner.SetLimitPerPage(cfg.Public.LimitPerPage)
	}

	result, err := runner.Run(cfg.Public.StartPage, cfg.Public.EndPage)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Sync failed: %v", err))
		os.Exit(1)
	}

	// 7. Final Report
	// ---------------
	log.Info("✨ Sync Complete!")
	fmt.Println("\n------------------------------------------------")
	fmt.Printf("📊 Sync Report\n")
	fmt.Println("------------------------------------------------")
	fmt.Printf("Results file: %s\n", led.RunPath())
	fmt.Printf("Pages fetched: %d\n", result.PagesFetched)
	fmt.Printf("Total public articles scanned: %d\n", result.Scanned)
	fmt.Printf("Skipped (already recorded): %d\n", result.Skipped)
	fmt.Printf("Total missing (not found in CMS): %d\n", result.Missing)
	fmt.Printf("Total Duration: %v\n", time.Since(startTime))
	fmt.Println("------------------------------------------------")
}
