// Command import runs the NPPES lead pipeline end to end: load the raw
// extract, filter to individual practitioners in one state, clean and format
// the rows, and insert the resulting leads in chunked transactions. Reruns
// against the same store are no-ops for NPIs already present.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"npileads/internal/config"
	"npileads/internal/lead"
	"npileads/internal/metrics"
	"npileads/internal/metrics/prompush"
	"npileads/internal/nppes"
	"npileads/internal/store"
	"npileads/internal/store/postgres"
	"npileads/internal/store/sqlite"
)

const previewRows = 5

func main() {
	cfg := config.Load()

	var (
		csvPath           string
		state             string
		chunkSize         int
		storeKind         string
		dsn               string
		metricsBackendFlg string
		pushGatewayURLFlg string
		windows1252       bool
		dryRun            bool
		validate          bool
	)

	flag.StringVar(&csvPath, "csv", cfg.CSVPath, "path to the NPPES CSV extract")
	flag.StringVar(&state, "state", cfg.State, "practice-location state to keep (defaults to "+nppes.DefaultState+")")
	flag.IntVar(&chunkSize, "chunk-size", cfg.ChunkSize, "leads committed per transaction")
	flag.StringVar(&storeKind, "store", cfg.Store, "store backend (postgres or sqlite)")
	flag.StringVar(&dsn, "dsn", cfg.DatabaseURL, "store DSN (overrides env DATABASE_URL)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", cfg.PushgatewayURL, "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&windows1252, "windows-1252", false, "transcode the extract from Windows-1252 while reading")
	flag.BoolVar(&dryRun, "dry-run", false, "run the pipeline but skip the store entirely")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	cfg.Store = storeKind
	cfg.DatabaseURL = dsn
	cfg.ChunkSize = chunkSize

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) && !dryRun {
		log.Print("configuration is invalid")
		os.Exit(1)
	}
	if validate {
		log.Print("configuration is valid")
		os.Exit(0)
	}

	initMetrics(metricsBackendFlg, pushGatewayURLFlg, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	if fp, err := nppes.Fingerprint(csvPath); err == nil {
		log.Printf("import: source=%s fingerprint=%s", csvPath, fp)
	}

	leads, summary, err := nppes.Leads(csvPath, nppes.Options{
		Load:   nppes.LoadOptions{Debug: *verbose, Windows1252: windows1252},
		Filter: nppes.FilterOptions{State: state},
	})
	if err != nil {
		log.Fatalf("import: %v", err)
	}

	log.Printf("import: candidates=%d (raw=%d filtered=%d cleaned=%d)",
		len(leads), summary.RawRows, summary.FilteredRows, summary.CleanedRows)
	preview(leads)

	if dryRun {
		log.Printf("import: dry run, skipping store")
		return
	}

	repo, err := openRepo(ctx, cfg)
	if err != nil {
		log.Fatalf("import: %v", err)
	}
	defer repo.Close()

	inserted, err := store.InsertLeads(ctx, repo, leads, chunkSize)
	if err != nil {
		log.Fatalf("import: inserted=%d before failure: %v", inserted, err)
	}
	log.Printf("import: inserted=%d elapsed=%s", inserted, time.Since(start).Truncate(time.Millisecond))
}

// preview prints the first few candidates so a run is spot-checkable.
func preview(leads []lead.Candidate) {
	n := len(leads)
	if n > previewRows {
		n = previewRows
	}
	for _, l := range leads[:n] {
		log.Printf("import: preview npi=%s name=%q phone=%s specialty=%s state=%s",
			l.NPI, l.Name, l.Phone, l.Specialty, l.State)
	}
}

func openRepo(ctx context.Context, cfg config.Config) (store.Repository, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		repo, err := sqlite.New(ctx, sqlite.Config{DSN: cfg.DatabaseURL})
		if err != nil {
			return nil, err
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.Close()
			return nil, err
		}
		return repo, nil
	case config.StorePostgres:
		repo, err := postgres.New(ctx, postgres.Config{DSN: cfg.DatabaseURL})
		if err != nil {
			return nil, err
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.Close()
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Store)
	}
}

// initMetrics decides the metrics backend: flag, then env, then disabled.
func initMetrics(backendName, gwURL string, verbose bool) {
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend("lead_import", gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: url=%v backend=%v job_name=lead_import", gwURL, backendName)
		metrics.SetBackend(b)

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}
