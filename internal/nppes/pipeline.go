package nppes

import (
	"log"
	"time"

	"npileads/internal/lead"
	"npileads/internal/metrics"
)

// Options configures one pipeline run.
type Options struct {
	Load   LoadOptions
	Filter FilterOptions
}

// Summary reports what one run did at each stage.
type Summary struct {
	RawRows      int
	FilteredRows int
	CleanedRows  int
	Clean        CleanStats
	Elapsed      time.Duration
}

// Leads runs the full pipeline: load the extract, filter to the providers of
// interest, clean, and format. Each stage fully materializes before the next
// begins. A stage error aborts the run; downstream stages depend on upstream
// invariants, so there is no partial recovery.
func Leads(path string, opts Options) ([]lead.Candidate, Summary, error) {
	start := time.Now()
	var sum Summary

	t, err := Load(path, opts.Load)
	metrics.RecordStage("load", err, time.Since(start))
	if err != nil {
		return nil, sum, err
	}
	sum.RawRows = t.Len()

	filterStart := time.Now()
	t, err = FilterDoctors(t, opts.Filter)
	metrics.RecordStage("filter", err, time.Since(filterStart))
	if err != nil {
		return nil, sum, err
	}
	sum.FilteredRows = t.Len()

	cleanStart := time.Now()
	t, stats, err := CleanRows(t)
	metrics.RecordStage("clean", err, time.Since(cleanStart))
	if err != nil {
		return nil, sum, err
	}
	sum.Clean = stats
	sum.CleanedRows = t.Len()
	metrics.RecordRows("rejected_missing_npi", stats.MissingNPI)
	metrics.RecordRows("rejected_missing_phone", stats.MissingPhone)
	metrics.RecordRows("rejected_duplicate_npi", stats.DuplicateNPI)

	formatStart := time.Now()
	leads, err := FormatOutput(t)
	metrics.RecordStage("format", err, time.Since(formatStart))
	if err != nil {
		return nil, sum, err
	}
	sum.Elapsed = time.Since(start)
	metrics.RecordRows("candidates", len(leads))

	log.Printf(
		"nppes: run raw=%d filtered=%d cleaned=%d no_npi=%d no_phone=%d dup_npi=%d elapsed=%s",
		sum.RawRows, sum.FilteredRows, sum.CleanedRows,
		stats.MissingNPI, stats.MissingPhone, stats.DuplicateNPI,
		sum.Elapsed.Truncate(time.Millisecond),
	)
	return leads, sum, nil
}
