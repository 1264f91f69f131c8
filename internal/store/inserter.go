package store

import (
	"context"
	"log"
	"strings"
	"time"

	"npileads/internal/lead"
	"npileads/internal/metrics"
)

// DefaultChunkSize bounds how many leads are committed per transaction.
const DefaultChunkSize = 250

// InsertLeads persists the candidates that are not yet in the store and
// returns how many were newly inserted. chunkSize <= 0 falls back to
// DefaultChunkSize.
//
// The store is asked once which candidate NPIs already exist; records are
// then staged in input order, skipping empty NPIs, NPIs the store already
// holds, and NPIs staged earlier in the same run (a backstop in case
// duplicates survive upstream). Staged records are committed in fixed-size
// chunks, each as an independent atomic unit, and the inserted count grows
// only after a chunk commits. On a commit failure the remaining chunks are
// abandoned and a *WriteError naming the failed chunk's NPIs is returned;
// chunks committed earlier in the run stand. The store's unique index on npi
// is the ultimate backstop when two runs race: the losing chunk fails rather
// than duplicating, and a retry will exclude the now-existing NPIs via the
// existence query.
func InsertLeads(ctx context.Context, st Store, leads []lead.Candidate, chunkSize int) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	candidates := make([]string, 0, len(leads))
	seen := make(map[string]struct{}, len(leads))
	for _, l := range leads {
		npi := strings.TrimSpace(l.NPI)
		if npi == "" {
			continue
		}
		if _, dup := seen[npi]; dup {
			continue
		}
		seen[npi] = struct{}{}
		candidates = append(candidates, npi)
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	start := time.Now()
	existing, err := st.ExistingNPIs(ctx, candidates)
	if err != nil {
		metrics.RecordStage("insert", err, time.Since(start))
		return 0, err
	}
	if existing == nil {
		existing = make(map[string]struct{})
	}

	var (
		inserted int
		chunks   int
		batch    = make([]lead.Candidate, 0, chunkSize)
	)

	commit := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := st.InsertBatch(ctx, batch); err != nil {
			npis := make([]string, len(batch))
			for i, l := range batch {
				npis[i] = l.NPI
			}
			return &WriteError{NPIs: npis, Err: err}
		}
		inserted += len(batch)
		chunks++
		batch = batch[:0]
		return nil
	}

	for _, l := range leads {
		npi := strings.TrimSpace(l.NPI)
		if npi == "" {
			continue
		}
		if _, exists := existing[npi]; exists {
			continue
		}
		existing[npi] = struct{}{}

		l.NPI = npi
		batch = append(batch, l)
		if len(batch) >= chunkSize {
			if err := commit(); err != nil {
				metrics.RecordStage("insert", err, time.Since(start))
				return inserted, err
			}
		}
	}
	if err := commit(); err != nil {
		metrics.RecordStage("insert", err, time.Since(start))
		return inserted, err
	}

	metrics.RecordStage("insert", nil, time.Since(start))
	metrics.RecordRows("inserted", inserted)
	metrics.RecordChunks(chunks)
	log.Printf("store: insert candidates=%d inserted=%d chunks=%d chunk_size=%d elapsed=%s",
		len(candidates), inserted, chunks, chunkSize, time.Since(start).Truncate(time.Millisecond))
	return inserted, nil
}
