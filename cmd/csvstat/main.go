// Command csvstat profiles an NPPES extract before an import run: row count,
// per-column fill rates for the columns the pipeline consumes, and the
// distribution of entity types and practice-location states. Useful to sanity
// check a fresh monthly file without touching the store.
package main

import (
	"flag"
	"fmt"
	"log"
	"sort"

	"npileads/internal/nppes"
	"npileads/internal/table"
)

func main() {
	var (
		csvPath     = flag.String("csv", "data/npi_raw.csv", "path to the NPPES CSV extract")
		windows1252 = flag.Bool("windows-1252", false, "transcode the extract from Windows-1252 while reading")
		topStates   = flag.Int("top", 10, "number of states to show in the distribution")
	)
	flag.Parse()

	t, err := nppes.Load(*csvPath, nppes.LoadOptions{Windows1252: *windows1252})
	if err != nil {
		log.Fatalf("csvstat: %v", err)
	}

	if fp, err := nppes.Fingerprint(*csvPath); err == nil {
		fmt.Printf("file:    %s (xxh3 %s)\n", *csvPath, fp)
	}
	fmt.Printf("rows:    %d\n", t.Len())
	fmt.Printf("columns: %d\n\n", len(t.Columns()))

	pipelineColumns := []string{
		nppes.ColNPI,
		nppes.ColEntityType,
		nppes.ColFirstName,
		nppes.ColLastName,
		nppes.ColPhone,
		nppes.ColState,
		nppes.ColTaxonomyCode,
		nppes.ColPrimaryTaxonomySwitch,
	}
	fmt.Println("fill rates:")
	for _, col := range pipelineColumns {
		if !t.HasColumn(col) {
			fmt.Printf("  %-60s MISSING\n", col)
			continue
		}
		fmt.Printf("  %-60s %6.2f%%\n", col, fillRate(t, col))
	}

	fmt.Println("\nentity types:")
	printDist(distribution(t, nppes.ColEntityType), 0)

	fmt.Printf("\ntop %d states:\n", *topStates)
	printDist(distribution(t, nppes.ColState), *topStates)
}

func fillRate(t *table.Table, col string) float64 {
	if t.Len() == 0 {
		return 0
	}
	filled := 0
	for _, r := range t.Rows() {
		if r[col] != "" {
			filled++
		}
	}
	return 100 * float64(filled) / float64(t.Len())
}

type bucket struct {
	value string
	count int
}

func distribution(t *table.Table, col string) []bucket {
	counts := make(map[string]int)
	for _, r := range t.Rows() {
		counts[r[col]]++
	}
	out := make([]bucket, 0, len(counts))
	for v, n := range counts {
		out = append(out, bucket{value: v, count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].value < out[j].value
	})
	return out
}

func printDist(dist []bucket, limit int) {
	if limit > 0 && len(dist) > limit {
		dist = dist[:limit]
	}
	for _, b := range dist {
		label := b.value
		if label == "" {
			label = "(empty)"
		}
		fmt.Printf("  %-20s %d\n", label, b.count)
	}
}
