// Package nppes implements the lead ETL over an NPPES registry extract: CSV
// load, row filtering, cleaning/normalization, and reshaping into candidate
// lead records. Stages are synchronous and fully materialize their output;
// the only external I/O is the single file read in Load.
package nppes

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"npileads/internal/table"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// SourceNotFoundError indicates the input file path does not exist. The run
// aborts with no partial state.
type SourceNotFoundError struct {
	Path string
	Err  error
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source file not found at %s", e.Path)
}

func (e *SourceNotFoundError) Unwrap() error { return e.Err }

// LoadOptions configures Load. The zero value is correct for a standard
// UTF-8 NPPES extract.
type LoadOptions struct {
	// Debug emits the column list, row count, and sample distinct values of
	// the entity-type column. It has no effect on the returned table.
	Debug bool

	// Windows1252 transcodes the file from Windows-1252 before parsing.
	// Some legacy extracts ship in that encoding.
	Windows1252 bool
}

// Load reads the full extract at path into memory. Every cell is kept as
// verbatim text: no numeric or boolean inference, so an NPI of "0123456789"
// loads as exactly that string, and the two-character token "NA" is data,
// not a null marker. A UTF-8 BOM on the first header cell is stripped. Rows
// whose field count differs from the header are skipped and counted rather
// than failing the run.
func Load(path string, opts LoadOptions) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &SourceNotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	var src io.Reader = f
	if opts.Windows1252 {
		src = transform.NewReader(f, charmap.Windows1252.NewDecoder())
	}

	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.ReuseRecord = false

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read header: empty file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	columns := append([]string(nil), header...)

	var (
		rows    []table.Row
		skipped int
	)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(rec) != len(columns) {
			skipped++
			continue
		}
		row := make(table.Row, len(columns))
		for i, c := range columns {
			row[c] = rec[i]
		}
		rows = append(rows, row)
	}
	if skipped > 0 {
		log.Printf("nppes: load skipped=%d reason=field_count_mismatch path=%s", skipped, path)
	}

	t := table.New(columns, rows)
	if opts.Debug {
		debugDump(t)
	}
	return t, nil
}

// debugDump prints loader diagnostics: columns, row count, and up to ten
// distinct entity-type values.
func debugDump(t *table.Table) {
	log.Printf("nppes: columns=%v", t.Columns())
	log.Printf("nppes: total rows in CSV: %d", t.Len())
	if !t.HasColumn(ColEntityType) {
		log.Printf("nppes: column %q not found", ColEntityType)
		return
	}
	seen := make(map[string]struct{})
	var sample []string
	for _, row := range t.Rows() {
		v := row[ColEntityType]
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		sample = append(sample, v)
		if len(sample) == 10 {
			break
		}
	}
	log.Printf("nppes: entity type sample=%v", sample)
}

// Fingerprint returns the xxh3 content hash of the file at path, formatted
// as 16 hex digits. Import runs log it so reruns against an unchanged
// extract are recognizable in the logs.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &SourceNotFoundError{Path: path, Err: err}
		}
		return "", fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash source: %w", err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
