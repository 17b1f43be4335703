// Package ingest turns raw delimited roster records into normalized
// counterpart profiles with a derived credit ceiling.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nmendoza-ar/credit-simulator/internal/simulation"
	"github.com/nmendoza-ar/credit-simulator/pkg/constants"
	"github.com/nmendoza-ar/credit-simulator/pkg/mathutil"
	"go.uber.org/zap"
)

// Stats summarizes one ingestion run.
type Stats struct {
	Rows     int `json:"rows"`     // non-blank rows seen
	Accepted int `json:"accepted"` // counterparts emitted
	Skipped  int `json:"skipped"`  // malformed rows dropped
	Replaced int `json:"replaced"` // duplicate tax ids overwritten
}

// Ingestor parses raw roster rows. It holds no state between calls.
type Ingestor struct {
	logger *zap.Logger
}

// NewIngestor creates a roster ingestor.
func NewIngestor(logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{logger: logger}
}

// Ingest parses rows of "name;taxId;billing" into counterparts, preserving
// input order. Malformed rows are skipped, never aborting the batch. A later
// row with an already-seen tax id replaces the earlier one in place
// (last-write-wins).
func (in *Ingestor) Ingest(lines []string) []simulation.Counterpart {
	counterparts, _ := in.IngestStats(lines)
	return counterparts
}

// IngestStats is Ingest plus per-batch counters for callers that report on
// the upload.
func (in *Ingestor) IngestStats(lines []string) ([]simulation.Counterpart, Stats) {
	var stats Stats
	counterparts := make([]simulation.Counterpart, 0, len(lines))
	position := make(map[string]int)

	for n, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		stats.Rows++

		counterpart, err := in.parseRow(line)
		if err != nil {
			stats.Skipped++
			in.logger.Debug(fmt.Sprintf("skipping roster row %d: %v", n+1, err),
				zap.String("op", "ingest.IngestStats"),
			)
			continue
		}

		if idx, seen := position[counterpart.TaxID]; seen {
			stats.Replaced++
			in.logger.Debug(fmt.Sprintf("roster row %d repeats tax id %s, replacing earlier entry", n+1, counterpart.TaxID),
				zap.String("op", "ingest.IngestStats"),
			)
			counterparts[idx] = counterpart
			continue
		}
		position[counterpart.TaxID] = len(counterparts)
		counterparts = append(counterparts, counterpart)
	}

	stats.Accepted = len(counterparts)
	return counterparts, stats
}

// IngestReader reads newline-separated roster rows from r.
func (in *Ingestor) IngestReader(r io.Reader) ([]simulation.Counterpart, Stats, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, Stats{}, fmt.Errorf("failed to read roster: %w", err)
	}
	counterparts, stats := in.IngestStats(lines)
	return counterparts, stats, nil
}

func (in *Ingestor) parseRow(line string) (simulation.Counterpart, error) {
	fields := strings.Split(line, constants.RosterFieldSeparator)
	if len(fields) < constants.RosterMinFields {
		return simulation.Counterpart{}, fmt.Errorf("expected at least %d fields, got %d", constants.RosterMinFields, len(fields))
	}

	name := strings.TrimSpace(fields[0])
	taxID := strings.TrimSpace(fields[1])
	if name == "" {
		return simulation.Counterpart{}, fmt.Errorf("blank name")
	}
	if taxID == "" {
		return simulation.Counterpart{}, fmt.Errorf("blank tax id")
	}

	billing, err := ParseBilling(fields[2])
	if err != nil {
		return simulation.Counterpart{}, err
	}

	return simulation.NewCounterpart(name, taxID, billing), nil
}

// ParseBilling normalizes a textual billing amount: "." thousands separators
// are stripped and the decimal "," becomes "." before parsing, so
// "1.234.567,89" yields 1234567.89. Fields that arrive as JSON numbers bypass
// this and are used directly by callers.
func ParseBilling(field string) (float64, error) {
	normalized := strings.TrimSpace(field)
	if normalized == "" {
		return 0, fmt.Errorf("blank billing amount")
	}
	normalized = strings.ReplaceAll(normalized, ".", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")

	billing, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable billing amount %q", field)
	}
	if !mathutil.IsFinite(billing) {
		return 0, fmt.Errorf("non-finite billing amount %q", field)
	}
	return billing, nil
}
