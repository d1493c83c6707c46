package covid

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/kivanctezoren/sanalkiwobot/internal/models"
)

// Column headers of the daily report files.
const (
	colRegion    = "Country_Region"
	colConfirmed = "Confirmed"
	colActive    = "Active"
	colRecovered = "Recovered"
	colDeaths    = "Deaths"
)

// aggregate sums the stats of every row whose region equals the canonical
// location key. Reports are split into subdivision rows for some countries,
// so multiple matches are expected. Missing fields contribute zero; a
// structurally unreadable file is ErrCorruptDataset.
func (e *Engine) aggregate(path, location string) (models.Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		e.logger.WithError(err).WithField("path", path).Error("Failed to parse snapshot CSV")
		return models.Stats{}, fmt.Errorf("%w: %v", ErrCorruptDataset, err)
	}
	if len(records) == 0 {
		return models.Stats{}, fmt.Errorf("%w: empty file", ErrCorruptDataset)
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[name] = i
	}
	regionIdx, ok := cols[colRegion]
	if !ok {
		return models.Stats{}, fmt.Errorf("%w: missing %s column", ErrCorruptDataset, colRegion)
	}

	field := func(row []string, name string) (int64, bool) {
		idx, ok := cols[name]
		if !ok || idx >= len(row) || row[idx] == "" {
			return 0, false
		}
		// Values appear both as integers and as float-formatted numbers.
		v, err := strconv.ParseFloat(row[idx], 64)
		if err != nil {
			return 0, false
		}
		return int64(v), true
	}

	var stats models.Stats
	for _, row := range records[1:] {
		if regionIdx >= len(row) || row[regionIdx] != location {
			continue
		}

		if v, ok := field(row, colConfirmed); ok {
			stats.Confirmed += v
		}
		if v, ok := field(row, colActive); ok && v > 0 {
			stats.Active += v
		}
		if v, ok := field(row, colRecovered); ok {
			stats.Recovered += v
		}
		if v, ok := field(row, colDeaths); ok {
			stats.Deaths += v
		}
	}

	return stats, nil
}
