package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"kritika/internal/models"
)

// record is one CSV row keyed by header column name.
type record map[string]string

// readRecords reads a CSV file with a header row into keyed records.
func readRecords(path string) ([]record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, models.NewValidationError(fmt.Sprintf("cannot open %s: %v", path, err))
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, models.NewValidationError(fmt.Sprintf("cannot parse %s: %v", path, err))
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(record, len(header))
		for i, column := range header {
			if i < len(row) {
				rec[column] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r record) parseUint(column string) (uint, error) {
	value, err := strconv.ParseUint(r[column], 10, 32)
	if err != nil {
		return 0, models.NewValidationError(
			fmt.Sprintf("column %s: bad integer %q", column, r[column]))
	}
	return uint(value), nil
}

func (r record) parseInt(column string) (int, error) {
	value, err := strconv.Atoi(r[column])
	if err != nil {
		return 0, models.NewValidationError(
			fmt.Sprintf("column %s: bad integer %q", column, r[column]))
	}
	return value, nil
}

func (r record) parseTime(column string) (time.Time, error) {
	if r[column] == "" {
		return time.Time{}, nil
	}
	value, err := time.Parse(time.RFC3339, r[column])
	if err != nil {
		return time.Time{}, models.NewValidationError(
			fmt.Sprintf("column %s: bad timestamp %q", column, r[column]))
	}
	return value, nil
}
