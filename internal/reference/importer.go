package reference

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pathakanu/mindwell/internal/model"
	"gorm.io/gorm/clause"
)

var (
	globalColumns   = []string{"country", "depression_rate", "anxiety_rate", "suicide_rate", "year"}
	regionalColumns = []string{"state_name", "depression_rate", "anxiety_rate", "stress_rate"}
)

// ImportGlobal upserts country rows from CSV keyed by country. The header must
// name every column of globalColumns, in any order.
func (s *Store) ImportGlobal(ctx context.Context, r io.Reader) (int, error) {
	records, err := readTable(r, globalColumns)
	if err != nil {
		return 0, fmt.Errorf("global csv: %w", err)
	}

	rows := make([]model.GlobalMentalHealthData, 0, len(records))
	for i, rec := range records {
		var p fieldParser
		row := model.GlobalMentalHealthData{
			Country:        rec["country"],
			DepressionRate: p.float(rec, "depression_rate"),
			AnxietyRate:    p.float(rec, "anxiety_rate"),
			SuicideRate:    p.float(rec, "suicide_rate"),
			Year:           p.int(rec, "year"),
		}
		if row.Country == "" {
			p.err = errors.New("country is empty")
		}
		if p.err != nil {
			return 0, fmt.Errorf("global csv line %d: %w", i+2, p.err)
		}
		rows = append(rows, row)
	}
	rows = lastByKey(rows, func(r model.GlobalMentalHealthData) string { return r.Country })
	if len(rows) == 0 {
		return 0, nil
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "country"}},
		DoUpdates: clause.AssignmentColumns(globalColumns[1:]),
	}).Create(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("save global reference data: %w", err)
	}
	return len(rows), nil
}

// ImportRegional upserts state rows from CSV keyed by state_name.
func (s *Store) ImportRegional(ctx context.Context, r io.Reader) (int, error) {
	records, err := readTable(r, regionalColumns)
	if err != nil {
		return 0, fmt.Errorf("regional csv: %w", err)
	}

	rows := make([]model.RegionalMentalHealthData, 0, len(records))
	for i, rec := range records {
		var p fieldParser
		row := model.RegionalMentalHealthData{
			StateName:      rec["state_name"],
			DepressionRate: p.float(rec, "depression_rate"),
			AnxietyRate:    p.float(rec, "anxiety_rate"),
			StressRate:     p.float(rec, "stress_rate"),
		}
		if row.StateName == "" {
			p.err = errors.New("state_name is empty")
		}
		if p.err != nil {
			return 0, fmt.Errorf("regional csv line %d: %w", i+2, p.err)
		}
		rows = append(rows, row)
	}
	rows = lastByKey(rows, func(r model.RegionalMentalHealthData) string { return r.StateName })
	if len(rows) == 0 {
		return 0, nil
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "state_name"}},
		DoUpdates: clause.AssignmentColumns(regionalColumns[1:]),
	}).Create(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("save regional reference data: %w", err)
	}
	return len(rows), nil
}

// readTable reads a header row plus records and returns each record keyed by
// lower-cased column name.
func readTable(r io.Reader, required []string) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}
	for _, col := range required {
		if !contains(header, col) {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var out []map[string]string
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		rec := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(fields) {
				rec[name] = strings.TrimSpace(fields[i])
			}
		}
		out = append(out, rec)
	}
}

// lastByKey drops repeated keys so one upsert statement never touches a row
// twice. The last occurrence wins and keeps the position of the first.
func lastByKey[T any](rows []T, key func(T) string) []T {
	index := make(map[string]int, len(rows))
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		k := key(row)
		if i, ok := index[k]; ok {
			out[i] = row
			continue
		}
		index[k] = len(out)
		out = append(out, row)
	}
	return out
}

// fieldParser keeps the first conversion error so a row can be parsed in one
// struct literal.
type fieldParser struct {
	err error
}

func (p *fieldParser) float(rec map[string]string, key string) float64 {
	if p.err != nil || rec[key] == "" {
		return 0
	}
	v, err := strconv.ParseFloat(rec[key], 64)
	if err != nil {
		p.err = fmt.Errorf("%s: %w", key, err)
	}
	return v
}

func (p *fieldParser) int(rec map[string]string, key string) int {
	if p.err != nil || rec[key] == "" {
		return 0
	}
	v, err := strconv.Atoi(rec[key])
	if err != nil {
		p.err = fmt.Errorf("%s: %w", key, err)
	}
	return v
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
