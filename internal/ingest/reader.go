// Package ingest reads tabular ship telemetry sources into TelemetryRecords.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/shipsense/power-estimation/internal/models"
	"github.com/shipsense/power-estimation/internal/utils"
)

var (
	// ErrSourceUnreadable reports a missing, unsupported or corrupt source file.
	ErrSourceUnreadable = errors.New("telemetry source unreadable")
	// ErrMissingColumn reports a source lacking one of the expected channel headers.
	ErrMissingColumn = errors.New("telemetry column missing")
	// ErrMalformedCell reports a cell holding text that is not a number.
	ErrMalformedCell = errors.New("telemetry cell malformed")
)

// Loader reads a telemetry source by path.
type Loader interface {
	Load(ctx context.Context, path string) (*models.TelemetryRecord, error)
}

// FileLoader reads .xlsx/.xlsm workbooks (first sheet) and .csv files from local disk.
type FileLoader struct{}

// Load reads path and assembles a validated TelemetryRecord. Blank cells read as NaN;
// a missing column or a non-numeric cell fails the whole load.
func (FileLoader) Load(ctx context.Context, path string) (*models.TelemetryRecord, error) {
	const op = "ingest.Load"
	if strings.TrimSpace(path) == "" {
		return nil, utils.NewAppError(op, "input file is required", ErrSourceUnreadable)
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(path)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, utils.Errorf(op, ErrSourceUnreadable, "unsupported source type %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, utils.Errorf(op, fmt.Errorf("%w: %v", ErrSourceUnreadable, err), "read %s", path)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec, err := FromRows(rows)
	if err != nil {
		return nil, utils.Errorf(op, err, "decode %s", path)
	}
	return rec, nil
}

// FromRows decodes a header row followed by data rows. Trailing blank rows are ignored.
func FromRows(rows [][]string) (*models.TelemetryRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrMissingColumn)
	}

	columns := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		name := strings.TrimSpace(h)
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}

	data := trimBlank(rows[1:])
	rec := &models.TelemetryRecord{}
	for _, ch := range models.TelemetryChannels {
		col, ok := columns[ch.Header]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, ch.Header)
		}
		values := make([]float64, len(data))
		for r, row := range data {
			v, err := parseCell(row, col)
			if err != nil {
				// +2: one for the header, one for 1-based row numbers.
				return nil, fmt.Errorf("%w: column %q row %d: %v", ErrMalformedCell, ch.Header, r+2, err)
			}
			values[r] = v
		}
		ch.Set(rec, values)
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// parseCell reads one numeric cell. Workbook rows drop trailing empty cells, so a column
// past the end of row is blank too.
func parseCell(row []string, col int) (float64, error) {
	if col >= len(row) {
		return math.NaN(), nil
	}
	raw := strings.TrimSpace(row[col])
	if raw == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(raw, 64)
}

func trimBlank(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && blank(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}
