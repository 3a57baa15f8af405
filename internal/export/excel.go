// Package export writes estimate results to spreadsheets for plotting.
package export

import (
	"context"
	"fmt"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/shipsense/power-estimation/internal/models"
)

// Header row of an emitted workbook. The first column is the sample position.
var Header = []any{"", "Power Estimate", "ActualPower"}

const sheet = "Sheet1"

// WriteEstimates saves estimated and actual power to a new workbook at path, replacing
// any existing file.
func WriteEstimates(path string, rec models.EstimateRecord) error {
	if len(rec.PowerEstimate) != len(rec.PowerActual) {
		return fmt.Errorf("%w: %d estimates, %d actual values",
			models.ErrShapeMismatch, len(rec.PowerEstimate), len(rec.PowerActual))
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(sheet, "A1", &Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range rec.PowerEstimate {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{i, rec.PowerEstimate[i], rec.PowerActual[i]}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Workbook emits every estimate to the same file. Later estimates overwrite earlier ones.
type Workbook struct {
	path string
	mu   sync.Mutex
}

// NewWorkbook returns an emitter writing to path.
func NewWorkbook(path string) *Workbook {
	return &Workbook{path: path}
}

// Path returns the output file.
func (w *Workbook) Path() string { return w.path }

// Emit writes rec to the workbook.
func (w *Workbook) Emit(_ context.Context, rec models.EstimateRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return WriteEstimates(w.path, rec)
}
