package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/KRoses96/Neverita/internal/planner"
	"github.com/KRoses96/Neverita/internal/storage"
)

// Format selects the export encoding.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatCSV Format = "csv"
)

// Generator renders a loaded plan window into a downloadable
// document. Loading goes through the planner service, so a day whose
// fetch fails exports as empty rather than failing the document.
type Generator struct {
	loader *planner.Service
}

func NewGenerator(plannerService *planner.Service) *Generator {
	return &Generator{loader: plannerService}
}

// Week renders the 7-day window starting at start.
func (g *Generator) Week(ctx context.Context, w planner.Window, format Format) ([]byte, error) {
	state, err := g.loader.LoadWindow(ctx, w)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatPDF:
		return g.weekPDF(w, state)
	case FormatCSV:
		return g.weekCSV(state)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func (g *Generator) weekPDF(w planner.Window, state *planner.PlanState) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Weekly Meal Plan")
	pdf.Ln(8)

	dates := w.Dates()
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Week of %s to %s", dates[0], dates[len(dates)-1]))
	pdf.Ln(12)

	// Table: date column plus one column per meal.
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(28, 7, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(54, 7, "Breakfast", "1", 0, "C", false, 0, "")
	pdf.CellFormat(54, 7, "Lunch", "1", 0, "C", false, 0, "")
	pdf.CellFormat(54, 7, "Dinner", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, day := range state.Days {
		pdf.CellFormat(28, 7, day.Date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(54, 7, slotLabel(day.Breakfast), "1", 0, "L", false, 0, "")
		pdf.CellFormat(54, 7, slotLabel(day.Lunch), "1", 0, "L", false, 0, "")
		pdf.CellFormat(54, 7, slotLabel(day.Dinner), "1", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) weekCSV(state *planner.PlanState) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"date", "breakfast", "lunch", "dinner"}); err != nil {
		return nil, err
	}
	for _, day := range state.Days {
		row := []string{
			day.Date,
			slotName(day.Breakfast),
			slotName(day.Lunch),
			slotName(day.Dinner),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func slotLabel(r *storage.Recipe) string {
	if r == nil {
		return "-"
	}
	return r.Name
}

func slotName(r *storage.Recipe) string {
	if r == nil {
		return ""
	}
	return r.Name
}
