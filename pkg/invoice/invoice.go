package invoice

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
)

// Data is everything a receipt needs. Rendered invoices are disposable:
// they can be regenerated from the ledger row and its product snapshot.
type Data struct {
	Number       string
	OrderID      string
	Username     string
	Email        string
	ProductTitle string
	ProductType  string
	Amount       int64 // major currency units
	Currency     string
	IssuedAt     time.Time
}

type Renderer struct {
	outputDir string
}

func NewRenderer(outputDir string) *Renderer {
	return &Renderer{outputDir: outputDir}
}

// Render writes the receipt PDF and returns its path.
func (r *Renderer) Render(d Data) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("invoice dir: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "Invoice "+d.Number)
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, "Date: "+d.IssuedAt.Format("02 Jan 2006"))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Order: "+d.OrderID)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Billed to")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, d.Username)
	pdf.Ln(7)
	pdf.Cell(0, 7, d.Email)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(130, 9, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 9, "Amount", "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(130, 9, d.ProductTitle, "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 9, fmt.Sprintf("%s %d", d.Currency, d.Amount), "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(130, 9, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 9, fmt.Sprintf("%s %d", d.Currency, d.Amount), "1", 1, "R", false, 0, "")

	path := filepath.Join(r.outputDir, d.Number+".pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("invoice render: %w", err)
	}
	return path, nil
}
