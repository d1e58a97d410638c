package invoice

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRenderWritesPDF(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(dir)

	path, err := r.Render(Data{
		Number:       "INV-ABC12345",
		OrderID:      "ord_1",
		Username:     "asha",
		Email:        "asha@example.com",
		ProductTitle: "Go Bootcamp",
		ProductType:  "COURSE",
		Amount:       999,
		Currency:     "INR",
		IssuedAt:     time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if path != filepath.Join(dir, "INV-ABC12345.pdf") {
		t.Errorf("path = %q", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(b) < 4 || string(b[:4]) != "%PDF" {
		t.Errorf("output is not a PDF (%d bytes)", len(b))
	}
}

func TestRenderCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "invoices")
	r := NewRenderer(dir)

	if _, err := r.Render(Data{Number: "INV-X", IssuedAt: time.Now()}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("output dir missing: %v", err)
	}
}
