package infra

// pdf.go — closing-summary PDF generation using go-pdf/fpdf.
// One A5 page per cierre: header, totals per payment method, fuera-de-caja
// block when present, settlement summary and the declared-vs-expected line.

import (
	"fmt"
	"os"
	"path/filepath"

	"barbercontrol/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// PDFGenerator writes closing summaries under storagePath.
type PDFGenerator struct {
	storagePath string
}

func NewPDFGenerator(storagePath string) *PDFGenerator {
	return &PDFGenerator{storagePath: storagePath}
}

// GenerarResumenCierre renders the reconciliation snapshot and returns the
// absolute path of the generated file.
func (g *PDFGenerator) GenerarResumenCierre(c *model.CierreCaja) (string, error) {
	if err := os.MkdirAll(g.storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("cierre_%s.pdf", c.ID)
	filePath := filepath.Join(g.storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	tipo := "Cierre manual"
	if c.Automatico {
		tipo = "Cierre automático"
	}

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Resumen de cierre de caja", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("%s — fecha operativa %s", tipo, c.FechaOperativa), "", 1, "C", false, 0, "")
	pdf.Ln(3)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 4, "Apertura: "+c.AbiertaEn.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, "Cierre:   "+c.CerradaEn.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	linea := func(label string, monto decimal.Decimal) {
		pdf.CellFormat(contentW*0.6, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.4, 5, "$"+monto.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Ventas en caja (%d)", c.CantidadVentas), "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	linea("Efectivo", c.TotalEfectivo)
	linea("Tarjeta", c.TotalTarjeta)
	linea("Transferencia", c.TotalTransferencia)
	pdf.SetFont("Helvetica", "B", 8)
	linea("Total general", c.TotalGeneral)
	pdf.Ln(2)

	if c.IncluyeFueraCaja {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 6, fmt.Sprintf("Ventas fuera de caja (%d)", c.CantidadFueraCaja), "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		linea("Total fuera de caja", c.TotalFueraCaja)
		pdf.Ln(2)
	}

	if c.ConsumosLiquidados > 0 {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 6, fmt.Sprintf("Consumos liquidados (%d) — %s", c.ConsumosLiquidados, c.ReglaConsumos), "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		linea("Total consumos", c.TotalConsumos)
		pdf.Ln(2)
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 6, "Arqueo", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	linea("Monto inicial", c.MontoInicial)
	linea("Monto esperado", c.MontoEsperado)
	linea("Monto declarado", c.MontoDeclarado)
	pdf.SetFont("Helvetica", "B", 9)
	linea("Desvío", c.Desvio)

	if c.Observaciones != nil && *c.Observaciones != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 4, "Observaciones: "+*c.Observaciones, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
