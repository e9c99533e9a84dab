// Package report renders one-page PDF summaries of a phase fraction
// analysis: the percentage, pixel counts, micrograph thumbnail, overlay
// composite and acquisition metadata.
package report

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/go-pdf/fpdf"

	apperrors "github.com/CliffortMC08/pearlite-analyser/internal/errors"
	"github.com/CliffortMC08/pearlite-analyser/pkg/models"
)

// Data carries everything the report renderer needs. Thumbnail and Overlay
// are pre-scaled composites owned by the caller.
type Data struct {
	Result    models.AnalysisResult
	Thumbnail image.Image
	Overlay   image.Image
}

// Generator renders analysis reports as PDF.
type Generator struct{}

// NewGenerator creates a PDF report generator.
func NewGenerator() *Generator {
	return &Generator{}
}

const (
	pageMargin   = 15.0
	contentWidth = 210 - 2*pageMargin // A4 portrait
	columnGap    = 6.0
)

// Generate writes a one-page A4 report for the given analysis.
func (g *Generator) Generate(w io.Writer, data Data) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Pearlite Phase Analysis Report", false)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentWidth, 10, "Pearlite Phase Analysis Report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(contentWidth, 5, "Metallographic phase fraction analysis", "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	// Metadata table
	g.metadataRow(pdf, "Analysis ID", data.Result.ID)
	if data.Result.SourceName != "" {
		g.metadataRow(pdf, "Source image", data.Result.SourceName)
	}
	g.metadataRow(pdf, "Analysed at", data.Result.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"))
	g.metadataRow(pdf, "Dimensions", fmt.Sprintf("%d x %d px", data.Result.Width, data.Result.Height))
	pdf.Ln(6)

	// Headline figure
	cls := data.Result.Classification
	pdf.SetFont("Helvetica", "B", 32)
	pdf.SetTextColor(16, 122, 87)
	pdf.CellFormat(contentWidth, 14, fmt.Sprintf("%.2f%%", cls.Percentage), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentWidth, 6,
		fmt.Sprintf("Pearlite fraction: %d of %d pixels marked", cls.MarkedCount, cls.TotalCount),
		"", 1, "L", false, 0, "")
	pdf.Ln(6)

	// Micrograph and overlay side by side
	colWidth := (contentWidth - columnGap) / 2
	top := pdf.GetY()
	imgHeight, err := g.placeImage(pdf, "micrograph", data.Thumbnail, pageMargin, top, colWidth)
	if err != nil {
		return err
	}
	overlayHeight, err := g.placeImage(pdf, "overlay", data.Overlay, pageMargin+colWidth+columnGap, top, colWidth)
	if err != nil {
		return err
	}
	if overlayHeight > imgHeight {
		imgHeight = overlayHeight
	}
	pdf.SetY(top + imgHeight + 2)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(colWidth, 5, "Micrograph", "", 0, "C", false, 0, "")
	pdf.CellFormat(columnGap, 5, "", "", 0, "", false, 0, "")
	pdf.CellFormat(colWidth, 5, "Marked pearlite regions", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Acquisition context
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentWidth, 7, "Image statistics", "", 1, "L", false, 0, "")
	g.metadataRow(pdf, "Mean luminance", fmt.Sprintf("%.3f", data.Result.Luminance.Mean))
	g.metadataRow(pdf, "Luminance std dev", fmt.Sprintf("%.3f", data.Result.Luminance.StdDev))
	g.metadataRow(pdf, "Processing time", fmt.Sprintf("%.3f s", data.Result.ProcessingTimeSec))

	if err := pdf.Error(); err != nil {
		return apperrors.NewInternalError("failed to compose PDF report", err)
	}
	if err := pdf.Output(w); err != nil {
		return apperrors.NewInternalError("failed to write PDF report", err)
	}
	return nil
}

func (g *Generator) metadataRow(pdf *fpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(40, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentWidth-40, 6, value, "", 1, "L", false, 0, "")
}

// placeImage registers img under name and draws it at (x, y) scaled to the
// column width. Returns the drawn height in mm.
func (g *Generator) placeImage(pdf *fpdf.Fpdf, name string, img image.Image, x, y, width float64) (float64, error) {
	if img == nil {
		return 0, nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return 0, apperrors.NewInternalError("failed to encode report image", err)
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, &buf)

	bounds := img.Bounds()
	height := width * float64(bounds.Dy()) / float64(bounds.Dx())
	pdf.ImageOptions(name, x, y, width, height, false, opts, 0, "")
	return height, nil
}
