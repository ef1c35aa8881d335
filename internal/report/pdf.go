package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/golang/freetype/truetype"
)

const (
	fontFamily = "Report"

	imageX     = 15.0
	imageWidth = 180.0
)

// Composer renders a Document to A4 PDF bytes.
type Composer struct {
	// FontTTF is embedded as a UTF-8 font. Empty falls back to core Helvetica,
	// which only covers Latin text.
	FontTTF []byte
	// CreatedAt is stamped into the document metadata; zero means now.
	CreatedAt time.Time
}

func NewComposer(fontTTF []byte) *Composer {
	return &Composer{FontTTF: fontTTF}
}

func (c *Composer) Compose(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	if !c.CreatedAt.IsZero() {
		pdf.SetCreationDate(c.CreatedAt)
		pdf.SetModificationDate(c.CreatedAt)
	}

	family := "Helvetica"
	if len(c.FontTTF) > 0 {
		if _, err := truetype.Parse(c.FontTTF); err != nil {
			return nil, fmt.Errorf("failed to parse report font: %w", err)
		}
		pdf.AddUTF8FontFromBytes(fontFamily, "", c.FontTTF)
		family = fontFamily
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to register font: %w", err)
	}

	pdf.SetTitle(doc.Title, true)
	pdf.AddPage()

	pdf.SetFont(family, "", 20)
	pdf.SetTextColor(TitleColor.R, TitleColor.G, TitleColor.B)
	pdf.CellFormat(0, 15, doc.Title, "", 1, "C", false, 0, "")
	pdf.Ln(5)

	for i, section := range doc.Sections {
		if i > 0 {
			pdf.Ln(10)
		}
		writeSection(pdf, family, fmt.Sprintf("section%d", i), section)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSection(pdf *fpdf.Fpdf, family, name string, s Section) {
	if pdf.Err() {
		return
	}

	pdf.SetFont(family, "", 14)
	pdf.SetTextColor(s.Color.R, s.Color.G, s.Color.B)
	pdf.CellFormat(0, 10, s.Heading, "", 1, "L", false, 0, "")
	pdf.SetDrawColor(s.Color.R, s.Color.G, s.Color.B)
	pdf.SetLineWidth(0.5)
	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(3)

	pdf.SetFont(family, "", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(0, 8, s.Body, "", "L", false)
	pdf.Ln(4)

	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	for j, img := range s.Images {
		if j > 0 {
			pdf.Ln(5)
		}
		imageName := fmt.Sprintf("%s-image%d", name, j)
		pdf.RegisterImageOptionsReader(imageName, opts, bytes.NewReader(img))
		pdf.ImageOptions(imageName, imageX, pdf.GetY(), imageWidth, 0, true, opts, 0, "")
	}
}
