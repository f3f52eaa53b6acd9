package export

import (
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/d3ntaltech/calendrier/internal/calendar"
	"github.com/d3ntaltech/calendrier/internal/notify"
)

var pdfColumns = []struct {
	title string
	width float64
}{
	{"Heure", 18},
	{"Type", 32},
	{"Titre", 50},
	{"Collaborateurs", 35},
	{"Priorité", 20},
	{"Notes", 35},
}

// WritePDF renders an A4 recap, one table per day.
func WritePDF(w io.Writer, title string, days []calendar.RecapDay) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	// Core fonts are cp1252; translate accented text.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	if len(days) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.CellFormat(0, 8, tr("Aucun événement."), "", 1, "L", false, 0, "")
	}

	for _, day := range days {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetFillColor(230, 236, 245)
		pdf.CellFormat(0, 8, tr(notify.FormatDay(day.Date)), "", 1, "L", true, 0, "")

		pdf.SetFont("Helvetica", "B", 9)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 6, tr(col.title), "B", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 9)
		for _, entry := range day.Entries {
			values := []string{entry.Time, entry.Category, entry.Title, entry.Collaborators, entry.Priority, entry.Notes}
			for i, col := range pdfColumns {
				pdf.CellFormat(col.width, 6, tr(truncate(pdf, values[i], col.width-1)), "", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(3)
	}

	return pdf.Output(w)
}

func truncate(pdf *fpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
