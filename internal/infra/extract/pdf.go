package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF joins the text layer of every page with a newline, in page order.
// Pages without a decodable text layer contribute an empty line.
func extractPDF(data []byte) (string, error) {
	rdr, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}

	n := rdr.NumPage()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		pg := rdr.Page(i)
		if pg.V.IsNull() {
			parts = append(parts, "")
			continue
		}
		txt, err := pg.GetPlainText(nil)
		if err != nil {
			// image-only or damaged page
			parts = append(parts, "")
			continue
		}
		parts = append(parts, txt)
	}
	return strings.Join(parts, "\n"), nil
}
