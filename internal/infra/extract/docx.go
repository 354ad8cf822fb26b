package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// extractDOCX returns the text of every body-level <w:p> paragraph in word/document.xml,
// one paragraph per line, in document order.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx container: %w", err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			part = f
			break
		}
	}
	if part == nil {
		return "", errors.New("docx container: word/document.xml not found")
	}

	rc, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("docx document part: %w", err)
	}
	defer rc.Close()

	paragraphs, err := docxParagraphs(rc)
	if err != nil {
		return "", err
	}
	return strings.Join(paragraphs, "\n"), nil
}

// skippedDOCX are subtrees whose text is not part of the paragraph's own runs:
// text boxes, drawings, embedded objects and both branches of mc:AlternateContent.
var skippedDOCX = map[string]bool{
	"AlternateContent": true,
	"drawing":          true,
	"pict":             true,
	"object":           true,
	"txbxContent":      true,
}

// docxParagraphs collects the body-level paragraphs only; paragraphs nested in
// tables, content controls or text boxes are left out.
func docxParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		out    []string
		cur    strings.Builder
		stack  []string
		inPara bool
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("docx xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if skippedDOCX[t.Name.Local] {
				if err := dec.Skip(); err != nil {
					return nil, fmt.Errorf("docx xml: %w", err)
				}
				continue
			}
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			stack = append(stack, t.Name.Local)
			if !isWord(t.Name) {
				continue
			}
			switch t.Name.Local {
			case "p":
				if parent == "body" {
					inPara = true
					cur.Reset()
				}
			case "t":
				inText = inPara
			case "tab":
				if inPara && parent == "r" {
					cur.WriteByte('\t')
				}
			case "br", "cr":
				if inPara && parent == "r" {
					cur.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			if !isWord(t.Name) {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inPara && len(stack) > 0 && stack[len(stack)-1] == "body" {
					out = append(out, cur.String())
					inPara = false
				}
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	return out, nil
}

func isWord(n xml.Name) bool {
	return n.Space == wordNS || n.Space == "w" || n.Space == ""
}
