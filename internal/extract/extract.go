// Package extract converts uploaded resume files into plain text.
// Extraction is best-effort: callers treat failure as an empty resume
// rather than a failed upload.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MimePDF   = "application/pdf"
	MimeDocx  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimePlain = "text/plain"
)

// Text extracts plain text from a resume file based on its MIME type.
func Text(mime string, data []byte) (string, error) {
	switch mime {
	case MimePlain:
		return string(data), nil

	case MimePDF:
		return pdfText(bytes.NewReader(data), int64(len(data)))

	case MimeDocx:
		return docxText(data)

	default:
		return "", fmt.Errorf("unsupported file type: %s", mime)
	}
}

// BestEffort extracts text and degrades to "" on any failure. An empty
// result leaves the application permanently unscorable, which downstream
// surfaces as a pending score.
func BestEffort(mime string, data []byte) string {
	text, err := Text(mime, data)
	if err != nil {
		return ""
	}
	return text
}

func pdfText(reader io.ReaderAt, size int64) (string, error) {
	pdfReader, err := pdf.NewReader(reader, size)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, _ := page.GetPlainText(nil)
		textBuilder.WriteString(text)
	}
	return textBuilder.String(), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return doc.Editable().GetContent(), nil
}
