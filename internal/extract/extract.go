package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"resumeflow/internal/shared/apperr"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText = "text/plain"

	DefaultTimeout = 20 * time.Second
)

// Extractor converts uploaded résumé documents into normalized plain text.
type Extractor struct {
	Timeout time.Duration
}

// New returns an Extractor bounded by timeout. Zero means DefaultTimeout.
func New(timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Extractor{Timeout: timeout}
}

type result struct {
	text string
	err  error
}

// Extract dispatches on the declared type and file name. Corrupt input and
// timeouts fail with apperr.ErrUnparsableDocument.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	kind := DetectKind(mimeType, fileName, data)
	done := make(chan result, 1)
	go func() {
		defer func() {
			// the PDF reader panics on some malformed xref tables
			if rec := recover(); rec != nil {
				done <- result{err: fmt.Errorf("panic: %v", rec)}
			}
		}()
		text, err := extractKind(kind, data)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", apperr.New(apperr.KindUnparsableDocument, "Document extraction timed out", ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", apperr.New(apperr.KindUnparsableDocument, "Failed to parse resume file",
				fmt.Errorf("extract %s: %w", kind, res.err))
		}
		return Normalize(res.text), nil
	}
}

func extractKind(kind string, data []byte) (string, error) {
	switch kind {
	case mimePDF:
		return extractPDF(data)
	case mimeDOCX:
		return extractDOCX(data)
	default:
		return extractUTF8(data)
	}
}

// DetectKind resolves the extractor for a payload: PDF by declared type, DOCX
// by declared type, OOXML zip contents or extension, otherwise plain text.
func DetectKind(mimeType, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case mimePDF:
		return mimePDF
	case mimeDOCX:
		return mimeDOCX
	case "application/zip", "application/x-zip-compressed":
		if hasZipEntry(data, "word/document.xml") {
			return mimeDOCX
		}
	}
	if strings.EqualFold(filepath.Ext(fileName), ".docx") {
		return mimeDOCX
	}
	return mimeText
}

// Normalize converts CRLF to LF, collapses runs of two or more blank lines
// into one blank line and trims the result.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blanks := 0
	flush := func() {
		if blanks > 0 {
			out = append(out, "")
		}
		blanks = 0
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blanks++
			continue
		}
		flush()
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()

	text, err := stripDocxXML(doc.Editable().GetContent())
	if err != nil {
		return "", fmt.Errorf("document.xml: %w", err)
	}
	return text, nil
}

func extractUTF8(data []byte) (string, error) {
	if bytes.IndexByte(data, 0) >= 0 {
		return "", errors.New("binary payload is not text")
	}
	if !utf8.Valid(data) {
		return strings.ToValidUTF8(string(data), "�"), nil
	}
	return string(data), nil
}

// stripDocxXML flattens WordprocessingML into text, one line per paragraph.
func stripDocxXML(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString("\t")
			}
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				buf.WriteString("\n")
			}
		}
	}
	return buf.String(), nil
}

func hasZipEntry(data []byte, name string) bool {
	if len(data) == 0 {
		return false
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == name {
			return true
		}
	}
	return false
}
