package documents

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"resumeflow/internal/shared/apperr"
)

const maxUploadSize = 10 << 20 // 10MB

// TextExtractor turns raw document bytes into normalized text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, mimeType, fileName string) (string, error)
}

// Parsed is the result of parsing an uploaded résumé.
type Parsed struct {
	Text     string `json:"text"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
}

// Service extracts text from uploads. It is not credit-gated.
type Service struct {
	Extractor TextExtractor
}

// NewService constructs a Service.
func NewService(extractor TextExtractor) *Service {
	return &Service{Extractor: extractor}
}

// Parse reads r fully and extracts its text.
func (s *Service) Parse(ctx context.Context, fileName, mimeType string, r io.Reader) (Parsed, error) {
	fileName = filepath.Base(strings.TrimSpace(fileName))
	data, err := io.ReadAll(io.LimitReader(r, maxUploadSize+1))
	if err != nil {
		return Parsed{}, apperr.New(apperr.KindInvalidInput, "Unable to read file", err)
	}
	if len(data) == 0 {
		return Parsed{}, apperr.Newf(apperr.KindInvalidInput, "File is empty")
	}
	if len(data) > maxUploadSize {
		return Parsed{}, apperr.Newf(apperr.KindInvalidInput, "File exceeds %d MB", maxUploadSize>>20)
	}

	text, err := s.Extractor.Extract(ctx, data, mimeType, fileName)
	if err != nil {
		return Parsed{}, fmt.Errorf("extract %s: %w", fileName, err)
	}
	return Parsed{Text: text, FileName: fileName, MimeType: mimeType}, nil
}
