package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"reikningar/internal/core"
)

// TextExtractor returns the text layer of a document.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// PDFTextExtractor reads the text of every page of a PDF, in page order.
type PDFTextExtractor struct{}

// ExtractText implements TextExtractor.
func (PDFTextExtractor) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	// The pdf reader panics on some truncated inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: unreadable pdf: %v", core.ErrMalformedInput, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", core.ErrMalformedInput, err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", core.ErrMalformedInput, i, err)
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
