package extract

import (
	"bytes"
	"fmt"
	"strings"

	"rsc.io/pdf"
)

// Result is what upload-time extraction produces for one PDF. Text may be
// empty for scanned or image-only documents; that is not an error here.
type Result struct {
	PageCount int
	Text      string
}

// PDF extracts the page count and plain text of a PDF blob. The underlying
// reader panics on malformed files, so the whole walk runs behind a recover
// and surfaces as a plain error.
func PDF(data []byte) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("parse pdf: %w", err)
	}
	res.PageCount = reader.NumPage()
	var b strings.Builder
	for i := 1; i <= res.PageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		b.WriteString(pageText(page))
		b.WriteString("\n")
	}
	res.Text = b.String()
	return res, nil
}

func pageText(page pdf.Page) string {
	content := page.Content()
	var b strings.Builder
	var lastY float64
	var prev string
	for i, text := range content.Text {
		if i > 0 {
			if text.Y != lastY {
				b.WriteString("\n")
			} else if !strings.HasSuffix(prev, " ") && !strings.HasPrefix(text.S, " ") {
				b.WriteString(" ")
			}
		}
		b.WriteString(text.S)
		prev = text.S
		lastY = text.Y
	}
	return b.String()
}
