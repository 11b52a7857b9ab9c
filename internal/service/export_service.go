package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/yuin/goldmark"

	"github.com/xxxsen/pdflux/internal/model"
)

// ExportService renders a document's interaction history as a standalone
// HTML page. AI replies are markdown, so bodies go through goldmark.
type ExportService struct {
	documents documentGetter
	history   historyStore
}

func NewExportService(documents documentGetter, history historyStore) *ExportService {
	return &ExportService{documents: documents, history: history}
}

var historyPageTmpl = template.Must(template.New("history").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Filename}} - interaction history</title>
</head>
<body>
<h1>{{.Filename}}</h1>
<p>{{.Count}} recorded interactions</p>
{{range .Entries}}
<section>
<h2>{{.Title}}</h2>
<p><small>{{.ModelUsed}} · {{printf "%.2f" .ProcessingTime}}s · {{.When}}</small></p>
{{range .Bodies}}
<h3>{{.Label}}</h3>
<div>{{.HTML}}</div>
{{end}}
</section>
{{end}}
</body>
</html>
`))

type historyPage struct {
	Filename string
	Count    int
	Entries  []historyEntry
}

type historyEntry struct {
	Title          string
	ModelUsed      string
	ProcessingTime float64
	When           string
	Bodies         []historyBody
}

type historyBody struct {
	Label string
	HTML  template.HTML
}

func (s *ExportService) ExportHistoryHTML(ctx context.Context, docID string) ([]byte, error) {
	doc, err := s.documents.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	records, err := s.history.ListByDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	page := historyPage{
		Filename: doc.Filename,
		Count:    len(records),
	}
	for _, rec := range records {
		entry := historyEntry{
			ModelUsed:      rec.ModelUsed,
			ProcessingTime: rec.ProcessingTime,
			When:           time.Unix(rec.Timestamp, 0).UTC().Format(time.RFC3339),
		}
		switch rec.Kind {
		case model.InteractionKindTask:
			entry.Title = "Task: " + rec.TaskType
			body, err := renderMarkdown(rec.Result)
			if err != nil {
				return nil, err
			}
			entry.Bodies = append(entry.Bodies, historyBody{Label: "Result", HTML: body})
		default:
			entry.Title = "Chat"
			for _, msg := range rec.Messages {
				body, err := renderMarkdown(msg.Content)
				if err != nil {
					return nil, err
				}
				entry.Bodies = append(entry.Bodies, historyBody{Label: msg.Role, HTML: body})
			}
		}
		page.Entries = append(page.Entries, entry)
	}
	var out bytes.Buffer
	if err := historyPageTmpl.Execute(&out, page); err != nil {
		return nil, fmt.Errorf("render history page: %w", err)
	}
	return out.Bytes(), nil
}

func renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}
