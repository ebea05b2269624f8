package render

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samber/lo"

	"cyberbites/domain"
	"cyberbites/internal/textutil"
)

type JSON struct {
	Folder string
}

type jsonItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Published   string `json:"published"`
	Source      string `json:"source"`
	Description string `json:"description"`
}

type jsonReport struct {
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	Published string     `json:"published"`
	Title     string     `json:"title"`
	Text      string     `json:"text"`
	Items     []jsonItem `json:"items"`
}

func (r *JSON) Render(report domain.Report) (string, error) {
	path, err := outputPath(r.Folder, "json", report)
	if err != nil {
		return "", err
	}

	doc := jsonReport{
		StartDate: report.Window.Start.Format(jsonDateLayout),
		EndDate:   report.Window.End.Format(jsonDateLayout),
		Published: report.GeneratedAt.UTC().Format(jsonDateLayout),
		Title:     report.Meta.Title,
		Text:      report.Meta.Text,
		Items: lo.Map(report.Articles, func(a domain.Article, _ int) jsonItem {
			return jsonItem{
				Title:       a.Title,
				Link:        a.Link,
				Published:   a.PublishedAt.Format(jsonDateLayout),
				Source:      textutil.SiteName(a.Link),
				Description: a.Description,
			}
		}),
	}
	if doc.Items == nil {
		doc.Items = []jsonItem{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode json report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write json report: %w", err)
	}
	return path, nil
}
