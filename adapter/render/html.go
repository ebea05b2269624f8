package render

import (
	_ "embed"
	"fmt"
	"html/template"
	"os"

	"github.com/samber/lo"

	"cyberbites/domain"
	"cyberbites/internal/textutil"
)

//go:embed template.html
var templateHTML string

var reportTemplate = template.Must(template.New("report").Parse(templateHTML))

type HTML struct {
	Folder        string
	IncludeImages bool
}

type htmlRow struct {
	Date        string
	Website     string
	Icon        string
	Title       string
	Link        string
	Description string
}

type htmlData struct {
	Title     string
	Text      string
	StartDate string
	EndDate   string
	Rows      []htmlRow
}

func (r *HTML) Render(report domain.Report) (string, error) {
	path, err := outputPath(r.Folder, "html", report)
	if err != nil {
		return "", err
	}

	data := htmlData{
		Title:     report.Meta.Title,
		Text:      report.Meta.Text,
		StartDate: report.Window.Start.Format(printLayout),
		EndDate:   report.Window.End.Format(printLayout),
		Rows: lo.Map(report.Articles, func(a domain.Article, _ int) htmlRow {
			row := htmlRow{
				Date:        a.PublishedAt.Format(printLayout),
				Website:     textutil.SiteName(a.Link),
				Title:       a.Title,
				Link:        a.Link,
				Description: a.Description,
			}
			if r.IncludeImages {
				row.Icon = a.SourceIcon
			}
			return row
		}),
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("write html report: %w", err)
	}
	defer f.Close()

	if err := reportTemplate.Execute(f, data); err != nil {
		return "", fmt.Errorf("render html report: %w", err)
	}
	return path, nil
}
