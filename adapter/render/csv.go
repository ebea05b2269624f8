package render

import (
	"encoding/csv"
	"fmt"
	"os"

	"cyberbites/domain"
	"cyberbites/internal/textutil"
)

type CSV struct {
	Folder string
}

func (r *CSV) Render(report domain.Report) (string, error) {
	path, err := outputPath(r.Folder, "csv", report)
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("write csv report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	records := [][]string{
		{fmt.Sprintf("Time range: %s to %s UTC", report.Window.Start.Format(printLayout), report.Window.End.Format(printLayout))},
		{fmt.Sprintf("Report Title: %s", report.Meta.Title)},
		{fmt.Sprintf("Report Description: %s", report.Meta.Text)},
		{},
		{"Date (UTC)", "Website", "Title", "Description", "Link"},
	}
	for _, a := range report.Articles {
		records = append(records, []string{
			a.PublishedAt.Format(printLayout),
			textutil.SiteName(a.Link),
			a.Title,
			a.Description,
			a.Link,
		})
	}
	if err := w.WriteAll(records); err != nil {
		return "", fmt.Errorf("write csv report: %w", err)
	}
	return path, nil
}
