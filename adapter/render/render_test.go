package render

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyberbites/domain"
)

func sampleReport() domain.Report {
	return domain.Report{
		Meta: domain.ReportMeta{
			Title:  "Cyber News",
			Text:   "Cybersecurity News",
			Prefix: "cybersecuritynews",
		},
		Window: domain.TimeWindow{
			Start: time.Date(2023, 8, 14, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2023, 8, 15, 10, 30, 0, 0, time.UTC),
		},
		GeneratedAt: time.Date(2023, 8, 15, 10, 30, 5, 0, time.UTC),
		Articles: []domain.Article{
			{
				ID:          1,
				Title:       "Ransomware <strain> hits",
				Link:        "https://news.example.com/story",
				PublishedAt: time.Date(2023, 8, 15, 9, 0, 0, 0, time.UTC),
				Source:      "Example News",
				SourceIcon:  "https://news.example.com/icon.png",
				Description: "Attackers encrypted the network.",
			},
			{
				ID:          2,
				Title:       "Patch Tuesday roundup",
				Link:        "https://other.example.com/patches",
				PublishedAt: time.Date(2023, 8, 14, 12, 0, 0, 0, time.UTC),
				Source:      "Other News",
				Description: "Dozens of fixes, several critical.",
			},
		},
	}
}

func TestJSONRender(t *testing.T) {
	dir := t.TempDir()
	path, err := (&JSON{Folder: dir}).Render(sampleReport())
	require.NoError(t, err)
	assert.Equal(t, "cybersecuritynews_2023-08-15_10-30-05.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		StartDate string `json:"start_date"`
		Title     string `json:"title"`
		Items     []struct {
			Title       string `json:"title"`
			Link        string `json:"link"`
			Published   string `json:"published"`
			Source      string `json:"source"`
			Description string `json:"description"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "2023-08-14 00:00:00", doc.StartDate)
	assert.Equal(t, "Cyber News", doc.Title)
	require.Len(t, doc.Items, 2)
	assert.Equal(t, "Ransomware <strain> hits", doc.Items[0].Title)
	assert.Equal(t, "2023-08-15 09:00:00", doc.Items[0].Published)
	assert.Equal(t, "news.example.com", doc.Items[0].Source)
}

func TestJSONRenderEmptyReport(t *testing.T) {
	report := sampleReport()
	report.Articles = nil

	path, err := (&JSON{Folder: t.TempDir()}).Render(report)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"items": []`)
}

func TestCSVRender(t *testing.T) {
	dir := t.TempDir()
	path, err := (&CSV{Folder: dir}).Render(sampleReport())
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	// the reader skips the blank separator line
	require.Len(t, records, 6)
	assert.Contains(t, records[0][0], "Time range:")
	assert.Equal(t, []string{"Date (UTC)", "Website", "Title", "Description", "Link"}, records[3])
	assert.Equal(t, "news.example.com", records[4][1])
	assert.Equal(t, "Ransomware <strain> hits", records[4][2])
}

func TestHTMLRender(t *testing.T) {
	dir := t.TempDir()
	path, err := (&HTML{Folder: dir, IncludeImages: true}).Render(sampleReport())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)

	assert.Contains(t, html, "<h1>Cyber News</h1>")
	assert.Contains(t, html, `href="https://news.example.com/story"`)
	// markup in titles is escaped, never rendered
	assert.Contains(t, html, "Ransomware &lt;strain&gt; hits")
	assert.NotContains(t, html, "<strain>")
	assert.Contains(t, html, `img src="https://news.example.com/icon.png"`)
}

func TestHTMLRenderWithoutImages(t *testing.T) {
	path, err := (&HTML{Folder: t.TempDir()}).Render(sampleReport())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "icon.png")
}

func TestOutputPathCreatesFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	path, err := outputPath(dir, "html", sampleReport())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
