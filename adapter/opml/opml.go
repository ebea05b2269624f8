// Package opml reads the feed source registry: an OPML outline declaring the
// RSS/Atom sources and the label reports are named after.
package opml

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"cyberbites/domain"
	"cyberbites/internal/textutil"
)

// Document is the parsed registry: the top outline's metadata plus the
// ordered feed sources beneath it.
type Document struct {
	Text     string
	Title    string
	Category string
	Sources  []domain.FeedSource
}

// Meta returns the report metadata derived from the top outline.
func (d *Document) Meta() domain.ReportMeta {
	return domain.ReportMeta{Title: d.Title, Text: d.Text, Prefix: textutil.FilePrefix(d.label())}
}

// label prefers the text attribute, falling back to category.
func (d *Document) label() string {
	if strings.TrimSpace(d.Text) != "" {
		return d.Text
	}
	return d.Category
}

type opmlFile struct {
	XMLName xml.Name `xml:"opml"`
	Body    struct {
		Outlines []outline `xml:"outline"`
	} `xml:"body"`
}

type outline struct {
	Text     string    `xml:"text,attr"`
	Title    string    `xml:"title,attr"`
	Category string    `xml:"category,attr"`
	XMLURL   string    `xml:"xmlUrl,attr"`
	IconURL  string    `xml:"iconUrl,attr"`
	Outlines []outline `xml:"outline"`
}

// Parse reads an OPML file. The file must carry exactly one top-level
// outline with a text or category label and at least one feed source; any
// violation is fatal before fetching begins.
func Parse(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opml file: %w", err)
	}

	var f opmlFile
	if err := xml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("opml file %s: %w", path, err)
	}
	if len(f.Body.Outlines) == 0 {
		return nil, fmt.Errorf("opml file %s has no top-level outline", path)
	}

	top := f.Body.Outlines[0]
	doc := &Document{Text: top.Text, Title: top.Title, Category: top.Category}
	if strings.TrimSpace(doc.label()) == "" {
		return nil, fmt.Errorf("opml file %s: top-level outline has neither text nor category attribute", path)
	}

	collectSources(f.Body.Outlines, &doc.Sources)
	if len(doc.Sources) == 0 {
		return nil, fmt.Errorf("opml file %s declares no feed sources", path)
	}
	return doc, nil
}

func collectSources(outlines []outline, dst *[]domain.FeedSource) {
	for _, o := range outlines {
		if o.XMLURL != "" {
			name := o.Text
			if name == "" {
				name = o.Title
			}
			*dst = append(*dst, domain.FeedSource{URL: o.XMLURL, Name: name, IconURL: o.IconURL})
		}
		collectSources(o.Outlines, dst)
	}
}
