package rss

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"

	"cyberbites/domain"
	"cyberbites/internal/textutil"
)

// Normalizer turns raw feed payloads into articles. It is a pure per-entry
// transform: no windowing or dedup happens here, except skipping feeds whose
// channel updated time already predates the reporting cutoff.
type Normalizer struct {
	maxDescription int
	cutoff         time.Time
}

func NewNormalizer(maxDescription int, cutoff time.Time) *Normalizer {
	return &Normalizer{maxDescription: maxDescription, cutoff: cutoff}
}

func (n *Normalizer) Normalize(res domain.FetchResult) ([]domain.Article, error) {
	if !res.OK() {
		return nil, nil
	}

	feed, err := parseFeed(res.Payload)
	if err != nil {
		return nil, err
	}
	if feed.UpdatedParsed != nil && feed.UpdatedParsed.UTC().Before(n.cutoff) {
		return nil, nil
	}

	var articles []domain.Article
	for _, item := range feed.Items {
		if a, ok := n.normalizeItem(item, res.Source); ok {
			articles = append(articles, a)
		}
	}
	return articles, nil
}

func (n *Normalizer) normalizeItem(item *gofeed.Item, src domain.FeedSource) (domain.Article, bool) {
	published, ok := resolveDate(item)
	if !ok {
		return domain.Article{}, false
	}

	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" || link == "" {
		return domain.Article{}, false
	}
	if u, err := url.ParseRequestURI(link); err != nil || !u.IsAbs() {
		return domain.Article{}, false
	}

	description := textutil.Truncate(textutil.PlainText(pickDescription(item)), n.maxDescription)

	return domain.Article{
		Title:       title,
		Link:        link,
		PublishedAt: published.UTC(),
		Source:      src.Name,
		SourceIcon:  src.IconURL,
		Description: description,
	}, true
}

// parseFeed parses RSS or Atom. On failure it scrubs the payload once (many
// feeds ship control characters or bare ampersands) and retries.
func parseFeed(payload []byte) (*gofeed.Feed, error) {
	parser := gofeed.NewParser()
	feed, err := parser.Parse(bytes.NewReader(payload))
	if err == nil {
		return feed, nil
	}
	return parser.Parse(bytes.NewReader(cleanPayload(payload)))
}

func pickDescription(item *gofeed.Item) string {
	if item.Description != "" {
		return item.Description
	}
	return item.Content
}

// dateStrategy is one way of extracting a publish time from an entry.
// Strategies are tried in order; the first hit wins.
type dateStrategy struct {
	name    string
	resolve func(*gofeed.Item) (time.Time, bool)
}

var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	time.RFC822Z,
	time.RFC822,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var dateStrategies = []dateStrategy{
	{"published-parsed", func(it *gofeed.Item) (time.Time, bool) {
		if it.PublishedParsed != nil {
			return *it.PublishedParsed, true
		}
		return time.Time{}, false
	}},
	{"updated-parsed", func(it *gofeed.Item) (time.Time, bool) {
		if it.UpdatedParsed != nil {
			return *it.UpdatedParsed, true
		}
		return time.Time{}, false
	}},
	{"published-raw", func(it *gofeed.Item) (time.Time, bool) {
		return parseLayouts(it.Published)
	}},
	{"updated-raw", func(it *gofeed.Item) (time.Time, bool) {
		return parseLayouts(it.Updated)
	}},
}

// resolveDate tries each strategy in priority order. Entries with no
// parseable date are dropped by the caller, never defaulted to now.
func resolveDate(item *gofeed.Item) (time.Time, bool) {
	for _, s := range dateStrategies {
		if t, ok := s.resolve(item); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseLayouts(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var xmlEntity = regexp.MustCompile(`^&(amp|lt|gt|apos|quot|#[0-9]+|#x[0-9a-fA-F]+);`)

// cleanPayload removes characters that are illegal in XML 1.0 and escapes
// bare ampersands, which are the two most common reasons real-world feeds
// fail strict parsing.
func cleanPayload(payload []byte) []byte {
	text := strings.ToValidUTF8(string(payload), "")
	text = strings.ReplaceAll(text, "\t", " ")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case r == '&':
			if loc := xmlEntity.FindStringIndex(text[i:]); loc != nil {
				b.WriteString(text[i : i+loc[1]])
				i += loc[1]
				continue
			}
			b.WriteString("&amp;")
		case r < 0x20 && r != '\n':
			// drop control characters
		case r == 0xFFFE || r == 0xFFFF:
			// drop illegal code points
		default:
			b.WriteRune(r)
		}
		i += size
	}
	return []byte(b.String())
}
