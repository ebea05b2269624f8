package rss

import (
	"context"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyberbites/domain"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Self-Reported Title Is Ignored</title>
  <link>https://news.example.com</link>
  <item>
    <title>Ransomware gang hits hospital</title>
    <link>https://news.example.com/ransomware-hospital</link>
    <pubDate>Mon, 02 Jan 2023 10:00:00 -0500</pubDate>
    <description>&lt;p&gt;Attackers &lt;b&gt;encrypted&lt;/b&gt;   the network.&lt;/p&gt;</description>
  </item>
  <item>
    <title>No usable date</title>
    <link>https://news.example.com/no-date</link>
    <pubDate>sometime last week</pubDate>
  </item>
  <item>
    <title></title>
    <link>https://news.example.com/empty-title</link>
    <pubDate>Mon, 02 Jan 2023 10:00:00 +0000</pubDate>
  </item>
  <item>
    <title>Relative link</title>
    <link>/relative/path</link>
    <pubDate>Mon, 02 Jan 2023 10:00:00 +0000</pubDate>
  </item>
</channel>
</rss>`

func success(payload string) domain.FetchResult {
	return domain.FetchResult{
		Source:  domain.FeedSource{URL: "https://news.example.com/rss", Name: "Example News", IconURL: "https://news.example.com/icon.png"},
		Payload: []byte(payload),
		Status:  200,
	}
}

func TestNormalizeRSS(t *testing.T) {
	n := NewNormalizer(200, time.Time{})
	articles, err := n.Normalize(success(sampleRSS))
	require.NoError(t, err)

	// only the first entry survives: the others lack a date, a title, or an
	// absolute link
	require.Len(t, articles, 1)
	a := articles[0]
	assert.Equal(t, "Ransomware gang hits hospital", a.Title)
	assert.Equal(t, "https://news.example.com/ransomware-hospital", a.Link)
	assert.Equal(t, time.Date(2023, 1, 2, 15, 0, 0, 0, time.UTC), a.PublishedAt)
	assert.Equal(t, time.UTC, a.PublishedAt.Location())
	assert.Equal(t, "Example News", a.Source)
	assert.Equal(t, "https://news.example.com/icon.png", a.SourceIcon)
	assert.Equal(t, "Attackers encrypted the network.", a.Description)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := NewNormalizer(200, time.Time{})
	first, err := n.Normalize(success(sampleRSS))
	require.NoError(t, err)
	second, err := n.Normalize(success(sampleRSS))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalizeTruncatesDescription(t *testing.T) {
	feed := `<rss version="2.0"><channel><title>t</title>
<item>
  <title>Long one</title>
  <link>https://example.com/long</link>
  <pubDate>Mon, 02 Jan 2023 10:00:00 +0000</pubDate>
  <description>alpha bravo charlie delta echo foxtrot golf hotel</description>
</item>
</channel></rss>`

	n := NewNormalizer(20, time.Time{})
	articles, err := n.Normalize(success(feed))
	require.NoError(t, err)
	require.Len(t, articles, 1)

	desc := articles[0].Description
	assert.Equal(t, "alpha bravo charlie...", desc)
	assert.LessOrEqual(t, len(desc), 20+len("..."))
}

func TestNormalizeAtom(t *testing.T) {
	feed := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Feed</title>
  <updated>2023-06-10T12:00:00Z</updated>
  <entry>
    <title>Zero-day disclosed</title>
    <link href="https://example.com/zero-day"/>
    <updated>2023-06-09T08:30:00Z</updated>
    <summary>Details withheld.</summary>
  </entry>
</feed>`

	n := NewNormalizer(200, time.Time{})
	articles, err := n.Normalize(success(feed))
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Zero-day disclosed", articles[0].Title)
	assert.Equal(t, time.Date(2023, 6, 9, 8, 30, 0, 0, time.UTC), articles[0].PublishedAt)
}

func TestNormalizeSkipsStaleChannel(t *testing.T) {
	feed := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Stale Feed</title>
  <updated>2020-01-01T00:00:00Z</updated>
  <entry>
    <title>Ancient news</title>
    <link href="https://example.com/ancient"/>
    <updated>2020-01-01T00:00:00Z</updated>
  </entry>
</feed>`

	cutoff := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	n := NewNormalizer(200, cutoff)
	articles, err := n.Normalize(success(feed))
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestNormalizeFailedFetchYieldsNothing(t *testing.T) {
	n := NewNormalizer(200, time.Time{})
	articles, err := n.Normalize(domain.FetchResult{
		Source: domain.FeedSource{Name: "Broken"},
		Kind:   domain.FailureTimeout,
		Err:    context.DeadlineExceeded,
	})
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestNormalizeMalformedPayload(t *testing.T) {
	n := NewNormalizer(200, time.Time{})
	_, err := n.Normalize(success("this is not a feed at all"))
	assert.Error(t, err)
}

func TestCleanPayload(t *testing.T) {
	dirty := "<title>Cats & Dogs \x01\x08</title>\t<desc>5 &lt; 10 &amp; 3 &#169;</desc>"
	cleaned := string(cleanPayload([]byte(dirty)))
	assert.Equal(t, "<title>Cats &amp; Dogs </title> <desc>5 &lt; 10 &amp; 3 &#169;</desc>", cleaned)
}

func TestResolveDateStrategies(t *testing.T) {
	published := time.Date(2023, 3, 1, 9, 0, 0, 0, time.UTC)
	updated := time.Date(2023, 3, 2, 9, 0, 0, 0, time.UTC)

	t.Run("published parsed wins", func(t *testing.T) {
		got, ok := resolveDate(&gofeed.Item{PublishedParsed: &published, UpdatedParsed: &updated})
		require.True(t, ok)
		assert.Equal(t, published, got)
	})

	t.Run("falls back to updated", func(t *testing.T) {
		got, ok := resolveDate(&gofeed.Item{UpdatedParsed: &updated})
		require.True(t, ok)
		assert.Equal(t, updated, got)
	})

	t.Run("raw string layouts", func(t *testing.T) {
		got, ok := resolveDate(&gofeed.Item{Published: "2023-03-01"})
		require.True(t, ok)
		assert.Equal(t, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("nothing parseable", func(t *testing.T) {
		_, ok := resolveDate(&gofeed.Item{Published: "not a date"})
		assert.False(t, ok)
	})
}
