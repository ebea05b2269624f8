package domain

import "time"

// FeedSource is one configured RSS/Atom source from the OPML outline.
type FeedSource struct {
	URL     string
	Name    string
	IconURL string
}

// FailureKind classifies why a feed contributed no articles.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureTimeout
	FailureConnection
	FailureHTTP
	FailureMalformed
)

func (k FailureKind) String() string {
	switch k {
	case FailureTimeout:
		return "timeout"
	case FailureConnection:
		return "connection error"
	case FailureHTTP:
		return "http error"
	case FailureMalformed:
		return "malformed feed"
	default:
		return "none"
	}
}

// FetchResult is the outcome of retrieving one feed. The pipeline keeps one
// slot per source, so a failed fetch never touches its siblings.
type FetchResult struct {
	Source  FeedSource
	Payload []byte
	Status  int
	Kind    FailureKind
	Err     error
}

func (r FetchResult) OK() bool { return r.Err == nil }

// Article is the normalized feed entry every report is built from. ID is
// assigned only after the final sort and is dense starting at 1.
type Article struct {
	ID          int
	Title       string
	Link        string
	PublishedAt time.Time
	Source      string
	SourceIcon  string
	Description string
}

// TimeWindow is the UTC range articles must fall within, both bounds inclusive.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// KeywordMode selects how a keyword policy treats a match.
type KeywordMode int

const (
	// KeywordExclude drops articles matching any keyword.
	KeywordExclude KeywordMode = iota
	// KeywordInclude keeps only articles matching at least one keyword.
	KeywordInclude
)

// KeywordPolicy is an immutable case-insensitive keyword filter. Exceptions
// maps a keyword to phrases that override its match, e.g. "state-sponsored"
// overriding "sponsored".
type KeywordPolicy struct {
	Mode       KeywordMode
	Keywords   []string
	Exceptions map[string][]string
}

// ReportMeta carries the OPML top-outline metadata reports are labeled with.
type ReportMeta struct {
	Title  string
	Text   string
	Prefix string
}

// Report is the final ordered article sequence handed to renderers.
type Report struct {
	Meta        ReportMeta
	Window      TimeWindow
	GeneratedAt time.Time
	Articles    []Article
}
