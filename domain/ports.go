package domain

import "context"

// Fetcher retrieves the raw payload of a single feed.
type Fetcher interface {
	Fetch(ctx context.Context, src FeedSource) FetchResult
}

// Normalizer parses a successful fetch result into articles. A failed result
// yields zero articles; a payload that cannot be parsed returns an error.
type Normalizer interface {
	Normalize(res FetchResult) ([]Article, error)
}

// Renderer writes the final article sequence to one output artifact and
// returns the path it wrote.
type Renderer interface {
	Render(report Report) (string, error)
}
