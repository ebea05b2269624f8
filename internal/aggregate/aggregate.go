// Package aggregate turns the filtered article set into the final
// report-ready sequence: deduplicate by link, sort, assign dense IDs.
package aggregate

import (
	"net/url"
	"sort"
	"strings"

	"cyberbites/domain"
)

// Order selects the report ordering.
type Order string

const (
	// OrderByDate sorts by publish time, most recent first.
	OrderByDate Order = "date"
	// OrderByTitle sorts by (source, title) ascending, then publish time.
	OrderByTitle Order = "title"
)

// ParseOrder maps a configuration value to an Order, defaulting to date.
func ParseOrder(s string) (Order, bool) {
	switch Order(strings.ToLower(s)) {
	case OrderByTitle:
		return OrderByTitle, true
	case OrderByDate, "":
		return OrderByDate, true
	default:
		return OrderByDate, false
	}
}

// Finalize produces the sequence handed to renderers. Input order is the
// canonical discovery order (source list order, then entry order within each
// feed), which fixes both dedup resolution and sort tie-breaks.
func Finalize(articles []domain.Article, order Order) []domain.Article {
	out := Dedup(articles)
	Sort(out, order)
	for i := range out {
		out[i].ID = i + 1
	}
	return out
}

// Dedup collapses articles sharing a canonical link. The survivor keeps its
// discovery position; the one with the most complete description wins, first
// encountered on ties.
func Dedup(articles []domain.Article) []domain.Article {
	seen := make(map[string]int, len(articles))
	out := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		key := canonicalLink(a.Link)
		if idx, ok := seen[key]; ok {
			if len(a.Description) > len(out[idx].Description) {
				out[idx] = a
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, a)
	}
	return out
}

// Sort is stable: articles with equal keys keep their discovery order.
func Sort(articles []domain.Article, order Order) {
	switch order {
	case OrderByTitle:
		sort.SliceStable(articles, func(i, j int) bool {
			if articles[i].Source != articles[j].Source {
				return articles[i].Source < articles[j].Source
			}
			if articles[i].Title != articles[j].Title {
				return articles[i].Title < articles[j].Title
			}
			return articles[i].PublishedAt.After(articles[j].PublishedAt)
		})
	default:
		sort.SliceStable(articles, func(i, j int) bool {
			return articles[i].PublishedAt.After(articles[j].PublishedAt)
		})
	}
}

func canonicalLink(link string) string {
	link = strings.TrimSpace(link)
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}
