// Package filter applies the time-window and keyword policies to the
// normalized article set. Every filter is a pure predicate over immutable
// fields, so application order does not change the result.
package filter

import (
	"strings"

	"github.com/samber/lo"

	"cyberbites/domain"
)

// NewPolicy builds an immutable keyword policy. Keywords and exception
// phrases are lowercased once here so matching stays a plain substring test.
func NewPolicy(mode domain.KeywordMode, kws []string, exceptions map[string][]string) domain.KeywordPolicy {
	lowered := lo.Map(kws, func(k string, _ int) string {
		return strings.ToLower(strings.TrimSpace(k))
	})
	exc := make(map[string][]string, len(exceptions))
	for k, phrases := range exceptions {
		exc[strings.ToLower(k)] = lo.Map(phrases, func(p string, _ int) string {
			return strings.ToLower(p)
		})
	}
	return domain.KeywordPolicy{Mode: mode, Keywords: lowered, Exceptions: exc}
}

// Window keeps articles published inside w, bounds inclusive.
func Window(articles []domain.Article, w domain.TimeWindow) []domain.Article {
	return lo.Filter(articles, func(a domain.Article, _ int) bool {
		return w.Contains(a.PublishedAt)
	})
}

// Keywords applies one keyword policy. An empty policy passes everything
// through unchanged.
func Keywords(articles []domain.Article, p domain.KeywordPolicy) []domain.Article {
	if len(p.Keywords) == 0 {
		return articles
	}
	return lo.Filter(articles, func(a domain.Article, _ int) bool {
		matched := MatchedKeyword(a, p) != ""
		if p.Mode == domain.KeywordInclude {
			return matched
		}
		return !matched
	})
}

// MatchedKeyword returns the first policy keyword contained in the article's
// title or description, or "" when none match. A keyword whose exception
// phrase also appears does not count as a match.
func MatchedKeyword(a domain.Article, p domain.KeywordPolicy) string {
	text := strings.ToLower(a.Title + " " + a.Description)
	for _, kw := range p.Keywords {
		if kw == "" || !strings.Contains(text, kw) {
			continue
		}
		if hasException(text, p.Exceptions[kw]) {
			continue
		}
		return kw
	}
	return ""
}

func hasException(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
