// Package keywords holds the built-in filtering lists and loads user-supplied
// one-keyword-per-line files.
package keywords

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DefaultExclude drops promotional noise that slips into news feeds.
var DefaultExclude = []string{
	"sponsored",
	"advertisement",
	"giveaway",
	"clickbait",
	"advertorial",
	"paid content",
}

// DefaultExceptions lists phrases that override an exclude match.
var DefaultExceptions = map[string][]string{
	"sponsored": {"state-sponsored", "self-sponsored"},
}

// DefaultAggressive is the built-in security-relevant list used when
// aggressive filtering is enabled without a custom file.
var DefaultAggressive = []string{
	"security",
	"vulnerability",
	"ransomware",
	"malware",
	"breach",
	"exploit",
	"phishing",
	"zero-day",
	"cve",
	"botnet",
	"backdoor",
	"ddos",
	"spyware",
	"threat actor",
}

// LoadFile reads a keyword list, one per line, lowercased. Blank lines and
// lines starting with '#' are skipped. A missing or unreadable file is an
// error: a user who named a file should not silently run with defaults.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("keyword file: %w", err)
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, strings.ToLower(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("keyword file: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("keyword file %s contains no keywords", path)
	}
	return out, nil
}
