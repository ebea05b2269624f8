package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"cyberbites/adapter/opml"
	"cyberbites/adapter/rss"
)

func checkFeedsCmd() *cli.Command {
	return &cli.Command{
		Name:  "check-feeds",
		Usage: "fetch every configured feed and report its health without writing reports",
		Flags: append(reportFlags(),
			&cli.StringFlag{Name: "feed", Usage: "only check sources whose name or URL contains this substring"},
		),
		Action: runCheckFeeds,
	}
}

func runCheckFeeds(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	doc, err := opml.Parse(cfg.OPMLPath)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	fetcher := rss.NewHTTPFetcher(cfg.HTTPTimeout)
	normalizer := rss.NewNormalizer(cfg.MaxDescriptionLength, time.Time{})
	needle := strings.ToLower(c.String("feed"))

	checked, failed := 0, 0
	for _, src := range doc.Sources {
		if needle != "" &&
			!strings.Contains(strings.ToLower(src.Name), needle) &&
			!strings.Contains(strings.ToLower(src.URL), needle) {
			continue
		}
		checked++

		res := fetcher.Fetch(c.Context, src)
		if !res.OK() {
			failed++
			fmt.Printf("FAIL  %-40s %s (%s)\n", src.Name, src.URL, res.Kind)
			continue
		}
		entries, err := normalizer.Normalize(res)
		if err != nil {
			failed++
			fmt.Printf("FAIL  %-40s %s (malformed feed)\n", src.Name, src.URL)
			continue
		}
		fmt.Printf("OK    %-40s %d entries\n", src.Name, len(entries))
	}

	fmt.Printf("\nChecked %d feeds, %d failed\n", checked, failed)
	if failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}
