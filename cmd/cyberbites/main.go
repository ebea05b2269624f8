package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"cyberbites/adapter/opml"
	"cyberbites/adapter/render"
	"cyberbites/adapter/rss"
	"cyberbites/app"
	"cyberbites/domain"
	"cyberbites/internal/aggregate"
	"cyberbites/internal/config"
	"cyberbites/internal/filter"
	"cyberbites/internal/keywords"
)

const separator = "----------------------------------------"

func main() {
	_ = godotenv.Load()
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "cyberbites",
		Usage: "collect recent cybersecurity news from OPML-declared RSS feeds into HTML, CSV and JSON reports",
		Description: `Cyberbites reads an OPML outline of RSS/Atom sources, fetches them
concurrently, keeps the articles published inside the configured day window,
optionally filters them by keyword, and writes HTML, CSV and JSON reports.

Flags can also be set via environment variables, e.g.:

   --opml  => CYBERBITES_OPML
   --start => CYBERBITES_START
`,
		Flags:    reportFlags(),
		Action:   runReport,
		Commands: []*cli.Command{checkFeedsCmd()},
	}
}

func reportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "opml", Usage: "path to the OPML file listing the feed sources", EnvVars: []string{"CYBERBITES_OPML"}},
		&cli.StringFlag{Name: "settings", Usage: "path to a settings.yaml overriding the defaults", EnvVars: []string{"CYBERBITES_SETTINGS"}},
		&cli.IntFlag{Name: "start", Usage: "how many days back the window starts", EnvVars: []string{"CYBERBITES_START"}},
		&cli.IntFlag{Name: "end", Usage: "how many days back the window ends (0 = now)", EnvVars: []string{"CYBERBITES_END"}},
		&cli.BoolFlag{Name: "align-start-to-midnight", Usage: "snap the window start back to midnight UTC"},
		&cli.BoolFlag{Name: "align-end-to-midnight", Usage: "snap the window end back to midnight UTC"},
		&cli.IntFlag{Name: "max-length-description", Usage: "description length cap in characters"},
		&cli.BoolFlag{Name: "exclude-keywords", Usage: "drop articles matching the exclude keyword list"},
		&cli.StringFlag{Name: "exclude-keywords-file", Usage: "custom exclude keyword list, one per line"},
		&cli.BoolFlag{Name: "aggressive-filtering", Usage: "keep only articles matching the security keyword list"},
		&cli.StringFlag{Name: "aggressive-keywords-file", Usage: "custom security keyword list, one per line"},
		&cli.StringFlag{Name: "order-by", Usage: "report ordering: date or title"},
		&cli.StringFlag{Name: "output-html-folder", Usage: "folder for HTML reports"},
		&cli.StringFlag{Name: "output-csv-folder", Usage: "folder for CSV reports"},
		&cli.StringFlag{Name: "output-json-folder", Usage: "folder for JSON reports"},
		&cli.BoolFlag{Name: "html-img", Usage: "include source icons in the HTML report"},
		&cli.IntFlag{Name: "max-concurrent", Usage: "maximum feeds fetched in parallel", EnvVars: []string{"CYBERBITES_MAX_CONCURRENT"}},
		&cli.IntFlag{Name: "timeout", Usage: "per-feed HTTP timeout in seconds", EnvVars: []string{"CYBERBITES_TIMEOUT"}},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log per-feed processing details"},
	}
}

func runReport(c *cli.Context) error {
	started := time.Now()

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	doc, err := opml.Parse(cfg.OPMLPath)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	policies, err := buildPolicies(cfg)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	order, ok := aggregate.ParseOrder(cfg.OrderBy)
	if !ok {
		return cli.Exit(fmt.Sprintf("unknown order-by value: %s", cfg.OrderBy), 1)
	}

	window := cfg.Window(time.Now())
	pipe := app.NewPipeline(
		rss.NewHTTPFetcher(cfg.HTTPTimeout),
		rss.NewNormalizer(cfg.MaxDescriptionLength, window.Start),
		[]domain.Renderer{
			&render.HTML{Folder: cfg.HTMLFolder, IncludeImages: cfg.HTMLImages},
			&render.CSV{Folder: cfg.CSVFolder},
			&render.JSON{Folder: cfg.JSONFolder},
		},
		app.Options{Window: window, Policies: policies, Order: order, Workers: cfg.MaxConcurrent},
	)

	result, err := pipe.Run(c.Context, doc.Sources, doc.Meta())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	printSummary(cfg, window, result, time.Since(started))
	return nil
}

func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if c.IsSet("settings") {
		if err := cfg.ApplyFile(c.String("settings")); err != nil {
			return cfg, err
		}
	}
	if c.IsSet("opml") {
		cfg.OPMLPath = c.String("opml")
	}
	if c.IsSet("start") {
		cfg.StartDaysAgo = c.Int("start")
	}
	if c.IsSet("end") {
		cfg.EndDaysAgo = c.Int("end")
	}
	if c.IsSet("align-start-to-midnight") {
		cfg.AlignStartToMidnight = c.Bool("align-start-to-midnight")
	}
	if c.IsSet("align-end-to-midnight") {
		cfg.AlignEndToMidnight = c.Bool("align-end-to-midnight")
	}
	if c.IsSet("max-length-description") {
		cfg.MaxDescriptionLength = c.Int("max-length-description")
	}
	if c.IsSet("exclude-keywords") {
		cfg.ExcludeKeywords = c.Bool("exclude-keywords")
	}
	if c.IsSet("exclude-keywords-file") {
		cfg.ExcludeKeywordsFile = c.String("exclude-keywords-file")
	}
	if c.IsSet("aggressive-filtering") {
		cfg.AggressiveFiltering = c.Bool("aggressive-filtering")
	}
	if c.IsSet("aggressive-keywords-file") {
		cfg.AggressiveKeywordsFile = c.String("aggressive-keywords-file")
	}
	if c.IsSet("order-by") {
		cfg.OrderBy = c.String("order-by")
	}
	if c.IsSet("output-html-folder") {
		cfg.HTMLFolder = c.String("output-html-folder")
	}
	if c.IsSet("output-csv-folder") {
		cfg.CSVFolder = c.String("output-csv-folder")
	}
	if c.IsSet("output-json-folder") {
		cfg.JSONFolder = c.String("output-json-folder")
	}
	if c.IsSet("html-img") {
		cfg.HTMLImages = c.Bool("html-img")
	}
	if c.IsSet("max-concurrent") {
		cfg.MaxConcurrent = c.Int("max-concurrent")
	}
	if c.IsSet("timeout") {
		cfg.HTTPTimeout = time.Duration(c.Int("timeout")) * time.Second
	}
	cfg.Verbose = c.Bool("verbose")
	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// buildPolicies assembles the active keyword policies. A named file that
// cannot be read is fatal: failing fast beats silently running with defaults.
func buildPolicies(cfg config.Config) ([]domain.KeywordPolicy, error) {
	var policies []domain.KeywordPolicy
	if cfg.ExcludeKeywords {
		kws := keywords.DefaultExclude
		if cfg.ExcludeKeywordsFile != "" {
			loaded, err := keywords.LoadFile(cfg.ExcludeKeywordsFile)
			if err != nil {
				return nil, err
			}
			kws = loaded
		}
		policies = append(policies, filter.NewPolicy(domain.KeywordExclude, kws, keywords.DefaultExceptions))
	}
	if cfg.AggressiveFiltering {
		kws := keywords.DefaultAggressive
		if cfg.AggressiveKeywordsFile != "" {
			loaded, err := keywords.LoadFile(cfg.AggressiveKeywordsFile)
			if err != nil {
				return nil, err
			}
			kws = loaded
		}
		policies = append(policies, filter.NewPolicy(domain.KeywordInclude, kws, nil))
	}
	return policies, nil
}

func printSummary(cfg config.Config, window domain.TimeWindow, result *app.Result, elapsed time.Duration) {
	fmt.Println(separator)
	fmt.Println("Summary")
	fmt.Println(separator)
	fmt.Printf("Time range: %s UTC to %s UTC\n", window.Start.Format("02 Jan 2006 15:04"), window.End.Format("02 Jan 2006 15:04"))
	fmt.Printf("OPML file: %s\n", cfg.OPMLPath)
	fmt.Printf("Total entries: %d\n", len(result.Report.Articles))
	for _, path := range result.Written {
		fmt.Printf("Report written to: %s\n", path)
	}
	if len(result.Failures) > 0 {
		fmt.Println("Feeds that failed to fetch:")
		for _, f := range result.Failures {
			fmt.Printf("\t- %s (%s): %s\n", f.Source.Name, f.Source.URL, f.Kind)
		}
	}
	fmt.Printf("Total execution time: %.2f seconds\n", elapsed.Seconds())
	fmt.Println(separator)
}
