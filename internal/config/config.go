// Package config holds the immutable per-run configuration record. It is
// built once before fetching begins: defaults, then the optional settings
// file, then CLI flag overrides applied by the command layer.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"cyberbites/domain"
)

const (
	// MaxAllowedDescription caps how high the description limit may be set.
	MaxAllowedDescription = 1000
)

type Config struct {
	OPMLPath string

	StartDaysAgo         int
	EndDaysAgo           int
	AlignStartToMidnight bool
	AlignEndToMidnight   bool
	MaxDaysBack          int

	MaxDescriptionLength int

	ExcludeKeywords        bool
	ExcludeKeywordsFile    string
	AggressiveFiltering    bool
	AggressiveKeywordsFile string

	OrderBy string

	HTMLFolder string
	CSVFolder  string
	JSONFolder string
	HTMLImages bool

	MaxConcurrent int
	HTTPTimeout   time.Duration

	Verbose bool
}

func Default() Config {
	return Config{
		OPMLPath:             "data/rss_sources/cybersecnews-sources.opml",
		StartDaysAgo:         1,
		EndDaysAgo:           0,
		MaxDaysBack:          7,
		MaxDescriptionLength: 200,
		OrderBy:              "date",
		HTMLFolder:           "data/html_reports",
		CSVFolder:            "data/csv_reports",
		JSONFolder:           "data/json_reports",
		MaxConcurrent:        15,
		HTTPTimeout:          10 * time.Second,
	}
}

// fileConfig mirrors the settings file keys. Pointer fields distinguish
// "absent" from zero values so the file only overrides what it names.
type fileConfig struct {
	OPMLFilename           *string `yaml:"opml_filename"`
	Start                  *int    `yaml:"start"`
	End                    *int    `yaml:"end"`
	AlignStartToMidnight   *bool   `yaml:"align_start_to_midnight"`
	AlignEndToMidnight     *bool   `yaml:"align_end_to_midnight"`
	MaxDaysBack            *int    `yaml:"max_days_back"`
	MaxLengthDescription   *int    `yaml:"max_length_description"`
	ExcludeKeywords        *bool   `yaml:"exclude_keywords"`
	ExcludeKeywordsFile    *string `yaml:"exclude_keywords_file"`
	AggressiveFiltering    *bool   `yaml:"aggressive_filtering"`
	AggressiveKeywordsFile *string `yaml:"aggressive_keywords_file"`
	OrderBy                *string `yaml:"order_by"`
	OutputHTMLFolder       *string `yaml:"output_html_folder"`
	OutputCSVFolder        *string `yaml:"output_csv_folder"`
	OutputJSONFolder       *string `yaml:"output_json_folder"`
	HTMLImg                *bool   `yaml:"html_img"`
	MaxConcurrentTasks     *int    `yaml:"max_concurrent_tasks"`
	HTTPTimeoutSeconds     *int    `yaml:"http_timeout_seconds"`
}

// ApplyFile overlays settings from a YAML file onto c.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("settings file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("settings file %s: %w", path, err)
	}

	setString(&c.OPMLPath, fc.OPMLFilename)
	setInt(&c.StartDaysAgo, fc.Start)
	setInt(&c.EndDaysAgo, fc.End)
	setBool(&c.AlignStartToMidnight, fc.AlignStartToMidnight)
	setBool(&c.AlignEndToMidnight, fc.AlignEndToMidnight)
	setInt(&c.MaxDaysBack, fc.MaxDaysBack)
	setInt(&c.MaxDescriptionLength, fc.MaxLengthDescription)
	setBool(&c.ExcludeKeywords, fc.ExcludeKeywords)
	setString(&c.ExcludeKeywordsFile, fc.ExcludeKeywordsFile)
	setBool(&c.AggressiveFiltering, fc.AggressiveFiltering)
	setString(&c.AggressiveKeywordsFile, fc.AggressiveKeywordsFile)
	setString(&c.OrderBy, fc.OrderBy)
	setString(&c.HTMLFolder, fc.OutputHTMLFolder)
	setString(&c.CSVFolder, fc.OutputCSVFolder)
	setString(&c.JSONFolder, fc.OutputJSONFolder)
	setBool(&c.HTMLImages, fc.HTMLImg)
	setInt(&c.MaxConcurrent, fc.MaxConcurrentTasks)
	if fc.HTTPTimeoutSeconds != nil {
		c.HTTPTimeout = time.Duration(*fc.HTTPTimeoutSeconds) * time.Second
	}
	return nil
}

// Validate rejects configurations before any fetching begins.
func (c Config) Validate() error {
	if c.StartDaysAgo < 0 || c.EndDaysAgo < 0 {
		return fmt.Errorf("day offsets must not be negative")
	}
	if c.StartDaysAgo > c.MaxDaysBack {
		return fmt.Errorf("start offset %d exceeds the maximum of %d days back", c.StartDaysAgo, c.MaxDaysBack)
	}
	if c.EndDaysAgo > c.StartDaysAgo {
		return fmt.Errorf("end offset %d is earlier than start offset %d", c.EndDaysAgo, c.StartDaysAgo)
	}
	if c.MaxDescriptionLength <= 0 || c.MaxDescriptionLength > MaxAllowedDescription {
		return fmt.Errorf("description length must be between 1 and %d", MaxAllowedDescription)
	}
	if c.MaxConcurrent <= 0 {
		return fmt.Errorf("max concurrent fetches must be positive")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	return nil
}

// Window computes the reporting range from the day offsets, anchored at now
// in UTC. Alignment snaps a bound back to midnight of its day.
func (c Config) Window(now time.Time) domain.TimeWindow {
	now = now.UTC()
	start := now.AddDate(0, 0, -c.StartDaysAgo)
	if c.AlignStartToMidnight {
		start = midnight(start)
	}
	end := now.AddDate(0, 0, -c.EndDaysAgo)
	if c.AlignEndToMidnight {
		end = midnight(end)
	}
	return domain.TimeWindow{Start: start, End: end}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
