package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Pipeline is the typed form of pipeline.yaml.
// 欄位缺漏或打錯字要在啟動時就失敗，不能默默用預設值。
type Pipeline struct {
	Storage StorageConfig `yaml:"storage"`
	Sources SourcesConfig `yaml:"sources"`
}

// StorageConfig describes the artifact store layout.
type StorageConfig struct {
	BasePath        string `yaml:"base_path"`
	RawSubdir       string `yaml:"raw_subdir"`
	ProcessedSubdir string `yaml:"processed_subdir"`
}

// SourcesConfig holds per-source fetch parameters.
type SourcesConfig struct {
	Price  PriceSourceConfig  `yaml:"price"`
	Social SocialSourceConfig `yaml:"social"`
	News   NewsSourceConfig   `yaml:"news"`

	// PolitenessDelayMS is the minimum spacing between successive
	// requests to the same external source, in milliseconds.
	PolitenessDelayMS int `yaml:"politeness_delay_ms"`
}

// PriceSourceConfig configures the TWSE daily price fetch.
type PriceSourceConfig struct {
	LookbackMonths int    `yaml:"lookback_months"`
	Interval       string `yaml:"interval"` // only "day" is supported
}

// SocialSourceConfig configures the PTT board fetch.
type SocialSourceConfig struct {
	Board string `yaml:"board"`
	Pages int    `yaml:"pages"`
}

// NewsSourceConfig configures the Anue news fetch.
type NewsSourceConfig struct {
	Limit int `yaml:"limit"`
}

// PolitenessDelay returns the configured delay as a Duration.
func (s *SourcesConfig) PolitenessDelay() time.Duration {
	return time.Duration(s.PolitenessDelayMS) * time.Millisecond
}

// LoadPipeline reads and validates the pipeline YAML file.
// KnownFields(true): 打錯的欄位名稱直接報錯
func LoadPipeline(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("read %s: %v", path, err)}
	}

	var p Pipeline
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("decode %s: %v", path, err)}
	}

	if err := p.validate(); err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}

	return &p, nil
}

func (p *Pipeline) validate() error {
	if p.Storage.BasePath == "" {
		return fmt.Errorf("storage.base_path is required")
	}
	if p.Storage.RawSubdir == "" {
		return fmt.Errorf("storage.raw_subdir is required")
	}
	if p.Storage.ProcessedSubdir == "" {
		return fmt.Errorf("storage.processed_subdir is required")
	}
	if p.Storage.RawSubdir == p.Storage.ProcessedSubdir {
		return fmt.Errorf("storage.raw_subdir and storage.processed_subdir must differ")
	}
	if p.Sources.Price.LookbackMonths <= 0 {
		return fmt.Errorf("sources.price.lookback_months must be positive")
	}
	if p.Sources.Price.Interval != "day" {
		return fmt.Errorf("sources.price.interval must be \"day\", got %q", p.Sources.Price.Interval)
	}
	if p.Sources.Social.Board == "" {
		return fmt.Errorf("sources.social.board is required")
	}
	if p.Sources.Social.Pages <= 0 {
		return fmt.Errorf("sources.social.pages must be positive")
	}
	if p.Sources.News.Limit <= 0 {
		return fmt.Errorf("sources.news.limit must be positive")
	}
	if p.Sources.PolitenessDelayMS < 0 {
		return fmt.Errorf("sources.politeness_delay_ms must not be negative")
	}
	return nil
}
