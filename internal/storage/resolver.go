// Package storage resolves artifact locations and guards transformers with
// the freshness cache gate. The on-disk layout is
// {base_path}/{raw|processed}/{category}/{identifier}.{ext}.
package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wenhao/stockmind/backend/internal/artifact"
	"github.com/wenhao/stockmind/backend/pkg/config"
)

// Resolver computes artifact paths from the storage config.
// Referentially transparent: same (kind, identifier) always maps to the
// same path, across calls and across processes sharing the config.
// ⭐ SSOT: artifact 路徑只在這裡計算
type Resolver struct {
	basePath        string
	rawSubdir       string
	processedSubdir string
}

// kindLayout binds one artifact kind to its category directory and extension.
type kindLayout struct {
	category string
	ext      string
}

// Category directories of the on-disk layout. Adding a kind
// means adding exactly one row here.
var layouts = map[artifact.Kind]kindLayout{
	artifact.RawStatement:           {category: "financial_reports", ext: "csv"},
	artifact.RawPriceSeries:         {category: "stock_data", ext: "csv"},
	artifact.RawSocialPost:          {category: "social_media_posts", ext: "jsonl"},
	artifact.RawNews:                {category: "news_articles", ext: "jsonl"},
	artifact.DerivedRatio:           {category: "financial_ratios", ext: "csv"},
	artifact.DerivedTrainingExample: {category: "investment_scenarios", ext: "jsonl"},
}

// NewResolver creates a Resolver from validated storage config.
func NewResolver(cfg config.StorageConfig) (*Resolver, error) {
	if cfg.BasePath == "" {
		return nil, &config.ConfigurationError{Reason: "storage base path is unset"}
	}
	return &Resolver{
		basePath:        cfg.BasePath,
		rawSubdir:       cfg.RawSubdir,
		processedSubdir: cfg.ProcessedSubdir,
	}, nil
}

// Resolve maps (kind, identifier) to the artifact's storage path.
func (r *Resolver) Resolve(kind artifact.Kind, identifier string) (string, error) {
	layout, ok := layouts[kind]
	if !ok {
		return "", fmt.Errorf("unknown artifact kind: %s", kind)
	}

	if err := validateIdentifier(identifier); err != nil {
		return "", err
	}

	subdir := r.processedSubdir
	if kind.Raw() {
		subdir = r.rawSubdir
	}

	filename := fmt.Sprintf("%s.%s", identifier, layout.ext)
	return filepath.Join(r.basePath, subdir, layout.category, filename), nil
}

// validateIdentifier rejects anything that could escape the storage root.
func validateIdentifier(identifier string) error {
	if identifier == "" {
		return &artifact.InvalidIdentifierError{Identifier: identifier, Reason: "empty"}
	}
	if strings.Contains(identifier, "..") {
		return &artifact.InvalidIdentifierError{Identifier: identifier, Reason: "path traversal"}
	}
	if strings.ContainsAny(identifier, `/\`) {
		return &artifact.InvalidIdentifierError{Identifier: identifier, Reason: "path separator"}
	}
	if strings.ContainsRune(identifier, 0) {
		return &artifact.InvalidIdentifierError{Identifier: identifier, Reason: "NUL byte"}
	}
	return nil
}
