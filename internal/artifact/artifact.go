// Package artifact defines the unit of data flowing through the pipeline:
// every fetch and transform step reads and writes Artifacts with
// deterministic storage locations.
package artifact

import (
	"fmt"
	"time"
)

// Kind identifies what an artifact contains. Closed enum: the storage
// resolver maps each kind to exactly one category directory.
type Kind string

const (
	RawStatement           Kind = "raw-statement"
	RawPriceSeries         Kind = "raw-price-series"
	RawSocialPost          Kind = "raw-social-post"
	RawNews                Kind = "raw-news"
	DerivedRatio           Kind = "derived-ratio"
	DerivedTrainingExample Kind = "derived-training-example"
)

// Kinds lists every valid kind, in pipeline order.
var Kinds = []Kind{
	RawStatement,
	RawPriceSeries,
	RawSocialPost,
	RawNews,
	DerivedRatio,
	DerivedTrainingExample,
}

// Valid reports whether k is a member of the closed enum.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Raw reports whether artifacts of this kind live under the raw subdir.
func (k Kind) Raw() bool {
	switch k {
	case RawStatement, RawPriceSeries, RawSocialPost, RawNews:
		return true
	}
	return false
}

// Artifact is one named unit of data with a resolved storage location.
// Overwritten in place on re-run; never deleted by the pipeline.
type Artifact struct {
	Kind        Kind
	Identifier  string
	StoragePath string
	ModifiedAt  time.Time
}

// FetchReason classifies why a fetch failed.
type FetchReason string

const (
	FetchNetwork  FetchReason = "network"
	FetchParse    FetchReason = "parse"
	FetchNotFound FetchReason = "not_found"
)

// FetchError is a per-identifier fetch failure. It is recorded by the
// orchestrator and never aborts sibling identifiers.
type FetchError struct {
	Source     string
	Identifier string
	Reason     FetchReason
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s/%s failed (%s): %v", e.Source, e.Identifier, e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// MissingInputError reports a transformer input that is absent after the
// cache gate decided the step must run.
type MissingInputError struct {
	Path string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("required input does not exist: %s", e.Path)
}

// InvalidIdentifierError rejects identifiers that cannot map to a safe
// storage path. Fatal for that identifier only.
type InvalidIdentifierError struct {
	Identifier string
	Reason     string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid identifier %q: %s", e.Identifier, e.Reason)
}
