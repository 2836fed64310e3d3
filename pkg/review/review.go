// Package review keeps the crate reviews edited in the GUI, and drives
// cargo-crev to publish them and verify projects.
package review

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"src.crevgui.dev/pkg/logutil"
)

var logger = logutil.GetLogger("[review] ")

// Level is the thoroughness or understanding of a review.
type Level string

// Possible values of Level.
const (
	LevelNone   Level = "none"
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Levels lists all levels from lowest to highest.
var Levels = []Level{LevelNone, LevelLow, LevelMedium, LevelHigh}

// Rating is the verdict of a review.
type Rating string

// Possible values of Rating.
const (
	RatingNegative Rating = "negative"
	RatingNeutral  Rating = "neutral"
	RatingPositive Rating = "positive"
	RatingStrong   Rating = "strong"
)

// Ratings lists all ratings from worst to best.
var Ratings = []Rating{RatingNegative, RatingNeutral, RatingPositive, RatingStrong}

// Source of all crates.
const CratesIO = "https://crates.io"

// ProofKind is the kind of the proofs written by MarshalProof.
const ProofKind = "package review"

// Review is a review of one version of a crate. Its YAML form follows the
// layout of a crev package review proof, without the signature.
type Review struct {
	Kind    string    `yaml:"kind"`
	Date    time.Time `yaml:"date"`
	Package Package   `yaml:"package"`
	Verdict Verdict   `yaml:"review"`
	Comment string    `yaml:"comment,omitempty"`
}

// Package identifies the reviewed crate version.
type Package struct {
	Source  string `yaml:"source"`
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Verdict holds the assessment of a review.
type Verdict struct {
	Thoroughness  Level  `yaml:"thoroughness"`
	Understanding Level  `yaml:"understanding"`
	Rating        Rating `yaml:"rating"`
}

// New returns a review of a crate version with the default verdict.
func New(name, version string) Review {
	return Review{
		Kind:    ProofKind,
		Package: Package{Source: CratesIO, Name: name, Version: version},
		Verdict: Verdict{LevelLow, LevelMedium, RatingPositive},
	}
}

// Key returns the key of the review, "name@version".
func (r Review) Key() string { return Key(r.Package.Name, r.Package.Version) }

// Key returns the key of the review of a crate version.
func Key(name, version string) string { return name + "@" + version }

// ParseKey splits a key into the crate name and version.
func ParseKey(key string) (name, version string, err error) {
	name, version, ok := strings.Cut(key, "@")
	if !ok || name == "" || version == "" {
		return "", "", fmt.Errorf("bad review key %q", key)
	}
	return name, version, nil
}

// ValidationError is returned when a review has an invalid field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks that the review identifies a crate version and that its
// verdict only uses known values.
func (r Review) Validate() error {
	switch {
	case r.Package.Name == "":
		return &ValidationError{"crate_name", "must not be empty"}
	case strings.ContainsAny(r.Package.Name, "@ \t\n"):
		return &ValidationError{"crate_name", "must not contain @ or whitespace"}
	case r.Package.Version == "":
		return &ValidationError{"crate_version", "must not be empty"}
	case strings.ContainsAny(r.Package.Version, "@ \t\n"):
		return &ValidationError{"crate_version", "must not contain @ or whitespace"}
	}
	if !oneOf(r.Verdict.Thoroughness, Levels) {
		return &ValidationError{"thoroughness", fmt.Sprintf("unknown level %q", r.Verdict.Thoroughness)}
	}
	if !oneOf(r.Verdict.Understanding, Levels) {
		return &ValidationError{"understanding", fmt.Sprintf("unknown level %q", r.Verdict.Understanding)}
	}
	if !oneOf(r.Verdict.Rating, Ratings) {
		return &ValidationError{"rating", fmt.Sprintf("unknown rating %q", r.Verdict.Rating)}
	}
	return nil
}

func oneOf[T comparable](v T, all []T) bool {
	for _, x := range all {
		if v == x {
			return true
		}
	}
	return false
}

// MarshalProof encodes a review as YAML.
func MarshalProof(r Review) ([]byte, error) {
	return yaml.Marshal(&r)
}

// ParseProof decodes a review from YAML and validates it.
func ParseProof(data []byte) (Review, error) {
	var r Review
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Review{}, err
	}
	if r.Kind != ProofKind {
		return Review{}, fmt.Errorf("not a review proof: kind %q", r.Kind)
	}
	return r, r.Validate()
}
