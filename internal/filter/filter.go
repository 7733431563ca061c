// Package filter narrows the learning path catalog by search query and tag sets.
//
// A State is a value: Toggle and Clear return new states and Apply always
// recomputes the result from the full catalog.
package filter

import (
	"errors"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/terra-clan/pathfinder/internal/models"
)

// ErrUnknownCategory is returned when a filter category name is not recognised
var ErrUnknownCategory = errors.New("unknown filter category")

// Category names a tag set within a State
type Category string

const (
	CategoryLevel    Category = "level"
	CategoryDuration Category = "duration"
	CategoryCategory Category = "category"
)

// ParseCategory validates a category name
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryLevel, CategoryDuration, CategoryCategory:
		return c, nil
	}
	return "", ErrUnknownCategory
}

// Bucket is a coarse duration classification
type Bucket string

const (
	BucketShort  Bucket = "short"
	BucketMedium Bucket = "medium"
	BucketLong   Bucket = "long"
)

// BucketFor maps a month count to its duration bucket
func BucketFor(months int) Bucket {
	switch {
	case months <= 3:
		return BucketShort
	case months <= 5:
		return BucketMedium
	default:
		return BucketLong
	}
}

// State is the combined set of active search and filter selections
type State struct {
	Query    string   `json:"query"`
	Level    []string `json:"level"`
	Duration []string `json:"duration"`
	Category []string `json:"category"`
}

// Clear returns the empty state
func Clear() State {
	return State{Level: []string{}, Duration: []string{}, Category: []string{}}
}

// IsEmpty reports whether the state selects the whole catalog
func (s State) IsEmpty() bool {
	return strings.TrimSpace(s.Query) == "" && len(s.Level) == 0 && len(s.Duration) == 0 && len(s.Category) == 0
}

// Has reports whether value is selected in the given category
func (s State) Has(c Category, value string) bool {
	return slices.Contains(s.set(c), value)
}

func (s State) set(c Category) []string {
	switch c {
	case CategoryLevel:
		return s.Level
	case CategoryDuration:
		return s.Duration
	case CategoryCategory:
		return s.Category
	}
	return nil
}

// Toggle flips membership of value in the given category and returns the new state.
// The receiver is not modified.
func Toggle(s State, category string, value string) (State, error) {
	c, err := ParseCategory(category)
	if err != nil {
		return s, err
	}

	current := s.set(c)
	next := make([]string, 0, len(current)+1)
	if i := slices.Index(current, value); i >= 0 {
		next = append(next, current[:i]...)
		next = append(next, current[i+1:]...)
	} else {
		next = append(next, current...)
		next = append(next, value)
	}

	out := s.clone()
	switch c {
	case CategoryLevel:
		out.Level = next
	case CategoryDuration:
		out.Duration = next
	case CategoryCategory:
		out.Category = next
	}
	return out, nil
}

func (s State) clone() State {
	return State{
		Query:    s.Query,
		Level:    slices.Clone(s.Level),
		Duration: slices.Clone(s.Duration),
		Category: slices.Clone(s.Category),
	}
}

// Apply returns the subset of catalog selected by state, in catalog order
func Apply(catalog []*models.LearningPath, s State) []*models.LearningPath {
	lower := cases.Lower(language.Und)
	// a blank query is no predicate; otherwise it matches as typed
	hasQuery := strings.TrimSpace(s.Query) != ""
	query := lower.String(s.Query)

	result := make([]*models.LearningPath, 0, len(catalog))
	for _, path := range catalog {
		if hasQuery &&
			!strings.Contains(lower.String(path.Title), query) &&
			!strings.Contains(lower.String(path.Description), query) &&
			!strings.Contains(lower.String(path.Category), query) {
			continue
		}
		if len(s.Level) > 0 && !slices.Contains(s.Level, string(path.Level)) {
			continue
		}
		if len(s.Category) > 0 && !slices.Contains(s.Category, path.Category) {
			continue
		}
		if len(s.Duration) > 0 && !slices.Contains(s.Duration, string(BucketFor(path.DurationMonths))) {
			continue
		}
		result = append(result, path)
	}
	return result
}

// ParseState builds a state from URL query parameters.
// Repeated parameters and comma-separated values are both accepted.
func ParseState(v url.Values) State {
	s := Clear()
	s.Query = v.Get("q")
	s.Level = collect(v[string(CategoryLevel)])
	s.Duration = collect(v[string(CategoryDuration)])
	s.Category = collect(v[string(CategoryCategory)])
	return s
}

func collect(raw []string) []string {
	out := []string{}
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			part = strings.TrimSpace(part)
			if part != "" && !slices.Contains(out, part) {
				out = append(out, part)
			}
		}
	}
	return out
}
