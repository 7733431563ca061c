package filter

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/pathfinder/internal/catalog"
	"github.com/terra-clan/pathfinder/internal/models"
)

func titles(paths []*models.LearningPath) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, p.Title)
	}
	return out
}

func TestApplyEmptyStateReturnsCatalog(t *testing.T) {
	all := catalog.DefaultLearningPaths()

	got := Apply(all, Clear())
	if diff := cmp.Diff(titles(all), titles(got)); diff != "" {
		t.Errorf("empty state changed the catalog (-want +got):\n%s", diff)
	}

	got = Apply(all, State{})
	assert.Equal(t, titles(all), titles(got))
}

func TestApply(t *testing.T) {
	all := catalog.DefaultLearningPaths()

	tests := []struct {
		name  string
		state State
		want  []string
	}{
		{
			name:  "advanced level",
			state: State{Level: []string{"Advanced"}},
			want:  []string{"Advanced Machine Learning"},
		},
		{
			name:  "short duration",
			state: State{Duration: []string{"short"}},
			want:  []string{"Data Science Fundamentals", "Product Management Essentials"},
		},
		{
			name:  "medium duration",
			state: State{Duration: []string{"medium"}},
			want:  []string{"UX/UI Design Immersive", "Advanced Machine Learning", "Mobile App Development"},
		},
		{
			name:  "long duration",
			state: State{Duration: []string{"long"}},
			want:  []string{"Full-Stack Web Development"},
		},
		{
			name:  "or within category",
			state: State{Level: []string{"Beginner", "Advanced"}},
			want:  []string{"Data Science Fundamentals", "Product Management Essentials", "Advanced Machine Learning"},
		},
		{
			name:  "and across categories",
			state: State{Level: []string{"Intermediate"}, Category: []string{"Development"}, Duration: []string{"medium"}},
			want:  []string{"Mobile App Development"},
		},
		{
			name:  "query matches title case-insensitively",
			state: State{Query: "MACHINE"},
			want:  []string{"Data Science Fundamentals", "Advanced Machine Learning"},
		},
		{
			name:  "query surrounding spaces are part of the substring",
			state: State{Query: "learning "},
			want:  []string{"Data Science Fundamentals"},
		},
		{
			name:  "padded query does not match unpadded text",
			state: State{Query: "  MACHINE  "},
			want:  []string{},
		},
		{
			name:  "whitespace-only query selects the whole catalog",
			state: State{Query: "   "},
			want: []string{
				"Data Science Fundamentals",
				"UX/UI Design Immersive",
				"Full-Stack Web Development",
				"Product Management Essentials",
				"Advanced Machine Learning",
				"Mobile App Development",
			},
		},
		{
			name:  "query matches category",
			state: State{Query: "business"},
			want:  []string{"Product Management Essentials"},
		},
		{
			name:  "query matches description",
			state: State{Query: "ios and android"},
			want:  []string{"Mobile App Development"},
		},
		{
			name:  "no match is an empty result",
			state: State{Query: "underwater basket weaving"},
			want:  []string{},
		},
		{
			name:  "unknown tag selects nothing",
			state: State{Category: []string{"Cooking"}},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(all, tt.state)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	all := catalog.DefaultLearningPaths()
	states := []State{
		Clear(),
		{Query: "data"},
		{Level: []string{"Intermediate"}, Duration: []string{"medium", "long"}},
		{Category: []string{"Data Science"}, Query: "learning"},
	}

	for _, s := range states {
		once := Apply(all, s)
		twice := Apply(once, s)
		assert.Equal(t, titles(once), titles(twice))
	}
}

func TestApplyDoesNotModifyCatalog(t *testing.T) {
	all := catalog.DefaultLearningPaths()
	before := titles(all)

	Apply(all, State{Level: []string{"Advanced"}})

	assert.Equal(t, before, titles(all))
}

func TestBucketFor(t *testing.T) {
	tests := []struct {
		months int
		want   Bucket
	}{
		{1, BucketShort},
		{3, BucketShort},
		{4, BucketMedium},
		{5, BucketMedium},
		{6, BucketLong},
		{24, BucketLong},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketFor(tt.months), "months=%d", tt.months)
	}
}

func TestToggle(t *testing.T) {
	s, err := Toggle(Clear(), "level", "Advanced")
	require.NoError(t, err)
	assert.Equal(t, []string{"Advanced"}, s.Level)
	assert.True(t, s.Has(CategoryLevel, "Advanced"))

	s2, err := Toggle(s, "level", "Beginner")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Advanced", "Beginner"}, s2.Level)

	// the input state is left untouched
	assert.Equal(t, []string{"Advanced"}, s.Level)

	s3, err := Toggle(s2, "level", "Advanced")
	require.NoError(t, err)
	assert.Equal(t, []string{"Beginner"}, s3.Level)
}

func TestToggleIsItsOwnInverse(t *testing.T) {
	start := State{
		Query:    "design",
		Level:    []string{"Beginner", "Intermediate"},
		Duration: []string{"short"},
		Category: []string{},
	}

	for _, category := range []string{"level", "duration", "category"} {
		for _, value := range []string{"Beginner", "short", "Design", "Advanced"} {
			once, err := Toggle(start, category, value)
			require.NoError(t, err)
			twice, err := Toggle(once, category, value)
			require.NoError(t, err)

			assert.Equal(t, start.Query, twice.Query)
			assert.ElementsMatch(t, start.Level, twice.Level)
			assert.ElementsMatch(t, start.Duration, twice.Duration)
			assert.ElementsMatch(t, start.Category, twice.Category)
		}
	}
}

func TestToggleUnknownCategory(t *testing.T) {
	s := State{Level: []string{"Advanced"}}
	got, err := Toggle(s, "price", "free")
	require.ErrorIs(t, err, ErrUnknownCategory)
	assert.Equal(t, s, got)
}

func TestClearSelectsEverything(t *testing.T) {
	all := catalog.DefaultLearningPaths()

	s := State{Query: "zzz", Level: []string{"Advanced"}, Duration: []string{"long"}, Category: []string{"Design"}}
	require.Empty(t, Apply(all, s))

	cleared := Clear()
	assert.True(t, cleared.IsEmpty())
	assert.Len(t, Apply(all, cleared), len(all))
}

func TestParseState(t *testing.T) {
	v := url.Values{}
	v.Set("q", "data")
	v.Add("level", "Beginner,Advanced")
	v.Add("level", "Advanced")
	v.Add("duration", "short")
	v.Add("category", " ")

	s := ParseState(v)
	assert.Equal(t, "data", s.Query)
	assert.Equal(t, []string{"Beginner", "Advanced"}, s.Level)
	assert.Equal(t, []string{"short"}, s.Duration)
	assert.Empty(t, s.Category)
}
