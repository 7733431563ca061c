package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	st := NewStore()

	assert.True(t, st.Get("s1").IsEmpty())

	s, err := st.Toggle("s1", "category", "Design")
	require.NoError(t, err)
	assert.Equal(t, []string{"Design"}, s.Category)

	s = st.SetQuery("s1", "ux")
	assert.Equal(t, "ux", s.Query)
	assert.Equal(t, []string{"Design"}, s.Category)

	// other sessions are independent
	assert.True(t, st.Get("s2").IsEmpty())

	_, err = st.Toggle("s1", "colour", "red")
	require.ErrorIs(t, err, ErrUnknownCategory)
	assert.Equal(t, []string{"Design"}, st.Get("s1").Category)

	assert.True(t, st.Clear("s1").IsEmpty())
	assert.True(t, st.Get("s1").IsEmpty())
	assert.Equal(t, 1, st.Len())

	st.Delete("s1")
	assert.Equal(t, 0, st.Len())
}

func TestStoreGetReturnsCopy(t *testing.T) {
	st := NewStore()
	_, err := st.Toggle("s1", "level", "Beginner")
	require.NoError(t, err)

	s := st.Get("s1")
	s.Level[0] = "Advanced"

	assert.Equal(t, []string{"Beginner"}, st.Get("s1").Level)
}

func TestStoreSessionIDs(t *testing.T) {
	st := NewStore()
	st.SetQuery("a", "x")
	st.SetQuery("b", "y")

	assert.ElementsMatch(t, []string{"a", "b"}, st.SessionIDs())
}
