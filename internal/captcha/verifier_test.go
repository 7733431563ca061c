package captcha

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded() Source {
	return rand.New(rand.NewPCG(7, 42))
}

func TestGeneratedCodesUseAlphabet(t *testing.T) {
	v := NewVerifier(WithSource(seeded()))
	for i := 0; i < 1000; i++ {
		v.Generate()
		code := v.Code()
		require.Len(t, code, DefaultLength)
		for _, r := range code {
			require.True(t, strings.ContainsRune(Alphabet, r), "unexpected character %q in %q", r, code)
		}
	}
}

func TestAlphabetExcludesConfusableGlyphs(t *testing.T) {
	for _, r := range "0O1Il" {
		assert.False(t, strings.ContainsRune(Alphabet, r), "alphabet contains %q", r)
	}
}

func TestWithLength(t *testing.T) {
	v := NewVerifier(WithLength(9))
	assert.Len(t, v.Code(), 9)

	v = NewVerifier(WithLength(0))
	assert.Len(t, v.Code(), DefaultLength)
}

func TestGenerateProducesNoise(t *testing.T) {
	v := NewVerifier(WithSource(seeded()))
	noise := v.Noise()
	require.Len(t, noise, noiseStrokes)
	for _, s := range noise {
		assert.GreaterOrEqual(t, s.Height, 10.0)
		assert.Less(t, s.Height, 40.0)
		assert.GreaterOrEqual(t, s.Left, 0.0)
		assert.Less(t, s.Left, 100.0)
		assert.Less(t, s.Rotate, 360.0)
	}
}

func TestVerifySuccessFiresOnce(t *testing.T) {
	calls := 0
	v := NewVerifier(WithSource(seeded()), WithOnVerify(func() { calls++ }))

	assert.True(t, v.Verify(v.Code()))
	assert.True(t, v.Verified())
	assert.Empty(t, v.Error())
	assert.Equal(t, 1, calls)

	// terminal state: nothing changes and the callback does not fire again
	assert.True(t, v.Verify("anything"))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, v.Attempts())
}

func TestVerifyFailureRotatesCode(t *testing.T) {
	v := NewVerifier(WithSource(seeded()))

	for i := 1; i <= 5; i++ {
		before := v.Code()
		assert.False(t, v.Verify("!!!!!!"))
		assert.False(t, v.Verified())
		assert.Equal(t, i, v.Attempts())
		assert.NotEqual(t, before, v.Code())
	}
}

// constSource always draws the same values
type constSource struct{}

func (constSource) IntN(int) int    { return 0 }
func (constSource) Float64() float64 { return 0.5 }

func TestVerifyFailureChangesCodeWithRepeatingSource(t *testing.T) {
	v := NewVerifier(WithSource(constSource{}))
	require.Equal(t, "AAAAAA", v.Code())

	for i := 0; i < 4; i++ {
		before := v.Code()
		assert.False(t, v.Verify("wrong"))
		assert.NotEqual(t, before, v.Code())
		assert.Len(t, v.Code(), DefaultLength)
		for _, r := range v.Code() {
			assert.Contains(t, Alphabet, string(r))
		}
	}
}

func TestVerifyIsCaseSensitive(t *testing.T) {
	v := NewVerifier(WithSource(seeded()))
	code := v.Code()

	swapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z':
			return r - 'A' + 'a'
		}
		return r
	}, code)
	if swapped == code {
		t.Skip("generated code has no letters")
	}

	assert.False(t, v.Verify(swapped))
	assert.Equal(t, 1, v.Attempts())
}

func TestVerifyOldCodeCannotBeRetried(t *testing.T) {
	v := NewVerifier(WithSource(seeded()))
	old := v.Code()

	require.False(t, v.Verify("!!!!!!"))
	assert.False(t, v.Verify(old))
}

func TestVerifyErrorMessages(t *testing.T) {
	v := NewVerifier(WithSource(seeded()))

	v.Verify("wrong1")
	assert.Equal(t, MsgIncorrect, v.Error())
	v.Verify("wrong2")
	assert.Equal(t, MsgIncorrect, v.Error())
	v.Verify("wrong3")
	assert.Equal(t, MsgTryAudio, v.Error())
	v.Verify("wrong4")
	assert.Equal(t, MsgTryAudio, v.Error())

	// a refresh clears the message but keeps the attempt count
	v.Generate()
	assert.Empty(t, v.Error())
	assert.Equal(t, 4, v.Attempts())
}

func TestVerifyEmptyInput(t *testing.T) {
	v := NewVerifier(WithSource(seeded()))
	code := v.Code()

	assert.False(t, v.Verify("   "))
	assert.Equal(t, MsgEmptyInput, v.Error())
	assert.Equal(t, 0, v.Attempts())
	assert.Equal(t, code, v.Code())
}

func TestSpeak(t *testing.T) {
	v := NewVerifier(WithSource(seeded()))

	var got []Utterance
	v.Speak(SpeakerFunc(func(u Utterance) { got = append(got, u) }))

	require.Len(t, got, 1)
	assert.Equal(t, UtteranceFor(v.Code()), got[0])
	assert.InDelta(t, 0.8, got[0].Rate, 1e-9)

	// no speaker available: silently ignored
	assert.NotPanics(t, func() { v.Speak(nil) })
	assert.NotPanics(t, func() { v.Speak(SpeakerFunc(nil)) })
}

func TestUtteranceFor(t *testing.T) {
	assert.Equal(t, "The captcha code is a B 3", UtteranceFor("aB3").Text)
}

func TestResumeKeepsState(t *testing.T) {
	v := NewVerifier(WithSource(seeded()))
	v.Verify("nope")

	snap := v.Snapshot()
	r := Resume(snap, WithSource(seeded()))

	assert.Equal(t, v.Code(), r.Code())
	assert.Equal(t, 1, r.Attempts())
	assert.Equal(t, v.Noise(), r.Noise())
	assert.True(t, r.Verify(v.Code()))
}
