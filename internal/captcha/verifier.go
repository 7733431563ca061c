// Package captcha implements a text challenge/response check used to gate login.
//
// A Verifier owns one challenge. It starts Unverified, and the only transition
// out of that state is a Verify call with the exact current code. Every failed
// attempt rotates the code so the same guess can never be retried.
package captcha

import (
	"math/rand/v2"
	"strings"
	"time"
)

const (
	// DefaultLength is the number of characters in a generated code
	DefaultLength = 6

	// Alphabet excludes glyphs that are easy to confuse (0/O/o, 1/I/l/i)
	Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz23456789"

	noiseStrokes = 10
	speechRate   = 0.8
)

// Messages surfaced to the user after a Verify call
const (
	MsgEmptyInput  = "Please enter the captcha text"
	MsgIncorrect   = "Incorrect captcha. Please try again."
	MsgTryAudio    = "Having trouble? Try the audio option or request a new captcha."
	audioHintAfter = 3
)

// Source supplies randomness for codes and noise
type Source interface {
	IntN(n int) int
	Float64() float64
}

// globalSource uses the goroutine-safe top-level functions of math/rand/v2
type globalSource struct{}

func (globalSource) IntN(n int) int    { return rand.IntN(n) }
func (globalSource) Float64() float64 { return rand.Float64() }

// Stroke is one line of visual noise drawn over the code.
// Left and Top are percentages of the image, Rotate is in degrees.
type Stroke struct {
	Height float64 `json:"height"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Rotate float64 `json:"rotate"`
}

// Challenge is the serialisable state of a verifier
type Challenge struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Attempts  int       `json:"attempts"`
	Verified  bool      `json:"verified"`
	Error     string    `json:"error,omitempty"`
	Noise     []Stroke  `json:"noise"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired checks if the challenge TTL has elapsed
func (c *Challenge) IsExpired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Verifier runs the challenge/response state machine for one challenge.
// It is not safe for concurrent use.
type Verifier struct {
	state    Challenge
	length   int
	src      Source
	onVerify func()
}

// Option configures a Verifier
type Option func(*Verifier)

// WithLength sets the code length
func WithLength(n int) Option {
	return func(v *Verifier) {
		if n > 0 {
			v.length = n
		}
	}
}

// WithSource sets the randomness source
func WithSource(src Source) Option {
	return func(v *Verifier) {
		if src != nil {
			v.src = src
		}
	}
}

// WithOnVerify registers a callback fired once when verification succeeds
func WithOnVerify(fn func()) Option {
	return func(v *Verifier) {
		v.onVerify = fn
	}
}

// NewVerifier creates a verifier with a freshly generated code
func NewVerifier(opts ...Option) *Verifier {
	v := newVerifier(opts)
	v.Generate()
	return v
}

// Resume rebuilds a verifier from a stored challenge without regenerating it
func Resume(c Challenge, opts ...Option) *Verifier {
	v := newVerifier(opts)
	v.state = c
	v.state.Noise = append([]Stroke(nil), c.Noise...)
	return v
}

func newVerifier(opts []Option) *Verifier {
	v := &Verifier{
		length: DefaultLength,
		src:    globalSource{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Generate replaces the code and noise and clears the error.
// The new code always differs from the one it replaces.
func (v *Verifier) Generate() {
	prev := v.state.Code
	code := make([]byte, v.length)
	for i := range code {
		code[i] = Alphabet[v.src.IntN(len(Alphabet))]
	}
	if len(code) > 0 && string(code) == prev {
		last := len(code) - 1
		code[last] = Alphabet[(strings.IndexByte(Alphabet, code[last])+1)%len(Alphabet)]
	}
	v.state.Code = string(code)
	v.state.Error = ""

	noise := make([]Stroke, noiseStrokes)
	for i := range noise {
		noise[i] = Stroke{
			Height: v.src.Float64()*30 + 10,
			Left:   v.src.Float64() * 100,
			Top:    v.src.Float64() * 100,
			Rotate: v.src.Float64() * 360,
		}
	}
	v.state.Noise = noise
}

// Verify checks input against the current code (case-sensitive).
// A wrong answer is not an error: it bumps the attempt counter, rotates the
// code and leaves a message in Error.
func (v *Verifier) Verify(input string) bool {
	if v.state.Verified {
		return true
	}

	if strings.TrimSpace(input) == "" {
		v.state.Error = MsgEmptyInput
		return false
	}

	if input == v.state.Code {
		v.state.Verified = true
		v.state.Error = ""
		if v.onVerify != nil {
			v.onVerify()
		}
		return true
	}

	v.state.Attempts++
	v.Generate()
	v.state.Error = MsgIncorrect
	if v.state.Attempts >= audioHintAfter {
		v.state.Error = MsgTryAudio
	}
	return false
}

// Speak asks sp to read the code aloud. A nil speaker is a no-op.
func (v *Verifier) Speak(sp Speaker) {
	if sp == nil {
		return
	}
	sp.Speak(UtteranceFor(v.state.Code))
}

// Code returns the current code
func (v *Verifier) Code() string { return v.state.Code }

// Attempts returns the number of failed verifications
func (v *Verifier) Attempts() int { return v.state.Attempts }

// Verified reports whether the challenge has been passed
func (v *Verifier) Verified() bool { return v.state.Verified }

// Error returns the message left by the last operation, if any
func (v *Verifier) Error() string { return v.state.Error }

// Noise returns the current noise strokes
func (v *Verifier) Noise() []Stroke { return append([]Stroke(nil), v.state.Noise...) }

// Snapshot returns a copy of the verifier state
func (v *Verifier) Snapshot() Challenge {
	c := v.state
	c.Noise = append([]Stroke(nil), v.state.Noise...)
	return c
}
