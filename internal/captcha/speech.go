package captcha

import "strings"

// Utterance is a request to read text aloud
type Utterance struct {
	Text string  `json:"text"`
	Rate float64 `json:"rate"`
}

// Speaker is an optional speech-output capability.
// Speak is fire-and-forget: callers never learn whether the utterance played.
type Speaker interface {
	Speak(u Utterance)
}

// UtteranceFor spells a code out character by character
func UtteranceFor(code string) Utterance {
	return Utterance{
		Text: "The captcha code is " + strings.Join(strings.Split(code, ""), " "),
		Rate: speechRate,
	}
}

// SpeakerFunc adapts a function to the Speaker interface
type SpeakerFunc func(u Utterance)

// Speak calls f(u); a nil func is a no-op
func (f SpeakerFunc) Speak(u Utterance) {
	if f != nil {
		f(u)
	}
}
