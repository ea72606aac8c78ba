package session

import "strings"

type Tone int

const (
	ToneNeutral Tone = iota
	ToneGood
	ToneExcellent
)

func (t Tone) String() string {
	switch t {
	case ToneExcellent:
		return "excellent"
	case ToneGood:
		return "good"
	default:
		return "neutral"
	}
}

// ToneOf classifies feedback text for presentation only.
func ToneOf(feedback string) Tone {
	text := strings.ToLower(feedback)
	switch {
	case strings.Contains(text, "excellent"), strings.Contains(text, "perfect"):
		return ToneExcellent
	case strings.Contains(text, "good"), strings.Contains(text, "well"):
		return ToneGood
	default:
		return ToneNeutral
	}
}
