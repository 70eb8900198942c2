package results

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/fchimpan/gh-hue-hunt/internal/round"
)

const Disclaimer = "Note: this game does not determine whether you are colour blind, " +
	"but it can help identify which colours you might have difficulty distinguishing."

const noMistakes = "Great job! You didn't make any mistakes."

// Entry is one row of the mistake breakdown.
type Entry struct {
	Color string `json:"color"`
	Count int    `json:"count"`
}

// Summary is the end-of-game performance analysis.
type Summary struct {
	Rounds   int     `json:"rounds"`
	Mistakes int     `json:"mistakes"`
	Timeouts int     `json:"timeouts"`
	Level    int     `json:"level"`
	Grid     int     `json:"gridSize"`
	Accuracy int     `json:"accuracy"`
	Verdict  string  `json:"verdict"`
	TopColor string  `json:"topColor,omitempty"`
	TopShare int     `json:"topShare,omitempty"`
	Note     string  `json:"colorNote,omitempty"`
	Message  string  `json:"message"`
	Colors   []Entry `json:"colors"`
}

// Headline is the one-line result shown above the analysis.
func (s Summary) Headline() string {
	return fmt.Sprintf("You completed %d rounds!", s.Rounds)
}

// Summarize analyses a finished (or in-progress) game. Timeouts count
// toward Mistakes but not toward the per-colour analysis.
func Summarize(snap round.Snapshot) Summary {
	s := Summary{
		Rounds:   snap.Completed,
		Mistakes: snap.Mistakes,
		Timeouts: snap.Ledger[round.TimeoutKey],
		Level:    snap.Level,
		Grid:     snap.GridSize,
		Colors:   colorEntries(snap.Ledger),
	}
	if len(s.Colors) == 0 {
		s.Accuracy = 100
		s.Message = noMistakes
		return s
	}

	colorMistakes := 0
	for _, e := range s.Colors {
		colorMistakes += e.Count
	}

	s.Accuracy = accuracy(s.Rounds, colorMistakes)
	s.Verdict = verdict(s.Accuracy)

	top := s.Colors[0]
	s.TopColor = top.Color
	s.TopShare = int(math.Round(float64(top.Count) / float64(colorMistakes) * 100))
	s.Note = colorNote(top.Color, s.TopShare)
	s.Message = s.Verdict + " " + s.Note
	return s
}

// colorEntries sorts the ledger by count (descending) then name, dropping the
// timeout bucket and empty counts.
func colorEntries(ledger map[string]int) []Entry {
	out := make([]Entry, 0, len(ledger))
	for k, v := range ledger {
		if k == round.TimeoutKey || v <= 0 {
			continue
		}
		out = append(out, Entry{Color: k, Count: v})
	}
	slices.SortFunc(out, func(a, b Entry) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Color, b.Color)
	})
	return out
}

func accuracy(rounds, mistakes int) int {
	if rounds <= 0 {
		return 0
	}
	a := int(math.Round(float64(rounds-mistakes) / float64(rounds) * 100))
	return max(0, min(a, 100))
}

func verdict(acc int) string {
	switch {
	case acc >= 90:
		return "Excellent! You have very good color discrimination."
	case acc >= 75:
		return "Good! You have solid color discrimination skills."
	case acc >= 60:
		return "Fair. You might have some difficulty with certain colors."
	default:
		return "You may have significant challenges with color discrimination."
	}
}

func colorNote(color string, share int) string {
	switch {
	case share >= 30:
		return fmt.Sprintf("You struggled significantly with %s (%d%% of mistakes).", color, share)
	case share >= 15:
		return fmt.Sprintf("You had difficulty with %s (%d%% of mistakes).", color, share)
	default:
		return fmt.Sprintf("You had some trouble with %s.", color)
	}
}
