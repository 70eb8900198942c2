package palette

// Pair is one colour family shown during a round: every cell is painted Base
// except the odd one out, which gets Different.
type Pair struct {
	Name      string
	Base      string // hex, e.g. "#60a5fa"
	Different string
}

// Default is the fixed rotation order used by the game.
// Shades follow the 400 (base) / 300 (different) steps of a common web palette.
var Default = Palette{
	{Name: "blue", Base: "#60a5fa", Different: "#93c5fd"},
	{Name: "yellow", Base: "#facc15", Different: "#fde047"},
	{Name: "green", Base: "#4ade80", Different: "#86efac"},
	{Name: "purple", Base: "#c084fc", Different: "#d8b4fe"},
	{Name: "red", Base: "#f87171", Different: "#fca5a5"},
}

type Palette []Pair

func (p Palette) Len() int { return len(p) }

// At returns the pair at i, wrapping cyclically. Negative indices wrap too.
func (p Palette) At(i int) Pair {
	n := len(p)
	if n == 0 {
		return Pair{}
	}
	i %= n
	if i < 0 {
		i += n
	}
	return p[i]
}

// Next returns the index following i in rotation order.
func (p Palette) Next(i int) int {
	if len(p) == 0 {
		return 0
	}
	return (i + 1) % len(p)
}

// Names lists colour names in rotation order.
func (p Palette) Names() []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = c.Name
	}
	return out
}
