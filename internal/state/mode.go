package state

import "fmt"

// Mode identifies which game's track a message addresses. Every room holds
// one independent track per mode.
type Mode string

const (
	ModePlane      Mode = "plane"
	ModeBattleship Mode = "battleship"
	ModeMemeWars   Mode = "memewars"
	ModeRatios     Mode = "ratios"
	ModeMemeDash   Mode = "memedash"
	ModeLine       Mode = "line"
)

// synonyms maps the alternate spellings the older game clients still send
// onto the canonical mode keys. Only the ingress boundary consults this
// table; everything past ParseMode sees canonical values.
var synonyms = map[string]Mode{
	"plane":      ModePlane,
	"battleship": ModeBattleship,
	"memewars":   ModeMemeWars,
	"meme-wars":  ModeMemeWars,
	"meme_wars":  ModeMemeWars,
	"ratios":     ModeRatios,
	"memedash":   ModeMemeDash,
	"meme-dash":  ModeMemeDash,
	"meme_dash":  ModeMemeDash,
	"line":       ModeLine,
}

// ParseMode canonicalizes a raw mode string from the wire.
func ParseMode(raw string) (Mode, error) {
	mode, ok := synonyms[raw]
	if !ok {
		return "", fmt.Errorf("unknown mode %q", raw)
	}
	return mode, nil
}

// HasTeams reports whether the mode assigns exclusive team slots on join.
func (m Mode) HasTeams() bool {
	return m == ModeBattleship || m == ModeMemeWars
}

func (m Mode) String() string {
	return string(m)
}
