package state

import "testing"

func TestParseMode(t *testing.T) {
	cases := []struct {
		raw  string
		want Mode
	}{
		{"plane", ModePlane},
		{"battleship", ModeBattleship},
		{"memewars", ModeMemeWars},
		{"meme-wars", ModeMemeWars},
		{"meme_wars", ModeMemeWars},
		{"ratios", ModeRatios},
		{"memedash", ModeMemeDash},
		{"meme-dash", ModeMemeDash},
		{"meme_dash", ModeMemeDash},
		{"line", ModeLine},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			mode, err := ParseMode(tc.raw)
			if err != nil {
				t.Fatalf("ParseMode(%q) error: %v", tc.raw, err)
			}
			if mode != tc.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tc.raw, mode, tc.want)
			}
		})
	}
}

func TestParseModeUnknown(t *testing.T) {
	for _, raw := range []string{"", "chess", "Battleship", "plane "} {
		if _, err := ParseMode(raw); err == nil {
			t.Errorf("ParseMode(%q) should fail", raw)
		}
	}
}

func TestHasTeams(t *testing.T) {
	teamModes := map[Mode]bool{
		ModePlane:      false,
		ModeBattleship: true,
		ModeMemeWars:   true,
		ModeRatios:     false,
		ModeMemeDash:   false,
		ModeLine:       false,
	}

	for mode, want := range teamModes {
		if mode.HasTeams() != want {
			t.Errorf("%v.HasTeams() = %v, want %v", mode, mode.HasTeams(), want)
		}
	}
}
