package extract

import (
	"strings"
	"testing"

	"github.com/crypticsea/dungeond/internal/domain/model"
)

func comment(body string) model.Comment {
	return model.Comment{ID: "c1", Body: body, Author: "alice", Score: 7}
}

func TestParse_LabeledLayout(t *testing.T) {
	layout := strings.Repeat("10", 50)
	sub, ok := New().Parse(comment("Layout: " + layout))
	if !ok {
		t.Fatal("expected successful extraction")
	}
	if sub.Layout != layout {
		t.Errorf("expected layout returned verbatim, got %q", sub.Layout)
	}
	if sub.CommentID != "c1" || sub.Author != "alice" || sub.Upvotes != 7 {
		t.Errorf("comment metadata not carried over: %+v", sub)
	}
}

func TestParse_AssignmentAndBareForms(t *testing.T) {
	layout := strings.Repeat("1", 100)

	cases := []struct {
		name string
		body string
	}{
		{"assignment", "layout=" + layout},
		{"assignment spaced", "layout = " + layout},
		{"bare run", "check this out " + layout + " pretty good"},
		{"label case-insensitive", "LAYOUT: " + layout},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub, ok := New().Parse(comment(tc.body))
			if !ok {
				t.Fatal("expected successful extraction")
			}
			if sub.Layout != layout {
				t.Errorf("got layout %q", sub.Layout)
			}
		})
	}
}

func TestParse_ExactLengthOnly(t *testing.T) {
	// Off-length runs must never match, labeled or bare.
	cases := []struct {
		name string
		body string
	}{
		{"labeled too short", "Layout: " + strings.Repeat("1", 99)},
		{"labeled too long", "Layout: " + strings.Repeat("1", 150)},
		{"bare too short", strings.Repeat("01", 49)},
		{"bare too long", strings.Repeat("0", 101)},
		{"no layout at all", "Monster: Dragon\nModifier: Tank Mode"},
		{"empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := New().Parse(comment(tc.body)); ok {
				t.Error("expected rejection")
			}
		})
	}
}

func TestParse_LabelPriority(t *testing.T) {
	labeled := strings.Repeat("1", 100)
	bare := strings.Repeat("0", 100)

	// The bare run appears first in the text; the labeled form still wins.
	body := bare + "\nLayout: " + labeled
	sub, ok := New().Parse(comment(body))
	if !ok {
		t.Fatal("expected successful extraction")
	}
	if sub.Layout != labeled {
		t.Error("expected labeled layout to take priority over earlier bare run")
	}
}

func TestParse_SecondLabeledOccurrenceUsed(t *testing.T) {
	// A malformed labeled run earlier in the text does not shadow a valid
	// one later.
	good := strings.Repeat("01", 50)
	body := "Layout: 101\nLayout: " + good
	sub, ok := New().Parse(comment(body))
	if !ok {
		t.Fatal("expected successful extraction")
	}
	if sub.Layout != good {
		t.Errorf("got layout %q", sub.Layout)
	}
}

func TestParse_Defaults(t *testing.T) {
	sub, ok := New().Parse(comment("Layout: " + strings.Repeat("1", 100)))
	if !ok {
		t.Fatal("expected successful extraction")
	}
	if sub.Monster != "Goblin" {
		t.Errorf("expected default monster Goblin, got %q", sub.Monster)
	}
	if sub.Modifier != "Normal" {
		t.Errorf("expected default modifier Normal, got %q", sub.Modifier)
	}
}

func TestParse_ConfiguredDefaults(t *testing.T) {
	e := New(WithDefaultMonster("Slime"), WithDefaultModifier("Hardcore"))
	sub, ok := e.Parse(comment(strings.Repeat("1", 100)))
	if !ok {
		t.Fatal("expected successful extraction")
	}
	if sub.Monster != "Slime" || sub.Modifier != "Hardcore" {
		t.Errorf("configured defaults not applied: %+v", sub)
	}
}

func TestParse_MonsterForms(t *testing.T) {
	layout := "Layout: " + strings.Repeat("1", 100) + "\n"

	cases := []struct {
		name string
		body string
		want string
	}{
		{"labeled", layout + "Monster: Dragon", "Dragon"},
		{"assignment", layout + "monster=Troll", "Troll"},
		{"label case-insensitive", layout + "MONSTER: Wyvern", "Wyvern"},
		{"word token stops at space", layout + "Monster: Cave Troll", "Cave"},
		{"underscore token", layout + "Monster: dire_wolf", "dire_wolf"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub, ok := New().Parse(comment(tc.body))
			if !ok {
				t.Fatal("expected successful extraction")
			}
			if sub.Monster != tc.want {
				t.Errorf("got monster %q, want %q", sub.Monster, tc.want)
			}
		})
	}
}

func TestParse_ModifierForms(t *testing.T) {
	layout := "Layout: " + strings.Repeat("1", 100) + "\n"

	cases := []struct {
		name string
		body string
		want string
	}{
		{"single word", layout + "Modifier: Fog", "Fog"},
		{"multi word", layout + "Modifier: Speed Boost", "Speed Boost"},
		{"stops at newline", layout + "Modifier: Tank Mode\nignored", "Tank Mode"},
		{"assignment", layout + "modifier=Double Trouble", "Double Trouble"},
		{"trimmed", layout + "Modifier:   Fog  ", "Fog"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub, ok := New().Parse(comment(tc.body))
			if !ok {
				t.Fatal("expected successful extraction")
			}
			if sub.Modifier != tc.want {
				t.Errorf("got modifier %q, want %q", sub.Modifier, tc.want)
			}
		})
	}
}

func TestParse_EndToEndScenario(t *testing.T) {
	layout := strings.Repeat("1", 100)
	body := "Layout:\n" + layout + "\nMonster: Dragon\nModifier: Tank Mode"

	c := model.Comment{ID: "c42", Body: body, Author: "bob", Score: 42}
	sub, ok := New().Parse(c)
	if !ok {
		t.Fatal("expected successful extraction")
	}
	if sub.Layout != layout {
		t.Errorf("got layout %q", sub.Layout)
	}
	if sub.Monster != "Dragon" {
		t.Errorf("got monster %q", sub.Monster)
	}
	if sub.Modifier != "Tank Mode" {
		t.Errorf("got modifier %q", sub.Modifier)
	}
	if sub.Upvotes != 42 {
		t.Errorf("got upvotes %d", sub.Upvotes)
	}
}
