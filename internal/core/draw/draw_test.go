package draw

import (
	"strings"
	"testing"

	"github.com/NightBlad/Tarotbot/internal/core/deck"
)

func uniqueShorts(t *testing.T, cards []Card) {
	t.Helper()
	seen := make(map[string]bool, len(cards))
	for _, c := range cards {
		if seen[c.NameShort] {
			t.Fatalf("duplicate card %q in draw", c.NameShort)
		}
		seen[c.NameShort] = true
	}
}

func TestSpreadUnique(t *testing.T) {
	e := NewSeeded(1)
	for i := 0; i < 50; i++ {
		uniqueShorts(t, e.Spread(10))
	}
}

func TestSpreadClampsToPool(t *testing.T) {
	e := NewSeeded(1)
	got := e.Spread(500)
	if len(got) != deck.Count() {
		t.Fatalf("Spread(500) = %d cards, want %d", len(got), deck.Count())
	}
	uniqueShorts(t, got)

	if got := e.Spread(0); len(got) != 0 {
		t.Fatalf("Spread(0) = %d cards, want 0", len(got))
	}
}

func TestOrientationAndImage(t *testing.T) {
	e := NewSeeded(7)
	c := e.One()
	if c.Orientation != Upright && c.Orientation != Reversed {
		t.Fatalf("orientation = %q", c.Orientation)
	}
	want := "./images/" + c.NameShort + ".jpeg"
	if c.Image != want {
		t.Fatalf("image = %q, want %q", c.Image, want)
	}
}

func TestThreeLabels(t *testing.T) {
	e := NewSeeded(2)
	got := e.Three()
	want := []string{"past", "present", "future"}
	if len(got) != 3 {
		t.Fatalf("Three() = %d positions", len(got))
	}
	for i, p := range got {
		if p.Position != want[i] {
			t.Fatalf("position %d = %q, want %q", i, p.Position, want[i])
		}
	}
}

func TestCelticCrossLabels(t *testing.T) {
	e := NewSeeded(3)
	got := e.CelticCross()
	if len(got) != 10 {
		t.Fatalf("CelticCross() = %d positions, want 10", len(got))
	}
	if got[1].Position != "2: Immediate Challenge (crossing)" {
		t.Fatalf("position 2 = %q", got[1].Position)
	}
	if got[9].Position != "10: Outcome" {
		t.Fatalf("position 10 = %q", got[9].Position)
	}
}

func TestReleaseRetainExtras(t *testing.T) {
	e := NewSeeded(4)
	got := e.ReleaseRetain([]string{"money", "health"})
	if len(got) != 4 {
		t.Fatalf("ReleaseRetain = %d positions, want 4", len(got))
	}
	if got[0].Position != "1: RELEASE" || got[1].Position != "2: RETAIN" {
		t.Fatalf("base positions = %q, %q", got[0].Position, got[1].Position)
	}
	if got[2].Position != "extra: money" || got[3].Position != "extra: health" {
		t.Fatalf("extra positions = %q, %q", got[2].Position, got[3].Position)
	}
	cards := make([]Card, 0, len(got))
	for _, p := range got {
		cards = append(cards, p.Card)
	}
	uniqueShorts(t, cards)
}

func TestLawOfAttractionReservesSignificator(t *testing.T) {
	e := NewSeeded(5)
	for i := 0; i < 20; i++ {
		got := e.LawOfAttraction("ar00")
		if len(got) != 5 {
			t.Fatalf("LawOfAttraction = %d positions, want 5", len(got))
		}
		if got[0].Position != "SIGNIFICATOR" {
			t.Fatalf("first position = %q", got[0].Position)
		}
		if got[0].Card.NameShort != "ar00" {
			t.Fatalf("significator card = %q, want ar00", got[0].Card.NameShort)
		}
		for _, p := range got[1:] {
			if p.Card.NameShort == "ar00" {
				t.Fatalf("significator reappeared in remainder")
			}
		}
	}
}

func TestLawOfAttractionUnknownSignificator(t *testing.T) {
	e := NewSeeded(6)
	got := e.LawOfAttraction("not a card")
	if len(got) != 5 {
		t.Fatalf("LawOfAttraction = %d positions, want 5", len(got))
	}
	if got[0].Position != "SIGNIFICATOR" {
		t.Fatalf("first position = %q", got[0].Position)
	}
}

func TestKnownKind(t *testing.T) {
	for _, k := range Kinds() {
		if !KnownKind(k) {
			t.Fatalf("KnownKind(%q) = false", k)
		}
	}
	if KnownKind("tarot") {
		t.Fatalf("KnownKind(tarot) = true")
	}
}

func TestDrawDispatch(t *testing.T) {
	e := NewSeeded(8)

	if _, err := e.Draw("nope", Params{}); err == nil {
		t.Fatalf("Draw(nope) expected error")
	}

	res, err := e.Draw(KindSpread, Params{})
	if err != nil {
		t.Fatalf("Draw(spread): %v", err)
	}
	if cards, ok := res.([]Card); !ok || len(cards) != 3 {
		t.Fatalf("Draw(spread) default = %T len %d, want 3 cards", res, len(cards))
	}

	res, err = e.Draw(KindOne, Params{})
	if err != nil {
		t.Fatalf("Draw(one): %v", err)
	}
	if _, ok := res.(Card); !ok {
		t.Fatalf("Draw(one) = %T, want Card", res)
	}

	res, err = e.Draw(KindMakingDecision, Params{})
	if err != nil {
		t.Fatalf("Draw(making-decision): %v", err)
	}
	pos, ok := res.([]Positioned)
	if !ok || len(pos) != 6 {
		t.Fatalf("Draw(making-decision) = %T len %d, want 6 positions", res, len(pos))
	}
	if !strings.HasPrefix(pos[0].Position, "1:") {
		t.Fatalf("first position = %q", pos[0].Position)
	}
}
