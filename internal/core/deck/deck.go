// Package deck holds the embedded 78 card tarot table
// The table is immutable; callers receive copies and may decorate them freely
package deck

import (
	_ "embed"
	"encoding/json"
	"sync"
)

//go:embed deck.json
var rawDeck []byte

// Card is one entry of the card table
// image is not part of the embedded data, it is attached at draw time
type Card struct {
	NameShort  string `json:"name_short"`
	Name       string `json:"name"`
	MeaningUp  string `json:"meaning_up"`
	MeaningRev string `json:"meaning_rev"`
	Image      string `json:"image,omitempty"`
}

var (
	loadOnce sync.Once
	cards    []Card
	byKey    map[string]int
)

func load() {
	loadOnce.Do(func() {
		if err := json.Unmarshal(rawDeck, &cards); err != nil {
			panic("deck: embedded card table is malformed: " + err.Error())
		}
		byKey = make(map[string]int, len(cards)*2)
		for i, c := range cards {
			byKey[c.NameShort] = i
			byKey[c.Name] = i
		}
	})
}

// Count returns the number of cards in the table
func Count() int {
	load()
	return len(cards)
}

// All returns a copy of the full card table
func All() []Card {
	load()
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}

// ByName finds a card by name_short or full name. The bool reports presence
func ByName(key string) (Card, bool) {
	load()
	if i, ok := byKey[key]; ok {
		return cards[i], true
	}
	return Card{}, false
}
