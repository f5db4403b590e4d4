// Package draw implements the tarot draw engine
// Sampling is without replacement, orientation is a fair coin, and a
// significator, when resolved, is reserved before the rest of the spread
package draw

import (
	"math/rand"
	"sync"
	"time"

	"github.com/NightBlad/Tarotbot/internal/core/deck"

	perr "github.com/NightBlad/Tarotbot/internal/platform/errors"
)

// Orientation values for a drawn card
const (
	Upright  = "upright"
	Reversed = "reversed"
)

// Card is a deck card decorated with orientation and an image path
type Card struct {
	deck.Card
	Orientation string `json:"orientation"`
}

// Positioned pairs a drawn card with its spread position label
type Positioned struct {
	Position string `json:"position"`
	Card     Card   `json:"card"`
}

// Params carries the optional knobs a spread may use
type Params struct {
	// N is the card count for the free-form spread
	N int
	// Significator is a name_short, full name, or empty
	Significator string
	// ExtraQuestions adds one card per question to release-retain and asset-hindrance
	ExtraQuestions []string
}

// Engine draws cards from the embedded table
// safe for concurrent use; the rng is guarded by a mutex
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns an Engine seeded from the wall clock
func New() *Engine {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns an Engine with a fixed seed, used by tests for determinism
func NewSeeded(seed int64) *Engine {
	return &Engine{rng: rand.New(rand.NewSource(seed))}
}

// decorate clones a table card with a coin-flip orientation and image path
// callers must hold e.mu
func (e *Engine) decorate(c deck.Card) Card {
	o := Upright
	if e.rng.Intn(2) == 1 {
		o = Reversed
	}
	c.Image = "./images/" + c.NameShort + ".jpeg"
	return Card{Card: c, Orientation: o}
}

// pickUnique samples n distinct cards, excluding the given name_shorts
// when n meets or exceeds the remaining pool the whole pool is returned
func (e *Engine) pickUnique(n int, exclude []string) []Card {
	if n <= 0 {
		return []Card{}
	}
	skip := make(map[string]bool, len(exclude))
	for _, x := range exclude {
		skip[x] = true
	}
	pool := make([]deck.Card, 0, deck.Count())
	for _, c := range deck.All() {
		if !skip[c.NameShort] {
			pool = append(pool, c)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if n >= len(pool) {
		out := make([]Card, 0, len(pool))
		for _, c := range pool {
			out = append(out, e.decorate(c))
		}
		return out
	}
	e.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	out := make([]Card, 0, n)
	for _, c := range pool[:n] {
		out = append(out, e.decorate(c))
	}
	return out
}

// resolveSignificator finds a card by name_short or name, nil when unknown
func (e *Engine) resolveSignificator(sig string) *Card {
	if sig == "" {
		return nil
	}
	c, ok := deck.ByName(sig)
	if !ok {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	d := e.decorate(c)
	return &d
}

// One draws a single card
func (e *Engine) One() Card {
	return e.pickUnique(1, nil)[0]
}

// Spread draws n free-form cards without position labels
func (e *Engine) Spread(n int) []Card {
	return e.pickUnique(n, nil)
}

func (e *Engine) positional(labels []string) []Positioned {
	cards := e.pickUnique(len(labels), nil)
	out := make([]Positioned, len(cards))
	for i, c := range cards {
		out[i] = Positioned{Position: labels[i], Card: c}
	}
	return out
}

// Three draws the past / present / future spread
func (e *Engine) Three() []Positioned {
	return e.positional([]string{"past", "present", "future"})
}

// Five draws the situation / challenge / conscious / subconscious / outcome spread
func (e *Engine) Five() []Positioned {
	return e.positional([]string{"situation", "challenge", "conscious", "subconscious", "outcome"})
}

// CelticCross draws the ten position celtic cross
func (e *Engine) CelticCross() []Positioned {
	return e.positional([]string{
		"1: Present",
		"2: Immediate Challenge (crossing)",
		"3: Distant Past",
		"4: Recent Past",
		"5: Best Outcome / Conscious",
		"6: Immediate Future / Subconscious",
		"7: Self / Attitude",
		"8: Environment / Others",
		"9: Hopes and Fears",
		"10: Outcome",
	})
}

// ReleaseRetain draws the two position spread plus one card per extra question
func (e *Engine) ReleaseRetain(extras []string) []Positioned {
	return e.twoPlusExtras("1: RELEASE", "2: RETAIN", extras)
}

// AssetHindrance draws the two position spread plus one card per extra question
func (e *Engine) AssetHindrance(extras []string) []Positioned {
	return e.twoPlusExtras("1: ASSET", "2: HINDRANCE", extras)
}

func (e *Engine) twoPlusExtras(first, second string, extras []string) []Positioned {
	picks := e.pickUnique(2+len(extras), nil)
	out := []Positioned{
		{Position: first, Card: picks[0]},
		{Position: second, Card: picks[1]},
	}
	for i, q := range extras {
		if 2+i >= len(picks) {
			break
		}
		out = append(out, Positioned{Position: "extra: " + q, Card: picks[2+i]})
	}
	return out
}

// AdviceFromUniverse draws the three position advice spread
func (e *Engine) AdviceFromUniverse() []Positioned {
	return e.positional([]string{
		"1: WHAT YOU NEED TO KNOW",
		"2: A NEW PERSPECTIVE",
		"3: ACTION TO TAKE",
	})
}

// PastPresentFuture is an alias for Three
func (e *Engine) PastPresentFuture() []Positioned { return e.Three() }

// MindBodySpirit draws the three position mind / body / spirit spread
func (e *Engine) MindBodySpirit() []Positioned {
	return e.positional([]string{"1: MIND", "2: BODY", "3: SPIRIT"})
}

// ExistingRelationship draws the five position relationship spread
func (e *Engine) ExistingRelationship() []Positioned {
	return e.positional([]string{
		"1: ME", "2: THEM", "3: THE BRIDGE", "4: HIGHEST POTENTIAL", "5: LOWEST POTENTIAL",
	})
}

// PotentialRelationship draws the five position prospect spread
func (e *Engine) PotentialRelationship() []Positioned {
	return e.positional([]string{
		"1: ME", "2: WHAT LOVE ASKS OF ME", "3: MESSAGE FROM THE UNIVERSE", "4: ACTION TO TAKE", "5: WHAT TO RELEASE",
	})
}

// lawOfAttractionLabels is shared by both the reserved and unreserved paths
var lawOfAttractionLabels = []string{
	"SIGNIFICATOR",
	"2: YOUR CURRENT ENERGY",
	"3: THE ENERGY YOU NEED",
	"4: HOW TO GET INTO ALIGNMENT",
	"5: LETTING GO OF THE HOW",
}

// LawOfAttraction draws the five position spread, reserving the significator
// when it resolves to a known card so it cannot reappear in the remainder
func (e *Engine) LawOfAttraction(significator string) []Positioned {
	if sig := e.resolveSignificator(significator); sig != nil {
		picks := e.pickUnique(4, []string{sig.NameShort})
		out := []Positioned{{Position: lawOfAttractionLabels[0], Card: *sig}}
		for i, c := range picks {
			out = append(out, Positioned{Position: lawOfAttractionLabels[i+1], Card: c})
		}
		return out
	}
	return e.positional(lawOfAttractionLabels)
}

// MakingDecision draws the six position decision spread
func (e *Engine) MakingDecision() []Positioned {
	return e.positional([]string{
		"1: OPTION 1", "2: OPTION 2", "3: OPTION 1 ENERGY", "4: OPTION 2 ENERGY", "5: FEARS", "6: BLESSINGS",
	})
}

// Spread kinds accepted by Draw and the HTTP surface
const (
	KindOne                   = "one"
	KindThree                 = "three"
	KindFive                  = "five"
	KindSpread                = "spread"
	KindCelticCross           = "celtic-cross"
	KindReleaseRetain         = "release-retain"
	KindAssetHindrance        = "asset-hindrance"
	KindAdviceUniverse        = "advice-universe"
	KindPastPresentFuture     = "past-present-future"
	KindMindBodySpirit        = "mind-body-spirit"
	KindExistingRelationship  = "existing-relationship"
	KindPotentialRelationship = "potential-relationship"
	KindLawOfAttraction       = "law-of-attraction"
	KindMakingDecision        = "making-decision"
)

// Kinds lists every known spread kind
func Kinds() []string {
	return []string{
		KindOne, KindThree, KindFive, KindSpread, KindCelticCross,
		KindReleaseRetain, KindAssetHindrance, KindAdviceUniverse,
		KindPastPresentFuture, KindMindBodySpirit, KindExistingRelationship,
		KindPotentialRelationship, KindLawOfAttraction, KindMakingDecision,
	}
}

// KnownKind reports whether kind names a spread this engine can draw
func KnownKind(kind string) bool {
	for _, k := range Kinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// Draw dispatches a spread kind to its drawing routine
// The result is either a Card, []Card, or []Positioned depending on kind
func (e *Engine) Draw(kind string, p Params) (any, error) {
	switch kind {
	case KindOne:
		return e.One(), nil
	case KindThree:
		return e.Three(), nil
	case KindFive:
		return e.Five(), nil
	case KindSpread:
		n := p.N
		if n <= 0 {
			n = 3
		}
		return e.Spread(n), nil
	case KindCelticCross:
		return e.CelticCross(), nil
	case KindReleaseRetain:
		return e.ReleaseRetain(p.ExtraQuestions), nil
	case KindAssetHindrance:
		return e.AssetHindrance(p.ExtraQuestions), nil
	case KindAdviceUniverse:
		return e.AdviceFromUniverse(), nil
	case KindPastPresentFuture:
		return e.PastPresentFuture(), nil
	case KindMindBodySpirit:
		return e.MindBodySpirit(), nil
	case KindExistingRelationship:
		return e.ExistingRelationship(), nil
	case KindPotentialRelationship:
		return e.PotentialRelationship(), nil
	case KindLawOfAttraction:
		return e.LawOfAttraction(p.Significator), nil
	case KindMakingDecision:
		return e.MakingDecision(), nil
	default:
		return nil, perr.InvalidArgf("unknown spread kind %q", kind)
	}
}
