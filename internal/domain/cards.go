package domain

import (
	"math/rand"
	"sort"
)

// Suits in ascending power order.
const (
	SuitDiamonds int32 = 0
	SuitClubs    int32 = 1
	SuitHearts   int32 = 2
	SuitSpades   int32 = 3
)

// Ranks run 0..12 with the three lowest and the two highest.
const (
	RankThree int32 = 0
	RankAce   int32 = 11
	RankTwo   int32 = 12
)

// Card is a single playing card. ID is derived from rank and suit and is
// stable across processes.
type Card struct {
	ID   int32 `json:"id"`
	Rank int32 `json:"rank"`
	Suit int32 `json:"suit"`
}

// NewCard builds a card with its derived ID.
func NewCard(rank, suit int32) Card {
	return Card{ID: rank*4 + suit, Rank: rank, Suit: suit}
}

// CardPower returns the total-order value of a card. No two cards share one.
func CardPower(c Card) int32 {
	return c.Rank*4 + c.Suit
}

// ValidCard reports whether rank and suit are in range.
func ValidCard(c Card) bool {
	return c.Rank >= 0 && c.Rank <= 12 && c.Suit >= 0 && c.Suit <= 3
}

// NewDeck returns the full 52-card deck in ascending power order.
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for r := int32(0); r <= 12; r++ {
		for s := int32(0); s <= 3; s++ {
			deck = append(deck, NewCard(r, s))
		}
	}
	return deck
}

// ShuffleDeck returns a shuffled copy of the given deck.
func ShuffleDeck(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// SortCards orders cards by ascending power in place.
func SortCards(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		return CardPower(cards[i]) < CardPower(cards[j])
	})
}

// ContainsAll reports whether hand holds every card in subset, counting
// duplicates.
func ContainsAll(hand, subset []Card) bool {
	counts := make(map[int32]int, len(hand))
	for _, c := range hand {
		counts[CardPower(c)]++
	}
	for _, c := range subset {
		p := CardPower(c)
		if counts[p] == 0 {
			return false
		}
		counts[p]--
	}
	return true
}

// RemoveCards removes the specified cards from a hand and returns the updated hand.
func RemoveCards(hand []Card, toRemove []Card) []Card {
	if len(toRemove) == 0 || len(hand) == 0 {
		return hand
	}

	removeCounts := make(map[int32]int, len(toRemove))
	for _, c := range toRemove {
		removeCounts[CardPower(c)]++
	}

	updated := make([]Card, 0, len(hand))
	for _, c := range hand {
		p := CardPower(c)
		if count, ok := removeCounts[p]; ok && count > 0 {
			removeCounts[p] = count - 1
			continue
		}
		updated = append(updated, c)
	}

	return updated
}

// LowestCardSeat returns the index of the hand holding the lowest card.
// The holder of the three of diamonds opens the game.
func LowestCardSeat(hands [][]Card) int32 {
	seat := int32(0)
	lowest := int32(53 * 4)
	for i, hand := range hands {
		for _, c := range hand {
			if p := CardPower(c); p < lowest {
				lowest = p
				seat = int32(i)
			}
		}
	}
	return seat
}
