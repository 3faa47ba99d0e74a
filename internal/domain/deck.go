package domain

import (
	"math/rand"
	"sort"
)

// NewDeck returns the canonical 52-card deck in suit-major, rank-minor order.
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, s := range Suits {
		for r := Rank(2); r <= Ace; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// ShuffleDeck returns a shuffled copy of the given deck using the provided
// source. A fresh shuffle happens every round so no ordering bias carries over.
func ShuffleDeck(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Deal partitions the deck round-robin starting at seat 1: card i goes to seat
// (i mod 4)+1, 13 cards per seat. Each hand is sorted by (suit, rank) for
// stable display ordering; the sort has no bearing on play legality.
func Deal(deck []Card) map[int][]Card {
	hands := make(map[int][]Card, 4)
	for seat := 1; seat <= 4; seat++ {
		hands[seat] = make([]Card, 0, 13)
	}
	for i, card := range deck {
		seat := (i % 4) + 1
		hands[seat] = append(hands[seat], card)
	}
	for seat := range hands {
		SortHand(hands[seat])
	}
	return hands
}

// SortHand orders a hand by suit (deck order) then ascending rank.
func SortHand(hand []Card) {
	sort.Slice(hand, func(i, j int) bool {
		if hand[i].Suit != hand[j].Suit {
			return suitIndex(hand[i].Suit) < suitIndex(hand[j].Suit)
		}
		return hand[i].Rank < hand[j].Rank
	})
}

func suitIndex(s Suit) int {
	for i, suit := range Suits {
		if suit == s {
			return i
		}
	}
	return len(Suits)
}
