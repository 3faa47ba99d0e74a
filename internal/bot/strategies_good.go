package bot

import (
	"math/rand"

	"tarneeb/internal/domain"
)

// GoodStrategy plays by simple rules of thumb: bid on raw high-card count,
// trump the longest suit, win tricks cheaply when possible.
type GoodStrategy struct {
	rng *rand.Rand
}

// NewGoodStrategy creates a rule-of-thumb strategy.
func NewGoodStrategy(rng *rand.Rand) *GoodStrategy {
	return &GoodStrategy{rng: rng}
}

func (s *GoodStrategy) ChooseBid(game *domain.Game, seat int) (int, bool) {
	estimate := estimateTricks(game.Hands[seat])
	next := domain.MinimumNextBid(game.HighestBid)
	if next > domain.MaximumBid || estimate < next {
		return 0, true
	}
	return next, false
}

func (s *GoodStrategy) ChooseTrump(game *domain.Game, seat int) domain.Suit {
	return longestSuit(game.Hands[seat])
}

func (s *GoodStrategy) ChooseCard(game *domain.Game, seat int) domain.Card {
	hand := game.Hands[seat]
	legal := domain.LegalPlays(hand, game.CurrentTrick.LeadingSuit)

	if len(game.CurrentTrick.Plays) == 0 {
		return randomAmongHighest(s.rng, legal)
	}
	if card, ok := cheapestWinningCard(game, legal); ok {
		return card
	}
	return lowestCard(legal)
}

// randomAmongHighest picks uniformly among the cards sharing the top rank,
// so identical hands do not always open the same suit.
func randomAmongHighest(rng *rand.Rand, cards []domain.Card) domain.Card {
	top := highestCard(cards).Rank
	var candidates []domain.Card
	for _, c := range cards {
		if c.Rank == top {
			candidates = append(candidates, c)
		}
	}
	return candidates[rng.Intn(len(candidates))]
}

// estimateTricks guesses how many tricks a hand can win: aces and kings plus
// length beyond four in the longest suit.
func estimateTricks(hand []domain.Card) int {
	estimate := 0
	lengths := make(map[domain.Suit]int)
	for _, c := range hand {
		lengths[c.Suit]++
		if c.Rank >= domain.King {
			estimate++
		}
	}
	longest := 0
	for _, n := range lengths {
		if n > longest {
			longest = n
		}
	}
	if longest > 4 {
		estimate += longest - 4
	}
	return estimate
}

func longestSuit(hand []domain.Card) domain.Suit {
	lengths := make(map[domain.Suit]int)
	for _, c := range hand {
		lengths[c.Suit]++
	}
	best := domain.Spades
	bestLen := -1
	for _, suit := range domain.Suits {
		if lengths[suit] > bestLen {
			best = suit
			bestLen = lengths[suit]
		}
	}
	return best
}

// cheapestWinningCard returns the lowest legal card that would take the
// trick as currently played, preferring non-trump winners over trump ones.
func cheapestWinningCard(game *domain.Game, legal []domain.Card) (domain.Card, bool) {
	var best domain.Card
	found := false
	for _, candidate := range legal {
		if !wouldWinTrick(game, candidate) {
			continue
		}
		if !found || lessForWinning(candidate, best, game.TrumpSuit) {
			best = candidate
			found = true
		}
	}
	return best, found
}

// wouldWinTrick checks whether playing the card now would hold the trick
// against the cards already on the table.
func wouldWinTrick(game *domain.Game, card domain.Card) bool {
	plays := make([]domain.PlayedCard, 0, len(game.CurrentTrick.Plays)+1)
	plays = append(plays, game.CurrentTrick.Plays...)
	plays = append(plays, domain.PlayedCard{Seat: game.CurrentPlayer, Card: card})

	leading := game.CurrentTrick.LeadingSuit
	if leading == "" {
		leading = card.Suit
	}
	return domain.TrickWinner(plays, leading, game.TrumpSuit) == game.CurrentPlayer
}

// lessForWinning orders winning candidates: a non-trump winner beats
// spending a trump, otherwise lower rank wins.
func lessForWinning(a, b domain.Card, trump domain.Suit) bool {
	aTrump := a.Suit == trump
	bTrump := b.Suit == trump
	if aTrump != bTrump {
		return !aTrump
	}
	return a.Rank < b.Rank
}

func lowestCard(cards []domain.Card) domain.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if c.Rank < best.Rank {
			best = c
		}
	}
	return best
}

func highestCard(cards []domain.Card) domain.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if c.Rank > best.Rank {
			best = c
		}
	}
	return best
}
