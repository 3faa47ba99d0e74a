package bot

import (
	"math/rand"

	"tarneeb/internal/domain"
)

// SmartStrategy refines GoodStrategy with trick awareness: it ducks when the
// partner already holds the trick, weighs trump support into its bid and
// names the suit with the most honors as trump.
type SmartStrategy struct {
	rng *rand.Rand
}

// NewSmartStrategy creates a trick-aware strategy.
func NewSmartStrategy(rng *rand.Rand) *SmartStrategy {
	return &SmartStrategy{rng: rng}
}

func (s *SmartStrategy) ChooseBid(game *domain.Game, seat int) (int, bool) {
	hand := game.Hands[seat]
	estimate := estimateTricks(hand)

	// A strong prospective trump suit carries extra tricks.
	trump := s.ChooseTrump(game, seat)
	trumpLen := 0
	for _, c := range hand {
		if c.Suit == trump {
			trumpLen++
		}
	}
	if trumpLen >= 5 {
		estimate++
	}

	next := domain.MinimumNextBid(game.HighestBid)
	if next > domain.MaximumBid || estimate < next {
		return 0, true
	}
	return next, false
}

func (s *SmartStrategy) ChooseTrump(game *domain.Game, seat int) domain.Suit {
	hand := game.Hands[seat]
	best := domain.Spades
	bestScore := -1
	for _, suit := range domain.Suits {
		score := 0
		for _, c := range hand {
			if c.Suit != suit {
				continue
			}
			score += 2 // length
			if c.Rank >= domain.Queen {
				score += int(c.Rank) - int(domain.Jack) // honor weight
			}
		}
		if score > bestScore {
			best = suit
			bestScore = score
		}
	}
	return best
}

func (s *SmartStrategy) ChooseCard(game *domain.Game, seat int) domain.Card {
	hand := game.Hands[seat]
	legal := domain.LegalPlays(hand, game.CurrentTrick.LeadingSuit)

	if len(game.CurrentTrick.Plays) == 0 {
		return s.chooseLead(game, legal)
	}

	if partnerHoldsTrick(game, seat) {
		return lowestCard(legal)
	}
	if card, ok := cheapestWinningCard(game, legal); ok {
		return card
	}
	return lowestCard(legal)
}

// chooseLead prefers a master card, otherwise leads low from the longest
// legal suit to develop it. Holding several aces, it cashes them in random
// order rather than telegraphing its hand shape.
func (s *SmartStrategy) chooseLead(game *domain.Game, legal []domain.Card) domain.Card {
	var aces []domain.Card
	for _, c := range legal {
		if c.Rank == domain.Ace {
			aces = append(aces, c)
		}
	}
	if len(aces) > 0 {
		return aces[s.rng.Intn(len(aces))]
	}
	long := longestSuit(legal)
	var best domain.Card
	found := false
	for _, c := range legal {
		if c.Suit != long {
			continue
		}
		if !found || c.Rank < best.Rank {
			best = c
			found = true
		}
	}
	if found {
		return best
	}
	return lowestCard(legal)
}

// partnerHoldsTrick reports whether the seat's partner is winning the trick
// as currently played.
func partnerHoldsTrick(game *domain.Game, seat int) bool {
	plays := game.CurrentTrick.Plays
	if len(plays) == 0 {
		return false
	}
	winner := domain.TrickWinner(plays, game.CurrentTrick.LeadingSuit, game.TrumpSuit)
	return winner != seat && domain.TeamOfSeat(winner) == domain.TeamOfSeat(seat)
}
