package domain

// MinimumOpeningBid is the lowest contract a player may open with.
const MinimumOpeningBid = 7

// MaximumBid is the highest possible contract (all tricks in a round).
const MaximumBid = 13

// LegalPlays filters a hand against the follow-suit rule. Leading a trick
// (empty leadingSuit) makes every card legal; otherwise cards of the leading
// suit must be followed when held, and any card is legal when none are.
func LegalPlays(hand []Card, leadingSuit Suit) []Card {
	if leadingSuit == "" {
		return append([]Card(nil), hand...)
	}
	var following []Card
	for _, c := range hand {
		if c.Suit == leadingSuit {
			following = append(following, c)
		}
	}
	if len(following) > 0 {
		return following
	}
	return append([]Card(nil), hand...)
}

// IsLegalPlay reports whether playing the card from the hand honors the
// follow-suit rule. Evaluated against the current hand, never a snapshot.
func IsLegalPlay(card Card, hand []Card, leadingSuit Suit) bool {
	if leadingSuit == "" || card.Suit == leadingSuit {
		return true
	}
	for _, c := range hand {
		if c.Suit == leadingSuit {
			return false
		}
	}
	return true
}

// TrickWinner determines the winning seat of a completed trick. Any trump card
// beats every non-trump card; among trumps (or, with no trump played, among
// cards of the leading suit) the highest rank wins. Ties cannot occur because
// each (suit, rank) pair exists once.
func TrickWinner(plays []PlayedCard, leadingSuit, trumpSuit Suit) int {
	winner := 0
	best := Rank(0)
	for _, p := range plays {
		if p.Card.Suit == trumpSuit && p.Card.Rank > best {
			winner = p.Seat
			best = p.Card.Rank
		}
	}
	if winner != 0 {
		return winner
	}
	for _, p := range plays {
		if p.Card.Suit == leadingSuit && p.Card.Rank > best {
			winner = p.Seat
			best = p.Card.Rank
		}
	}
	return winner
}

// IsBiddingComplete reports whether the auction is closed: at least one
// non-pass bid exists and the three most recent entries are all passes.
func IsBiddingComplete(bids []Bid) bool {
	if len(bids) < 4 {
		return false
	}
	hasActive := false
	for _, b := range bids {
		if !b.Passed {
			hasActive = true
			break
		}
	}
	if !hasActive {
		return false
	}
	for _, b := range bids[len(bids)-3:] {
		if !b.Passed {
			return false
		}
	}
	return true
}

// AllPassed reports the dead auction: four entries, no one opened. The round
// is redealt in that case.
func AllPassed(bids []Bid) bool {
	if len(bids) < 4 {
		return false
	}
	for _, b := range bids {
		if !b.Passed {
			return false
		}
	}
	return true
}

// HighestBid returns the max non-pass amount in the log and its seat, or
// (0, 0) when no one has bid.
func HighestBid(bids []Bid) (amount, seat int) {
	for _, b := range bids {
		if !b.Passed && b.Amount > amount {
			amount = b.Amount
			seat = b.Seat
		}
	}
	return amount, seat
}

// MinimumNextBid is 7 with no standing bid, else one above the current
// highest. A pass is always valid regardless of the standing bid.
func MinimumNextBid(currentHighest int) int {
	if currentHighest == 0 {
		return MinimumOpeningBid
	}
	return currentHighest + 1
}

// SettleRound computes the score deltas for both teams. The bidding team
// scores its bid when it took at least that many tricks and loses double the
// bid otherwise; the opposing team always scores its trick count.
func SettleRound(bidAmount, biddingTeamTricks, opponentTricks int) (biddingDelta, opponentDelta int) {
	if biddingTeamTricks >= bidAmount {
		biddingDelta = bidAmount
	} else {
		biddingDelta = -2 * bidAmount
	}
	return biddingDelta, opponentTricks
}

// GameOverWinner returns the winning team once a team's cumulative score has
// fallen to the losing threshold, or 0 while the game continues. Only the low
// threshold ends the game; there is no upper winning score.
func GameOverWinner(team1Score, team2Score int) int {
	if team1Score <= LosingScore {
		return 2
	}
	if team2Score <= LosingScore {
		return 1
	}
	return 0
}
