package domain

// Phase represents the lifecycle stage of a Tarneeb room.
type Phase string

const (
	// PhaseLobby is the pre-game state where players can join.
	PhaseLobby Phase = "lobby"
	// PhaseDealing covers the short window while fresh hands are distributed.
	PhaseDealing Phase = "dealing"
	// PhaseBidding is the auction for the round's contract.
	PhaseBidding Phase = "bidding"
	// PhaseTrumpSelection waits on the bid winner to name trump.
	PhaseTrumpSelection Phase = "trump_selection"
	// PhasePlaying is the trick-taking portion of a round.
	PhasePlaying Phase = "playing"
	// PhaseRoundEnd is the settled pause before the next deal.
	PhaseRoundEnd Phase = "round_end"
	// PhaseGameOver is terminal; no further actions are accepted.
	PhaseGameOver Phase = "game_over"
)

// Suit is one of the four French suits.
type Suit string

const (
	Spades   Suit = "spades"
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
)

// Suits lists all suits in deck-building order.
var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

// Rank is a card rank with the total order 2 < 3 < ... < 10 < J < Q < K < A.
type Rank int

const (
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

// Card is a single playing card. Identity is the (suit, rank) pair.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// Bid is one entry in a round's append-only auction log.
type Bid struct {
	Seat   int  `json:"seat"`
	Amount int  `json:"amount"` // 0 when passed
	Passed bool `json:"passed"`
}

// PlayedCard pairs a card with the seat that played it.
type PlayedCard struct {
	Seat int  `json:"seat"`
	Card Card `json:"card"`
}

// Trick is the in-progress trick for the current trick number.
type Trick struct {
	Number      int          `json:"number"`
	Plays       []PlayedCard `json:"plays"`
	LeadingSuit Suit         `json:"leading_suit"` // suit of the first card, "" until led
}

// CompletedTrick is the archived record of a resolved trick.
type CompletedTrick struct {
	Round       int          `json:"round"`
	Number      int          `json:"number"`
	Plays       []PlayedCard `json:"plays"`
	Winner      int          `json:"winner"`
	LeadingSuit Suit         `json:"leading_suit"`
}

// TricksPerRound is the number of tricks in a full round (13 cards per hand).
const TricksPerRound = 13

// LosingScore ends the game for the first team whose score reaches it.
const LosingScore = -52

// Game is the authoritative per-room aggregate. It is mutated only by the
// app-layer transition functions, one transition at a time per room.
type Game struct {
	Phase Phase `json:"phase"`

	RoundNumber   int `json:"round_number"`
	TrickNumber   int `json:"trick_number"`
	Dealer        int `json:"dealer"`
	CurrentPlayer int `json:"current_player"` // seat 1..4

	TrumpSuit  Suit  `json:"trump_suit"` // "" until selected
	HighestBid int   `json:"highest_bid"`
	BidWinner  int   `json:"bid_winner"` // 0 until bidding closes
	Bids       []Bid `json:"bids"`

	Hands           map[int][]Card   `json:"hands"` // seat -> sorted hand
	CurrentTrick    Trick            `json:"current_trick"`
	CompletedTricks []CompletedTrick `json:"completed_tricks"`

	Team1Score  int `json:"team1_score"`
	Team2Score  int `json:"team2_score"`
	Team1Tricks int `json:"team1_tricks"`
	Team2Tricks int `json:"team2_tricks"`

	LastRoundWinner int `json:"last_round_winner"` // team 1|2, 0 before the first settlement
	Winner          int `json:"winner"`            // team 1|2, 0 while the game runs
}

// NewGame returns a fresh aggregate in the lobby phase.
func NewGame() *Game {
	return &Game{
		Phase:         PhaseLobby,
		TrickNumber:   1,
		Dealer:        1,
		CurrentPlayer: 1,
		Hands:         make(map[int][]Card, 4),
	}
}

// Clone deep-copies the aggregate so a transition can be rolled back when its
// persistence step fails.
func (g *Game) Clone() *Game {
	out := *g
	out.Bids = append([]Bid(nil), g.Bids...)
	out.Hands = make(map[int][]Card, len(g.Hands))
	for seat, hand := range g.Hands {
		out.Hands[seat] = append([]Card(nil), hand...)
	}
	out.CurrentTrick.Plays = append([]PlayedCard(nil), g.CurrentTrick.Plays...)
	out.CompletedTricks = append([]CompletedTrick(nil), g.CompletedTricks...)
	return &out
}

// TeamOfSeat returns the fixed team for a seat: seats 1,3 form team 1 and
// seats 2,4 form team 2. The mapping is never reassigned.
func TeamOfSeat(seat int) int {
	if seat == 1 || seat == 3 {
		return 1
	}
	return 2
}

// NextSeat advances clockwise: 1 -> 2 -> 3 -> 4 -> 1.
func NextSeat(seat int) int {
	if seat == 4 {
		return 1
	}
	return seat + 1
}

// TeamScore returns the cumulative score for a team.
func (g *Game) TeamScore(team int) int {
	if team == 1 {
		return g.Team1Score
	}
	return g.Team2Score
}

// TeamTricks returns the current round's trick count for a team.
func (g *Game) TeamTricks(team int) int {
	if team == 1 {
		return g.Team1Tricks
	}
	return g.Team2Tricks
}

// RemoveCard removes a single card from a hand and reports whether it was held.
func RemoveCard(hand []Card, card Card) ([]Card, bool) {
	for i, c := range hand {
		if c == card {
			return append(hand[:i:i], hand[i+1:]...), true
		}
	}
	return hand, false
}

// HandContains reports whether the hand holds the exact card.
func HandContains(hand []Card, card Card) bool {
	for _, c := range hand {
		if c == card {
			return true
		}
	}
	return false
}
