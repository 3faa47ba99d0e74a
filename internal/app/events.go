package app

import "tarneeb/internal/domain"

// EventKind identifies emitted state-change events for dispatch.
type EventKind string

const (
	EventDealStarted    EventKind = "deal_started"
	EventHandDealt      EventKind = "hand_dealt"
	EventBiddingOpened  EventKind = "bidding_opened"
	EventBidPlaced      EventKind = "bid_placed"
	EventBiddingWon     EventKind = "bidding_won"
	EventRedeal         EventKind = "redeal"
	EventTrumpSelected  EventKind = "trump_selected"
	EventCardPlayed     EventKind = "card_played"
	EventTrickCompleted EventKind = "trick_completed"
	EventRoundEnded     EventKind = "round_ended"
	EventGameEnded      EventKind = "game_ended"
)

// Event is a state-change notification with optional targeted recipients.
// RecipientSeats empty means broadcast to the whole room; otherwise delivery
// is restricted to the listed seats. Hand contents are only ever sent with a
// single recipient seat.
type Event struct {
	Kind           EventKind
	Payload        any
	RecipientSeats []int
}

type DealStartedPayload struct {
	Round  int `json:"round"`
	Dealer int `json:"dealer"`
}

type HandDealtPayload struct {
	Seat int           `json:"seat"`
	Hand []domain.Card `json:"hand"`
}

type BiddingOpenedPayload struct {
	Round       int `json:"round"`
	OpeningSeat int `json:"opening_seat"`
}

type BidPlacedPayload struct {
	Seat       int  `json:"seat"`
	Amount     int  `json:"amount"`
	Passed     bool `json:"passed"`
	HighestBid int  `json:"highest_bid"`
	NextSeat   int  `json:"next_seat"`
}

type BiddingWonPayload struct {
	Seat   int `json:"seat"`
	Amount int `json:"amount"`
}

type RedealPayload struct {
	Round int `json:"round"`
}

type TrumpSelectedPayload struct {
	Seat       int         `json:"seat"`
	Suit       domain.Suit `json:"suit"`
	LeaderSeat int         `json:"leader_seat"`
}

type CardPlayedPayload struct {
	Seat        int         `json:"seat"`
	Card        domain.Card `json:"card"`
	LeadingSuit domain.Suit `json:"leading_suit"`
	NextSeat    int         `json:"next_seat"`
}

type TrickCompletedPayload struct {
	Trick       domain.CompletedTrick `json:"trick"`
	Team1Tricks int                   `json:"team1_tricks"`
	Team2Tricks int                   `json:"team2_tricks"`
	NextTrick   int                   `json:"next_trick"` // 0 after the 13th trick
	LeaderSeat  int                   `json:"leader_seat"`
}

type RoundEndedPayload struct {
	Round       int `json:"round"`
	BidWinner   int `json:"bid_winner"`
	HighestBid  int `json:"highest_bid"`
	WinningTeam int `json:"winning_team"`
	Team1Score  int `json:"team1_score"`
	Team2Score  int `json:"team2_score"`
}

type GameEndedPayload struct {
	WinnerTeam int `json:"winner_team"`
	Team1Score int `json:"team1_score"`
	Team2Score int `json:"team2_score"`
}
