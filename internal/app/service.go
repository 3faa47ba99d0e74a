package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"tarneeb/internal/domain"
)

// Service contains the Tarneeb room state machine: every operation applies one
// atomic transition to the passed *domain.Game and reports the resulting
// events. A failed precondition leaves the aggregate untouched.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with the provided rng or a time-seeded
// default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

var (
	ErrWrongPhase     = errors.New("action not allowed in current phase")
	ErrOutOfTurn      = errors.New("not this seat's turn")
	ErrInvalidBid     = errors.New("invalid bid")
	ErrBiddingClosed  = errors.New("bidding already closed")
	ErrCardNotHeld    = errors.New("card not in hand")
	ErrMustFollowSuit = errors.New("must follow leading suit")
	ErrNotBidWinner   = errors.New("only the bid winner may select trump")
	ErrInvalidSuit    = errors.New("unknown suit")
	ErrInvalidSeat    = errors.New("seat out of range")
)

// StartRound deals a fresh shuffled deck and moves the room into the dealing
// phase. Valid from the lobby (once the 4th seat fills) and from round_end
// when the settle delay fires. Per-round fields reset; cumulative scores keep.
func (s *Service) StartRound(g *domain.Game) ([]Event, error) {
	if g.Phase != domain.PhaseLobby && g.Phase != domain.PhaseRoundEnd {
		return nil, fmt.Errorf("%w: cannot deal from %s", ErrWrongPhase, g.Phase)
	}

	if g.Phase == domain.PhaseRoundEnd {
		g.Dealer = domain.NextSeat(g.Dealer)
	}
	g.RoundNumber++
	g.Phase = domain.PhaseDealing
	g.TrickNumber = 1
	g.TrumpSuit = ""
	g.HighestBid = 0
	g.BidWinner = 0
	g.Bids = nil
	g.CurrentTrick = domain.Trick{Number: 1}
	g.Team1Tricks = 0
	g.Team2Tricks = 0

	return s.dealHands(g), nil
}

// dealHands shuffles, deals and emits the deal events. Hand contents go to
// their owning seat only.
func (s *Service) dealHands(g *domain.Game) []Event {
	deck := domain.ShuffleDeck(domain.NewDeck(), s.rng)
	g.Hands = domain.Deal(deck)

	events := make([]Event, 0, 5)
	events = append(events, Event{
		Kind:    EventDealStarted,
		Payload: DealStartedPayload{Round: g.RoundNumber, Dealer: g.Dealer},
	})
	for seat := 1; seat <= 4; seat++ {
		events = append(events, Event{
			Kind:           EventHandDealt,
			Payload:        HandDealtPayload{Seat: seat, Hand: g.Hands[seat]},
			RecipientSeats: []int{seat},
		})
	}
	return events
}

// OpenBidding moves dealing -> bidding once the settle delay has passed. The
// opening seat follows the last round's winning team; seat 1 opens the first
// round of a game.
func (s *Service) OpenBidding(g *domain.Game) ([]Event, error) {
	if g.Phase != domain.PhaseDealing {
		return nil, fmt.Errorf("%w: cannot open bidding from %s", ErrWrongPhase, g.Phase)
	}

	opening := g.LastRoundWinner
	if opening == 0 {
		opening = 1
	}
	g.Phase = domain.PhaseBidding
	g.CurrentPlayer = opening
	g.HighestBid = 0
	g.BidWinner = 0
	g.Bids = nil

	return []Event{{
		Kind:    EventBiddingOpened,
		Payload: BiddingOpenedPayload{Round: g.RoundNumber, OpeningSeat: opening},
	}}, nil
}

// PlaceBid appends a bid or pass for the acting seat, recomputes the standing
// high bid and either advances the turn, closes the auction into trump
// selection, or redeals when all four players passed without an opening bid.
func (s *Service) PlaceBid(g *domain.Game, seat, amount int, pass bool) ([]Event, error) {
	if g.Phase != domain.PhaseBidding {
		return nil, fmt.Errorf("%w: expected %s, room is in %s", ErrWrongPhase, domain.PhaseBidding, g.Phase)
	}
	if seat < 1 || seat > 4 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSeat, seat)
	}
	if seat != g.CurrentPlayer {
		return nil, fmt.Errorf("%w: expected seat %d, got seat %d", ErrOutOfTurn, g.CurrentPlayer, seat)
	}
	if !pass {
		min := domain.MinimumNextBid(g.HighestBid)
		if amount < min || amount > domain.MaximumBid {
			return nil, fmt.Errorf("%w: amount %d outside [%d, %d]", ErrInvalidBid, amount, min, domain.MaximumBid)
		}
	}

	bid := domain.Bid{Seat: seat, Passed: pass}
	if !pass {
		bid.Amount = amount
	}
	g.Bids = append(g.Bids, bid)
	g.HighestBid, g.BidWinner = domain.HighestBid(g.Bids)

	if domain.AllPassed(g.Bids) {
		// Dead auction: nobody opened. Redeal the same round.
		g.Phase = domain.PhaseDealing
		g.Bids = nil
		g.HighestBid = 0
		g.BidWinner = 0
		events := []Event{{
			Kind:    EventRedeal,
			Payload: RedealPayload{Round: g.RoundNumber},
		}}
		return append(events, s.dealHands(g)...), nil
	}

	if domain.IsBiddingComplete(g.Bids) {
		g.Phase = domain.PhaseTrumpSelection
		g.CurrentPlayer = g.BidWinner
		return []Event{
			{
				Kind: EventBidPlaced,
				Payload: BidPlacedPayload{
					Seat: seat, Amount: bid.Amount, Passed: pass,
					HighestBid: g.HighestBid, NextSeat: g.BidWinner,
				},
			},
			{
				Kind:    EventBiddingWon,
				Payload: BiddingWonPayload{Seat: g.BidWinner, Amount: g.HighestBid},
			},
		}, nil
	}

	g.CurrentPlayer = domain.NextSeat(seat)
	return []Event{{
		Kind: EventBidPlaced,
		Payload: BidPlacedPayload{
			Seat: seat, Amount: bid.Amount, Passed: pass,
			HighestBid: g.HighestBid, NextSeat: g.CurrentPlayer,
		},
	}}, nil
}

// SelectTrump lets the bid winner name trump and opens play with the bid
// winner leading the first trick.
func (s *Service) SelectTrump(g *domain.Game, seat int, suit domain.Suit) ([]Event, error) {
	if g.Phase != domain.PhaseTrumpSelection {
		return nil, fmt.Errorf("%w: expected %s, room is in %s", ErrWrongPhase, domain.PhaseTrumpSelection, g.Phase)
	}
	if seat != g.BidWinner {
		return nil, fmt.Errorf("%w: bid winner is seat %d, got seat %d", ErrNotBidWinner, g.BidWinner, seat)
	}
	if !validSuit(suit) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSuit, suit)
	}

	g.TrumpSuit = suit
	g.Phase = domain.PhasePlaying
	g.CurrentPlayer = g.BidWinner
	g.CurrentTrick = domain.Trick{Number: g.TrickNumber}

	return []Event{{
		Kind:    EventTrumpSelected,
		Payload: TrumpSelectedPayload{Seat: seat, Suit: suit, LeaderSeat: g.BidWinner},
	}}, nil
}

// PlayCard validates and applies one card play. The fourth card of a trick
// resolves it: the trick is archived, the winning team's counter bumped, and
// either the winner leads the next trick or the 13th trick settles the round.
func (s *Service) PlayCard(g *domain.Game, seat int, card domain.Card) ([]Event, error) {
	if g.Phase != domain.PhasePlaying {
		return nil, fmt.Errorf("%w: expected %s, room is in %s", ErrWrongPhase, domain.PhasePlaying, g.Phase)
	}
	if seat != g.CurrentPlayer {
		return nil, fmt.Errorf("%w: expected seat %d, got seat %d", ErrOutOfTurn, g.CurrentPlayer, seat)
	}
	hand := g.Hands[seat]
	if !domain.HandContains(hand, card) {
		return nil, fmt.Errorf("%w: seat %d does not hold %s %d", ErrCardNotHeld, seat, card.Suit, card.Rank)
	}
	if !domain.IsLegalPlay(card, hand, g.CurrentTrick.LeadingSuit) {
		return nil, fmt.Errorf("%w: %s led, seat %d still holds it", ErrMustFollowSuit, g.CurrentTrick.LeadingSuit, seat)
	}

	g.Hands[seat], _ = domain.RemoveCard(hand, card)
	if len(g.CurrentTrick.Plays) == 0 {
		g.CurrentTrick.LeadingSuit = card.Suit
	}
	g.CurrentTrick.Plays = append(g.CurrentTrick.Plays, domain.PlayedCard{Seat: seat, Card: card})

	if len(g.CurrentTrick.Plays) < 4 {
		g.CurrentPlayer = domain.NextSeat(seat)
		return []Event{{
			Kind: EventCardPlayed,
			Payload: CardPlayedPayload{
				Seat: seat, Card: card,
				LeadingSuit: g.CurrentTrick.LeadingSuit,
				NextSeat:    g.CurrentPlayer,
			},
		}}, nil
	}

	events := []Event{{
		Kind: EventCardPlayed,
		Payload: CardPlayedPayload{
			Seat: seat, Card: card,
			LeadingSuit: g.CurrentTrick.LeadingSuit,
		},
	}}
	return append(events, s.resolveTrick(g)...), nil
}

// resolveTrick archives the completed trick and advances or settles the round.
func (s *Service) resolveTrick(g *domain.Game) []Event {
	winner := domain.TrickWinner(g.CurrentTrick.Plays, g.CurrentTrick.LeadingSuit, g.TrumpSuit)
	completed := domain.CompletedTrick{
		Round:       g.RoundNumber,
		Number:      g.CurrentTrick.Number,
		Plays:       g.CurrentTrick.Plays,
		Winner:      winner,
		LeadingSuit: g.CurrentTrick.LeadingSuit,
	}
	g.CompletedTricks = append(g.CompletedTricks, completed)

	if domain.TeamOfSeat(winner) == 1 {
		g.Team1Tricks++
	} else {
		g.Team2Tricks++
	}

	lastTrick := g.TrickNumber == domain.TricksPerRound
	payload := TrickCompletedPayload{
		Trick:       completed,
		Team1Tricks: g.Team1Tricks,
		Team2Tricks: g.Team2Tricks,
		LeaderSeat:  winner,
	}
	if !lastTrick {
		g.TrickNumber++
		g.CurrentTrick = domain.Trick{Number: g.TrickNumber}
		g.CurrentPlayer = winner
		payload.NextTrick = g.TrickNumber
		return []Event{{Kind: EventTrickCompleted, Payload: payload}}
	}

	g.CurrentTrick = domain.Trick{}
	events := []Event{{Kind: EventTrickCompleted, Payload: payload}}
	return append(events, s.settleRound(g)...)
}

// settleRound applies the score deltas after the 13th trick and moves the
// room to round_end or, past the losing threshold, to game_over.
func (s *Service) settleRound(g *domain.Game) []Event {
	biddingTeam := domain.TeamOfSeat(g.BidWinner)
	biddingDelta, opponentDelta := domain.SettleRound(
		g.HighestBid, g.TeamTricks(biddingTeam), g.TeamTricks(otherTeam(biddingTeam)))

	if biddingTeam == 1 {
		g.Team1Score += biddingDelta
		g.Team2Score += opponentDelta
	} else {
		g.Team2Score += biddingDelta
		g.Team1Score += opponentDelta
	}

	if winner := domain.GameOverWinner(g.Team1Score, g.Team2Score); winner != 0 {
		g.Phase = domain.PhaseGameOver
		g.Winner = winner
		return []Event{{
			Kind: EventGameEnded,
			Payload: GameEndedPayload{
				WinnerTeam: winner,
				Team1Score: g.Team1Score,
				Team2Score: g.Team2Score,
			},
		}}
	}

	roundWinner := biddingTeam
	if biddingDelta < 0 {
		roundWinner = otherTeam(biddingTeam)
	}
	g.Phase = domain.PhaseRoundEnd
	g.LastRoundWinner = roundWinner
	bidWinner, highestBid := g.BidWinner, g.HighestBid
	g.Bids = nil

	return []Event{{
		Kind: EventRoundEnded,
		Payload: RoundEndedPayload{
			Round:       g.RoundNumber,
			BidWinner:   bidWinner,
			HighestBid:  highestBid,
			WinningTeam: roundWinner,
			Team1Score:  g.Team1Score,
			Team2Score:  g.Team2Score,
		},
	}}
}

func otherTeam(team int) int {
	if team == 1 {
		return 2
	}
	return 1
}

func validSuit(s domain.Suit) bool {
	for _, suit := range domain.Suits {
		if suit == s {
			return true
		}
	}
	return false
}
