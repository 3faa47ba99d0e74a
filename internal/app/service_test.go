package app

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"tarneeb/internal/domain"
)

func newTestService() *Service {
	return NewService(rand.New(rand.NewSource(1)))
}

func card(s domain.Suit, r domain.Rank) domain.Card {
	return domain.Card{Suit: s, Rank: r}
}

// biddingGame deals round 1 and opens bidding with seat 1 to act.
func biddingGame(t *testing.T) (*Service, *domain.Game) {
	t.Helper()
	svc := newTestService()
	g := domain.NewGame()
	if _, err := svc.StartRound(g); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if _, err := svc.OpenBidding(g); err != nil {
		t.Fatalf("OpenBidding: %v", err)
	}
	return svc, g
}

func TestStartRound(t *testing.T) {
	svc := newTestService()
	g := domain.NewGame()

	events, err := svc.StartRound(g)
	if err != nil {
		t.Fatalf("StartRound: %v", err)
	}

	if g.Phase != domain.PhaseDealing {
		t.Fatalf("Expected phase %s, got %s", domain.PhaseDealing, g.Phase)
	}
	if g.RoundNumber != 1 {
		t.Fatalf("Expected round 1, got %d", g.RoundNumber)
	}
	for seat := 1; seat <= 4; seat++ {
		if len(g.Hands[seat]) != 13 {
			t.Fatalf("Seat %d: expected 13 cards, got %d", seat, len(g.Hands[seat]))
		}
	}

	if len(events) != 5 {
		t.Fatalf("Expected 5 events, got %d", len(events))
	}
	if events[0].Kind != EventDealStarted {
		t.Fatalf("Expected %s first, got %s", EventDealStarted, events[0].Kind)
	}
	for _, ev := range events[1:] {
		if ev.Kind != EventHandDealt {
			t.Fatalf("Expected %s, got %s", EventHandDealt, ev.Kind)
		}
		if len(ev.RecipientSeats) != 1 {
			t.Fatalf("Hand contents must go to exactly one seat, got %v", ev.RecipientSeats)
		}
		payload := ev.Payload.(HandDealtPayload)
		if payload.Seat != ev.RecipientSeats[0] {
			t.Fatalf("Hand for seat %d addressed to seat %d", payload.Seat, ev.RecipientSeats[0])
		}
	}
}

func TestStartRoundWrongPhase(t *testing.T) {
	svc := newTestService()
	g := domain.NewGame()
	g.Phase = domain.PhaseBidding

	if _, err := svc.StartRound(g); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("Expected ErrWrongPhase, got %v", err)
	}
}

func TestOpenBidding(t *testing.T) {
	svc := newTestService()
	g := domain.NewGame()
	if _, err := svc.StartRound(g); err != nil {
		t.Fatalf("StartRound: %v", err)
	}

	events, err := svc.OpenBidding(g)
	if err != nil {
		t.Fatalf("OpenBidding: %v", err)
	}
	if g.Phase != domain.PhaseBidding {
		t.Fatalf("Expected phase %s, got %s", domain.PhaseBidding, g.Phase)
	}
	if g.CurrentPlayer != 1 {
		t.Fatalf("Seat 1 opens the first round, got seat %d", g.CurrentPlayer)
	}
	if len(events) != 1 || events[0].Kind != EventBiddingOpened {
		t.Fatalf("Expected a single %s event, got %v", EventBiddingOpened, events)
	}
}

func TestOpenBiddingUsesLastRoundWinner(t *testing.T) {
	svc := newTestService()
	g := domain.NewGame()
	g.Phase = domain.PhaseRoundEnd
	g.RoundNumber = 1
	g.LastRoundWinner = 2

	if _, err := svc.StartRound(g); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if _, err := svc.OpenBidding(g); err != nil {
		t.Fatalf("OpenBidding: %v", err)
	}
	if g.CurrentPlayer != 2 {
		t.Fatalf("Last round's winning team opens, expected seat 2, got %d", g.CurrentPlayer)
	}
}

func TestPlaceBidValidation(t *testing.T) {
	tests := []struct {
		name    string
		seat    int
		amount  int
		pass    bool
		wantErr error
	}{
		{"OutOfTurn", 2, 7, false, ErrOutOfTurn},
		{"BelowOpeningMinimum", 1, 6, false, ErrInvalidBid},
		{"AboveMaximum", 1, 14, false, ErrInvalidBid},
		{"SeatOutOfRange", 5, 7, false, ErrInvalidSeat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, g := biddingGame(t)
			before := g.Clone()

			_, err := svc.PlaceBid(g, tt.seat, tt.amount, tt.pass)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			if !reflect.DeepEqual(g, before) {
				t.Fatal("Rejected bid must not change the game state")
			}
		})
	}
}

func TestPlaceBidRaiseBelowHighest(t *testing.T) {
	svc, g := biddingGame(t)

	if _, err := svc.PlaceBid(g, 1, 9, false); err != nil {
		t.Fatalf("Opening bid: %v", err)
	}
	if _, err := svc.PlaceBid(g, 2, 9, false); !errors.Is(err, ErrInvalidBid) {
		t.Fatalf("Matching the high bid must be rejected, got %v", err)
	}
	if _, err := svc.PlaceBid(g, 2, 10, false); err != nil {
		t.Fatalf("Raise by one must be accepted: %v", err)
	}
}

func TestBiddingClosesAfterThreePasses(t *testing.T) {
	svc, g := biddingGame(t)

	if _, err := svc.PlaceBid(g, 1, 7, false); err != nil {
		t.Fatalf("Bid: %v", err)
	}
	for _, seat := range []int{2, 3} {
		if _, err := svc.PlaceBid(g, seat, 0, true); err != nil {
			t.Fatalf("Pass seat %d: %v", seat, err)
		}
	}

	events, err := svc.PlaceBid(g, 4, 0, true)
	if err != nil {
		t.Fatalf("Final pass: %v", err)
	}

	if g.Phase != domain.PhaseTrumpSelection {
		t.Fatalf("Expected phase %s, got %s", domain.PhaseTrumpSelection, g.Phase)
	}
	if g.BidWinner != 1 || g.HighestBid != 7 {
		t.Fatalf("Expected seat 1 to win at 7, got seat %d at %d", g.BidWinner, g.HighestBid)
	}
	if g.CurrentPlayer != 1 {
		t.Fatalf("Bid winner selects trump, expected seat 1, got %d", g.CurrentPlayer)
	}

	last := events[len(events)-1]
	if last.Kind != EventBiddingWon {
		t.Fatalf("Expected closing %s event, got %s", EventBiddingWon, last.Kind)
	}
}

func TestAllPassRedeals(t *testing.T) {
	svc, g := biddingGame(t)
	round := g.RoundNumber

	var events []Event
	for seat := 1; seat <= 4; seat++ {
		var err error
		events, err = svc.PlaceBid(g, seat, 0, true)
		if err != nil {
			t.Fatalf("Pass seat %d: %v", seat, err)
		}
	}

	if g.Phase != domain.PhaseDealing {
		t.Fatalf("Dead auction should redeal, got phase %s", g.Phase)
	}
	if g.RoundNumber != round {
		t.Fatalf("Redeal keeps the round number, got %d", g.RoundNumber)
	}
	if len(g.Bids) != 0 || g.HighestBid != 0 || g.BidWinner != 0 {
		t.Fatal("Redeal must clear the auction")
	}
	for seat := 1; seat <= 4; seat++ {
		if len(g.Hands[seat]) != 13 {
			t.Fatalf("Seat %d: expected a fresh 13-card hand, got %d", seat, len(g.Hands[seat]))
		}
	}
	if events[0].Kind != EventRedeal {
		t.Fatalf("Expected %s first, got %s", EventRedeal, events[0].Kind)
	}
}

func TestSelectTrump(t *testing.T) {
	svc, g := biddingGame(t)
	if _, err := svc.PlaceBid(g, 1, 7, false); err != nil {
		t.Fatalf("Bid: %v", err)
	}
	for _, seat := range []int{2, 3, 4} {
		if _, err := svc.PlaceBid(g, seat, 0, true); err != nil {
			t.Fatalf("Pass seat %d: %v", seat, err)
		}
	}

	if _, err := svc.SelectTrump(g, 2, domain.Hearts); !errors.Is(err, ErrNotBidWinner) {
		t.Fatalf("Expected ErrNotBidWinner, got %v", err)
	}
	if _, err := svc.SelectTrump(g, 1, domain.Suit("stars")); !errors.Is(err, ErrInvalidSuit) {
		t.Fatalf("Expected ErrInvalidSuit, got %v", err)
	}

	events, err := svc.SelectTrump(g, 1, domain.Hearts)
	if err != nil {
		t.Fatalf("SelectTrump: %v", err)
	}
	if g.Phase != domain.PhasePlaying || g.TrumpSuit != domain.Hearts {
		t.Fatalf("Expected playing with hearts trump, got %s / %s", g.Phase, g.TrumpSuit)
	}
	if g.CurrentPlayer != 1 {
		t.Fatalf("Bid winner leads the first trick, got seat %d", g.CurrentPlayer)
	}
	if len(events) != 1 || events[0].Kind != EventTrumpSelected {
		t.Fatalf("Expected a single %s event, got %v", EventTrumpSelected, events)
	}
}

// playingGame builds a mid-round position directly: one known card per seat,
// trick number as given.
func playingGame(trickNumber int, hands map[int][]domain.Card) *domain.Game {
	g := domain.NewGame()
	g.Phase = domain.PhasePlaying
	g.RoundNumber = 1
	g.TrickNumber = trickNumber
	g.CurrentPlayer = 1
	g.BidWinner = 1
	g.HighestBid = 7
	g.TrumpSuit = domain.Spades
	g.Hands = hands
	g.CurrentTrick = domain.Trick{Number: trickNumber}
	return g
}

func TestPlayCardValidation(t *testing.T) {
	svc := newTestService()
	g := playingGame(1, map[int][]domain.Card{
		1: {card(domain.Hearts, 5), card(domain.Clubs, 9)},
		2: {card(domain.Hearts, 8), card(domain.Clubs, 4)},
		3: {card(domain.Diamonds, 2)},
		4: {card(domain.Spades, 3)},
	})

	if _, err := svc.PlayCard(g, 2, card(domain.Hearts, 8)); !errors.Is(err, ErrOutOfTurn) {
		t.Fatalf("Expected ErrOutOfTurn, got %v", err)
	}
	if _, err := svc.PlayCard(g, 1, card(domain.Spades, domain.Ace)); !errors.Is(err, ErrCardNotHeld) {
		t.Fatalf("Expected ErrCardNotHeld, got %v", err)
	}

	if _, err := svc.PlayCard(g, 1, card(domain.Hearts, 5)); err != nil {
		t.Fatalf("Lead: %v", err)
	}

	before := g.Clone()
	if _, err := svc.PlayCard(g, 2, card(domain.Clubs, 4)); !errors.Is(err, ErrMustFollowSuit) {
		t.Fatalf("Expected ErrMustFollowSuit, got %v", err)
	}
	if !reflect.DeepEqual(g, before) {
		t.Fatal("Rejected play must not change the game state")
	}
}

func TestTrickResolution(t *testing.T) {
	svc := newTestService()
	g := playingGame(1, map[int][]domain.Card{
		1: {card(domain.Hearts, domain.Ace), card(domain.Clubs, 2)},
		2: {card(domain.Spades, 2), card(domain.Clubs, 3)},
		3: {card(domain.Hearts, domain.King), card(domain.Clubs, 4)},
		4: {card(domain.Diamonds, domain.Ace), card(domain.Clubs, 5)},
	})

	plays := []struct {
		seat int
		c    domain.Card
	}{
		{1, card(domain.Hearts, domain.Ace)},
		{2, card(domain.Spades, 2)}, // low trump takes it
		{3, card(domain.Hearts, domain.King)},
		{4, card(domain.Diamonds, domain.Ace)},
	}
	var events []Event
	for _, p := range plays {
		var err error
		events, err = svc.PlayCard(g, p.seat, p.c)
		if err != nil {
			t.Fatalf("Seat %d playing %v: %v", p.seat, p.c, err)
		}
	}

	if len(g.CompletedTricks) != 1 {
		t.Fatalf("Expected 1 archived trick, got %d", len(g.CompletedTricks))
	}
	completed := g.CompletedTricks[0]
	if completed.Winner != 2 {
		t.Fatalf("Trump should win the trick, expected seat 2, got %d", completed.Winner)
	}
	if g.Team2Tricks != 1 || g.Team1Tricks != 0 {
		t.Fatalf("Expected team counters (0, 1), got (%d, %d)", g.Team1Tricks, g.Team2Tricks)
	}
	if g.TrickNumber != 2 || g.CurrentPlayer != 2 {
		t.Fatalf("Winner leads trick 2, got trick %d seat %d", g.TrickNumber, g.CurrentPlayer)
	}

	last := events[len(events)-1]
	if last.Kind != EventTrickCompleted {
		t.Fatalf("Expected %s, got %s", EventTrickCompleted, last.Kind)
	}
}

// lastTrickGame sets up the 13th trick with 12 tricks already counted.
func lastTrickGame(team1Tricks, team2Tricks int) *domain.Game {
	g := playingGame(domain.TricksPerRound, map[int][]domain.Card{
		1: {card(domain.Hearts, 10)},
		2: {card(domain.Hearts, 4)},
		3: {card(domain.Hearts, 7)},
		4: {card(domain.Hearts, 2)},
	})
	g.HighestBid = 8
	g.Team1Tricks = team1Tricks
	g.Team2Tricks = team2Tricks
	return g
}

func playLastTrick(t *testing.T, svc *Service, g *domain.Game) []Event {
	t.Helper()
	var events []Event
	for _, p := range []struct {
		seat int
		c    domain.Card
	}{
		{1, card(domain.Hearts, 10)},
		{2, card(domain.Hearts, 4)},
		{3, card(domain.Hearts, 7)},
		{4, card(domain.Hearts, 2)},
	} {
		var err error
		events, err = svc.PlayCard(g, p.seat, p.c)
		if err != nil {
			t.Fatalf("Seat %d: %v", p.seat, err)
		}
	}
	return events
}

func TestRoundSettlementFailedBid(t *testing.T) {
	svc := newTestService()
	// Bid 8 by team 1; 6-6 going into the last trick, which seat 1 wins.
	g := lastTrickGame(6, 6)

	events := playLastTrick(t, svc, g)

	// Team 1 took 7 of its 8 bid tricks: -16. Opponents keep their 6.
	if g.Team1Score != -16 || g.Team2Score != 6 {
		t.Fatalf("Expected scores (-16, 6), got (%d, %d)", g.Team1Score, g.Team2Score)
	}
	if g.Team1Tricks != 7 {
		t.Fatalf("The 13th trick must be counted before settling, got %d", g.Team1Tricks)
	}
	if g.Phase != domain.PhaseRoundEnd {
		t.Fatalf("Expected phase %s, got %s", domain.PhaseRoundEnd, g.Phase)
	}
	if g.LastRoundWinner != 2 {
		t.Fatalf("A failed bid hands the round to the opponents, got team %d", g.LastRoundWinner)
	}

	last := events[len(events)-1]
	if last.Kind != EventRoundEnded {
		t.Fatalf("Expected %s, got %s", EventRoundEnded, last.Kind)
	}
	payload := last.Payload.(RoundEndedPayload)
	if payload.WinningTeam != 2 || payload.Team1Score != -16 {
		t.Fatalf("Unexpected round end payload: %+v", payload)
	}
}

func TestRoundSettlementMadeBid(t *testing.T) {
	svc := newTestService()
	// Bid 8 by team 1; 8-4 going into the last trick, which seat 1 wins.
	g := lastTrickGame(8, 4)

	playLastTrick(t, svc, g)

	if g.Team1Score != 8 || g.Team2Score != 4 {
		t.Fatalf("Expected scores (8, 4), got (%d, %d)", g.Team1Score, g.Team2Score)
	}
	if g.LastRoundWinner != 1 {
		t.Fatalf("Expected team 1 to take the round, got %d", g.LastRoundWinner)
	}
}

func TestGameOverAtLosingThreshold(t *testing.T) {
	svc := newTestService()
	g := lastTrickGame(6, 6)
	g.Team1Score = -40 // a failed bid of 8 drops team 1 to -56

	events := playLastTrick(t, svc, g)

	if g.Phase != domain.PhaseGameOver {
		t.Fatalf("Expected phase %s, got %s", domain.PhaseGameOver, g.Phase)
	}
	if g.Winner != 2 {
		t.Fatalf("Expected team 2 to win, got %d", g.Winner)
	}

	last := events[len(events)-1]
	if last.Kind != EventGameEnded {
		t.Fatalf("Expected %s, got %s", EventGameEnded, last.Kind)
	}
	payload := last.Payload.(GameEndedPayload)
	if payload.WinnerTeam != 2 || payload.Team1Score != -56 {
		t.Fatalf("Unexpected game end payload: %+v", payload)
	}

	// Terminal: nothing further is accepted.
	if _, err := svc.StartRound(g); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("Expected ErrWrongPhase after game over, got %v", err)
	}
}

// TestFullRound drives a complete round through the public operations with
// players always choosing their first legal card.
func TestFullRound(t *testing.T) {
	svc := newTestService()
	g := domain.NewGame()

	if _, err := svc.StartRound(g); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if _, err := svc.OpenBidding(g); err != nil {
		t.Fatalf("OpenBidding: %v", err)
	}
	if _, err := svc.PlaceBid(g, 1, 7, false); err != nil {
		t.Fatalf("Bid: %v", err)
	}
	for _, seat := range []int{2, 3, 4} {
		if _, err := svc.PlaceBid(g, seat, 0, true); err != nil {
			t.Fatalf("Pass seat %d: %v", seat, err)
		}
	}
	if _, err := svc.SelectTrump(g, 1, domain.Spades); err != nil {
		t.Fatalf("SelectTrump: %v", err)
	}

	for i := 0; i < 52 && g.Phase == domain.PhasePlaying; i++ {
		seat := g.CurrentPlayer
		legal := domain.LegalPlays(g.Hands[seat], g.CurrentTrick.LeadingSuit)
		if len(legal) == 0 {
			t.Fatalf("Seat %d has no legal plays with %d cards left", seat, len(g.Hands[seat]))
		}
		if _, err := svc.PlayCard(g, seat, legal[0]); err != nil {
			t.Fatalf("Seat %d playing %v: %v", seat, legal[0], err)
		}
	}

	if g.Phase != domain.PhaseRoundEnd && g.Phase != domain.PhaseGameOver {
		t.Fatalf("Round did not finish, phase %s", g.Phase)
	}
	if len(g.CompletedTricks) != domain.TricksPerRound {
		t.Fatalf("Expected %d archived tricks, got %d", domain.TricksPerRound, len(g.CompletedTricks))
	}
	if g.Team1Tricks+g.Team2Tricks != domain.TricksPerRound {
		t.Fatalf("Trick counters sum to %d, want %d", g.Team1Tricks+g.Team2Tricks, domain.TricksPerRound)
	}
	for seat := 1; seat <= 4; seat++ {
		if len(g.Hands[seat]) != 0 {
			t.Fatalf("Seat %d still holds %d cards", seat, len(g.Hands[seat]))
		}
	}
}
