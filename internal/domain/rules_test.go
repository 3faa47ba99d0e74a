package domain

import "testing"

func TestIsLegalPlay(t *testing.T) {
	hand := []Card{
		{Suit: Hearts, Rank: 4},
		{Suit: Hearts, Rank: King},
		{Suit: Clubs, Rank: 9},
	}

	tests := []struct {
		name        string
		card        Card
		leadingSuit Suit
		want        bool
	}{
		{"LeadingAnyCard", Card{Suit: Clubs, Rank: 9}, "", true},
		{"FollowsSuit", Card{Suit: Hearts, Rank: 4}, Hearts, true},
		{"VoidInLeadingSuit", Card{Suit: Hearts, Rank: 4}, Diamonds, true},
		{"RefusesToFollow", Card{Suit: Clubs, Rank: 9}, Hearts, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLegalPlay(tt.card, hand, tt.leadingSuit); got != tt.want {
				t.Errorf("IsLegalPlay(%v, hand, %q) = %v, want %v", tt.card, tt.leadingSuit, got, tt.want)
			}
		})
	}
}

func TestLegalPlays(t *testing.T) {
	hand := []Card{
		{Suit: Hearts, Rank: 4},
		{Suit: Clubs, Rank: 9},
		{Suit: Hearts, Rank: King},
	}

	if got := LegalPlays(hand, ""); len(got) != 3 {
		t.Errorf("Leading: expected whole hand legal, got %d cards", len(got))
	}
	if got := LegalPlays(hand, Hearts); len(got) != 2 {
		t.Errorf("Following hearts: expected 2 cards, got %d", len(got))
	}
	if got := LegalPlays(hand, Spades); len(got) != 3 {
		t.Errorf("Void in spades: expected whole hand legal, got %d cards", len(got))
	}
}

func TestTrickWinner(t *testing.T) {
	tests := []struct {
		name        string
		plays       []PlayedCard
		leadingSuit Suit
		trumpSuit   Suit
		want        int
	}{
		{
			name: "HighestOfLeadingSuit",
			plays: []PlayedCard{
				{Seat: 1, Card: Card{Suit: Hearts, Rank: 10}},
				{Seat: 2, Card: Card{Suit: Hearts, Rank: Queen}},
				{Seat: 3, Card: Card{Suit: Hearts, Rank: 3}},
				{Seat: 4, Card: Card{Suit: Hearts, Rank: Jack}},
			},
			leadingSuit: Hearts,
			trumpSuit:   Spades,
			want:        2,
		},
		{
			name: "LowTrumpBeatsAceOfLead",
			plays: []PlayedCard{
				{Seat: 1, Card: Card{Suit: Hearts, Rank: Ace}},
				{Seat: 2, Card: Card{Suit: Spades, Rank: 2}},
				{Seat: 3, Card: Card{Suit: Hearts, Rank: King}},
				{Seat: 4, Card: Card{Suit: Diamonds, Rank: Ace}},
			},
			leadingSuit: Hearts,
			trumpSuit:   Spades,
			want:        2,
		},
		{
			name: "HighestTrumpAmongSeveral",
			plays: []PlayedCard{
				{Seat: 1, Card: Card{Suit: Clubs, Rank: 7}},
				{Seat: 2, Card: Card{Suit: Spades, Rank: 9}},
				{Seat: 3, Card: Card{Suit: Spades, Rank: Queen}},
				{Seat: 4, Card: Card{Suit: Clubs, Rank: Ace}},
			},
			leadingSuit: Clubs,
			trumpSuit:   Spades,
			want:        3,
		},
		{
			name: "OffSuitNeverWins",
			plays: []PlayedCard{
				{Seat: 1, Card: Card{Suit: Diamonds, Rank: 5}},
				{Seat: 2, Card: Card{Suit: Clubs, Rank: Ace}},
				{Seat: 3, Card: Card{Suit: Hearts, Rank: Ace}},
				{Seat: 4, Card: Card{Suit: Diamonds, Rank: 6}},
			},
			leadingSuit: Diamonds,
			trumpSuit:   Spades,
			want:        4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrickWinner(tt.plays, tt.leadingSuit, tt.trumpSuit); got != tt.want {
				t.Errorf("TrickWinner() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsBiddingComplete(t *testing.T) {
	bid := func(seat, amount int) Bid { return Bid{Seat: seat, Amount: amount} }
	pass := func(seat int) Bid { return Bid{Seat: seat, Passed: true} }

	tests := []struct {
		name string
		bids []Bid
		want bool
	}{
		{"Empty", nil, false},
		{"TooFewBids", []Bid{bid(1, 7), pass(2), pass(3)}, false},
		{"OpenThenThreePasses", []Bid{bid(1, 7), pass(2), pass(3), pass(4)}, true},
		{"AllPassesNeverCompletes", []Bid{pass(1), pass(2), pass(3), pass(4)}, false},
		{"RaiseKeepsAuctionOpen", []Bid{bid(1, 7), pass(2), bid(3, 8), pass(4)}, false},
		{"LongAuctionCloses", []Bid{bid(1, 7), pass(2), bid(3, 8), pass(4), pass(1), pass(2)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBiddingComplete(tt.bids); got != tt.want {
				t.Errorf("IsBiddingComplete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllPassed(t *testing.T) {
	pass := func(seat int) Bid { return Bid{Seat: seat, Passed: true} }

	if AllPassed([]Bid{pass(1), pass(2), pass(3)}) {
		t.Error("Three passes should not be a dead auction yet")
	}
	if !AllPassed([]Bid{pass(1), pass(2), pass(3), pass(4)}) {
		t.Error("Four passes should be a dead auction")
	}
	if AllPassed([]Bid{{Seat: 1, Amount: 7}, pass(2), pass(3), pass(4)}) {
		t.Error("An opened auction is never dead")
	}
}

func TestHighestBidAndMinimumNext(t *testing.T) {
	bids := []Bid{
		{Seat: 1, Amount: 7},
		{Seat: 2, Passed: true},
		{Seat: 3, Amount: 9},
		{Seat: 4, Passed: true},
	}

	amount, seat := HighestBid(bids)
	if amount != 9 || seat != 3 {
		t.Fatalf("HighestBid() = (%d, %d), want (9, 3)", amount, seat)
	}

	if got := MinimumNextBid(0); got != MinimumOpeningBid {
		t.Errorf("MinimumNextBid(0) = %d, want %d", got, MinimumOpeningBid)
	}
	if got := MinimumNextBid(9); got != 10 {
		t.Errorf("MinimumNextBid(9) = %d, want 10", got)
	}
}

func TestSettleRound(t *testing.T) {
	tests := []struct {
		name              string
		bid               int
		biddingTricks     int
		opponentTricks    int
		wantBiddingDelta  int
		wantOpponentDelta int
	}{
		{"MadeExactly", 7, 7, 6, 7, 6},
		{"MadeWithOvertricks", 7, 10, 3, 7, 3},
		{"FailedByOne", 8, 6, 7, -16, 7},
		{"FailedBadly", 13, 5, 8, -26, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			biddingDelta, opponentDelta := SettleRound(tt.bid, tt.biddingTricks, tt.opponentTricks)
			if biddingDelta != tt.wantBiddingDelta || opponentDelta != tt.wantOpponentDelta {
				t.Errorf("SettleRound(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.bid, tt.biddingTricks, tt.opponentTricks,
					biddingDelta, opponentDelta, tt.wantBiddingDelta, tt.wantOpponentDelta)
			}
		})
	}
}

func TestGameOverWinner(t *testing.T) {
	tests := []struct {
		name   string
		team1  int
		team2  int
		winner int
	}{
		{"GameRunning", -51, -51, 0},
		{"Team1Busts", -52, 0, 2},
		{"Team2Busts", 10, -60, 1},
		{"PositiveScoresNeverEnd", 100, 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GameOverWinner(tt.team1, tt.team2); got != tt.winner {
				t.Errorf("GameOverWinner(%d, %d) = %d, want %d", tt.team1, tt.team2, got, tt.winner)
			}
		})
	}
}

func TestTeamOfSeatAndNextSeat(t *testing.T) {
	teams := map[int]int{1: 1, 2: 2, 3: 1, 4: 2}
	for seat, team := range teams {
		if got := TeamOfSeat(seat); got != team {
			t.Errorf("TeamOfSeat(%d) = %d, want %d", seat, got, team)
		}
	}

	order := map[int]int{1: 2, 2: 3, 3: 4, 4: 1}
	for seat, next := range order {
		if got := NextSeat(seat); got != next {
			t.Errorf("NextSeat(%d) = %d, want %d", seat, got, next)
		}
	}
}

func TestRemoveCard(t *testing.T) {
	hand := []Card{
		{Suit: Spades, Rank: 5},
		{Suit: Hearts, Rank: 9},
	}

	out, ok := RemoveCard(hand, Card{Suit: Spades, Rank: 5})
	if !ok || len(out) != 1 || out[0] != (Card{Suit: Hearts, Rank: 9}) {
		t.Fatalf("RemoveCard held card: got (%v, %v)", out, ok)
	}

	out, ok = RemoveCard(hand, Card{Suit: Clubs, Rank: 2})
	if ok || len(out) != 2 {
		t.Fatalf("RemoveCard missing card: got (%v, %v)", out, ok)
	}
}
