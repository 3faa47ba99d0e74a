package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"tarneeb/internal/app"
	"tarneeb/internal/bot"
	"tarneeb/internal/config"
	"tarneeb/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// processBots runs once per tick. It backfills a waiting lobby with bot
// players and, when it is a bot's turn to act, plays that bot's move after a
// short humanizing delay. Bot moves go through the same apply path as human
// messages, so they obey every rule and persistence guarantee.
func (mh *matchHandler) processBots(ctx context.Context, s *matchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	mh.autoFillLobby(ctx, s, dispatcher, logger)

	seat := actingSeat(s.Game)
	if seat == 0 {
		s.BotActAtTick = 0
		return
	}
	agent, ok := s.Bots[s.Seats[seat-1]]
	if !ok {
		s.BotActAtTick = 0
		return
	}

	if s.BotActAtTick == 0 || s.BotActSeat != seat {
		min, max := config.BotDelayBounds()
		delay := min
		if max > min {
			delay += s.rng.Intn(max - min + 1)
		}
		s.BotActAtTick = s.Tick + int64(delay)*tickRate
		s.BotActSeat = seat
		return
	}
	if s.Tick < s.BotActAtTick {
		return
	}
	s.BotActAtTick = 0

	switch s.Game.Phase {
	case domain.PhaseBidding:
		amount, pass := agent.Strategy.ChooseBid(s.Game, seat)
		mh.apply(ctx, s, dispatcher, logger, "", func(g *domain.Game) ([]app.Event, error) {
			return s.App.PlaceBid(g, seat, amount, pass)
		})
	case domain.PhaseTrumpSelection:
		suit := agent.Strategy.ChooseTrump(s.Game, seat)
		mh.apply(ctx, s, dispatcher, logger, "", func(g *domain.Game) ([]app.Event, error) {
			return s.App.SelectTrump(g, seat, suit)
		})
	case domain.PhasePlaying:
		card := agent.Strategy.ChooseCard(s.Game, seat)
		mh.apply(ctx, s, dispatcher, logger, "", func(g *domain.Game) ([]app.Event, error) {
			return s.App.PlayCard(g, seat, card)
		})
	}
}

// autoFillLobby seats one bot per elapsed delay window once humans have been
// waiting with empty seats. Filling the last seat starts the game.
func (mh *matchHandler) autoFillLobby(ctx context.Context, s *matchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if s.Game.Phase != domain.PhaseLobby || openSeatCount(s) == 0 || !hasHumanPresence(s) {
		s.SoloSinceTick = 0
		return
	}
	if s.SoloSinceTick == 0 {
		s.SoloSinceTick = s.Tick
		return
	}
	if s.Tick-s.SoloSinceTick < int64(config.BotAutoFillDelaySeconds())*tickRate {
		return
	}
	s.SoloSinceTick = s.Tick

	seat := 0
	for i, uid := range s.Seats {
		if uid == "" {
			seat = i + 1
			break
		}
	}
	if seat == 0 {
		return
	}

	identity := bot.GetIdentity(len(s.Bots))
	botID := fmt.Sprintf("%s%s-%d", bot.UserIDPrefix, s.RoomCode, seat)
	agent := bot.NewAgent(botID, identity.Name, bot.LevelSmart, s.rng)
	s.Bots[botID] = agent
	s.Seats[seat-1] = botID
	s.Names[seat-1] = identity.Name
	logger.Info("autoFillLobby: Seated bot %s (%s) at seat %d in room %s", identity.Name, botID, seat, s.RoomCode)

	payload, _ := json.Marshal(playerJoinedPayload{
		UserID: botID,
		Name:   identity.Name,
		Seat:   seat,
		Team:   domain.TeamOfSeat(seat),
		Host:   false,
	})
	dispatcher.BroadcastMessage(OpPlayerJoined, payload, nil, nil, true)

	if openSeatCount(s) == 0 {
		mh.apply(ctx, s, dispatcher, logger, "", s.App.StartRound)
	}
	mh.updateLabel(s, dispatcher, logger)
}

// actingSeat reports whose turn it is, or 0 when no single seat is expected
// to act in the current phase.
func actingSeat(g *domain.Game) int {
	switch g.Phase {
	case domain.PhaseBidding, domain.PhaseTrumpSelection, domain.PhasePlaying:
		return g.CurrentPlayer
	}
	return 0
}
