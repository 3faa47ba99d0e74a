package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"time"

	"tarneeb/internal/app"
	"tarneeb/internal/bot"
	"tarneeb/internal/config"
	"tarneeb/internal/domain"
	"tarneeb/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// roomCodeAlphabet is the character set for shareable room codes.
const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// roomCodeLength is the fixed length of a room code.
const roomCodeLength = 6

// tickRate is MatchLoop invocations per second. Timer-driven transitions are
// armed in tick units so they ride the same serialized loop as player actions.
const tickRate = 1

// matchState holds the authoritative runtime state for one room. Nakama runs
// all handler callbacks for a match on a single goroutine, which is the
// per-room serialization gate: player messages and timer transitions are
// applied one at a time, in arrival order.
type matchState struct {
	RoomCode   string                      `json:"room_code"`
	Seats      [4]string                   `json:"seats"` // user IDs; index i is seat i+1
	Names      [4]string                   `json:"names"`
	HostUserID string                      `json:"host_user_id"`
	StakeTier  string                      `json:"stake_tier"`
	Tick       int64                       `json:"tick"`
	Presences  map[string]runtime.Presence `json:"-"`
	App        *app.Service                `json:"-"`
	Game       *domain.Game                `json:"-"`
	Store      ports.GameStore             `json:"-"`
	Economy    ports.EconomyPort           `json:"-"`

	// Scheduled transitions, as absolute ticks; 0 means unarmed.
	OpenBiddingAtTick int64 `json:"open_bidding_at_tick"`
	NextRoundAtTick   int64 `json:"next_round_at_tick"`

	BotsEnabled   bool                  `json:"bots_enabled"`
	Bots          map[string]*bot.Agent `json:"-"`
	BotActAtTick  int64                 `json:"bot_act_at_tick"`
	BotActSeat    int                   `json:"bot_act_seat"`
	SoloSinceTick int64                 `json:"solo_since_tick"`

	rng *rand.Rand
}

// roomLabel is advertised through the match label so RPCs can find rooms by
// code and quick-match can find open lobbies.
type roomLabel struct {
	Code  string `json:"code"`
	Open  bool   `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

type placeBidRequest struct {
	Amount int  `json:"amount"`
	Pass   bool `json:"pass"`
}

type selectTrumpRequest struct {
	Suit domain.Suit `json:"suit"`
}

type playCardRequest struct {
	Card domain.Card `json:"card"`
}

type gameErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type playerJoinedPayload struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Seat   int    `json:"seat"`
	Team   int    `json:"team"`
	Host   bool   `json:"host"`
}

type playerLeftPayload struct {
	UserID string `json:"user_id"`
	Seat   int    `json:"seat"`
}

func newMatchHandler() runtime.Match {
	return &matchHandler{}
}

type matchHandler struct{}

// MatchInit creates the room: fresh aggregate, generated room code, lobby
// label. When params carry a room code with persisted state, the saved
// aggregate is replayed instead (re-attachment).
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}
	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	state := &matchState{
		Presences: make(map[string]runtime.Presence),
		App:       app.NewService(rng),
		Game:      domain.NewGame(),
		Store:     NewStorageGameStore(nk),
		Economy:   NewNakamaEconomyAdapter(nk),
		Bots:      make(map[string]*bot.Agent),
		rng:       rng,
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["tarneeb_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}

	if code, ok := params["room_code"].(string); ok && code != "" {
		state.RoomCode = code
		if record, found, err := state.Store.Load(ctx, code); err != nil {
			logger.Error("MatchInit: Failed to load saved room %s: %v", code, err)
		} else if found && record.Game != nil {
			mh.resume(state, record)
			logger.Info("MatchInit: Resumed room %s (phase %s)", code, record.Game.Phase)
		}
	} else {
		state.RoomCode = generateRoomCode(rng)
	}
	if tier, ok := params["stake_tier"].(string); ok {
		state.StakeTier = tier
	}

	labelBytes, err := json.Marshal(buildLabel(state))
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	return state, tickRate, string(labelBytes)
}

// resume re-attaches a room from its persisted record. Seating must come
// back with the aggregate or the room would turn away its own players; bot
// seats get fresh agents and the current phase's deferred deadline is
// re-armed so a room saved in dealing or round_end does not stall forever.
func (mh *matchHandler) resume(s *matchState, record *ports.RoomRecord) {
	s.Seats = record.Seats
	s.Names = record.Names
	s.HostUserID = record.HostUserID
	s.StakeTier = record.StakeTier
	s.Game = record.Game
	for i, uid := range s.Seats {
		if bot.IsBot(uid) {
			s.Bots[uid] = bot.NewAgent(uid, s.Names[i], bot.LevelSmart, s.rng)
		}
	}
	mh.armTimers(s)
}

// MatchJoinAttempt enforces the join surface: seats fill in join order, joins
// are rejected once 4 seats are taken or the room has left the lobby. Seated
// users may always rejoin.
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	s, ok := state.(*matchState)
	if !ok {
		return state, false, "state not found"
	}

	if seatOfUser(s, presence.GetUserId()) != 0 {
		return s, true, ""
	}
	if s.Game.Phase != domain.PhaseLobby {
		return s, false, "room already started"
	}
	if openSeatCount(s) == 0 && !hasBotSeat(s) {
		return s, false, "room full"
	}

	return s, true, ""
}

// MatchJoin assigns the next free seat, fixes the team by seat parity and
// designates the first joiner as host. Filling the 4th seat deals the first
// round.
func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	s, ok := state.(*matchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}
	s.Tick = tick

	for _, p := range presences {
		uid := p.GetUserId()
		s.Presences[uid] = p

		if seatOfUser(s, uid) != 0 {
			continue // rejoin keeps the original seat
		}

		seat := 0
		for i, occupant := range s.Seats {
			if occupant == "" {
				seat = i + 1
				break
			}
		}
		if seat == 0 && s.Game.Phase == domain.PhaseLobby {
			// A human displaces a bot that was only holding the seat open.
			for i, occupant := range s.Seats {
				if bot.IsBot(occupant) {
					delete(s.Bots, occupant)
					seat = i + 1
					break
				}
			}
		}
		if seat == 0 {
			logger.Warn("MatchJoin: User %s joined but no seat was available.", uid)
			continue
		}

		s.Seats[seat-1] = uid
		s.Names[seat-1] = p.GetUsername()
		if s.HostUserID == "" {
			s.HostUserID = uid
		}

		payload, _ := json.Marshal(playerJoinedPayload{
			UserID: uid,
			Name:   p.GetUsername(),
			Seat:   seat,
			Team:   domain.TeamOfSeat(seat),
			Host:   uid == s.HostUserID,
		})
		dispatcher.BroadcastMessage(OpPlayerJoined, payload, nil, nil, true)
	}

	if s.Game.Phase == domain.PhaseLobby && openSeatCount(s) == 0 {
		mh.apply(ctx, s, dispatcher, logger, "", s.App.StartRound)
	}

	mh.updateLabel(s, dispatcher, logger)
	return s
}

// MatchLeave removes presences. In the lobby the seat frees up; mid-game the
// seat stays reserved so the user can rejoin. The match terminates when no
// humans remain.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	s, ok := state.(*matchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		uid := p.GetUserId()
		delete(s.Presences, uid)

		seat := seatOfUser(s, uid)
		if seat == 0 {
			continue
		}
		if s.Game.Phase == domain.PhaseLobby {
			s.Seats[seat-1] = ""
			s.Names[seat-1] = ""
		}

		payload, _ := json.Marshal(playerLeftPayload{UserID: uid, Seat: seat})
		dispatcher.BroadcastMessage(OpPlayerLeft, payload, nil, nil, true)

		if s.HostUserID == uid {
			s.HostUserID = firstHumanPresent(s)
		}
	}

	if !hasHumanPresence(s) {
		logger.Info("MatchLeave: Terminating room %s with no humans.", s.RoomCode)
		if s.Store != nil {
			// Clear the record so the code can be minted again and no new
			// match ever resumes this abandoned room.
			if err := s.Store.Delete(ctx, s.RoomCode); err != nil {
				logger.Error("MatchLeave: Failed to delete saved room %s: %v", s.RoomCode, err)
			}
		}
		return nil
	}

	mh.updateLabel(s, dispatcher, logger)
	return s
}

// MatchLoop drains player messages and fires any due scheduled transitions.
// Both paths run through apply and therefore compete under the identical
// serialization rule; whichever Nakama delivers first executes to completion
// before the next is evaluated against the now-current state.
func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	s, ok := state.(*matchState)
	if !ok {
		return state
	}
	s.Tick = tick

	for _, msg := range messages {
		mh.handleMessage(ctx, s, dispatcher, logger, msg)
	}

	if s.OpenBiddingAtTick != 0 && tick >= s.OpenBiddingAtTick {
		s.OpenBiddingAtTick = 0
		mh.apply(ctx, s, dispatcher, logger, "", s.App.OpenBidding)
	}
	if s.NextRoundAtTick != 0 && tick >= s.NextRoundAtTick {
		s.NextRoundAtTick = 0
		mh.apply(ctx, s, dispatcher, logger, "", s.App.StartRound)
	}

	if s.BotsEnabled {
		mh.processBots(ctx, s, dispatcher, logger)
	}

	return s
}

func (mh *matchHandler) handleMessage(ctx context.Context, s *matchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	uid := msg.GetUserId()
	seat := seatOfUser(s, uid)
	if seat == 0 {
		logger.Warn("MatchLoop: Message from %s who holds no seat.", uid)
		return
	}

	switch msg.GetOpCode() {
	case OpPlaceBid:
		var req placeBidRequest
		if err := json.Unmarshal(msg.GetData(), &req); err != nil {
			mh.sendError(s, dispatcher, logger, uid, 400, "malformed bid request")
			return
		}
		mh.apply(ctx, s, dispatcher, logger, uid, func(g *domain.Game) ([]app.Event, error) {
			return s.App.PlaceBid(g, seat, req.Amount, req.Pass)
		})

	case OpSelectTrump:
		var req selectTrumpRequest
		if err := json.Unmarshal(msg.GetData(), &req); err != nil {
			mh.sendError(s, dispatcher, logger, uid, 400, "malformed trump request")
			return
		}
		mh.apply(ctx, s, dispatcher, logger, uid, func(g *domain.Game) ([]app.Event, error) {
			return s.App.SelectTrump(g, seat, req.Suit)
		})

	case OpPlayCard:
		var req playCardRequest
		if err := json.Unmarshal(msg.GetData(), &req); err != nil {
			mh.sendError(s, dispatcher, logger, uid, 400, "malformed play request")
			return
		}
		mh.apply(ctx, s, dispatcher, logger, uid, func(g *domain.Game) ([]app.Event, error) {
			return s.App.PlayCard(g, seat, req.Card)
		})

	default:
		logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
	}
}

// apply runs one transition against the room aggregate, persists the result
// and dispatches its events. Store failure rolls the aggregate back to the
// pre-transition snapshot and surfaces an error to the actor: persistence
// loss is never masked as success. actorUserID is empty for timer-driven
// transitions.
func (mh *matchHandler) apply(ctx context.Context, s *matchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, actorUserID string, fn func(*domain.Game) ([]app.Event, error)) bool {
	snapshot := s.Game.Clone()

	events, err := fn(s.Game)
	if err != nil {
		if actorUserID != "" {
			mh.sendError(s, dispatcher, logger, actorUserID, 400, err.Error())
		} else {
			logger.Error("apply: Scheduled transition rejected: %v", err)
		}
		return false
	}

	if err := mh.persist(ctx, s, events); err != nil {
		s.Game = snapshot
		logger.Error("apply: Failed to persist room %s: %v", s.RoomCode, err)
		if actorUserID != "" {
			mh.sendError(s, dispatcher, logger, actorUserID, 500, "room state could not be saved")
		}
		return false
	}

	mh.dispatchEvents(ctx, s, dispatcher, logger, events)
	mh.armTimers(s)
	mh.updateLabel(s, dispatcher, logger)
	return true
}

func (mh *matchHandler) persist(ctx context.Context, s *matchState, events []app.Event) error {
	if s.Store == nil {
		return nil
	}
	for _, ev := range events {
		if ev.Kind != app.EventTrickCompleted {
			continue
		}
		payload := ev.Payload.(app.TrickCompletedPayload)
		if err := s.Store.AppendCompletedTrick(ctx, s.RoomCode, payload.Trick); err != nil {
			return err
		}
	}
	return s.Store.Save(ctx, s.RoomCode, &ports.RoomRecord{
		Seats:      s.Seats,
		Names:      s.Names,
		HostUserID: s.HostUserID,
		StakeTier:  s.StakeTier,
		Game:       s.Game,
	})
}

// armTimers schedules the phase's deferred transition, if any. The deadlines
// fire inside MatchLoop and so obey the same consistency rules as player
// actions.
func (mh *matchHandler) armTimers(s *matchState) {
	switch s.Game.Phase {
	case domain.PhaseDealing:
		s.OpenBiddingAtTick = s.Tick + int64(config.DealDelaySeconds())*tickRate
		s.NextRoundAtTick = 0
	case domain.PhaseRoundEnd:
		s.NextRoundAtTick = s.Tick + int64(config.RoundEndDelaySeconds())*tickRate
		s.OpenBiddingAtTick = 0
	default:
		s.OpenBiddingAtTick = 0
		s.NextRoundAtTick = 0
	}
}

// dispatchEvents converts app events to wire messages. Events with recipient
// seats resolve to those seats' presences and are never broadcast wider; hand
// contents therefore reach only their owner.
func (mh *matchHandler) dispatchEvents(ctx context.Context, s *matchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		opCode, ok := opCodeForEvent(ev.Kind)
		if !ok {
			logger.Warn("dispatchEvents: Unknown event kind: %v", ev.Kind)
			continue
		}

		data, err := json.Marshal(ev.Payload)
		if err != nil {
			logger.Error("dispatchEvents: Failed to marshal %v: %v", ev.Kind, err)
			continue
		}

		var recipients []runtime.Presence
		if len(ev.RecipientSeats) > 0 {
			for _, seat := range ev.RecipientSeats {
				uid := s.Seats[seat-1]
				if p, ok := s.Presences[uid]; ok {
					recipients = append(recipients, p)
				}
			}
			// Targeted events with no connected recipient (a bot's hand)
			// must not leak to the rest of the room.
			if len(recipients) == 0 {
				continue
			}
		}

		dispatcher.BroadcastMessage(opCode, data, recipients, nil, true)

		if ev.Kind == app.EventGameEnded {
			mh.awardWinners(ctx, s, logger, ev.Payload.(app.GameEndedPayload))
		}
	}
}

// awardWinners grants the configured stake reward to each human on the
// winning team.
func (mh *matchHandler) awardWinners(ctx context.Context, s *matchState, logger runtime.Logger, payload app.GameEndedPayload) {
	if s.Economy == nil {
		return
	}
	reward := config.GetReward(s.StakeTier)
	var updates []ports.WalletUpdate
	for i, uid := range s.Seats {
		if uid == "" || bot.IsBot(uid) {
			continue
		}
		if domain.TeamOfSeat(i+1) != payload.WinnerTeam {
			continue
		}
		updates = append(updates, ports.WalletUpdate{
			UserID: uid,
			Amount: reward,
			Metadata: map[string]interface{}{
				"room_code": s.RoomCode,
				"reason":    "game_reward",
			},
		})
	}
	if len(updates) == 0 {
		return
	}
	if err := s.Economy.UpdateBalances(ctx, updates); err != nil {
		logger.Error("awardWinners: Failed to update balances: %v", err)
	}
}

// sendError reports a rejected action to the offending sender only.
func (mh *matchHandler) sendError(s *matchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	presence, ok := s.Presences[userID]
	if !ok {
		logger.Warn("sendError: Presence for %s not found", userID)
		return
	}
	data, err := json.Marshal(gameErrorPayload{Code: code, Message: message})
	if err != nil {
		logger.Error("sendError: Failed to marshal: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(s *matchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	labelBytes, err := json.Marshal(buildLabel(s))
	if err != nil {
		logger.Error("updateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("updateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Room terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}

func opCodeForEvent(kind app.EventKind) (int64, bool) {
	switch kind {
	case app.EventDealStarted:
		return OpDealStarted, true
	case app.EventHandDealt:
		return OpHandDealt, true
	case app.EventBiddingOpened:
		return OpBiddingOpened, true
	case app.EventBidPlaced:
		return OpBidPlaced, true
	case app.EventBiddingWon:
		return OpBiddingWon, true
	case app.EventRedeal:
		return OpRedeal, true
	case app.EventTrumpSelected:
		return OpTrumpSelected, true
	case app.EventCardPlayed:
		return OpCardPlayed, true
	case app.EventTrickCompleted:
		return OpTrickCompleted, true
	case app.EventRoundEnded:
		return OpRoundEnded, true
	case app.EventGameEnded:
		return OpGameEnded, true
	}
	return 0, false
}

func buildLabel(s *matchState) roomLabel {
	return roomLabel{
		Code:  s.RoomCode,
		Open:  s.Game.Phase == domain.PhaseLobby && openSeatCount(s) > 0,
		Game:  "tarneeb",
		Phase: string(s.Game.Phase),
	}
}

func generateRoomCode(rng *rand.Rand) string {
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = roomCodeAlphabet[rng.Intn(len(roomCodeAlphabet))]
	}
	return string(code)
}

func seatOfUser(s *matchState, userID string) int {
	if userID == "" {
		return 0
	}
	for i, uid := range s.Seats {
		if uid == userID {
			return i + 1
		}
	}
	return 0
}

func openSeatCount(s *matchState) int {
	count := 0
	for _, uid := range s.Seats {
		if uid == "" {
			count++
		}
	}
	return count
}

func hasBotSeat(s *matchState) bool {
	for _, uid := range s.Seats {
		if bot.IsBot(uid) {
			return true
		}
	}
	return false
}

func hasHumanPresence(s *matchState) bool {
	for uid := range s.Presences {
		if !bot.IsBot(uid) {
			return true
		}
	}
	return false
}

func firstHumanPresent(s *matchState) string {
	for _, uid := range s.Seats {
		if uid == "" || bot.IsBot(uid) {
			continue
		}
		if _, ok := s.Presences[uid]; ok {
			return uid
		}
	}
	return ""
}
