package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

type createRoomRequest struct {
	StakeTier string `json:"stake_tier"`
}

type createRoomResponse struct {
	MatchID  string `json:"match_id"`
	RoomCode string `json:"room_code"`
}

type joinRoomRequest struct {
	RoomCode string `json:"room_code"`
}

type joinRoomResponse struct {
	MatchID  string `json:"match_id"`
	RoomCode string `json:"room_code"`
}

// RpcCreateRoom creates a new room and returns its match ID and shareable
// code. The code is minted here and checked against live rooms so two rooms
// never advertise the same code.
func RpcCreateRoom(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req createRoomRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("invalid payload", 3)
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	store := NewStorageGameStore(nk)
	code := ""
	for attempt := 0; attempt < 10; attempt++ {
		candidate := generateRoomCode(rng)
		matches, err := listRoomsByCode(ctx, nk, candidate)
		if err != nil {
			logger.Error("RpcCreateRoom: Failed to check code %s: %v", candidate, err)
			return "", runtime.NewError("failed to create room", 13)
		}
		if len(matches) > 0 {
			continue
		}
		// A crashed room may have left a record behind. Minting its code
		// would resume that stale state into the fresh match, so the code
		// must be free in storage as well as in the live registry.
		_, found, err := store.Load(ctx, candidate)
		if err != nil {
			logger.Error("RpcCreateRoom: Failed to check saved rooms for %s: %v", candidate, err)
			return "", runtime.NewError("failed to create room", 13)
		}
		if !found {
			code = candidate
			break
		}
	}
	if code == "" {
		return "", runtime.NewError("failed to allocate a room code", 13)
	}

	params := map[string]interface{}{"room_code": code}
	if req.StakeTier != "" {
		params["stake_tier"] = req.StakeTier
	}
	matchID, err := nk.MatchCreate(ctx, MatchNameTarneeb, params)
	if err != nil {
		logger.Error("RpcCreateRoom: Failed to create match: %v", err)
		return "", runtime.NewError("failed to create room", 13)
	}

	resp, err := json.Marshal(createRoomResponse{MatchID: matchID, RoomCode: code})
	if err != nil {
		return "", runtime.NewError("failed to marshal response", 13)
	}
	return string(resp), nil
}

// RpcJoinRoom resolves a room code to its match ID. A code matching more
// than one live room indicates registry corruption and is reported rather
// than resolved arbitrarily.
func RpcJoinRoom(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req joinRoomRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("invalid payload", 3)
	}
	if req.RoomCode == "" {
		return "", runtime.NewError("room_code is required", 3)
	}

	matches, err := listRoomsByCode(ctx, nk, req.RoomCode)
	if err != nil {
		logger.Error("RpcJoinRoom: Failed to list rooms: %v", err)
		return "", runtime.NewError("failed to look up room", 13)
	}
	if len(matches) == 0 {
		return "", runtime.NewError("room not found", 5)
	}
	if len(matches) > 1 {
		logger.Error("RpcJoinRoom: Room code %s matched %d rooms.", req.RoomCode, len(matches))
		return "", runtime.NewError("room code is ambiguous", 13)
	}

	resp, err := json.Marshal(joinRoomResponse{MatchID: matches[0].MatchId, RoomCode: req.RoomCode})
	if err != nil {
		return "", runtime.NewError("failed to marshal response", 13)
	}
	return string(resp), nil
}

// RpcQuickMatch places the caller in an open lobby, creating one when none
// is waiting.
func RpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	query := fmt.Sprintf("+label.game:%s +label.open:true", "tarneeb")
	limit := 1
	authoritative := true
	matches, err := nk.MatchList(ctx, limit, authoritative, "", nil, nil, query)
	if err != nil {
		logger.Error("RpcQuickMatch: Failed to list rooms: %v", err)
		return "", runtime.NewError("failed to find a room", 13)
	}

	if len(matches) > 0 {
		var label roomLabel
		if err := json.Unmarshal([]byte(matches[0].Label.Value), &label); err != nil {
			logger.Error("RpcQuickMatch: Failed to parse label: %v", err)
			return "", runtime.NewError("failed to find a room", 13)
		}
		resp, err := json.Marshal(joinRoomResponse{MatchID: matches[0].MatchId, RoomCode: label.Code})
		if err != nil {
			return "", runtime.NewError("failed to marshal response", 13)
		}
		return string(resp), nil
	}

	return RpcCreateRoom(ctx, logger, db, nk, payload)
}

func listRoomsByCode(ctx context.Context, nk runtime.NakamaModule, code string) ([]*api.Match, error) {
	query := fmt.Sprintf("+label.code:%s", code)
	limit := 10
	authoritative := true
	return nk.MatchList(ctx, limit, authoritative, "", nil, nil, query)
}
