package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"tarneeb/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

type voiceTokenRequest struct {
	Action   string `json:"action"` // "login" or "join"
	RoomCode string `json:"room_code"`
}

type voiceTokenResponse struct {
	Token string `json:"token"`
}

// RpcVoiceToken signs a voice token for the calling user. Join tokens are
// scoped to one room's voice channel by room code.
func RpcVoiceToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		return "", runtime.NewError("user not authenticated", 16)
	}

	var req voiceTokenRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("invalid payload", 3)
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	service := app.NewVoiceService(env["voice_secret"], env["voice_issuer"], env["voice_domain"])

	token, err := service.GenerateToken(userID, req.Action, req.RoomCode)
	if err != nil {
		logger.Error("RpcVoiceToken: Failed to generate token for %s: %v", userID, err)
		return "", runtime.NewError("failed to generate voice token", 13)
	}

	resp, err := json.Marshal(voiceTokenResponse{Token: token})
	if err != nil {
		return "", runtime.NewError("failed to marshal response", 13)
	}
	return string(resp), nil
}
