package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs, hooks and the match handler into the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameTarneeb, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(), nil
	}); err != nil {
		return err
	}

	logger.Info("Tarneeb Go module loaded.")
	return nil
}

// RegisterRPCs registers every RPC endpoint of the module.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcIdCreateRoom, RpcCreateRoom); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcIdJoinRoom, RpcJoinRoom); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcIdQuickMatch, RpcQuickMatch); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcIdVoiceToken, RpcVoiceToken); err != nil {
		return err
	}
	return nil
}
