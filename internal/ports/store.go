package ports

import (
	"context"

	"tarneeb/internal/domain"
)

// RoomRecord is the durable form of a room: the rules aggregate plus the
// seating that binds user IDs to seats. Both are needed to re-attach a room
// after a restart; an aggregate without its seating cannot admit anyone.
type RoomRecord struct {
	Seats      [4]string    `json:"seats"` // user IDs; index i is seat i+1
	Names      [4]string    `json:"names"`
	HostUserID string       `json:"host_user_id"`
	StakeTier  string       `json:"stake_tier"`
	Game       *domain.Game `json:"game"`
}

// GameStore persists room state and trick history. Implementations are only
// ever called from the owning room's execution context, so writes are atomic
// with respect to the room's serialization boundary.
type GameStore interface {
	// Save durably writes the room's authoritative record.
	Save(ctx context.Context, roomCode string, record *RoomRecord) error

	// Load returns the persisted record for a room, or found=false when the
	// room has no saved state.
	Load(ctx context.Context, roomCode string) (record *RoomRecord, found bool, err error)

	// Delete removes the room's record. Called when a room ends for good so
	// its code can be minted again.
	Delete(ctx context.Context, roomCode string) error

	// AppendCompletedTrick records a resolved trick in the room's audit log.
	AppendCompletedTrick(ctx context.Context, roomCode string, trick domain.CompletedTrick) error
}
