package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"tarneeb/internal/domain"
	"tarneeb/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	storageCollectionRooms  = "rooms"
	storageCollectionTricks = "tricks"
)

// StorageGameStore implements ports.GameStore on Nakama's storage engine.
// Room aggregates live in the "rooms" collection keyed by room code; the
// trick archive lives in "tricks" under the same key. Records are system
// owned so clients cannot read hidden hands through the storage API.
type StorageGameStore struct {
	nk runtime.NakamaModule
}

// NewStorageGameStore creates a new storage-backed game store.
func NewStorageGameStore(nk runtime.NakamaModule) *StorageGameStore {
	return &StorageGameStore{nk: nk}
}

// Save writes the full room record under its room code.
func (s *StorageGameStore) Save(ctx context.Context, roomCode string, record *ports.RoomRecord) error {
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal room %s: %w", roomCode, err)
	}

	_, err = s.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      storageCollectionRooms,
		Key:             roomCode,
		Value:           string(value),
		PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}})
	if err != nil {
		return fmt.Errorf("failed to write room %s: %w", roomCode, err)
	}
	return nil
}

// Load reads a previously saved room record. The second return is false
// when no record exists for the code.
func (s *StorageGameStore) Load(ctx context.Context, roomCode string) (*ports.RoomRecord, bool, error) {
	records, err := s.nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: storageCollectionRooms,
		Key:        roomCode,
	}})
	if err != nil {
		return nil, false, fmt.Errorf("failed to read room %s: %w", roomCode, err)
	}
	if len(records) == 0 {
		return nil, false, nil
	}

	var record ports.RoomRecord
	if err := json.Unmarshal([]byte(records[0].Value), &record); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal room %s: %w", roomCode, err)
	}
	return &record, true, nil
}

// Delete removes the room record. The trick archive stays behind as history;
// only the aggregate record gates code reuse.
func (s *StorageGameStore) Delete(ctx context.Context, roomCode string) error {
	err := s.nk.StorageDelete(ctx, []*runtime.StorageDelete{{
		Collection: storageCollectionRooms,
		Key:        roomCode,
	}})
	if err != nil {
		return fmt.Errorf("failed to delete room %s: %w", roomCode, err)
	}
	return nil
}

// AppendCompletedTrick adds one resolved trick to the room's archive.
func (s *StorageGameStore) AppendCompletedTrick(ctx context.Context, roomCode string, trick domain.CompletedTrick) error {
	archive, err := s.readTrickArchive(ctx, roomCode)
	if err != nil {
		return err
	}
	archive = append(archive, trick)

	value, err := json.Marshal(archive)
	if err != nil {
		return fmt.Errorf("failed to marshal trick archive for room %s: %w", roomCode, err)
	}

	_, err = s.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      storageCollectionTricks,
		Key:             roomCode,
		Value:           string(value),
		PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}})
	if err != nil {
		return fmt.Errorf("failed to write trick archive for room %s: %w", roomCode, err)
	}
	return nil
}

func (s *StorageGameStore) readTrickArchive(ctx context.Context, roomCode string) ([]domain.CompletedTrick, error) {
	records, err := s.nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: storageCollectionTricks,
		Key:        roomCode,
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to read trick archive for room %s: %w", roomCode, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var archive []domain.CompletedTrick
	if err := json.Unmarshal([]byte(records[0].Value), &archive); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trick archive for room %s: %w", roomCode, err)
	}
	return archive, nil
}

var _ ports.GameStore = (*StorageGameStore)(nil)
