package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"bigtwo/internal/domain"
	"bigtwo/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaGameStateStore implements ports.GameStateStore over Nakama storage,
// one record per room keyed by room id. The storage engine's version check
// is what arbitrates racing turn transitions.
type NakamaGameStateStore struct {
	nk runtime.NakamaModule
}

// NewNakamaGameStateStore creates a new game state store adapter.
func NewNakamaGameStateStore(nk runtime.NakamaModule) *NakamaGameStateStore {
	return &NakamaGameStateStore{nk: nk}
}

func (s *NakamaGameStateStore) Get(ctx context.Context, roomID string) (*domain.GameState, string, error) {
	value, version, err := readObject(ctx, s.nk, collectionGameStates, roomID, systemOwner)
	if err != nil {
		return nil, "", err
	}
	var state domain.GameState
	if err := json.Unmarshal([]byte(value), &state); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal game state %s: %w", roomID, err)
	}
	return &state, version, nil
}

func (s *NakamaGameStateStore) Put(ctx context.Context, state *domain.GameState, version string) error {
	value, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal game state %s: %w", state.RoomID, err)
	}
	return writeObjects(ctx, s.nk, []*runtime.StorageWrite{{
		Collection:      collectionGameStates,
		Key:             state.RoomID,
		UserID:          systemOwner,
		Value:           string(value),
		Version:         storageVersion(version),
		PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}})
}

func (s *NakamaGameStateStore) List(ctx context.Context, limit int, cursor string) ([]*domain.GameState, string, error) {
	objects, next, err := s.nk.StorageList(ctx, "", systemOwner, collectionGameStates, limit, cursor)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list game states: %w", err)
	}
	states := make([]*domain.GameState, 0, len(objects))
	for _, object := range objects {
		var state domain.GameState
		if err := json.Unmarshal([]byte(object.Value), &state); err != nil {
			return nil, "", fmt.Errorf("failed to unmarshal game state %s: %w", object.Key, err)
		}
		states = append(states, &state)
	}
	return states, next, nil
}

func (s *NakamaGameStateStore) Delete(ctx context.Context, roomID string) error {
	return deleteObjects(ctx, s.nk, []*runtime.StorageDelete{
		{Collection: collectionGameStates, Key: roomID, UserID: systemOwner},
	})
}

var _ ports.GameStateStore = (*NakamaGameStateStore)(nil)
