package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"bigtwo/internal/domain"
	"bigtwo/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaRosterStore implements ports.RosterStore over Nakama storage, one
// record per seat keyed by player id.
type NakamaRosterStore struct {
	nk runtime.NakamaModule
}

// NewNakamaRosterStore creates a new roster store adapter.
func NewNakamaRosterStore(nk runtime.NakamaModule) *NakamaRosterStore {
	return &NakamaRosterStore{nk: nk}
}

func (s *NakamaRosterStore) Get(ctx context.Context, playerID string) (*domain.RoomPlayer, string, error) {
	value, version, err := readObject(ctx, s.nk, collectionRoomPlayers, playerID, systemOwner)
	if err != nil {
		return nil, "", err
	}
	var player domain.RoomPlayer
	if err := json.Unmarshal([]byte(value), &player); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal roster record %s: %w", playerID, err)
	}
	return &player, version, nil
}

func (s *NakamaRosterStore) Put(ctx context.Context, player *domain.RoomPlayer, version string) error {
	value, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("failed to marshal roster record %s: %w", player.ID, err)
	}
	return writeObjects(ctx, s.nk, []*runtime.StorageWrite{{
		Collection:      collectionRoomPlayers,
		Key:             player.ID,
		UserID:          systemOwner,
		Value:           string(value),
		Version:         storageVersion(version),
		PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}})
}

func (s *NakamaRosterStore) Delete(ctx context.Context, playerID string) error {
	return deleteObjects(ctx, s.nk, []*runtime.StorageDelete{
		{Collection: collectionRoomPlayers, Key: playerID, UserID: systemOwner},
	})
}

var _ ports.RosterStore = (*NakamaRosterStore)(nil)
