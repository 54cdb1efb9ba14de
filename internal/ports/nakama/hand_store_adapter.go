package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"bigtwo/internal/domain"
	"bigtwo/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaHandStore implements ports.HandStore over Nakama storage. Hand rows
// are owned by the player and readable only by them, so the runtime's own
// permission layer keeps hands private.
type NakamaHandStore struct {
	nk runtime.NakamaModule
}

// NewNakamaHandStore creates a new hand store adapter.
func NewNakamaHandStore(nk runtime.NakamaModule) *NakamaHandStore {
	return &NakamaHandStore{nk: nk}
}

func (s *NakamaHandStore) Get(ctx context.Context, roomID, userID string) (*domain.PlayerHand, string, error) {
	value, version, err := readObject(ctx, s.nk, collectionPlayerHands, roomID, userID)
	if err != nil {
		return nil, "", err
	}
	var hand domain.PlayerHand
	if err := json.Unmarshal([]byte(value), &hand); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal hand %s/%s: %w", roomID, userID, err)
	}
	return &hand, version, nil
}

func (s *NakamaHandStore) Put(ctx context.Context, userID string, hand *domain.PlayerHand, version string) error {
	value, err := json.Marshal(hand)
	if err != nil {
		return fmt.Errorf("failed to marshal hand %s/%s: %w", hand.RoomID, userID, err)
	}
	return writeObjects(ctx, s.nk, []*runtime.StorageWrite{{
		Collection:      collectionPlayerHands,
		Key:             hand.RoomID,
		UserID:          userID,
		Value:           string(value),
		Version:         storageVersion(version),
		PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}})
}

func (s *NakamaHandStore) Delete(ctx context.Context, roomID, userID string) error {
	return deleteObjects(ctx, s.nk, []*runtime.StorageDelete{
		{Collection: collectionPlayerHands, Key: roomID, UserID: userID},
	})
}

var _ ports.HandStore = (*NakamaHandStore)(nil)
