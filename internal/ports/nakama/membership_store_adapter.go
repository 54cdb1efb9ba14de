package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"bigtwo/internal/domain"
	"bigtwo/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaMembershipStore implements ports.MembershipStore over Nakama
// storage. One row per room the user sits in, keyed by room id and owned by
// the user, so a session hook can find a user's rooms without scanning.
type NakamaMembershipStore struct {
	nk runtime.NakamaModule
}

// NewNakamaMembershipStore creates a new membership store adapter.
func NewNakamaMembershipStore(nk runtime.NakamaModule) *NakamaMembershipStore {
	return &NakamaMembershipStore{nk: nk}
}

func (s *NakamaMembershipStore) List(ctx context.Context, userID string) ([]domain.RoomMembership, error) {
	var memberships []domain.RoomMembership
	cursor := ""
	for {
		objects, next, err := s.nk.StorageList(ctx, "", userID, collectionMemberships, 100, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to list memberships for %s: %w", userID, err)
		}
		for _, object := range objects {
			var m domain.RoomMembership
			if err := json.Unmarshal([]byte(object.Value), &m); err != nil {
				return nil, fmt.Errorf("failed to unmarshal membership %s/%s: %w", userID, object.Key, err)
			}
			memberships = append(memberships, m)
		}
		if next == "" {
			break
		}
		cursor = next
	}
	return memberships, nil
}

func (s *NakamaMembershipStore) Put(ctx context.Context, m domain.RoomMembership) error {
	value, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal membership %s/%s: %w", m.UserID, m.RoomID, err)
	}
	return writeObjects(ctx, s.nk, []*runtime.StorageWrite{{
		Collection:      collectionMemberships,
		Key:             m.RoomID,
		UserID:          m.UserID,
		Value:           string(value),
		PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}})
}

func (s *NakamaMembershipStore) Delete(ctx context.Context, userID, roomID string) error {
	return deleteObjects(ctx, s.nk, []*runtime.StorageDelete{
		{Collection: collectionMemberships, Key: roomID, UserID: userID},
	})
}

var _ ports.MembershipStore = (*NakamaMembershipStore)(nil)
