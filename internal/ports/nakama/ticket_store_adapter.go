package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"bigtwo/internal/domain"
	"bigtwo/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaTicketStore implements ports.TicketStore over Nakama storage. Each
// user holds at most one ticket row under a fixed key, owned by the user so
// clients can watch their own queue status.
type NakamaTicketStore struct {
	nk runtime.NakamaModule
}

// NewNakamaTicketStore creates a new ticket store adapter.
func NewNakamaTicketStore(nk runtime.NakamaModule) *NakamaTicketStore {
	return &NakamaTicketStore{nk: nk}
}

func (s *NakamaTicketStore) Get(ctx context.Context, userID string) (*domain.WaitingRoomEntry, string, error) {
	value, version, err := readObject(ctx, s.nk, collectionMatchmaking, ticketKey, userID)
	if err != nil {
		return nil, "", err
	}
	var entry domain.WaitingRoomEntry
	if err := json.Unmarshal([]byte(value), &entry); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal ticket for %s: %w", userID, err)
	}
	return &entry, version, nil
}

func (s *NakamaTicketStore) Put(ctx context.Context, entry *domain.WaitingRoomEntry, version string) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal ticket for %s: %w", entry.UserID, err)
	}
	return writeObjects(ctx, s.nk, []*runtime.StorageWrite{{
		Collection:      collectionMatchmaking,
		Key:             ticketKey,
		UserID:          entry.UserID,
		Value:           string(value),
		Version:         storageVersion(version),
		PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}})
}

func (s *NakamaTicketStore) Delete(ctx context.Context, userID string) error {
	return deleteObjects(ctx, s.nk, []*runtime.StorageDelete{
		{Collection: collectionMatchmaking, Key: ticketKey, UserID: userID},
	})
}

var _ ports.TicketStore = (*NakamaTicketStore)(nil)
