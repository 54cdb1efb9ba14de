package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"bigtwo/internal/domain"
	"bigtwo/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaRoomStore implements ports.RoomStore over Nakama storage. Rooms are
// keyed by id; a code index row is created in the same atomic batch as the
// room record, so a code collision rejects the whole insert.
type NakamaRoomStore struct {
	nk runtime.NakamaModule
}

// NewNakamaRoomStore creates a new room store adapter.
func NewNakamaRoomStore(nk runtime.NakamaModule) *NakamaRoomStore {
	return &NakamaRoomStore{nk: nk}
}

type roomCodeIndex struct {
	RoomID string `json:"room_id"`
}

func (s *NakamaRoomStore) Get(ctx context.Context, roomID string) (*domain.Room, string, error) {
	value, version, err := readObject(ctx, s.nk, collectionRooms, roomID, systemOwner)
	if err != nil {
		return nil, "", err
	}
	var room domain.Room
	if err := json.Unmarshal([]byte(value), &room); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal room %s: %w", roomID, err)
	}
	return &room, version, nil
}

func (s *NakamaRoomStore) GetByCode(ctx context.Context, code string) (*domain.Room, string, error) {
	value, _, err := readObject(ctx, s.nk, collectionRoomCodes, code, systemOwner)
	if err != nil {
		return nil, "", err
	}
	var index roomCodeIndex
	if err := json.Unmarshal([]byte(value), &index); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal code index %s: %w", code, err)
	}
	return s.Get(ctx, index.RoomID)
}

func (s *NakamaRoomStore) Put(ctx context.Context, room *domain.Room, version string) error {
	value, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room %s: %w", room.ID, err)
	}

	writes := []*runtime.StorageWrite{{
		Collection:      collectionRooms,
		Key:             room.ID,
		UserID:          systemOwner,
		Value:           string(value),
		Version:         storageVersion(version),
		PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}}
	if version == "" {
		indexValue, err := json.Marshal(roomCodeIndex{RoomID: room.ID})
		if err != nil {
			return fmt.Errorf("failed to marshal code index %s: %w", room.Code, err)
		}
		writes = append(writes, &runtime.StorageWrite{
			Collection:      collectionRoomCodes,
			Key:             room.Code,
			UserID:          systemOwner,
			Value:           string(indexValue),
			Version:         "*",
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		})
	}
	return writeObjects(ctx, s.nk, writes)
}

func (s *NakamaRoomStore) List(ctx context.Context, limit int, cursor string) ([]*domain.Room, string, error) {
	objects, next, err := s.nk.StorageList(ctx, "", systemOwner, collectionRooms, limit, cursor)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list rooms: %w", err)
	}
	rooms := make([]*domain.Room, 0, len(objects))
	for _, object := range objects {
		var room domain.Room
		if err := json.Unmarshal([]byte(object.Value), &room); err != nil {
			return nil, "", fmt.Errorf("failed to unmarshal room %s: %w", object.Key, err)
		}
		rooms = append(rooms, &room)
	}
	return rooms, next, nil
}

func (s *NakamaRoomStore) Delete(ctx context.Context, room *domain.Room) error {
	return deleteObjects(ctx, s.nk, []*runtime.StorageDelete{
		{Collection: collectionRooms, Key: room.ID, UserID: systemOwner},
		{Collection: collectionRoomCodes, Key: room.Code, UserID: systemOwner},
	})
}

var _ ports.RoomStore = (*NakamaRoomStore)(nil)
