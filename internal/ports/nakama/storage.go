package nakama

import (
	"context"
	"errors"
	"fmt"

	"bigtwo/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// systemOwner marks server-owned storage records.
const systemOwner = ""

// readObject fetches one storage record, mapping absence to
// ports.ErrNotFound.
func readObject(ctx context.Context, nk runtime.NakamaModule, collection, key, userID string) (string, string, error) {
	objects, err := nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: collection,
		Key:        key,
		UserID:     userID,
	}})
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s/%s: %w", collection, key, err)
	}
	if len(objects) == 0 {
		return "", "", ports.ErrNotFound
	}
	return objects[0].Value, objects[0].Version, nil
}

// storageVersion maps the ports version contract onto Nakama's: an empty
// version means insert-only, a concrete one is compared against the stored
// record.
func storageVersion(version string) string {
	if version == "" {
		return "*"
	}
	return version
}

// writeObjects commits the batch, mapping a rejected version to
// ports.ErrVersionConflict. Multi-object batches commit atomically, which is
// what keeps the room record and its code index in step.
func writeObjects(ctx context.Context, nk runtime.NakamaModule, writes []*runtime.StorageWrite) error {
	_, err := nk.StorageWrite(ctx, writes)
	if errors.Is(err, runtime.ErrStorageRejectedVersion) {
		return ports.ErrVersionConflict
	}
	if err != nil {
		return fmt.Errorf("failed to write storage batch: %w", err)
	}
	return nil
}

func deleteObjects(ctx context.Context, nk runtime.NakamaModule, deletes []*runtime.StorageDelete) error {
	if err := nk.StorageDelete(ctx, deletes); err != nil {
		return fmt.Errorf("failed to delete storage records: %w", err)
	}
	return nil
}
