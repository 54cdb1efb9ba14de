package nakama

import (
	"context"
	"fmt"

	"bigtwo/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaAccountAdapter implements ports.AccountPort using Nakama's account API.
type NakamaAccountAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaAccountAdapter creates a new account adapter.
func NewNakamaAccountAdapter(nk runtime.NakamaModule) *NakamaAccountAdapter {
	return &NakamaAccountAdapter{nk: nk}
}

// GetUsernames resolves account usernames for the given user ids. Unknown
// ids are simply absent from the result map.
func (a *NakamaAccountAdapter) GetUsernames(ctx context.Context, userIDs []string) (map[string]string, error) {
	users, err := a.nk.UsersGetId(ctx, userIDs, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.GetId()] = u.GetUsername()
	}
	return names, nil
}

// UpdateProfile updates the account username and display name in Nakama.
// userID identifies the account to update; username/displayName are applied as provided.
// Returns an error if the Nakama update fails.
func (a *NakamaAccountAdapter) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	return a.nk.AccountUpdateId(ctx, userID, username, nil, displayName, "", "", "", "")
}

var _ ports.AccountPort = (*NakamaAccountAdapter)(nil)
