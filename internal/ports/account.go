package ports

import "context"

// AccountPort reads and updates user account profiles.
type AccountPort interface {
	// GetUsernames resolves usernames for the given user ids, keyed by id.
	// Users that do not exist are absent from the result.
	GetUsernames(ctx context.Context, userIDs []string) (map[string]string, error)

	// UpdateProfile updates account profile fields for the given user.
	// username/displayName are applied as provided.
	UpdateProfile(ctx context.Context, userID, username, displayName string) error
}
