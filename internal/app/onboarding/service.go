package onboarding

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"bigtwo/internal/domain"
	"bigtwo/internal/ports"
)

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// ProfileUpdateErr is set when the display-name update failed but
	// onboarding continued; the account works without one.
	ProfileUpdateErr error
	DisplayName      string
}

// ReconnectCandidate is a playing room the user still occupies.
type ReconnectCandidate struct {
	RoomID   string `json:"room_id"`
	RoomCode string `json:"room_code"`
	PlayerID string `json:"player_id"`
}

// Service handles post-auth concerns: naming newly created accounts and
// finding games a returning user should be offered back into.
type Service struct {
	accounts    ports.AccountPort
	memberships ports.MembershipStore
	rooms       ports.RoomStore
	rng         *rand.Rand
}

// NewService constructs an onboarding service with required ports.
// accounts/memberships/rooms must be non-nil; rng may be nil to use a
// time-seeded default.
func NewService(accounts ports.AccountPort, memberships ports.MembershipStore, rooms ports.RoomStore, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts:    accounts,
		memberships: memberships,
		rooms:       rooms,
		rng:         rng,
	}
}

// OnboardNewUser assigns a generated friendly name to a newly created
// account. userID identifies the new account.
// Returns a Result carrying the name and any non-fatal issues.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	result := Result{DisplayName: s.generateFriendlyName()}
	if err := s.accounts.UpdateProfile(ctx, userID, result.DisplayName, result.DisplayName); err != nil {
		result.ProfileUpdateErr = err
	}
	return result, nil
}

// ActiveRooms returns the playing rooms the user still holds a seat in, so
// the session layer can offer reconnection. Memberships pointing at rooms
// that no longer exist or no longer play are skipped.
func (s *Service) ActiveRooms(ctx context.Context, userID string) ([]ReconnectCandidate, error) {
	if s.memberships == nil || s.rooms == nil {
		return nil, fmt.Errorf("onboarding service not configured")
	}

	memberships, err := s.memberships.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}

	var out []ReconnectCandidate
	for _, m := range memberships {
		room, _, err := s.rooms.Get(ctx, m.RoomID)
		if errors.Is(err, ports.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load room %s: %w", m.RoomID, err)
		}
		if room.Status != domain.RoomPlaying {
			continue
		}
		out = append(out, ReconnectCandidate{RoomID: m.RoomID, RoomCode: room.Code, PlayerID: m.PlayerID})
	}
	return out, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Happy", "Shiny", "Brave", "Clever", "Swift", "Calm", "Mighty", "Witty", "Sly", "Wild"}
	nouns := []string{"Panda", "Tiger", "Eagle", "Dolphin", "Wolf", "Otter", "Falcon", "Bear", "Fox", "Lion"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
