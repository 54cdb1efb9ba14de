package app

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// VoiceService issues signed access tokens for room voice channels. Each
// room gets one channel, derived from its code, so the voice backend needs
// no knowledge of room lifecycles.
type VoiceService struct {
	secret string
	issuer string
	domain string
	ttl    time.Duration
}

const (
	VoiceTokenActionLogin = "login"
	VoiceTokenActionJoin  = "join"
)

// NewVoiceService constructs the token issuer. ttl of zero defaults to one
// hour.
func NewVoiceService(secret, issuer, domain string, ttl time.Duration) *VoiceService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &VoiceService{secret: secret, issuer: issuer, domain: domain, ttl: ttl}
}

// GenerateToken signs a token for the user: login tokens authorize the voice
// session itself, join tokens authorize entering a room's channel.
func (s *VoiceService) GenerateToken(user, action, roomCode string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("voice service is nil")
	}
	if user == "" {
		return "", fmt.Errorf("user is required")
	}
	if s.secret == "" || s.issuer == "" || s.domain == "" {
		return "", fmt.Errorf("voice config is incomplete")
	}

	userURI := s.userURI(user)
	targetURI, err := s.targetURI(action, roomCode, userURI)
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": user,
		"exp": time.Now().Add(s.ttl).Unix(),
		"vxa": action,
		"vxi": fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Int63()),
		"f":   userURI,
		"t":   targetURI,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func (s *VoiceService) userURI(user string) string {
	return "sip:." + s.issuer + "." + user + ".@" + s.domain
}

func (s *VoiceService) roomChannelURI(roomCode string) string {
	return "sip:confctl-g-room-" + roomCode + "@" + s.domain
}

func (s *VoiceService) targetURI(action, roomCode, userURI string) (string, error) {
	switch action {
	case VoiceTokenActionLogin:
		return userURI, nil
	case VoiceTokenActionJoin:
		if roomCode == "" {
			return "", fmt.Errorf("room code is required for join tokens")
		}
		return s.roomChannelURI(roomCode), nil
	default:
		return "", fmt.Errorf("unsupported voice action: %s", action)
	}
}
