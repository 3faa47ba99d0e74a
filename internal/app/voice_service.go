package app

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// VoiceService signs access tokens for the Vivox voice channels attached to
// rooms. Each room gets one group channel named after its room code, so
// table talk stays within the table.
type VoiceService struct {
	voiceSecret string
	voiceIssuer string
	voiceDomain string
}

const (
	VoiceTokenActionLogin = "login"
	VoiceTokenActionJoin  = "join"
)

func NewVoiceService(secret, issuer, domain string) *VoiceService {
	return &VoiceService{
		voiceSecret: secret,
		voiceIssuer: issuer,
		voiceDomain: domain,
	}
}

// GenerateToken signs a short-lived token for the user. Login tokens target
// the user's own URI; join tokens target the room's voice channel.
func (s *VoiceService) GenerateToken(user, action, roomCode string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("voice service is nil")
	}
	if user == "" {
		return "", fmt.Errorf("user is required")
	}
	if s.voiceSecret == "" || s.voiceIssuer == "" || s.voiceDomain == "" {
		return "", fmt.Errorf("voice config is incomplete")
	}

	userURI := s.userURI(user)
	targetURI, err := s.targetURI(action, roomCode, userURI)
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"iss": s.voiceIssuer,
		"sub": user,
		"exp": time.Now().Add(time.Hour * 1).Unix(),
		"vxa": action,
		"vxi": fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Int63()),
		"f":   userURI,
		"t":   targetURI,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.voiceSecret))
}

func (s *VoiceService) userURI(user string) string {
	return "sip:." + s.voiceIssuer + "." + user + ".@" + s.voiceDomain
}

// roomChannelURI maps a room code to its group voice channel.
func (s *VoiceService) roomChannelURI(roomCode string) string {
	return "sip:confctl-g-tarneeb-" + roomCode + "@" + s.voiceDomain
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
