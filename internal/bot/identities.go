package bot

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Identity is a bot's public profile as shown to the other players.
type Identity struct {
	Name        string `json:"name"`
	AvatarIndex int    `json:"avatar_index"`
}

// defaultIdentities covers deployments that ship no identity file.
var defaultIdentities = []Identity{
	{Name: "Samir", AvatarIndex: 0},
	{Name: "Layla", AvatarIndex: 1},
	{Name: "Omar", AvatarIndex: 2},
	{Name: "Nadia", AvatarIndex: 3},
	{Name: "Karim", AvatarIndex: 4},
	{Name: "Rana", AvatarIndex: 5},
}

var (
	identities = defaultIdentities
	loadOnce   sync.Once
	loadErr    error
)

// LoadIdentities loads bot profiles from the given JSON file. A missing or
// malformed file leaves the built-in roster active and returns the error.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}

		var loaded []Identity
		if err := json.Unmarshal(data, &loaded); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}
		if len(loaded) > 0 {
			identities = loaded
		}
	})
	return loadErr
}

// GetIdentity returns the i-th bot profile, wrapping around the roster.
func GetIdentity(i int) Identity {
	if i < 0 {
		i = -i
	}
	return identities[i%len(identities)]
}
