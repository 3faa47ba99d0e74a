package bot

import (
	"strings"

	"tarneeb/internal/domain"
)

// UserIDPrefix marks bot user IDs so adapters can tell bots from humans
// without a lookup.
const UserIDPrefix = "bot-"

// Brain is the interface all bot strategies implement. Implementations must
// return moves that are legal for the given seat in the given game state;
// the match loop feeds them through the same validation as human actions.
type Brain interface {
	// ChooseBid decides the seat's bid, or a pass.
	ChooseBid(game *domain.Game, seat int) (amount int, pass bool)

	// ChooseTrump picks the trump suit after winning the bidding.
	ChooseTrump(game *domain.Game, seat int) domain.Suit

	// ChooseCard picks a card to play on the current trick.
	ChooseCard(game *domain.Game, seat int) domain.Card
}

// Agent binds a seated bot's identity to its strategy.
type Agent struct {
	ID       string
	Name     string
	Level    Level
	Strategy Brain
}

// IsBot reports whether a user ID belongs to a bot.
func IsBot(userID string) bool {
	return strings.HasPrefix(userID, UserIDPrefix)
}
