package nakama

const (
	// RpcIdCreateRoom creates a fresh room and returns its match id and code.
	RpcIdCreateRoom = "create_room"
	// RpcIdJoinRoom resolves a 6-character room code to a joinable match id.
	RpcIdJoinRoom = "join_room"
	// RpcIdQuickMatch finds any open lobby of this game or creates one.
	RpcIdQuickMatch = "quick_match"
	// RpcIdVoiceToken signs a voice token for a room's voice channel.
	RpcIdVoiceToken = "voice_token"

	// MatchNameTarneeb is the authoritative match handler name registered
	// with Nakama.
	MatchNameTarneeb = "tarneeb_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpPlaceBid    int64 = 1
	OpSelectTrump int64 = 2
	OpPlayCard    int64 = 3

	// Server -> Client events
	OpPlayerJoined   int64 = 101
	OpPlayerLeft     int64 = 102
	OpDealStarted    int64 = 103
	OpHandDealt      int64 = 104 // send privately to the owning seat
	OpBiddingOpened  int64 = 105
	OpBidPlaced      int64 = 106
	OpBiddingWon     int64 = 107
	OpRedeal         int64 = 108
	OpTrumpSelected  int64 = 109
	OpCardPlayed     int64 = 110
	OpTrickCompleted int64 = 111
	OpRoundEnded     int64 = 112
	OpGameEnded      int64 = 113

	OpGameError int64 = 400
)
