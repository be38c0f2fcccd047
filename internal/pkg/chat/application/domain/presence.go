package chat

// PresenceEntry is one live connection of a user in a room.
type PresenceEntry struct {
	RoomID        string `json:"roomId"`
	ConnectionID  string `json:"connectionId"`
	UserID        string `json:"id"`
	Name          string `json:"name"`
	JoinedAt      int64  `json:"joinedAt"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
}
