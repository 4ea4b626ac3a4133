package domain

type RoomID string

// Room is a pairing of exactly two sessions. The relay creates it and is the
// only authority on its lifetime; the client just mirrors it.
type Room struct {
	ID      RoomID    `json:"roomId"`
	Members [2]UserID `json:"users"`
}

// Peer returns the other member of the room.
func (r *Room) Peer(local UserID) (UserID, bool) {
	switch local {
	case r.Members[0]:
		return r.Members[1], true
	case r.Members[1]:
		return r.Members[0], true
	}
	return "", false
}

func (r *Room) Has(id UserID) bool {
	return r.Members[0] == id || r.Members[1] == id
}
