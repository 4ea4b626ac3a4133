package domain

// ChatMessage is one line of the room-scoped chat log. The log is append-only
// for the lifetime of a room and cleared when the room closes. Messages are
// appended only on relay echo, never optimistically, so both ends share a
// single ordered source of truth.
type ChatMessage struct {
	SenderID UserID `json:"userId"`
	Text     string `json:"msg"`
}
