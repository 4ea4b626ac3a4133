package app

import (
	"github.com/pion/webrtc/v4"

	"github.com/sandeep3158/strangercall/internal/domain"
)

// Relay event names. The relay performs matching and forwards offer/answer
// payloads; it never carries media.
const (
	// client → relay
	evUserEntered    = "user entered"
	evInvitePrivate  = "invite private chat"
	evInviteAccepted = "invite accepted"
	evCallUser       = "callUser"
	evAnswerCall     = "answerCall"
	evSendMessage    = "send chat message"
	evEndChat        = "end chat"

	// relay → client
	evSocketID        = "get socket id"
	evMatchedPeer     = "getMatchedPeer"
	evInviteRequested = "invite requested"
	evEnterRoom       = "enter chat room"
	evUserCall        = "getUserCall"
	evCallAccepted    = "callAccepted"
	evReceiveMessage  = "receive chat message"
	evCloseRoom       = "close chat room"
)

type userEnteredPayload struct {
	Username string `json:"username"`
}

type enterRoomPayload struct {
	RoomID domain.RoomID   `json:"roomId"`
	Users  []domain.UserID `json:"users"`
}

type callUserPayload struct {
	UserToCall domain.UserID             `json:"userToCall"`
	SignalData webrtc.SessionDescription `json:"signalData"`
	From       domain.UserID             `json:"from"`
}

type userCallPayload struct {
	Signal webrtc.SessionDescription `json:"signal"`
	From   domain.UserID             `json:"from"`
}

type answerCallPayload struct {
	Signal webrtc.SessionDescription `json:"signal"`
	To     domain.UserID             `json:"to"`
}

type sendMessagePayload struct {
	Msg    string        `json:"msg"`
	RoomID domain.RoomID `json:"roomId"`
}

type receiveMessagePayload struct {
	UserID domain.UserID `json:"userId"`
	Msg    string        `json:"msg"`
}
