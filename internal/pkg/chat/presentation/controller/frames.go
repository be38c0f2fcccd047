package controller

import (
	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

// Inbound frame types.
const (
	frameCreateRoom   = "create-room"
	frameJoin         = "join"
	frameLeave        = "leave"
	frameMessage      = "message"
	frameEdit         = "message:edit"
	frameReact        = "message:react"
	frameAck          = "message:ack"
	frameReadUpTo     = "read:upto"
	frameTyping       = "typing:state"
	framePresencePing = "presence:ping"
)

// Outbound event types.
const (
	eventConnected  = "connected"
	eventJoinResult = "join-result"
	eventCreateRoom = "create-room-result"
	eventAck        = "ack"
	eventError      = "error"
	eventMessage    = "message"
	eventPersisted  = "message:persisted"
	eventEdit       = "message:edit"
	eventReact      = "message:react"
	eventDelivered  = "message:delivered"
	eventReadUpTo   = "read:upto"
	eventTyping     = "typing:state"
	eventUserJoined = "user-joined"
	eventUserLeft   = "user-left"
)

type inboundFrame struct {
	Type          string `json:"type"`
	AckID         string `json:"ackId,omitempty"`
	RoomID        string `json:"roomId,omitempty"`
	DisplayName   string `json:"displayName,omitempty"`
	Text          string `json:"text,omitempty"`
	AttachmentRef string `json:"attachmentRef,omitempty"`
	MessageID     string `json:"messageId,omitempty"`
	Emoji         string `json:"emoji,omitempty"`
	IsTyping      bool   `json:"isTyping,omitempty"`
}

type connectedFrame struct {
	Type         string `json:"type"`
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	ConnectionID string `json:"connectionId"`
}

type errorFrame struct {
	Type          string         `json:"type"`
	Code          appErrors.Code `json:"code"`
	Error         string         `json:"error"`
	CorrelationID string         `json:"correlationId,omitempty"`
}

// ackFrame answers one inbound frame. Fields beyond ok/error are set per operation.
type ackFrame struct {
	Type           string         `json:"type"`
	AckID          string         `json:"ackId,omitempty"`
	For            string         `json:"for"`
	OK             bool           `json:"ok"`
	Error          appErrors.Code `json:"error,omitempty"`
	Message        string         `json:"message,omitempty"`
	CorrelationID  string         `json:"correlationId,omitempty"`
	MessageID      string         `json:"messageId,omitempty"`
	TS             int64          `json:"ts,omitempty"`
	Added          *bool          `json:"added,omitempty"`
	DeliveredCount *int           `json:"deliveredCount,omitempty"`
}

type joinResultFrame struct {
	Type          string               `json:"type"`
	OK            bool                 `json:"ok"`
	RoomID        string               `json:"roomId,omitempty"`
	UserID        string               `json:"userId,omitempty"`
	Name          string               `json:"name,omitempty"`
	Users         []chat.PresenceEntry `json:"users,omitempty"`
	Messages      []chat.Message       `json:"messages,omitempty"`
	ReadState     *chat.ReadState      `json:"readState,omitempty"`
	Error         appErrors.Code       `json:"error,omitempty"`
	Message       string               `json:"message,omitempty"`
	CorrelationID string               `json:"correlationId,omitempty"`
}

type createRoomResultFrame struct {
	Type    string         `json:"type"`
	OK      bool           `json:"ok"`
	RoomID  string         `json:"roomId,omitempty"`
	Error   appErrors.Code `json:"error,omitempty"`
	Message string         `json:"message,omitempty"`
}

type messageEvent struct {
	Type string `json:"type"`
	chat.Message
}

type persistedEvent struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	MessageID string `json:"messageId"`
	TS        int64  `json:"ts"`
	UserID    string `json:"userId"`
}

type editEvent struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	MessageID string `json:"messageId"`
	Text      string `json:"text"`
	Edited    bool   `json:"edited"`
	EditedBy  string `json:"editedBy"`
}

type reactEvent struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	MessageID string `json:"messageId"`
	Emoji     string `json:"emoji"`
	UserID    string `json:"userId"`
	Added     bool   `json:"added"`
}

type deliveredEvent struct {
	Type           string `json:"type"`
	RoomID         string `json:"roomId"`
	MessageID      string `json:"messageId"`
	DeliveredCount int    `json:"deliveredCount"`
}

type readUpToEvent struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	UserID    string `json:"userId"`
	MessageID string `json:"messageId"`
}

type typingEvent struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	IsTyping bool   `json:"isTyping"`
}

type rosterEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	ID     string `json:"id"`
	Name   string `json:"name"`
}
