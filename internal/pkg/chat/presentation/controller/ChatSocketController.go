package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Akhielesh/secure-chat/internal/infrastructure/fanout/port"
	"github.com/Akhielesh/secure-chat/internal/infrastructure/logger"
	"github.com/Akhielesh/secure-chat/internal/infrastructure/realtime"
	"github.com/Akhielesh/secure-chat/internal/pkg/auth"
	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	"github.com/Akhielesh/secure-chat/internal/pkg/chat/application/usecase"
	"github.com/Akhielesh/secure-chat/internal/pkg/ratelimit"
	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

const (
	defaultReadTimeout    = 60 * time.Second
	defaultRequestTimeout = 5 * time.Second
	defaultMaxFrameBytes  = 1 << 20
)

// Presence is the roster surface the gateway drives. presence.Tracker implements it.
type Presence interface {
	usecase.Roster
	Heartbeat(ctx context.Context, roomID, connID string) (bool, error)
}

// SocketOptions tunes per-connection limits.
type SocketOptions struct {
	ReadTimeout    time.Duration
	RequestTimeout time.Duration
	MaxFrameBytes  int64
}

// SocketUseCases groups the use cases the websocket gateway dispatches to.
type SocketUseCases struct {
	Create   *usecase.CreateRoomUseCase
	Join     *usecase.JoinRoomUseCase
	Leave    *usecase.LeaveRoomUseCase
	Send     *usecase.SendMessageUseCase
	Edit     *usecase.EditMessageUseCase
	React    *usecase.ToggleReactionUseCase
	Ack      *usecase.AckDeliveryUseCase
	MarkRead *usecase.MarkReadUseCase
}

// ChatSocketController handles the websocket endpoint for realtime chat traffic.
type ChatSocketController struct {
	router   *realtime.Router
	fanout   port.Publisher
	verifier auth.Verifier
	presence Presence
	limiter  usecase.Admitter
	uc       SocketUseCases
	log      *logger.Logger
	opts     SocketOptions
	upgrader websocket.Upgrader
}

func NewChatSocketController(
	router *realtime.Router,
	fanout port.Publisher,
	verifier auth.Verifier,
	origins *realtime.OriginPolicy,
	presence Presence,
	limiter usecase.Admitter,
	uc SocketUseCases,
	log *logger.Logger,
	opts SocketOptions,
) *ChatSocketController {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultReadTimeout
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.MaxFrameBytes <= 0 {
		opts.MaxFrameBytes = defaultMaxFrameBytes
	}
	return &ChatSocketController{
		router:   router,
		fanout:   fanout,
		verifier: verifier,
		presence: presence,
		limiter:  limiter,
		uc:       uc,
		log:      log,
		opts:     opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.CheckOrigin,
		},
	}
}

// Handle authenticates, upgrades and processes frames until the client disconnects.
// Authentication happens before the upgrade, so a bad token never gets a socket.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := newSession()

		who, err := ctl.verifier.Verify(auth.TokenFromRequest(c.Request))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": appErrors.CodeUnauthorized})
			return
		}

		ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			ctl.log.Debug("websocket upgrade failed", "err", err)
			return
		}

		conn := realtime.NewConnection(who, c.ClientIP(), ws)
		sess.authenticated(who)
		ctl.router.Attach(conn)
		log := ctl.log.With("connectionId", conn.ID, "userId", who.ID)
		log.Debug("connection opened", "remote", conn.RemoteAddr)
		defer ctl.disconnect(conn, sess, log)

		ws.SetReadLimit(ctl.opts.MaxFrameBytes)
		_ = ws.SetReadDeadline(time.Now().Add(ctl.opts.ReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(ctl.opts.ReadTimeout))
		})

		ctl.send(conn, connectedFrame{Type: eventConnected, UserID: who.ID, Name: who.Name, ConnectionID: conn.ID})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) &&
					!errors.Is(err, websocket.ErrCloseSent) {
					log.Debug("read failed", "err", err)
				}
				return
			}
			_ = ws.SetReadDeadline(time.Now().Add(ctl.opts.ReadTimeout))

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.send(conn, errorFrame{Type: eventError, Code: appErrors.CodeInvalidPayload, Error: "invalid payload"})
				continue
			}
			ctl.dispatch(c.Request.Context(), conn, sess, frame, log)
		}
	}
}

// dispatch runs one frame to completion before the next is read.
func (ctl *ChatSocketController) dispatch(parent context.Context, conn *realtime.Connection, sess *session, frame inboundFrame, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(parent, ctl.opts.RequestTimeout)
	defer cancel()

	if frame.Type == frameCreateRoom {
		ctl.handleCreateRoom(ctx, conn, frame, log)
		return
	}
	if frame.Type == frameJoin {
		ctl.handleJoin(ctx, conn, sess, frame, log)
		return
	}
	if frame.Type == frameLeave {
		ctl.handleLeave(ctx, conn, sess, frame, log)
		return
	}

	room, self, joined := sess.joined()
	switch frame.Type {
	case frameMessage, frameEdit, frameReact, frameAck, frameReadUpTo, frameTyping, framePresencePing:
		if !joined {
			// Room events before a join are protocol violations and are ignored.
			return
		}
	default:
		ctl.send(conn, errorFrame{Type: eventError, Code: appErrors.CodeInvalidPayload, Error: "unknown frame type"})
		return
	}

	switch frame.Type {
	case frameMessage:
		ctl.handleMessage(ctx, conn, room, self, frame, log)
	case frameEdit:
		ctl.handleEdit(ctx, conn, self, frame, log)
	case frameReact:
		ctl.handleReact(ctx, conn, self, frame, log)
	case frameAck:
		ctl.handleAck(ctx, conn, room, self, frame, log)
	case frameReadUpTo:
		ctl.handleReadUpTo(ctx, conn, room, self, frame, log)
	case frameTyping:
		ctl.handleTyping(ctx, conn, room, self, frame)
	case framePresencePing:
		if _, err := ctl.presence.Heartbeat(ctx, room, conn.ID); err != nil {
			log.Warn("heartbeat failed", "roomId", room, "err", err)
		}
	}
}

// handleCreateRoom claims a new room for the caller. It does not join it.
func (ctl *ChatSocketController) handleCreateRoom(ctx context.Context, conn *realtime.Connection, frame inboundFrame, log *logger.Logger) {
	roomID, err := ctl.uc.Create.Execute(ctx, usecase.CreateRoomInput{RoomID: frame.RoomID, UserID: conn.Identity.ID})
	if err != nil {
		f := describe(err, log, frameCreateRoom)
		ctl.send(conn, createRoomResultFrame{Type: eventCreateRoom, OK: false, Error: f.Code, Message: f.Message})
		return
	}
	log.Info("room created", "roomId", roomID)
	ctl.send(conn, createRoomResultFrame{Type: eventCreateRoom, OK: true, RoomID: roomID})
}

func (ctl *ChatSocketController) handleJoin(ctx context.Context, conn *realtime.Connection, sess *session, frame inboundFrame, log *logger.Logger) {
	if err := chat.ValidateRoomID(frame.RoomID); err != nil {
		ctl.sendJoinFailure(conn, err, log)
		return
	}

	previous, ok := sess.beginJoin(frame.RoomID)
	if !ok {
		return
	}
	if previous != "" && previous != frame.RoomID {
		ctl.leaveRoom(ctx, conn, previous, log)
	}

	out, err := ctl.uc.Join.Execute(ctx, usecase.JoinRoomInput{
		RoomID:       frame.RoomID,
		ConnectionID: conn.ID,
		Identity:     conn.Identity,
		Name:         frame.DisplayName,
	})
	if err != nil {
		sess.failJoin(frame.RoomID)
		ctl.sendJoinFailure(conn, err, log)
		return
	}

	if !sess.completeJoin(frame.RoomID, out.Self) || isClosed(conn) {
		// The session moved on while the join was in flight.
		_, _ = ctl.uc.Leave.Execute(context.Background(), usecase.LeaveRoomInput{RoomID: frame.RoomID, ConnectionID: conn.ID})
		return
	}

	ctl.router.Join(frame.RoomID, conn)
	ctl.send(conn, joinResultFrame{
		Type:      eventJoinResult,
		OK:        true,
		RoomID:    out.RoomID,
		UserID:    out.Self.ID,
		Name:      out.Self.Name,
		Users:     out.Users,
		Messages:  out.Messages,
		ReadState: out.ReadState,
	})
	if previous != frame.RoomID {
		ctl.publish(ctx, frame.RoomID, rosterEvent{Type: eventUserJoined, RoomID: frame.RoomID, ID: out.Self.ID, Name: out.Self.Name}, conn.ID, log)
	}
	log.Debug("joined room", "roomId", frame.RoomID)
}

func (ctl *ChatSocketController) sendJoinFailure(conn *realtime.Connection, err error, log *logger.Logger) {
	f := describe(err, log, frameJoin)
	ctl.send(conn, joinResultFrame{Type: eventJoinResult, OK: false, Error: f.Code, Message: f.Message, CorrelationID: f.CorrelationID})
}

func (ctl *ChatSocketController) handleLeave(ctx context.Context, conn *realtime.Connection, sess *session, frame inboundFrame, log *logger.Logger) {
	if room, ok := sess.leave(); ok {
		ctl.leaveRoom(ctx, conn, room, log)
	}
	ctl.send(conn, ackFrame{Type: eventAck, AckID: frame.AckID, For: frameLeave, OK: true})
}

// leaveRoom removes presence, unsubscribes the connection and announces user-left.
func (ctl *ChatSocketController) leaveRoom(ctx context.Context, conn *realtime.Connection, room string, log *logger.Logger) {
	ctl.router.Leave(room, conn)
	removed, err := ctl.uc.Leave.Execute(ctx, usecase.LeaveRoomInput{RoomID: room, ConnectionID: conn.ID})
	if err != nil {
		log.Warn("presence remove failed", "roomId", room, "err", err)
	}
	if removed || err != nil {
		ctl.publish(ctx, room, rosterEvent{Type: eventUserLeft, RoomID: room, ID: conn.Identity.ID, Name: conn.Identity.Name}, conn.ID, log)
	}
}

func (ctl *ChatSocketController) handleMessage(ctx context.Context, conn *realtime.Connection, room string, self chat.Identity, frame inboundFrame, log *logger.Logger) {
	msg, err := ctl.uc.Send.Execute(ctx, usecase.SendMessageInput{
		RoomID:        room,
		Sender:        self,
		ConnectionID:  conn.ID,
		RemoteAddr:    conn.RemoteAddr,
		Text:          frame.Text,
		AttachmentRef: frame.AttachmentRef,
	})
	if errors.Is(err, usecase.ErrDropped) {
		log.Debug("message dropped", "roomId", room)
		return
	}
	if err != nil {
		ctl.sendAckError(conn, frame, err, log)
		return
	}

	ctl.publish(ctx, room, messageEvent{Type: eventMessage, Message: *msg}, "", log)
	ctl.publish(ctx, room, persistedEvent{Type: eventPersisted, RoomID: room, MessageID: msg.ID, TS: msg.TS, UserID: msg.UserID}, "", log)
	ctl.send(conn, ackFrame{Type: eventAck, AckID: frame.AckID, For: frameMessage, OK: true, MessageID: msg.ID, TS: msg.TS})
}

func (ctl *ChatSocketController) handleEdit(ctx context.Context, conn *realtime.Connection, self chat.Identity, frame inboundFrame, log *logger.Logger) {
	msg, err := ctl.uc.Edit.Execute(ctx, usecase.EditMessageInput{MessageID: frame.MessageID, RequesterID: self.ID, Text: frame.Text})
	if err != nil {
		ctl.sendAckError(conn, frame, err, log)
		return
	}
	ctl.publish(ctx, msg.RoomID, editEvent{Type: eventEdit, RoomID: msg.RoomID, MessageID: msg.ID, Text: msg.Text, Edited: true, EditedBy: self.ID}, "", log)
	ctl.send(conn, ackFrame{Type: eventAck, AckID: frame.AckID, For: frameEdit, OK: true, MessageID: msg.ID})
}

func (ctl *ChatSocketController) handleReact(ctx context.Context, conn *realtime.Connection, self chat.Identity, frame inboundFrame, log *logger.Logger) {
	out, err := ctl.uc.React.Execute(ctx, usecase.ToggleReactionInput{MessageID: frame.MessageID, Emoji: frame.Emoji, UserID: self.ID})
	if err != nil {
		ctl.sendAckError(conn, frame, err, log)
		return
	}
	ctl.publish(ctx, out.RoomID, reactEvent{Type: eventReact, RoomID: out.RoomID, MessageID: out.MessageID, Emoji: out.Emoji, UserID: out.UserID, Added: out.Added}, "", log)
	added := out.Added
	ctl.send(conn, ackFrame{Type: eventAck, AckID: frame.AckID, For: frameReact, OK: true, MessageID: out.MessageID, Added: &added})
}

func (ctl *ChatSocketController) handleAck(ctx context.Context, conn *realtime.Connection, room string, self chat.Identity, frame inboundFrame, log *logger.Logger) {
	out, err := ctl.uc.Ack.Execute(ctx, usecase.AckDeliveryInput{RoomID: room, MessageID: frame.MessageID, UserID: self.ID})
	if err != nil {
		ctl.sendAckError(conn, frame, err, log)
		return
	}
	if out.Recorded {
		ctl.publish(ctx, out.RoomID, deliveredEvent{Type: eventDelivered, RoomID: out.RoomID, MessageID: out.MessageID, DeliveredCount: out.DeliveredCount}, "", log)
	}
	count := out.DeliveredCount
	ctl.send(conn, ackFrame{Type: eventAck, AckID: frame.AckID, For: frameAck, OK: true, MessageID: out.MessageID, DeliveredCount: &count})
}

func (ctl *ChatSocketController) handleReadUpTo(ctx context.Context, conn *realtime.Connection, room string, self chat.Identity, frame inboundFrame, log *logger.Logger) {
	if frame.RoomID != "" && frame.RoomID != room {
		ctl.sendAckError(conn, frame, appErrors.ErrNotMember, log)
		return
	}
	out, err := ctl.uc.MarkRead.Execute(ctx, usecase.MarkReadInput{RoomID: room, UserID: self.ID, MessageID: frame.MessageID})
	if err != nil {
		ctl.sendAckError(conn, frame, err, log)
		return
	}
	if out.Advanced {
		ctl.publish(ctx, room, readUpToEvent{Type: eventReadUpTo, RoomID: room, UserID: self.ID, MessageID: out.ReadState.LastReadMessageID}, "", log)
	}
	ctl.send(conn, ackFrame{Type: eventAck, AckID: frame.AckID, For: frameReadUpTo, OK: true, MessageID: frame.MessageID})
}

func (ctl *ChatSocketController) handleTyping(ctx context.Context, conn *realtime.Connection, room string, self chat.Identity, frame inboundFrame) {
	if ctl.limiter != nil {
		ok, err := ctl.limiter.Admit(ctx, ratelimit.Subject{ConnectionID: conn.ID, NetworkAddress: conn.RemoteAddr, UserID: self.ID})
		if err != nil || !ok {
			return
		}
	}
	ctl.publish(ctx, room, typingEvent{Type: eventTyping, RoomID: room, UserID: self.ID, Name: self.Name, IsTyping: frame.IsTyping}, conn.ID, ctl.log)
}

func (ctl *ChatSocketController) disconnect(conn *realtime.Connection, sess *session, log *logger.Logger) {
	room, wasJoined := sess.disconnect()
	ctl.router.Detach(conn)
	conn.Close(websocket.CloseNormalClosure, "session closed")
	if wasJoined {
		ctx, cancel := context.WithTimeout(context.Background(), ctl.opts.RequestTimeout)
		defer cancel()
		ctl.leaveRoom(ctx, conn, room, log)
	}
	log.Debug("connection closed")
}

func (ctl *ChatSocketController) sendAckError(conn *realtime.Connection, frame inboundFrame, err error, log *logger.Logger) {
	f := describe(err, log, frame.Type)
	ctl.send(conn, ackFrame{
		Type:          eventAck,
		AckID:         frame.AckID,
		For:           frame.Type,
		OK:            false,
		Error:         f.Code,
		Message:       f.Message,
		CorrelationID: f.CorrelationID,
	})
}

func (ctl *ChatSocketController) publish(ctx context.Context, roomID string, v any, excludeConnID string, log *logger.Logger) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Error("encode event failed", "roomId", roomID, "err", err)
		return
	}
	err = ctl.fanout.Publish(ctx, port.Envelope{RoomID: roomID, Payload: payload, ExcludeConnID: excludeConnID})
	if err != nil {
		log.Warn("fanout publish failed", "roomId", roomID, "err", err)
	}
}

func (ctl *ChatSocketController) send(conn *realtime.Connection, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		ctl.log.Error("encode frame failed", "err", err)
		return
	}
	_ = conn.Send(payload)
}

func isClosed(conn *realtime.Connection) bool {
	select {
	case <-conn.Done():
		return true
	default:
		return false
	}
}
