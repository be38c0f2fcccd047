package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akhielesh/secure-chat/internal/config"
	cacheAdapter "github.com/Akhielesh/secure-chat/internal/infrastructure/cache/adapter"
	fanoutAdapter "github.com/Akhielesh/secure-chat/internal/infrastructure/fanout/adapter"
	"github.com/Akhielesh/secure-chat/internal/infrastructure/logger"
	"github.com/Akhielesh/secure-chat/internal/infrastructure/realtime"
	"github.com/Akhielesh/secure-chat/internal/pkg/auth"
	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	"github.com/Akhielesh/secure-chat/internal/pkg/chat/application/usecase"
	repoAdapter "github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/adapter"
	"github.com/Akhielesh/secure-chat/internal/pkg/media"
	"github.com/Akhielesh/secure-chat/internal/pkg/presence"
	"github.com/Akhielesh/secure-chat/internal/pkg/ratelimit"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type gateway struct {
	srv      *httptest.Server
	verifier *auth.JWTVerifier
	tracker  *presence.Tracker
	clock    *testClock
	repo     *repoAdapter.MemoryChatRepository
}

func newGateway(t *testing.T, allowedOrigins ...string) *gateway {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := cacheAdapter.NewRedisStore(client)

	clock := &testClock{now: time.Now()}
	log := logger.Nop()
	repo := repoAdapter.NewMemoryChatRepository(nil)
	router := realtime.NewRouter()
	t.Cleanup(router.Close)

	tracker := presence.NewTracker(store, config.Presence{TTL: 90 * time.Second, StaleAfter: 90 * time.Second}, log).WithClock(clock.Now)
	fixed := time.Unix(1_800_000_000, 0)
	limiter := ratelimit.NewLimiter(store, config.RateLimit{PerSecond: 5, Burst: 10, Window: time.Second}).
		WithClock(func() time.Time { return fixed })
	verifier := auth.NewJWTVerifier("test-secret")
	origins, _ := realtime.NewOriginPolicy(allowedOrigins)

	ctl := NewChatSocketController(
		router,
		fanoutAdapter.NewLocalFanout(router),
		verifier,
		origins,
		tracker,
		limiter,
		SocketUseCases{
			Create:   usecase.NewCreateRoomUseCase(repo),
			Join:     usecase.NewJoinRoomUseCase(repo, tracker, []string{"general"}, 50),
			Leave:    usecase.NewLeaveRoomUseCase(tracker),
			Send:     usecase.NewSendMessageUseCase(repo, limiter, media.NewMemoryResolver(""), nil),
			Edit:     usecase.NewEditMessageUseCase(repo, 0),
			React:    usecase.NewToggleReactionUseCase(repo),
			Ack:      usecase.NewAckDeliveryUseCase(repo),
			MarkRead: usecase.NewMarkReadUseCase(repo),
		},
		log,
		SocketOptions{},
	)

	r := gin.New()
	r.GET("/api/v1/ws", ctl.Handle())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &gateway{srv: srv, verifier: verifier, tracker: tracker, clock: clock, repo: repo}
}

func (g *gateway) wsURL() string {
	return "ws" + strings.TrimPrefix(g.srv.URL, "http") + "/api/v1/ws"
}

type testClient struct {
	t      *testing.T
	ws     *websocket.Conn
	connID string
}

func (g *gateway) connect(t *testing.T, who chat.Identity) *testClient {
	t.Helper()
	token, err := g.verifier.Sign(who, time.Hour)
	require.NoError(t, err)

	ws, _, err := websocket.DefaultDialer.Dial(g.wsURL()+"?token="+token, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	c := &testClient{t: t, ws: ws}
	hello := c.expect(eventConnected)
	assert.Equal(t, who.ID, hello["userId"])
	c.connID, _ = hello["connectionId"].(string)
	require.NotEmpty(t, c.connID)
	return c
}

func (c *testClient) send(frame map[string]any) {
	c.t.Helper()
	require.NoError(c.t, c.ws.WriteJSON(frame))
}

// expect reads frames until one of the given type arrives.
func (c *testClient) expect(typ string) map[string]any {
	c.t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		require.NoError(c.t, c.ws.SetReadDeadline(deadline))
		var frame map[string]any
		require.NoError(c.t, c.ws.ReadJSON(&frame), "waiting for %s", typ)
		if frame["type"] == typ {
			return frame
		}
	}
}

// expectAck reads frames until the ack carrying ackID arrives.
func (c *testClient) expectAck(ackID string) map[string]any {
	c.t.Helper()
	for {
		frame := c.expect(eventAck)
		if frame["ackId"] == ackID {
			return frame
		}
	}
}

// sync sends an unknown frame and returns every frame read before its error
// reply. Frames are handled in order, so anything the earlier frames caused
// for this connection has been queued by then.
func (c *testClient) sync() []map[string]any {
	c.t.Helper()
	c.send(map[string]any{"type": "bogus"})
	var seen []map[string]any
	deadline := time.Now().Add(3 * time.Second)
	for {
		require.NoError(c.t, c.ws.SetReadDeadline(deadline))
		var frame map[string]any
		require.NoError(c.t, c.ws.ReadJSON(&frame), "waiting for sync")
		if frame["type"] == eventError {
			assert.Equal(c.t, "invalid_payload", frame["code"])
			return seen
		}
		seen = append(seen, frame)
	}
}

func typesOf(frames []map[string]any) []any {
	out := make([]any, 0, len(frames))
	for _, f := range frames {
		out = append(out, f["type"])
	}
	return out
}

func (c *testClient) join(room string) map[string]any {
	c.t.Helper()
	c.send(map[string]any{"type": frameJoin, "roomId": room})
	return c.expect(eventJoinResult)
}

var (
	userA = chat.Identity{ID: "user-a", Name: "Alice"}
	userB = chat.Identity{ID: "user-b", Name: "Bob"}
	userC = chat.Identity{ID: "user-c", Name: "Carol"}
)

func TestGateway_MessageDeliveryAndReadFlow(t *testing.T) {
	g := newGateway(t)
	a := g.connect(t, userA)

	res := a.join("general")
	require.Equal(t, true, res["ok"], res)
	assert.Equal(t, "general", res["roomId"])

	a.send(map[string]any{"type": frameMessage, "ackId": "1", "text": "hi"})
	ack := a.expectAck("1")
	require.Equal(t, true, ack["ok"], ack)
	messageID, _ := ack["messageId"].(string)
	require.NotEmpty(t, messageID)

	b := g.connect(t, userB)
	res = b.join("general")
	require.Equal(t, true, res["ok"], res)
	msgs, _ := res["messages"].([]any)
	require.Len(t, msgs, 1)
	first, _ := msgs[0].(map[string]any)
	assert.Equal(t, "hi", first["text"])
	assert.Equal(t, messageID, first["id"])
	users, _ := res["users"].([]any)
	assert.Len(t, users, 2)

	joined := a.expect(eventUserJoined)
	assert.Equal(t, userB.ID, joined["id"])

	b.send(map[string]any{"type": frameAck, "messageId": messageID})
	delivered := a.expect(eventDelivered)
	assert.Equal(t, messageID, delivered["messageId"])
	assert.Equal(t, float64(1), delivered["deliveredCount"])

	b.send(map[string]any{"type": frameReadUpTo, "roomId": "general", "messageId": messageID})
	read := a.expect(eventReadUpTo)
	assert.Equal(t, userB.ID, read["userId"])
	assert.Equal(t, messageID, read["messageId"])

	n, err := g.repo.CountUnread(context.Background(), "general", userB.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGateway_DisconnectAndStalePresence(t *testing.T) {
	g := newGateway(t)
	ctx := context.Background()

	a := g.connect(t, userA)
	require.Equal(t, true, a.join("general")["ok"])
	b := g.connect(t, userB)
	require.Equal(t, true, b.join("general")["ok"])

	// A vanishes without a leave frame.
	_ = a.ws.UnderlyingConn().Close()
	left := b.expect(eventUserLeft)
	assert.Equal(t, userA.ID, left["id"])

	// A process that died cannot clean up; its entry must age out instead.
	_, err := g.tracker.Add(ctx, "general", "ghost-conn", userC)
	require.NoError(t, err)

	g.clock.Advance(91 * time.Second)

	roster, err := g.tracker.List(ctx, "general")
	require.NoError(t, err)
	for _, e := range roster {
		assert.NotEqual(t, userA.ID, e.UserID)
		assert.NotEqual(t, "ghost-conn", e.ConnectionID)
	}

	for _, conn := range []string{a.connID, "ghost-conn"} {
		ok, err := g.tracker.Heartbeat(ctx, "general", conn)
		require.NoError(t, err)
		assert.False(t, ok, "heartbeat under a stale connection id must be a no-op")
	}
}

func TestGateway_RejectsBeforeUpgrade(t *testing.T) {
	g := newGateway(t, "https://app.test")

	_, resp, err := websocket.DefaultDialer.Dial(g.wsURL(), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(g.wsURL()+"?token=garbage", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := g.verifier.Sign(userA, time.Hour)
	require.NoError(t, err)
	_, resp, err = websocket.DefaultDialer.Dial(g.wsURL()+"?token="+token, http.Header{"Origin": []string{"https://evil.test"}})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	ws, _, err := websocket.DefaultDialer.Dial(g.wsURL()+"?token="+token, http.Header{"Origin": []string{"https://app.test"}})
	require.NoError(t, err)
	_ = ws.Close()
}

func TestGateway_JoinNotMember(t *testing.T) {
	g := newGateway(t)
	a := g.connect(t, userA)
	require.Equal(t, true, a.join("secret")["ok"])

	c := g.connect(t, userC)
	res := c.join("secret")
	assert.Equal(t, false, res["ok"])
	assert.Equal(t, "not_member", res["error"])

	// Room events are ignored until a join succeeds.
	c.send(map[string]any{"type": frameMessage, "ackId": "x", "text": "sneaky"})
	assert.NotContains(t, typesOf(c.sync()), eventAck)

	res = c.join("bad room")
	assert.Equal(t, "invalid_payload", res["error"])

	// A member of another room cannot ack a message it never received.
	a.send(map[string]any{"type": frameMessage, "ackId": "s", "text": "secret stuff"})
	sent := a.expectAck("s")
	require.Equal(t, true, sent["ok"], sent)
	require.Equal(t, true, c.join("general")["ok"])
	c.send(map[string]any{"type": frameAck, "ackId": "d", "messageId": sent["messageId"]})
	denied := c.expectAck("d")
	assert.Equal(t, false, denied["ok"])
	assert.Equal(t, "not_found", denied["error"])
	assert.NotContains(t, typesOf(a.sync()), eventDelivered)
}

func TestGateway_RateLimited(t *testing.T) {
	g := newGateway(t)
	a := g.connect(t, userA)
	require.Equal(t, true, a.join("general")["ok"])

	for i := 0; i < 10; i++ {
		id := strconv.Itoa(i)
		a.send(map[string]any{"type": frameMessage, "ackId": id, "text": "spam"})
		ack := a.expectAck(id)
		require.Equal(t, true, ack["ok"], "message %d: %v", i, ack)
	}
	a.send(map[string]any{"type": frameMessage, "ackId": "11", "text": "one too many"})
	ack := a.expectAck("11")
	assert.Equal(t, false, ack["ok"])
	assert.Equal(t, "rate_limited", ack["error"])
	assert.Equal(t, "11", ack["ackId"])
}

func TestGateway_EditReactAndTyping(t *testing.T) {
	g := newGateway(t)
	a := g.connect(t, userA)
	require.Equal(t, true, a.join("general")["ok"])

	a.send(map[string]any{"type": frameMessage, "ackId": "m", "text": "first"})
	ack := a.expectAck("m")
	require.Equal(t, true, ack["ok"], ack)
	firstID, _ := ack["messageId"].(string)

	a.send(map[string]any{"type": frameEdit, "messageId": firstID, "text": "edited"})
	edit := a.expect(eventEdit)
	assert.Equal(t, "edited", edit["text"])
	assert.Equal(t, true, edit["edited"])
	assert.Equal(t, userA.ID, edit["editedBy"])

	b := g.connect(t, userB)
	require.Equal(t, true, b.join("general")["ok"])
	b.send(map[string]any{"type": frameEdit, "ackId": "e", "messageId": firstID, "text": "hijack"})
	ack = b.expectAck("e")
	assert.Equal(t, "forbidden", ack["error"])

	b.send(map[string]any{"type": frameReact, "ackId": "r1", "messageId": firstID, "emoji": "🔥"})
	react := a.expect(eventReact)
	assert.Equal(t, true, react["added"])
	assert.Equal(t, userB.ID, react["userId"])

	b.send(map[string]any{"type": frameReact, "ackId": "r2", "messageId": firstID, "emoji": "<script>"})
	ack = b.expectAck("r2")
	assert.Equal(t, "invalid_payload", ack["error"])

	b.send(map[string]any{"type": frameTyping, "isTyping": true})
	typing := a.expect(eventTyping)
	assert.Equal(t, userB.ID, typing["userId"])
	assert.Equal(t, true, typing["isTyping"])
	assert.NotContains(t, typesOf(b.sync()), eventTyping)
}

func TestGateway_SwitchRoomsAndLeave(t *testing.T) {
	g := newGateway(t)
	a := g.connect(t, userA)
	b := g.connect(t, userB)
	require.Equal(t, true, a.join("general")["ok"])
	require.Equal(t, true, b.join("general")["ok"])

	require.Equal(t, true, b.join("elsewhere")["ok"])
	left := a.expect(eventUserLeft)
	assert.Equal(t, userB.ID, left["id"])

	a.send(map[string]any{"type": frameLeave, "ackId": "l"})
	ack := a.expectAck("l")
	assert.Equal(t, true, ack["ok"])

	roster, err := g.tracker.List(context.Background(), "general")
	require.NoError(t, err)
	assert.Empty(t, roster)
}

func TestGateway_CreateRoom(t *testing.T) {
	g := newGateway(t)
	a := g.connect(t, userA)

	a.send(map[string]any{"type": frameCreateRoom, "roomId": "design"})
	res := a.expect(eventCreateRoom)
	assert.Equal(t, true, res["ok"], res)
	assert.Equal(t, "design", res["roomId"])

	a.send(map[string]any{"type": frameCreateRoom, "roomId": "design"})
	res = a.expect(eventCreateRoom)
	assert.Equal(t, false, res["ok"])
	assert.Equal(t, "forbidden", res["error"])

	a.send(map[string]any{"type": frameCreateRoom, "roomId": "no spaces"})
	res = a.expect(eventCreateRoom)
	assert.Equal(t, "invalid_payload", res["error"])

	// The creator is the only member.
	require.Equal(t, true, a.join("design")["ok"])
	b := g.connect(t, userB)
	assert.Equal(t, "not_member", b.join("design")["error"])
}
