package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Akhielesh/secure-chat/internal/config"
	fport "github.com/Akhielesh/secure-chat/internal/infrastructure/fanout/port"
	"github.com/Akhielesh/secure-chat/internal/infrastructure/logger"
	"github.com/Akhielesh/secure-chat/internal/infrastructure/realtime"
	"github.com/Akhielesh/secure-chat/internal/pkg/auth"
	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	"github.com/Akhielesh/secure-chat/internal/pkg/chat/application/usecase"
	repository "github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/port"
	"github.com/Akhielesh/secure-chat/internal/pkg/chat/presentation/controller"
	"github.com/Akhielesh/secure-chat/internal/pkg/media"
)

// Dependencies carries the adapters the chat endpoints are built from.
type Dependencies struct {
	Config   *config.Config
	Repo     repository.ChatRepository
	Presence controller.Presence
	Limiter  usecase.Admitter
	Media    media.Resolver
	Router   *realtime.Router
	Fanout   fport.Publisher
	Verifier auth.Verifier
	Origins  *realtime.OriginPolicy
	IDs      *chat.IDGenerator
	Outbox   usecase.OutboxKicker
	Log      *logger.Logger
}

// RegisterRoutes registers chat-related HTTP endpoints under the given router group
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, d Dependencies) {
	cfg := d.Config
	timeout := cfg.Server.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	socketCtl := controller.NewChatSocketController(
		d.Router,
		d.Fanout,
		d.Verifier,
		d.Origins,
		d.Presence,
		d.Limiter,
		controller.SocketUseCases{
			Create:   usecase.NewCreateRoomUseCase(d.Repo),
			Join:     usecase.NewJoinRoomUseCase(d.Repo, d.Presence, cfg.Chat.PublicRooms, cfg.Chat.RecentLimit),
			Leave:    usecase.NewLeaveRoomUseCase(d.Presence),
			Send:     usecase.NewSendMessageUseCase(d.Repo, d.Limiter, d.Media, d.IDs).WithOutboxKicker(d.Outbox),
			Edit:     usecase.NewEditMessageUseCase(d.Repo, cfg.Chat.EditWindow),
			React:    usecase.NewToggleReactionUseCase(d.Repo),
			Ack:      usecase.NewAckDeliveryUseCase(d.Repo),
			MarkRead: usecase.NewMarkReadUseCase(d.Repo),
		},
		d.Log,
		controller.SocketOptions{
			ReadTimeout:    cfg.Server.ReadTimeout,
			RequestTimeout: timeout,
			MaxFrameBytes:  cfg.Server.MaxFrameBytes,
		},
	)
	historyCtl := controller.NewGetMessageController(usecase.NewGetMessageUseCase(d.Repo), d.Log, timeout)
	searchCtl := controller.NewSearchMessagesController(usecase.NewSearchMessagesUseCase(d.Repo), d.Log, timeout)
	unreadCtl := controller.NewGetUnreadController(usecase.NewGetUnreadCountUseCase(d.Repo), d.Log, timeout)
	presenceCtl := controller.NewListPresenceController(usecase.NewListPresenceUseCase(d.Repo, d.Presence), d.Log, timeout)
	grantCtl := controller.NewGrantMembershipController(usecase.NewGrantMembershipUseCase(d.Repo), d.Log, timeout)

	// GET /api/v1/ws -> websocket endpoint; authenticates before upgrading
	g.GET("/ws", socketCtl.Handle())

	rooms := g.Group("/rooms/:roomId", auth.Middleware(d.Verifier))
	// GET /api/v1/rooms/:roomId/messages?before=<id>&limit=<n> -> history page, oldest first
	rooms.GET("/messages", historyCtl.Handle())
	// GET /api/v1/rooms/:roomId/search?q=<words>&limit=<n> -> full-text matches, newest first
	rooms.GET("/search", searchCtl.Handle())
	// GET /api/v1/rooms/:roomId/unread -> unread count for the caller
	rooms.GET("/unread", unreadCtl.Handle())
	// GET /api/v1/rooms/:roomId/presence -> live roster
	rooms.GET("/presence", presenceCtl.Handle())
	// POST /api/v1/rooms/:roomId/members -> grant membership to other users
	rooms.POST("/members", grantCtl.Handle())
}
