package transport

import (
	"github.com/gin-gonic/gin"

	portprofile "github.com/alanyang/agent-market/internal/port/profile"
	accountsvc "github.com/alanyang/agent-market/internal/service/account"
	catalogsvc "github.com/alanyang/agent-market/internal/service/catalog"
	contactsvc "github.com/alanyang/agent-market/internal/service/contact"
	"github.com/alanyang/agent-market/internal/service/coordinator"
	devsvc "github.com/alanyang/agent-market/internal/service/developer"

	accounthandler "github.com/alanyang/agent-market/internal/transport/account"
	cataloghandler "github.com/alanyang/agent-market/internal/transport/catalog"
	devhandler "github.com/alanyang/agent-market/internal/transport/developer"
	"github.com/alanyang/agent-market/internal/transport/httpx"
	mcptransport "github.com/alanyang/agent-market/internal/transport/mcp"
	navhandler "github.com/alanyang/agent-market/internal/transport/navigation"
	wshandler "github.com/alanyang/agent-market/internal/transport/ws"
)

func NewRouter(
	profiles portprofile.Repository,
	catalogSvc *catalogsvc.Service,
	contactSvc *contactsvc.Service,
	developerSvc *devsvc.Service,
	accountSvc *accountsvc.Service,
	coord *coordinator.Coordinator,
	hub *wshandler.Hub,
	mcpServer *mcptransport.Server,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware())
	r.Use(IdempotencyMiddleware())

	// MCP sessions sign in with the sign_in tool, not the viewer header.
	r.Any("/mcp", gin.WrapH(mcpServer.Handler()))

	api := r.Group("/api", ViewerMiddleware(profiles))

	cataloghandler.Register(api, catalogSvc, contactSvc)
	devhandler.Register(api.Group("/developer", httpx.Guard("/developer")), developerSvc)
	accounthandler.Register(api.Group("/user", httpx.Guard("/user")), accountSvc)
	navhandler.Register(api, coord)

	// Events reach the hub from the realtime bridge in wire.
	hub.Register(api.Group("/ws"))

	return r
}
