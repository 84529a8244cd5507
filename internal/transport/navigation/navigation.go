package navigation

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alanyang/agent-market/internal/domain/route"
	"github.com/alanyang/agent-market/internal/service/coordinator"
	"github.com/alanyang/agent-market/internal/transport/httpx"
)

// Register mounts the navigation signal endpoints used by browsers that are
// not connected over the websocket.
func Register(rg *gin.RouterGroup, coord *coordinator.Coordinator) {
	rg.POST("/navigation", navigate(coord))
	rg.POST("/prefetch", prefetch(coord))
	rg.GET("/routes", routes(coord))
}

type navigateReq struct {
	Path string `json:"path" binding:"required"`
}

func navigate(coord *coordinator.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req navigateReq
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, err.Error())
			return
		}
		if d := route.Guard(req.Path, httpx.Viewer(c)); !d.Allowed {
			httpx.Deny(c, d)
			return
		}
		coord.OnNavigate(c.Request.Context(), req.Path)
		c.Status(http.StatusNoContent)
	}
}

type prefetchReq struct {
	Route string `json:"route" binding:"required"`
}

func prefetch(coord *coordinator.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req prefetchReq
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, err.Error())
			return
		}
		coord.PrefetchRoute(c.Request.Context(), req.Route)
		c.Status(http.StatusAccepted)
	}
}

func routes(coord *coordinator.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, coord.Routes())
	}
}
