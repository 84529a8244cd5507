package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagent "github.com/alanyang/agent-market/internal/domain/agent"
	catalogsvc "github.com/alanyang/agent-market/internal/service/catalog"
	contactsvc "github.com/alanyang/agent-market/internal/service/contact"
	"github.com/alanyang/agent-market/internal/transport/httpx"
)

// Register mounts the public catalog under rg (the /api group). Reviews and
// contact need a signed-in viewer.
func Register(rg *gin.RouterGroup, svc *catalogsvc.Service, contact *contactsvc.Service) {
	rg.GET("/agents", browseAgents(svc))
	rg.GET("/agents/featured", featuredAgents(svc))
	rg.GET("/agents/:id", getAgent(svc))
	rg.GET("/agents/:id/reviews", listReviews(svc))
	rg.POST("/agents/:id/reviews", httpx.Guard("/user"), postReview(svc))
	rg.POST("/agents/:id/contact", httpx.Guard("/user"), contactAgent(contact))
	rg.GET("/categories", listCategories(svc))
}

func browseAgents(svc *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		filters := domainagent.ListFilters{
			Query: c.Query("q"),
			Sort:  domainagent.Sort(c.DefaultQuery("sort", string(domainagent.SortNewest))),
		}
		if v := c.Query("category"); v != "" && v != "all" {
			filters.Category = &v
		}
		switch filters.Sort {
		case domainagent.SortNewest, domainagent.SortPriceLow, domainagent.SortPriceHigh, domainagent.SortRating:
		default:
			httpx.BadRequest(c, "invalid sort")
			return
		}

		agents, err := svc.Browse(c.Request.Context(), filters)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if agents == nil {
			agents = []domainagent.Agent{}
		}
		c.JSON(http.StatusOK, agents)
	}
}

func featuredAgents(svc *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		agents, err := svc.Featured(c.Request.Context())
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if agents == nil {
			agents = []domainagent.Agent{}
		}
		c.JSON(http.StatusOK, agents)
	}
}

func getAgent(svc *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		a, err := svc.GetAgent(c.Request.Context(), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, a)
	}
}

func listReviews(svc *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		reviews, err := svc.Reviews(c.Request.Context(), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if reviews == nil {
			reviews = []domainagent.Review{}
		}
		c.JSON(http.StatusOK, reviews)
	}
}

type reviewReq struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

func postReview(svc *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var req reviewReq
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, err.Error())
			return
		}

		rv, err := svc.PostReview(c.Request.Context(), id, httpx.Viewer(c).ID, req.Rating, req.Comment)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, rv)
	}
}

type contactReq struct {
	Input json.RawMessage `json:"input"`
}

func contactAgent(svc *contactsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var req contactReq
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, err.Error())
			return
		}

		res, err := svc.Contact(c.Request.Context(), httpx.Viewer(c).ID, id, req.Input)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		status := http.StatusOK
		if !res.Succeeded() {
			status = http.StatusBadGateway
		}
		c.JSON(status, res)
	}
}

func listCategories(svc *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := svc.Categories(c.Request.Context())
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if cats == nil {
			cats = []string{}
		}
		c.JSON(http.StatusOK, cats)
	}
}
