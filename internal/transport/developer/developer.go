package developer

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domainagent "github.com/alanyang/agent-market/internal/domain/agent"
	domaindeployment "github.com/alanyang/agent-market/internal/domain/deployment"
	devsvc "github.com/alanyang/agent-market/internal/service/developer"
	"github.com/alanyang/agent-market/internal/transport/httpx"
)

// Register mounts the developer dashboard API. The caller guards rg.
func Register(rg *gin.RouterGroup, svc *devsvc.Service) {
	rg.GET("/agents", listAgents(svc))
	rg.POST("/agents", createAgent(svc))
	rg.PATCH("/agents/:id", updateAgent(svc))
	rg.POST("/agents/:id/publish", publishAgent(svc))
	rg.POST("/agents/:id/archive", archiveAgent(svc))
	rg.POST("/agents/:id/deployments", deployAgent(svc))
	rg.GET("/deployments", listDeployments(svc))
	rg.POST("/deployments/:id/stop", stopDeployment(svc))
	rg.GET("/stats", stats(svc))
}

type createAgentReq struct {
	Name         string          `json:"name" binding:"required"`
	Description  string          `json:"description"`
	Category     string          `json:"category" binding:"required"`
	Tags         []string        `json:"tags"`
	PricePerCall decimal.Decimal `json:"price_per_call"`
	APIEndpoint  string          `json:"api_endpoint" binding:"required"`
	APIKey       string          `json:"api_key"`
}

func createAgent(svc *devsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createAgentReq
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, err.Error())
			return
		}

		a, err := svc.CreateAgent(c.Request.Context(), httpx.Viewer(c).ID, devsvc.Draft{
			Name:         req.Name,
			Description:  req.Description,
			Category:     req.Category,
			Tags:         req.Tags,
			PricePerCall: req.PricePerCall,
			APIEndpoint:  req.APIEndpoint,
			APIKey:       req.APIKey,
		})
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, a)
	}
}

type updateAgentReq struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Category     *string          `json:"category"`
	Tags         []string         `json:"tags"`
	PricePerCall *decimal.Decimal `json:"price_per_call"`
	APIEndpoint  *string          `json:"api_endpoint"`
	APIKey       *string          `json:"api_key"`
}

func updateAgent(svc *devsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var req updateAgentReq
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, err.Error())
			return
		}

		a, err := svc.UpdateAgent(c.Request.Context(), httpx.Viewer(c).ID, id, domainagent.Update{
			Name:         req.Name,
			Description:  req.Description,
			Category:     req.Category,
			Tags:         req.Tags,
			PricePerCall: req.PricePerCall,
			APIEndpoint:  req.APIEndpoint,
			APIKey:       req.APIKey,
		})
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, a)
	}
}

func publishAgent(svc *devsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		if err := svc.Publish(c.Request.Context(), httpx.Viewer(c).ID, id); err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": domainagent.StatusPublished})
	}
}

func archiveAgent(svc *devsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		if err := svc.Archive(c.Request.Context(), httpx.Viewer(c).ID, id); err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": domainagent.StatusArchived})
	}
}

func listAgents(svc *devsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		agents, err := svc.ListAgents(c.Request.Context(), httpx.Viewer(c).ID)
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

type deployReq struct {
	Environment string `json:"environment"`
}

func deployAgent(svc *devsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var req deployReq
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				httpx.BadRequest(c, err.Error())
				return
			}
		}

		d, err := svc.Deploy(c.Request.Context(), httpx.Viewer(c).ID, id, req.Environment)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, d)
	}
}

func listDeployments(svc *devsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ds, err := svc.ListDeployments(c.Request.Context(), httpx.Viewer(c).ID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if ds == nil {
			ds = []domaindeployment.Deployment{}
		}
		c.JSON(http.StatusOK, ds)
	}
}

func stopDeployment(svc *devsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		if err := svc.StopDeployment(c.Request.Context(), httpx.Viewer(c).ID, id); err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": domaindeployment.StatusStopped})
	}
}

func stats(svc *devsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := svc.Stats(c.Request.Context(), httpx.Viewer(c).ID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}
