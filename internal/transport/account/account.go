package account

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domaincredit "github.com/alanyang/agent-market/internal/domain/credit"
	domainnotification "github.com/alanyang/agent-market/internal/domain/notification"
	domainusage "github.com/alanyang/agent-market/internal/domain/usage"
	accountsvc "github.com/alanyang/agent-market/internal/service/account"
	"github.com/alanyang/agent-market/internal/transport/httpx"
)

// Register mounts the signed-in user's API. The caller guards rg.
func Register(rg *gin.RouterGroup, svc *accountsvc.Service) {
	rg.GET("/profile", profile(svc))
	rg.GET("/dashboard", dashboard(svc))
	rg.GET("/usage", usageStats(svc))
	rg.GET("/usage/history", usageHistory(svc))
	rg.GET("/credits", balance(svc))
	rg.GET("/credits/transactions", transactions(svc))
	rg.POST("/credits/purchase", purchase(svc))
	rg.GET("/notifications", notifications(svc))
	rg.POST("/notifications/:id/read", markRead(svc))
	rg.POST("/notifications/read-all", markAllRead(svc))
}

func profile(svc *accountsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Profile(c.Request.Context(), httpx.Viewer(c).ID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func dashboard(svc *accountsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := svc.Dashboard(c.Request.Context(), httpx.Viewer(c).ID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

func usageStats(svc *accountsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := svc.UsageStats(c.Request.Context(), httpx.Viewer(c).ID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

func usageHistory(svc *accountsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := svc.UsageHistory(c.Request.Context(), httpx.Viewer(c).ID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if records == nil {
			records = []domainusage.Record{}
		}
		c.JSON(http.StatusOK, records)
	}
}

func balance(svc *accountsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := svc.Balance(c.Request.Context(), httpx.Viewer(c).ID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

func transactions(svc *accountsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		txs, err := svc.Transactions(c.Request.Context(), httpx.Viewer(c).ID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if txs == nil {
			txs = []domaincredit.Transaction{}
		}
		c.JSON(http.StatusOK, txs)
	}
}

type purchaseReq struct {
	Amount decimal.Decimal `json:"amount"`
}

func purchase(svc *accountsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req purchaseReq
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, err.Error())
			return
		}

		res, err := svc.Purchase(c.Request.Context(), httpx.Viewer(c).ID, req.Amount, c.GetString(httpx.IdempotencyKey))
		if err != nil {
			httpx.Error(c, err)
			return
		}
		status := http.StatusCreated
		if res.Replayed {
			status = http.StatusOK
		}
		c.JSON(status, res)
	}
}

func notifications(svc *accountsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ns, err := svc.Notifications(c.Request.Context(), httpx.Viewer(c).ID, c.Query("unread") == "true")
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if ns == nil {
			ns = []domainnotification.Notification{}
		}
		c.JSON(http.StatusOK, ns)
	}
}

func markRead(svc *accountsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		if err := svc.MarkRead(c.Request.Context(), httpx.Viewer(c).ID, id); err != nil {
			httpx.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func markAllRead(svc *accountsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := svc.MarkAllRead(c.Request.Context(), httpx.Viewer(c).ID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"marked": n})
	}
}
