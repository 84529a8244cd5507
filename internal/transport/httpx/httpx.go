// Package httpx holds what every HTTP handler shares: error to status
// mapping, guard responses and request-scoped keys.
package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagent "github.com/alanyang/agent-market/internal/domain/agent"
	domaincredit "github.com/alanyang/agent-market/internal/domain/credit"
	domaindeployment "github.com/alanyang/agent-market/internal/domain/deployment"
	domainnotification "github.com/alanyang/agent-market/internal/domain/notification"
	domainprofile "github.com/alanyang/agent-market/internal/domain/profile"
	"github.com/alanyang/agent-market/internal/domain/route"
	"github.com/alanyang/agent-market/internal/domain/viewer"
	contactsvc "github.com/alanyang/agent-market/internal/service/contact"
)

// IdempotencyKey is the gin context key holding the request's Idempotency-Key header.
const IdempotencyKey = "idempotency_key"

var statusByErr = []struct {
	err    error
	status int
}{
	{domainagent.ErrNotFound, http.StatusNotFound},
	{domainnotification.ErrNotFound, http.StatusNotFound},
	{domaindeployment.ErrNotFound, http.StatusNotFound},
	{domainprofile.ErrNotFound, http.StatusNotFound},
	{domainagent.ErrNotOwner, http.StatusForbidden},
	{domainagent.ErrInvalid, http.StatusBadRequest},
	{domaincredit.ErrInvalidAmount, http.StatusBadRequest},
	{domaincredit.ErrInsufficientFunds, http.StatusPaymentRequired},
	{domainagent.ErrInvalidStatus, http.StatusConflict},
	{domainagent.ErrNotPublished, http.StatusConflict},
	{domaindeployment.ErrInvalidTransition, http.StatusConflict},
	{contactsvc.ErrUpstream, http.StatusBadGateway},
}

// Status maps a service error to its HTTP status; unknown errors are 500.
func Status(err error) int {
	for _, m := range statusByErr {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

func Error(c *gin.Context, err error) {
	c.JSON(Status(err), gin.H{"error": err.Error()})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// Deny writes a refused guard decision: 401 when the viewer must sign in,
// 403 when signed in without the needed role.
func Deny(c *gin.Context, d route.Decision) {
	status := http.StatusForbidden
	if d.Redirect == route.SignInPath {
		status = http.StatusUnauthorized
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error":    "access requires " + string(d.Required),
		"redirect": d.Redirect,
	})
}

// Viewer returns the viewer the Viewer middleware attached to the request.
func Viewer(c *gin.Context) viewer.Viewer {
	return viewer.FromContext(c.Request.Context())
}

// ParamID parses the :name path parameter as a uuid, answering 400 on failure.
func ParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		BadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// Guard applies the page guard of section (e.g. "/user") to API routes.
func Guard(section string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d := route.Guard(section, Viewer(c)); !d.Allowed {
			Deny(c, d)
			return
		}
		c.Next()
	}
}
