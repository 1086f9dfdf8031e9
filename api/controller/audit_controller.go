// api/controller/audit_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/arbiter/api/audit"
	"github.com/dev-mohitbeniwal/arbiter/api/service"
	"github.com/dev-mohitbeniwal/arbiter/api/util"
	helper_util "github.com/dev-mohitbeniwal/arbiter/api/util/helper"
)

type AuditController struct {
	decisionService service.IDecisionService
}

func NewAuditController(decisionService service.IDecisionService) *AuditController {
	return &AuditController{
		decisionService: decisionService,
	}
}

// RegisterRoutes registers the API routes
func (ac *AuditController) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit", ac.QueryAudit)
	r.GET("/history", ac.QueryHistory)
}

// QueryAudit endpoint returns audit entries, newest first.
func (ac *AuditController) QueryAudit(c *gin.Context) {
	limit, _, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	from, err := helper_util.ParseOptionalTime(c.Query("from"))
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid from timestamp", err)
		return
	}
	to, err := helper_util.ParseOptionalTime(c.Query("to"))
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid to timestamp", err)
		return
	}

	entries, err := ac.decisionService.AuditTrail(c, audit.Filter{
		User:    c.Query("user"),
		Feature: c.Query("feature"),
		From:    from,
		To:      to,
		Limit:   limit,
	})
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to query audit trail", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// QueryHistory endpoint returns executed actions across all features.
func (ac *AuditController) QueryHistory(c *gin.Context) {
	limit, _, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	records, err := ac.decisionService.History(c, c.Query("user"), c.Query("feature"), limit)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to query action history", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": records})
}
