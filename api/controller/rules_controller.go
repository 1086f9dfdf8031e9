// api/controller/rules_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/arbiter/api/service"
	"github.com/dev-mohitbeniwal/arbiter/api/util"
)

type RulesController struct {
	decisionService service.IDecisionService
}

func NewRulesController(decisionService service.IDecisionService) *RulesController {
	return &RulesController{
		decisionService: decisionService,
	}
}

// RegisterRoutes registers the API routes
func (rc *RulesController) RegisterRoutes(r *gin.RouterGroup) {
	ruleSets := r.Group("/rulesets")
	{
		ruleSets.GET("", rc.ListRuleSets)
		ruleSets.GET("/:id", rc.GetRuleSet)
		ruleSets.POST("/reload", rc.Reload)
	}
	r.GET("/assignments", rc.ListAssignments)
}

// ListRuleSets endpoint
func (rc *RulesController) ListRuleSets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rule_sets": rc.decisionService.RuleSets(c)})
}

// GetRuleSet endpoint
func (rc *RulesController) GetRuleSet(c *gin.Context) {
	id := c.Param("id")
	rs, ok := rc.decisionService.RuleSets(c)[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "rule set not found"})
		return
	}
	c.JSON(http.StatusOK, rs)
}

// ListAssignments endpoint
func (rc *RulesController) ListAssignments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"assignments": rc.decisionService.Assignments(c)})
}

// Reload endpoint forces a rule file reload.
func (rc *RulesController) Reload(c *gin.Context) {
	version, err := rc.decisionService.ReloadRules(c)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to reload rules", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": version})
}
