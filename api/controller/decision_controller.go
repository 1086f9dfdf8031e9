// api/controller/decision_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	arbiter_errors "github.com/dev-mohitbeniwal/arbiter/api/errors"
	"github.com/dev-mohitbeniwal/arbiter/api/model"
	"github.com/dev-mohitbeniwal/arbiter/api/service"
	"github.com/dev-mohitbeniwal/arbiter/api/util"
	helper_util "github.com/dev-mohitbeniwal/arbiter/api/util/helper"
)

type DecisionController struct {
	decisionService service.IDecisionService
}

func NewDecisionController(decisionService service.IDecisionService) *DecisionController {
	return &DecisionController{
		decisionService: decisionService,
	}
}

// RegisterRoutes registers the API routes
func (dc *DecisionController) RegisterRoutes(r *gin.RouterGroup) {
	decisions := r.Group("/decisions")
	{
		decisions.POST("", dc.Decide)
	}
	r.GET("/features", dc.ListFeatures)
	r.GET("/parameters", dc.ListParameters)
}

// Decide endpoint. ?execute=false evaluates without dispatching any tool.
func (dc *DecisionController) Decide(c *gin.Context) {
	var req model.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid decision request", err)
		return
	}

	execute, err := helper_util.GetBoolQuery(c, "execute", true)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid execute flag", err)
		return
	}

	resp, err := dc.decisionService.Decide(c, req, execute)
	if err != nil {
		// An unassigned caller never lands here: the service answers it as a
		// fail-closed ERROR decision with status 200.
		switch {
		case errors.Is(err, arbiter_errors.ErrValidation):
			util.RespondWithError(c, http.StatusBadRequest, err.Error(), err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to evaluate request", arbiter_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListFeatures endpoint
func (dc *DecisionController) ListFeatures(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"features": dc.decisionService.Features(c)})
}

// ListParameters endpoint
func (dc *DecisionController) ListParameters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"parameters": dc.decisionService.Parameters(c)})
}
