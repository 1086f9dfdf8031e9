// api/router/router.go

package router

import (
	"time"

	"github.com/dev-mohitbeniwal/arbiter/api/controller"
	"github.com/dev-mohitbeniwal/arbiter/api/middleware"
	"github.com/gin-gonic/gin"
)

func SetupRouter(
	controllers *controller.Controllers,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))

	api := router.Group("/api/v1")

	controllers.Decision.RegisterRoutes(api)
	controllers.Rules.RegisterRoutes(api)
	controllers.Audit.RegisterRoutes(api)

	return router
}
