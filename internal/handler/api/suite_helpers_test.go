package api_test

import (
	"net/http"

	"storefront-core/internal/domain/user"
	"storefront-core/internal/handler/middleware"
	"storefront-core/tests/common/builder"

	"github.com/gin-gonic/gin"
)

const (
	userToken  = "user-token"
	adminToken = "admin-token"
)

var (
	testUser  = builder.NewUserBuilder().BuildActor()
	testAdmin = builder.NewUserBuilder().AsAdmin().BuildActor()
)

// fakeAuth stands in for token resolution: the bearer value picks the actor.
func fakeAuth(c *gin.Context) {
	var actor user.Actor
	switch c.GetHeader("Authorization") {
	case "Bearer " + userToken:
		actor = testUser
	case "Bearer " + adminToken:
		actor = testAdmin
	default:
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "UNAUTHORIZED", "message": "Unauthorized"}})
		return
	}
	middleware.SetActor(c, &actor)
	c.Next()
}

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.ErrorHandler())
	return engine
}
