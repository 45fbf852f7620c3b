package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/devfolio/internal/application/navigation"
)

// Navigation returns the header links for ?path=. Needs OptionalAuth in front of it.
func Navigation(c *gin.Context) {
	_, signedIn := GetSessionFromGinContext(c)
	c.JSON(http.StatusOK, navigation.Links(c.DefaultQuery("path", "/"), signedIn))
}
