package ez

import "github.com/gin-gonic/gin"

// Groups are the /api route groups a module mounts onto.
type Groups struct {
	Public *gin.RouterGroup
	Authed *gin.RouterGroup // Authenticate applied
	Admin  *gin.RouterGroup // Authenticate + admin Authorize applied
}
