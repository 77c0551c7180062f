package router

import "github.com/gin-gonic/gin"

// Module mounts one feature's routes on the /api group.
// A module may also implement Name() string to label its registration log line.
type Module interface {
	Register(rg *gin.RouterGroup)
}
