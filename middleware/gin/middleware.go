package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reoring/goarg"
	"github.com/reoring/goarg/middleware"
)

// BindJSON binds and validates the incoming JSON into a new T with opt,
// stores it in the context, and on failure aborts with the error payload.
// A zero MaxDepth selects goarg.DefaultMaxDepth.
func BindJSON[T any, PT interface {
	*T
	goarg.Arg
}](opt goarg.BindOpt) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := middleware.Process[T, PT](c.Request, opt)
		if res.Status != http.StatusOK {
			c.AbortWithStatusJSON(res.Status, res.Payload)
			return
		}
		// store the bound arg in request context
		c.Request = c.Request.WithContext(middleware.ContextWithArg(c.Request.Context(), res.Arg))
		c.Next()
	}
}

// GetArg fetches the bound *T from gin.Context.
func GetArg[T any](c *gin.Context) (*T, bool) {
	return middleware.ArgFromContext[T](c.Request.Context())
}
