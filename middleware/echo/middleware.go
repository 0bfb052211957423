package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/reoring/goarg"
	"github.com/reoring/goarg/middleware"
)

// BindJSON binds and validates the request JSON into a new T, stores it in
// the request context on success, or answers 400/422 with the error payload.
func BindJSON[T any, PT interface {
	*T
	goarg.Arg
}](opt goarg.BindOpt) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res := middleware.Process[T, PT](c.Request(), opt)
			if res.Status != http.StatusOK {
				return c.JSON(res.Status, res.Payload)
			}
			ctx := middleware.ContextWithArg(c.Request().Context(), res.Arg)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetArg fetches the bound *T from echo.Context.
func GetArg[T any](c echo.Context) (*T, bool) {
	return middleware.ArgFromContext[T](c.Request().Context())
}
