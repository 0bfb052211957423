package echomw_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/reoring/goarg"
	echomw "github.com/reoring/goarg/middleware/echo"
	_ "github.com/reoring/goarg/rules"
)

type pingArg struct {
	goarg.Base
	Message string `arg:"message" validate:"required"`
}

func newServer() *echo.Echo {
	e := echo.New()
	e.POST("/ping", func(c echo.Context) error {
		arg, ok := echomw.GetArg[pingArg](c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, arg.Message)
	}, echomw.BindJSON[pingArg](goarg.BindOpt{Unknown: goarg.UnknownStrict}))
	return e
}

func TestBindJSON(t *testing.T) {
	e := newServer()
	cases := []struct {
		body string
		code int
		want string
	}{
		{`{"message":"pong"}`, http.StatusOK, "pong"},
		{`{"message":""}`, http.StatusUnprocessableEntity, "The message field is required."},
		{`{"message":"pong","extra":1}`, http.StatusBadRequest, `"field":"extra"`},
		{`not json`, http.StatusBadRequest, "malformed JSON"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/ping", strings.NewReader(tc.body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != tc.code {
			t.Errorf("%s: status = %d, want %d", tc.body, rec.Code, tc.code)
		}
		if !strings.Contains(rec.Body.String(), tc.want) {
			t.Errorf("%s: body = %q, want it to contain %q", tc.body, rec.Body.String(), tc.want)
		}
	}
}
