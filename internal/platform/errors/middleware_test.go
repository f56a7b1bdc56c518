package errors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runMiddleware(t *testing.T, handlerErr error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Middleware()(func(echo.Context) error { return handlerErr })
	require.NoError(t, handler(c))
	return rec
}

func TestMiddleware_NoError(t *testing.T) {
	rec := runMiddleware(t, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestMiddleware_StructuredError(t *testing.T) {
	rec := runMiddleware(t, ValidationError("strategy is unknown").WithField("strategy", "quantum"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "strategy is unknown")
	assert.Contains(t, rec.Body.String(), `"type":"validation"`)
	assert.Contains(t, rec.Body.String(), "quantum")
}

func TestMiddleware_PlainErrorBecomesInternal(t *testing.T) {
	rec := runMiddleware(t, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"internal"`)
}

func TestMiddleware_EchoHTTPErrorPassesThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	httpErr := echo.NewHTTPError(http.StatusTeapot, "short and stout")
	handler := Middleware()(func(echo.Context) error { return httpErr })

	err := handler(c)
	assert.Equal(t, httpErr, err)
}
