package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"labparse/internal/catalog"
	"labparse/internal/handler"
	"labparse/mocks"
)

func TestHealthHandler_Liveness(t *testing.T) {
	h := handler.NewHealthHandler(new(mocks.MockReportService))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/healthz", nil)

	h.Liveness(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealthHandler_Readiness_Ready(t *testing.T) {
	mockSvc := new(mocks.MockReportService)
	h := handler.NewHealthHandler(mockSvc)
	mockSvc.On("Catalog").Return(catalog.Default())
	mockSvc.On("AIEnabled").Return(false)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/readyz", nil)

	h.Readiness(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","ai_enabled":false}`, w.Body.String())
}

func TestHealthHandler_Readiness_NoCatalog(t *testing.T) {
	mockSvc := new(mocks.MockReportService)
	h := handler.NewHealthHandler(mockSvc)
	mockSvc.On("Catalog").Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/readyz", nil)

	h.Readiness(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
