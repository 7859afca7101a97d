package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "qtrack/pkg/errors"
)

func callErrorResponse(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, ErrorResponse(ctx, err, zap.NewNop()))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestErrorResponseUnknownErrorIsInternal(t *testing.T) {
	code, body := callErrorResponse(t, errors.New("db connection refused"))

	require.Equal(t, http.StatusInternalServerError, code)
	// Внутренние детали не должны утекать клиенту.
	require.Equal(t, "Внутренняя ошибка сервера", body["message"])
}

func TestErrorResponseInvalidInputIsBadRequest(t *testing.T) {
	_, err := ParseDate("not-a-date")
	require.Error(t, err)

	code, body := callErrorResponse(t, err)
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, body["message"], "Неверный формат даты")
}

func TestErrorResponseSentinelKeepsMappedCode(t *testing.T) {
	code, _ := callErrorResponse(t, apperrors.ErrNotFound)
	require.Equal(t, http.StatusNotFound, code)
}

func TestParseDateRoundTrip(t *testing.T) {
	parsed, err := ParseDate("2025-03-10")
	require.NoError(t, err)
	require.Equal(t, "2025-03-10", FormatDate(parsed))
}
