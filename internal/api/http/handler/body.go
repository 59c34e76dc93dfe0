package handler

import (
	"io"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
)

const (
	maxBodySize = 1 << 20
	dateOnly    = "2006-01-02"
)

// bindBody decodes a JSON request body into v. An empty body leaves v untouched.
func bindBody(c echo.Context, v any) error {
	data, err := readBody(c)
	if err != nil {
		return err
	}
	return decode(data, v)
}

func readBody(c echo.Context) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodySize))
	if err != nil {
		return nil, apiErrors.NewErrValidation("Invalid request body")
	}
	return data, nil
}

func decode(data []byte, v any) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := sonic.ConfigStd.Unmarshal(data, v); err != nil {
		return apiErrors.NewErrValidation("Invalid request body")
	}
	return nil
}

// parseDueDate accepts RFC 3339 timestamps and plain dates. Plain dates are midnight UTC.
// An empty string means no due date.
func parseDueDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, dateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apiErrors.NewErrValidation("Invalid due date")
}
