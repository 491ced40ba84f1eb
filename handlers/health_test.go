package handlers

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/task-manager-api/database"
	"github.com/sahilchouksey/task-manager-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	database.Storage
	healthErr error
}

func (f *fakeStore) HealthCheck() error {
	return f.healthErr
}

func TestHandleCheckHealth(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"healthy", nil, fiber.StatusOK, `{"status":"ok"}`},
		{"database down", errors.New("connection refused"), fiber.StatusServiceUnavailable, `"SERVICE_UNAVAILABLE"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/ping", utils.MakeHTTPHandleFunc(HandleCheckHealth, &fakeStore{healthErr: tc.err}))

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Contains(t, string(body), tc.body)
		})
	}
}
