package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"p9e.in/corecut/config"
	"p9e.in/corecut/middleware"
	"p9e.in/corecut/models"
)

// setupTestDB opens a fresh in-memory database named after the test, runs
// migrations and points the package-level handle at it.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrations(db))
	config.DB = db
	return db
}

func makeUser(t *testing.T, name, phone, role string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.User{
		Name:         name,
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@corecut.test",
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, config.DB.Create(&u).Error)
	return &u
}

func makeJob(t *testing.T, assignee *models.User, status string) *models.JobOrder {
	t.Helper()
	job := models.JobOrder{
		JobNumber:     "JO-" + uuid.NewString()[:8],
		CustomerName:  "Cascade Builders",
		SiteAddress:   "4120 SE Division St",
		JobScope:      "wall sawing, 2 openings",
		ScheduledDate: models.JSONTime(time.Now()),
		Status:        status,
		CreatedBy:     uuid.New(),
	}
	if assignee != nil {
		job.AssignedTo = &assignee.ID
	}
	require.NoError(t, config.DB.Create(&job).Error)
	return &job
}

func claimsFor(u *models.User) *middleware.Claims {
	return &middleware.Claims{UserID: u.ID.String(), Name: u.Name, Phone: u.Phone, Role: u.Role}
}

// authedRequest builds a request with an optional JSON body and claims
// already in context, bypassing token parsing.
func authedRequest(t *testing.T, method, target string, body interface{}, c *middleware.Claims) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if c != nil {
		req = req.WithContext(middleware.WithClaims(req.Context(), c))
	}
	return req
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// decodeData asserts a success envelope and unmarshals its data into out.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.True(t, env.Success, "expected success envelope, got error: %s", env.Error)
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
}

// decodeError asserts an error envelope and returns the message.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.False(t, env.Success, "expected error envelope, got success")
	return env.Error
}
