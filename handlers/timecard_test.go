package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p9e.in/corecut/config"
	"p9e.in/corecut/models"
)

const (
	shopLat = 45.5231
	shopLng = -122.6765
)

func setShopFence(t *testing.T) {
	t.Helper()
	config.C.ShopLat = shopLat
	config.C.ShopLng = shopLng
	config.C.ShopRadiusM = 20
}

func TestClockInInsideFence(t *testing.T) {
	setupTestDB(t)
	setShopFence(t)
	op := makeUser(t, "Clock Op", "5032000001", models.RoleOperator)

	req := authedRequest(t, "POST", "/api/v1/timecard/clock-in",
		map[string]float64{"latitude": shopLat, "longitude": shopLng}, claimsFor(op))
	rec := httptest.NewRecorder()
	ClockIn(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var card models.Timecard
	decodeData(t, rec, &card)
	assert.Equal(t, op.ID, card.UserID)
	assert.Nil(t, card.ClockOutTime)
}

func TestClockInOutsideFence(t *testing.T) {
	setupTestDB(t)
	setShopFence(t)
	op := makeUser(t, "Far Op", "5032000002", models.RoleOperator)

	// ~111m north of the shop, well past the 20m fence.
	req := authedRequest(t, "POST", "/api/v1/timecard/clock-in",
		map[string]float64{"latitude": shopLat + 0.001, "longitude": shopLng}, claimsFor(op))
	rec := httptest.NewRecorder()
	ClockIn(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	dist, ok := body["distanceMeters"].(float64)
	require.True(t, ok, "response missing distanceMeters: %s", rec.Body.String())
	assert.Greater(t, dist, 100.0)
}

func TestClockInTwiceConflicts(t *testing.T) {
	setupTestDB(t)
	setShopFence(t)
	op := makeUser(t, "Double Op", "5032000003", models.RoleOperator)

	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		req := authedRequest(t, "POST", "/api/v1/timecard/clock-in",
			map[string]float64{"latitude": shopLat, "longitude": shopLng}, claimsFor(op))
		rec := httptest.NewRecorder()
		ClockIn(rec, req)
		assert.Equal(t, want, rec.Code, "attempt %d", i+1)
	}
}

func TestClockOutDerivesHours(t *testing.T) {
	db := setupTestDB(t)
	setShopFence(t)
	op := makeUser(t, "Hours Op", "5032000004", models.RoleOperator)

	// Seed an open card that started 8h ago.
	card := models.Timecard{
		UserID:      op.ID,
		ClockInTime: time.Now().Add(-8 * time.Hour),
		ClockInLat:  shopLat,
		ClockInLng:  shopLng,
	}
	require.NoError(t, db.Create(&card).Error)

	req := authedRequest(t, "POST", "/api/v1/timecard/clock-out",
		map[string]float64{"latitude": shopLat, "longitude": shopLng}, claimsFor(op))
	rec := httptest.NewRecorder()
	ClockOut(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var closed models.Timecard
	decodeData(t, rec, &closed)
	require.NotNil(t, closed.ClockOutTime)
	require.NotNil(t, closed.TotalHours)
	assert.InDelta(t, 8.0, *closed.TotalHours, 0.02)
}

func TestClockOutWithoutOpenCard(t *testing.T) {
	setupTestDB(t)
	setShopFence(t)
	op := makeUser(t, "No Card Op", "5032000005", models.RoleOperator)

	req := authedRequest(t, "POST", "/api/v1/timecard/clock-out",
		map[string]float64{"latitude": shopLat, "longitude": shopLng}, claimsFor(op))
	rec := httptest.NewRecorder()
	ClockOut(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestClockInRejectsBadCoordinates(t *testing.T) {
	setupTestDB(t)
	setShopFence(t)
	op := makeUser(t, "Bad Coord Op", "5032000006", models.RoleOperator)

	req := authedRequest(t, "POST", "/api/v1/timecard/clock-in",
		map[string]float64{"latitude": 123.0, "longitude": 500.0}, claimsFor(op))
	rec := httptest.NewRecorder()
	ClockIn(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListMyTimecards(t *testing.T) {
	db := setupTestDB(t)
	op := makeUser(t, "List Op", "5032000007", models.RoleOperator)
	other := makeUser(t, "Other List Op", "5032000008", models.RoleOperator)

	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.Timecard{
			UserID:      op.ID,
			ClockInTime: time.Now().Add(time.Duration(-i) * 24 * time.Hour),
		}).Error)
	}
	require.NoError(t, db.Create(&models.Timecard{UserID: other.ID, ClockInTime: time.Now()}).Error)

	req := authedRequest(t, "GET", "/api/v1/timecard", nil, claimsFor(op))
	rec := httptest.NewRecorder()
	ListMyTimecards(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var cards []models.Timecard
	decodeData(t, rec, &cards)
	assert.Len(t, cards, 3)
	for _, c := range cards {
		assert.Equal(t, op.ID, c.UserID)
	}
}

func TestListAllTimecardsFilters(t *testing.T) {
	db := setupTestDB(t)
	admin := makeUser(t, "Card Admin", "5032000009", models.RoleAdmin)
	op := makeUser(t, "Filtered Op", "5032000010", models.RoleOperator)

	old := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	recent := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.Timecard{UserID: op.ID, ClockInTime: old}).Error)
	require.NoError(t, db.Create(&models.Timecard{UserID: op.ID, ClockInTime: recent}).Error)

	req := authedRequest(t, "GET", "/api/v1/admin/timecards?from=2025-06-01", nil, claimsFor(admin))
	rec := httptest.NewRecorder()
	ListAllTimecards(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var cards []models.Timecard
	decodeData(t, rec, &cards)
	require.Len(t, cards, 1)
	assert.True(t, cards[0].ClockInTime.Equal(recent))
}
