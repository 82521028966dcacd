package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p9e.in/corecut/config"
	"p9e.in/corecut/models"
)

func postStatus(t *testing.T, job *models.JobOrder, body map[string]interface{}, u *models.User) *httptest.ResponseRecorder {
	t.Helper()
	req := authedRequest(t, "POST", "/api/v1/job-orders/"+job.ID.String()+"/status", body, claimsFor(u))
	req = mux.SetURLVars(req, map[string]string{"id": job.ID.String()})
	rec := httptest.NewRecorder()
	UpdateJobStatus(rec, req)
	return rec
}

func TestUpdateJobStatusStampsOnce(t *testing.T) {
	setupTestDB(t)
	op := makeUser(t, "Stamp Op", "5031000001", models.RoleOperator)
	job := makeJob(t, op, models.StatusAssigned)

	rec := postStatus(t, job, map[string]interface{}{
		"status":    models.StatusInRoute,
		"latitude":  45.5231,
		"longitude": -122.6765,
	}, op)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var after models.JobOrder
	decodeData(t, rec, &after)
	require.NotNil(t, after.RouteStartedAt)
	require.NotNil(t, after.RouteStartLat)
	assert.InDelta(t, 45.5231, *after.RouteStartLat, 1e-9)
	firstStamp := *after.RouteStartedAt

	// Re-entering the same status must not move the stamp.
	rec = postStatus(t, job, map[string]interface{}{
		"status":    models.StatusInRoute,
		"latitude":  45.6,
		"longitude": -122.7,
	}, op)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &after)
	require.NotNil(t, after.RouteStartedAt)
	assert.True(t, after.RouteStartedAt.Equal(firstStamp), "stamp moved on re-entry")
	assert.InDelta(t, 45.5231, *after.RouteStartLat, 1e-9)
}

func TestUpdateJobStatusInvalidStatus(t *testing.T) {
	setupTestDB(t)
	op := makeUser(t, "Bad Status Op", "5031000002", models.RoleOperator)
	job := makeJob(t, op, models.StatusAssigned)

	rec := postStatus(t, job, map[string]interface{}{"status": "teleporting"}, op)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateJobStatusForbiddenForUnassigned(t *testing.T) {
	setupTestDB(t)
	assigned := makeUser(t, "Assigned Op", "5031000003", models.RoleOperator)
	other := makeUser(t, "Other Op", "5031000004", models.RoleOperator)
	job := makeJob(t, assigned, models.StatusAssigned)

	rec := postStatus(t, job, map[string]interface{}{"status": models.StatusInRoute}, other)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateJobStatusAdminOverride(t *testing.T) {
	setupTestDB(t)
	op := makeUser(t, "Crew Op", "5031000005", models.RoleOperator)
	admin := makeUser(t, "Dispatch Admin", "5031000006", models.RoleAdmin)
	job := makeJob(t, op, models.StatusInProgress)

	rec := postStatus(t, job, map[string]interface{}{"status": models.StatusCancelled}, admin)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestUpdateJobStatusMergesExtraFields(t *testing.T) {
	setupTestDB(t)
	op := makeUser(t, "Merge Op", "5031000007", models.RoleOperator)
	job := makeJob(t, op, models.StatusInProgress)

	rec := postStatus(t, job, map[string]interface{}{
		"status":             models.StatusCompleted,
		"latitude":           45.52,
		"longitude":          -122.67,
		"workPerformed":      "cut 2 door openings, cored 4 holes",
		"completionNotes":    "slab thicker than drawings",
		"customerSignedName": "J. Alvarez",
	}, op)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var after models.JobOrder
	decodeData(t, rec, &after)
	assert.Equal(t, models.StatusCompleted, after.Status)
	require.NotNil(t, after.WorkPerformed)
	assert.Equal(t, "cut 2 door openings, cored 4 holes", *after.WorkPerformed)
	require.NotNil(t, after.CustomerSignedName)
	assert.Equal(t, "J. Alvarez", *after.CustomerSignedName)
	assert.NotNil(t, after.WorkCompletedAt)
}

func TestUpdateJobStatusIgnoresUnknownFields(t *testing.T) {
	setupTestDB(t)
	op := makeUser(t, "Strict Op", "5031000008", models.RoleOperator)
	job := makeJob(t, op, models.StatusAssigned)

	rec := postStatus(t, job, map[string]interface{}{
		"status":       models.StatusInRoute,
		"jobNumber":    "HACKED-1",
		"customerName": "Mallory Inc",
	}, op)
	require.Equal(t, http.StatusOK, rec.Code)

	var after models.JobOrder
	decodeData(t, rec, &after)
	assert.Equal(t, job.JobNumber, after.JobNumber)
	assert.Equal(t, "Cascade Builders", after.CustomerName)
}

func TestUpdateJobStatusWritesStatusHistoryOnce(t *testing.T) {
	db := setupTestDB(t)
	op := makeUser(t, "History Op", "5031000009", models.RoleOperator)
	job := makeJob(t, op, models.StatusAssigned)

	for i := 0; i < 2; i++ {
		rec := postStatus(t, job, map[string]interface{}{
			"status":    models.StatusInRoute,
			"latitude":  45.52,
			"longitude": -122.67,
		}, op)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	var count int64
	require.NoError(t, db.Model(&models.StatusHistory{}).
		Where("job_order_id = ? AND status = ?", job.ID, models.StatusInRoute).
		Count(&count).Error)
	assert.Equal(t, int64(1), count, "idempotent transition duplicated the status history row")
}

func TestUpdateJobStatusNotFound(t *testing.T) {
	setupTestDB(t)
	op := makeUser(t, "Lost Op", "5031000010", models.RoleOperator)
	ghost := makeJob(t, op, models.StatusAssigned)
	require.NoError(t, config.DB.Unscoped().Delete(ghost).Error)

	rec := postStatus(t, ghost, map[string]interface{}{"status": models.StatusInRoute}, op)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
