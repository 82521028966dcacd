package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p9e.in/corecut/models"
)

func TestStartStandby(t *testing.T) {
	setupTestDB(t)
	op := makeUser(t, "Standby Op", "5039000001", models.RoleOperator)
	job := makeJob(t, op, models.StatusInProgress)

	body := map[string]interface{}{
		"jobOrderId": job.ID,
		"reason":     "waiting on GC to clear the pour area",
	}
	req := authedRequest(t, "POST", "/api/v1/standby", body, claimsFor(op))
	rec := httptest.NewRecorder()
	StartStandby(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sb models.StandbyLog
	decodeData(t, rec, &sb)
	assert.Equal(t, job.ID, sb.JobOrderID)
	assert.Nil(t, sb.EndedAt)

	// A second open interval on the same job conflicts.
	req = authedRequest(t, "POST", "/api/v1/standby", body, claimsFor(op))
	rec = httptest.NewRecorder()
	StartStandby(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStartStandbyRequiresReason(t *testing.T) {
	setupTestDB(t)
	op := makeUser(t, "Mute Op", "5039000002", models.RoleOperator)
	job := makeJob(t, op, models.StatusInProgress)

	req := authedRequest(t, "POST", "/api/v1/standby",
		map[string]interface{}{"jobOrderId": job.ID}, claimsFor(op))
	rec := httptest.NewRecorder()
	StartStandby(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEndStandbyDerivesMinutes(t *testing.T) {
	db := setupTestDB(t)
	op := makeUser(t, "End Op", "5039000003", models.RoleOperator)
	job := makeJob(t, op, models.StatusInProgress)

	sb := models.StandbyLog{
		JobOrderID: job.ID,
		OperatorID: op.ID,
		Reason:     "utility locate not done",
		StartedAt:  time.Now().Add(-45 * time.Minute),
	}
	require.NoError(t, db.Create(&sb).Error)

	req := authedRequest(t, "PUT", "/api/v1/standby",
		map[string]interface{}{"standbyId": sb.ID}, claimsFor(op))
	rec := httptest.NewRecorder()
	EndStandby(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var closed models.StandbyLog
	decodeData(t, rec, &closed)
	require.NotNil(t, closed.EndedAt)
	require.NotNil(t, closed.Minutes)
	assert.InDelta(t, 45, *closed.Minutes, 1)

	// Already closed: conflict.
	req = authedRequest(t, "PUT", "/api/v1/standby",
		map[string]interface{}{"standbyId": sb.ID}, claimsFor(op))
	rec = httptest.NewRecorder()
	EndStandby(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestEndStandbyWrongOperator(t *testing.T) {
	db := setupTestDB(t)
	op := makeUser(t, "Own Op", "5039000004", models.RoleOperator)
	other := makeUser(t, "Thief Op", "5039000005", models.RoleOperator)
	job := makeJob(t, op, models.StatusInProgress)

	sb := models.StandbyLog{
		JobOrderID: job.ID,
		OperatorID: op.ID,
		Reason:     "customer rep late",
		StartedAt:  time.Now(),
	}
	require.NoError(t, db.Create(&sb).Error)

	req := authedRequest(t, "PUT", "/api/v1/standby",
		map[string]interface{}{"standbyId": sb.ID}, claimsFor(other))
	rec := httptest.NewRecorder()
	EndStandby(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
