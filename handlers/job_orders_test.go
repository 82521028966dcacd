package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p9e.in/corecut/models"
)

func TestCreateJobOrder(t *testing.T) {
	setupTestDB(t)
	admin := makeUser(t, "Sched Admin", "5035000001", models.RoleAdmin)
	op := makeUser(t, "Sched Op", "5035000002", models.RoleOperator)

	body := map[string]interface{}{
		"jobNumber":     "JO-2025-0042",
		"customerName":  "Ridgeline Homes",
		"siteAddress":   "880 NW Industrial Way",
		"jobScope":      "slab sawing, 40 lf",
		"scheduledDate": "2025-09-02",
		"assignedTo":    op.ID,
	}
	req := authedRequest(t, "POST", "/api/v1/admin/job-orders", body, claimsFor(admin))
	rec := httptest.NewRecorder()
	CreateJobOrder(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var job models.JobOrder
	decodeData(t, rec, &job)
	// Assigning at creation moves scheduled straight to assigned.
	assert.Equal(t, models.StatusAssigned, job.Status)
	assert.Equal(t, admin.ID, job.CreatedBy)
	require.NotNil(t, job.AssignedTo)
	assert.Equal(t, op.ID, *job.AssignedTo)
}

func TestCreateJobOrderMissingFields(t *testing.T) {
	setupTestDB(t)
	admin := makeUser(t, "Strict Admin", "5035000003", models.RoleAdmin)

	req := authedRequest(t, "POST", "/api/v1/admin/job-orders",
		map[string]interface{}{"customerName": "No Number Co"}, claimsFor(admin))
	rec := httptest.NewRecorder()
	CreateJobOrder(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListJobOrdersVisibility(t *testing.T) {
	setupTestDB(t)
	admin := makeUser(t, "Vis Admin", "5035000004", models.RoleAdmin)
	opA := makeUser(t, "Vis Op A", "5035000005", models.RoleOperator)
	opB := makeUser(t, "Vis Op B", "5035000006", models.RoleOperator)
	makeJob(t, opA, models.StatusAssigned)
	makeJob(t, opA, models.StatusAssigned)
	makeJob(t, opB, models.StatusAssigned)

	req := authedRequest(t, "GET", "/api/v1/job-orders", nil, claimsFor(opA))
	rec := httptest.NewRecorder()
	ListJobOrders(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var jobs []models.JobOrder
	decodeData(t, rec, &jobs)
	assert.Len(t, jobs, 2, "operator sees only own assignments")

	req = authedRequest(t, "GET", "/api/v1/admin/job-orders", nil, claimsFor(admin))
	rec = httptest.NewRecorder()
	ListJobOrders(rec, req)
	decodeData(t, rec, &jobs)
	assert.Len(t, jobs, 3, "admin sees everything")
}

func TestGetJobOrderForbiddenForOtherOperator(t *testing.T) {
	setupTestDB(t)
	opA := makeUser(t, "Get Op A", "5035000007", models.RoleOperator)
	opB := makeUser(t, "Get Op B", "5035000008", models.RoleOperator)
	job := makeJob(t, opA, models.StatusAssigned)

	req := authedRequest(t, "GET", "/api/v1/job-orders/"+job.ID.String(), nil, claimsFor(opB))
	req = mux.SetURLVars(req, map[string]string{"id": job.ID.String()})
	rec := httptest.NewRecorder()
	GetJobOrder(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func patchJob(t *testing.T, job *models.JobOrder, body map[string]interface{}, admin *models.User) *httptest.ResponseRecorder {
	t.Helper()
	req := authedRequest(t, "PATCH", "/api/v1/admin/job-orders/"+job.ID.String(), body, claimsFor(admin))
	req = mux.SetURLVars(req, map[string]string{"id": job.ID.String()})
	rec := httptest.NewRecorder()
	PatchJobOrder(rec, req)
	return rec
}

func TestPatchJobOrderWritesAuditHistory(t *testing.T) {
	db := setupTestDB(t)
	admin := makeUser(t, "Patch Admin", "5035000009", models.RoleAdmin)
	op := makeUser(t, "Patch Op", "5035000010", models.RoleOperator)
	job := makeJob(t, op, models.StatusAssigned)

	rec := patchJob(t, job, map[string]interface{}{
		"customerName": "Renamed Builders",
		"notes":        "gate code 4411",
	}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var entries []models.JobOrderHistory
	require.NoError(t, db.Where("job_order_id = ?", job.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, models.HistoryUpdated, entries[0].Action)
	assert.Equal(t, admin.ID, entries[0].ChangedBy)
	assert.Contains(t, string(entries[0].Changes), "customer_name")
	assert.Contains(t, string(entries[0].Changes), "Renamed Builders")
	assert.NotEmpty(t, entries[0].Snapshot)
}

func TestPatchJobOrderNoOpSkipsHistory(t *testing.T) {
	db := setupTestDB(t)
	admin := makeUser(t, "Noop Admin", "5035000011", models.RoleAdmin)
	op := makeUser(t, "Noop Op", "5035000012", models.RoleOperator)
	job := makeJob(t, op, models.StatusAssigned)

	// Patch the same value back in: no tracked column changes, no entry.
	rec := patchJob(t, job, map[string]interface{}{"customerName": job.CustomerName}, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, db.Model(&models.JobOrderHistory{}).Where("job_order_id = ?", job.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPatchJobOrderIgnoresStampFields(t *testing.T) {
	setupTestDB(t)
	admin := makeUser(t, "Stamp Admin", "5035000013", models.RoleAdmin)
	op := makeUser(t, "Stamp Patch Op", "5035000014", models.RoleOperator)
	job := makeJob(t, op, models.StatusAssigned)

	// Workflow stamps are not patchable; a payload of only those is a 400.
	rec := patchJob(t, job, map[string]interface{}{
		"routeStartedAt": "2025-09-02T08:00:00Z",
		"workStartedAt":  "2025-09-02T09:00:00Z",
	}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteJobOrderWritesHistoryAndSoftDeletes(t *testing.T) {
	db := setupTestDB(t)
	admin := makeUser(t, "Del Admin", "5035000015", models.RoleAdmin)
	op := makeUser(t, "Del Op", "5035000016", models.RoleOperator)
	job := makeJob(t, op, models.StatusAssigned)

	req := authedRequest(t, "DELETE", "/api/v1/admin/job-orders/"+job.ID.String(), nil, claimsFor(admin))
	req = mux.SetURLVars(req, map[string]string{"id": job.ID.String()})
	rec := httptest.NewRecorder()
	DeleteJobOrder(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var entries []models.JobOrderHistory
	require.NoError(t, db.Where("job_order_id = ?", job.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, models.HistoryDeleted, entries[0].Action)

	// Soft deleted: invisible normally, still present unscoped.
	var gone models.JobOrder
	assert.Error(t, db.First(&gone, "id = ?", job.ID).Error)
	require.NoError(t, db.Unscoped().First(&gone, "id = ?", job.ID).Error)
	assert.True(t, gone.DeletedAt.Valid)
}

func TestGetJobHistoryFormatted(t *testing.T) {
	setupTestDB(t)
	admin := makeUser(t, "Hist Admin", "5035000017", models.RoleAdmin)
	op := makeUser(t, "Hist Op", "5035000018", models.RoleOperator)
	job := makeJob(t, op, models.StatusAssigned)

	rec := patchJob(t, job, map[string]interface{}{"customerName": "Formatted Co"}, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	req := authedRequest(t, "GET", "/api/v1/job-orders/"+job.ID.String()+"/history", nil, claimsFor(op))
	req = mux.SetURLVars(req, map[string]string{"id": job.ID.String()})
	hrec := httptest.NewRecorder()
	GetJobHistory(hrec, req)
	require.Equal(t, http.StatusOK, hrec.Code)

	var out []struct {
		Action    string   `json:"action"`
		Formatted []string `json:"formatted"`
	}
	decodeData(t, hrec, &out)
	require.Len(t, out, 1)
	assert.Equal(t, models.HistoryUpdated, out[0].Action)
	require.NotEmpty(t, out[0].Formatted)
	assert.Contains(t, out[0].Formatted[0], "Customer Name:")
	assert.Contains(t, out[0].Formatted[0], "Formatted Co")
}
