package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/datatypes"

	"p9e.in/corecut/config"
	"p9e.in/corecut/middleware"
	"p9e.in/corecut/models"
	"p9e.in/corecut/pkg/logger"
	"p9e.in/corecut/utils"
)

// ListJobOrders returns jobs visible to the caller: admins see everything,
// operators only their own assignments. Supports ?status= and ?date=
// (scheduled date, YYYY-MM-DD) filters.
func ListJobOrders(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	q := config.DB.Preload("Assignee").Order("scheduled_date DESC")
	if claims.Role != models.RoleAdmin {
		q = q.Where("assigned_to = ?", claims.UserID)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		if !models.ValidStatus(status) {
			writeError(w, http.StatusBadRequest, "invalid status filter: "+status)
			return
		}
		q = q.Where("status = ?", status)
	}
	if date := r.URL.Query().Get("date"); date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date filter, want YYYY-MM-DD")
			return
		}
		q = q.Where("scheduled_date >= ? AND scheduled_date < ?", day, day.AddDate(0, 0, 1))
	}

	var jobs []models.JobOrder
	if err := q.Find(&jobs).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, jobs)
}

// GetJobOrder returns one job with the same visibility rule as the list.
func GetJobOrder(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	id := mux.Vars(r)["id"]

	var job models.JobOrder
	if err := config.DB.Preload("Assignee").First(&job, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "job order not found")
		return
	}
	if claims.Role != models.RoleAdmin && (job.AssignedTo == nil || job.AssignedTo.String() != claims.UserID) {
		writeError(w, http.StatusForbidden, "job order is not assigned to you")
		return
	}
	writeData(w, http.StatusOK, job)
}

// CreateJobOrder is the admin entry point for scheduling new work.
func CreateJobOrder(w http.ResponseWriter, r *http.Request) {
	adminID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var job models.JobOrder
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if job.JobNumber == "" || job.CustomerName == "" || job.SiteAddress == "" {
		writeError(w, http.StatusBadRequest, "jobNumber, customerName and siteAddress are required")
		return
	}
	if job.Status == "" {
		job.Status = models.StatusScheduled
	}
	if !models.ValidStatus(job.Status) {
		writeError(w, http.StatusBadRequest, "invalid status: "+job.Status)
		return
	}
	if job.AssignedTo != nil && job.Status == models.StatusScheduled {
		job.Status = models.StatusAssigned
	}
	job.ID = uuid.Nil
	job.CreatedBy = adminID

	if err := config.DB.Create(&job).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusCreated, job)
}

// PatchJobOrder applies an allow-listed partial update and appends the
// audit diff to job order history. The diff is computed from the row this
// request read; concurrent editors race with last-write-wins semantics.
func PatchJobOrder(w http.ResponseWriter, r *http.Request) {
	adminID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := mux.Vars(r)["id"]

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var before models.JobOrder
	if err := config.DB.First(&before, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "job order not found")
		return
	}

	updates := make(map[string]interface{})
	for key, raw := range payload {
		col, ok := models.AdminPatchFields[key]
		if !ok {
			continue
		}
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid value for "+key)
			return
		}
		if col == "status" {
			s, _ := v.(string)
			if !models.ValidStatus(s) {
				writeError(w, http.StatusBadRequest, "invalid status: "+s)
				return
			}
		}
		if col == "scheduled_date" || col == "end_date" {
			if v == nil {
				updates[col] = nil
				continue
			}
			var jt models.JSONTime
			if err := json.Unmarshal(raw, &jt); err != nil {
				writeError(w, http.StatusBadRequest, "invalid value for "+key)
				return
			}
			updates[col] = time.Time(jt)
			continue
		}
		updates[col] = v
	}
	if len(updates) == 0 {
		writeError(w, http.StatusBadRequest, "no updatable fields in payload")
		return
	}

	if err := config.DB.Model(&models.JobOrder{}).Where("id = ?", before.ID).Updates(updates).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	var after models.JobOrder
	if err := config.DB.First(&after, "id = ?", before.ID).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	recordJobHistory(before, after, models.HistoryUpdated, adminID)
	writeData(w, http.StatusOK, after)
}

// DeleteJobOrder writes a final "deleted" history entry, then removes the
// row (soft delete).
func DeleteJobOrder(w http.ResponseWriter, r *http.Request) {
	adminID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := mux.Vars(r)["id"]

	var job models.JobOrder
	if err := config.DB.First(&job, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "job order not found")
		return
	}

	snapshot, _ := json.Marshal(job)
	entry := models.JobOrderHistory{
		JobOrderID: job.ID,
		Action:     models.HistoryDeleted,
		Snapshot:   datatypes.JSON(snapshot),
		ChangedBy:  adminID,
	}
	if err := config.DB.Create(&entry).Error; err != nil {
		// History is telemetry; deletion proceeds regardless.
		logger.L.Warn().Err(err).Str("job", job.ID.String()).Msg("history write failed on delete")
	}

	if err := config.DB.Delete(&job).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"deleted": job.ID})
}

// recordJobHistory diffs the tracked columns and appends one history row
// when anything changed. Failures are logged and swallowed; the audit
// trail must never fail the request that fed it.
func recordJobHistory(before, after models.JobOrder, action string, changedBy uuid.UUID) {
	diff := utils.ComputeDiff(before.AuditValues(), after.AuditValues(), models.AuditTrackedColumns)
	if len(diff) == 0 && action == models.HistoryUpdated {
		return
	}
	changes, err := json.Marshal(diff)
	if err != nil {
		logger.L.Warn().Err(err).Msg("history diff marshal failed")
		return
	}
	snapshot, err := json.Marshal(after)
	if err != nil {
		logger.L.Warn().Err(err).Msg("history snapshot marshal failed")
		return
	}
	entry := models.JobOrderHistory{
		JobOrderID: after.ID,
		Action:     action,
		Changes:    datatypes.JSON(changes),
		Snapshot:   datatypes.JSON(snapshot),
		ChangedBy:  changedBy,
	}
	if err := config.DB.Create(&entry).Error; err != nil {
		logger.L.Warn().Err(err).Str("job", after.ID.String()).Msg("history write failed")
	}
}

// recordStatusHistoryEntry is used by the status endpoint so a transition
// also lands in the audit trail with its own action tag.
func recordStatusHistoryEntry(before, after models.JobOrder, changedBy uuid.UUID) {
	recordJobHistory(before, after, models.HistoryStatusChanged, changedBy)
}
