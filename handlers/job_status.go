package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"p9e.in/corecut/config"
	"p9e.in/corecut/middleware"
	"p9e.in/corecut/models"
	"p9e.in/corecut/pkg/logger"
	"p9e.in/corecut/utils"
)

type statusUpdateReq struct {
	Status    string   `json:"status"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// stampColumns maps the three stamped transitions to their column triples.
var stampColumns = map[string][3]string{
	models.StatusInRoute:    {"route_started_at", "route_start_lat", "route_start_lng"},
	models.StatusInProgress: {"work_started_at", "work_start_lat", "work_start_lng"},
	models.StatusCompleted:  {"work_completed_at", "work_complete_lat", "work_complete_lng"},
}

// stampAlreadySet reports whether the job already carries the timestamp
// for the given target status. Stamps are set once; a repeated call to the
// same transition leaves them untouched.
func stampAlreadySet(job *models.JobOrder, status string) bool {
	switch status {
	case models.StatusInRoute:
		return job.RouteStartedAt != nil
	case models.StatusInProgress:
		return job.WorkStartedAt != nil
	case models.StatusCompleted:
		return job.WorkCompletedAt != nil
	}
	return false
}

// UpdateJobStatus transitions a job's coarse status. The caller must be
// the assigned operator or an admin. in_route / in_progress / completed
// stamp a one-time timestamp+coordinate pair; an allow-list of extra
// payload fields may merge into the same update.
func UpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	callerID, err := uuid.Parse(claims.UserID)
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
	var req statusUpdateReq
	if raw, ok := payload["status"]; ok {
		json.Unmarshal(raw, &req.Status)
	}
	if raw, ok := payload["latitude"]; ok {
		json.Unmarshal(raw, &req.Latitude)
	}
	if raw, ok := payload["longitude"]; ok {
		json.Unmarshal(raw, &req.Longitude)
	}

	if !models.ValidStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "invalid status: "+req.Status)
		return
	}
	if req.Latitude != nil && req.Longitude != nil {
		if err := utils.ValidateCoordinate(*req.Latitude, *req.Longitude); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	var job models.JobOrder
	if err := config.DB.First(&job, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "job order not found")
		return
	}
	if claims.Role != models.RoleAdmin && (job.AssignedTo == nil || *job.AssignedTo != callerID) {
		writeError(w, http.StatusForbidden, "job order is not assigned to you")
		return
	}

	before := job
	now := time.Now()
	updates := map[string]interface{}{"status": req.Status}

	if cols, stamped := stampColumns[req.Status]; stamped && !stampAlreadySet(&job, req.Status) {
		updates[cols[0]] = now
		if req.Latitude != nil {
			updates[cols[1]] = *req.Latitude
		}
		if req.Longitude != nil {
			updates[cols[2]] = *req.Longitude
		}
	}

	// Merge allow-listed extra fields present in the payload.
	for key, col := range models.StatusExtraFields {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid value for "+key)
			return
		}
		switch col {
		case "photos":
			updates[col] = datatypes.JSON(raw)
		case "liability_release_signed_at", "silica_form_signed_at", "end_date":
			if v == nil {
				continue
			}
			var jt models.JSONTime
			if err := json.Unmarshal(raw, &jt); err != nil {
				writeError(w, http.StatusBadRequest, "invalid value for "+key)
				return
			}
			updates[col] = time.Time(jt)
		default:
			updates[col] = v
		}
	}

	if err := config.DB.Model(&models.JobOrder{}).Where("id = ?", job.ID).Updates(updates).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	var after models.JobOrder
	if err := config.DB.First(&after, "id = ?", job.ID).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	recordStatusHistory(after.ID, callerID, req.Status, req.Latitude, req.Longitude, now)
	recordStatusHistoryEntry(before, after, callerID)
	writeData(w, http.StatusOK, after)
}

// recordStatusHistory upserts the per-status breadcrumb row. Best effort:
// a failure is logged and the transition still succeeds.
func recordStatusHistory(jobID, operatorID uuid.UUID, status string, lat, lng *float64, at time.Time) {
	entry := models.StatusHistory{
		JobOrderID: jobID,
		OperatorID: operatorID,
		Status:     status,
		Latitude:   lat,
		Longitude:  lng,
		RecordedAt: at,
	}
	err := config.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_order_id"}, {Name: "status"}},
		DoNothing: true,
	}).Create(&entry).Error
	if err != nil {
		logger.L.Warn().Err(err).Str("job", jobID.String()).Str("status", status).Msg("status history write failed")
	}
}
