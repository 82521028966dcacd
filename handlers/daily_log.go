package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"p9e.in/corecut/config"
	"p9e.in/corecut/middleware"
	"p9e.in/corecut/models"
)

// GetDailyLog lists a job's continuation entries oldest-first.
func GetDailyLog(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	id := mux.Vars(r)["id"]

	var job models.JobOrder
	if err := config.DB.First(&job, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "job order not found")
		return
	}
	if claims.Role != models.RoleAdmin && (job.AssignedTo == nil || job.AssignedTo.String() != claims.UserID) {
		writeError(w, http.StatusForbidden, "job order is not assigned to you")
		return
	}

	var entries []models.DailyLogEntry
	if err := config.DB.Where("job_order_id = ?", job.ID).Order("log_date ASC").Find(&entries).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, entries)
}

// AppendDailyLog records one day of work on a multi-day job. When the
// entry carries continueNextDay the job's workflow stamps and step flags
// are reset inside the same transaction. No other path ever clears them,
// so the crew starts the next morning from a clean slate.
func AppendDailyLog(w http.ResponseWriter, r *http.Request) {
	operatorID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := mux.Vars(r)["id"]

	var entry models.DailyLogEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if entry.Summary == "" {
		writeError(w, http.StatusBadRequest, "summary is required")
		return
	}

	var job models.JobOrder
	if err := config.DB.First(&job, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "job order not found")
		return
	}
	if middleware.GetRole(r) != models.RoleAdmin && (job.AssignedTo == nil || *job.AssignedTo != operatorID) {
		writeError(w, http.StatusForbidden, "job order is not assigned to you")
		return
	}

	entry.ID = uuid.Nil
	entry.JobOrderID = job.ID
	entry.OperatorID = operatorID

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		if !entry.ContinueNextDay {
			return nil
		}
		// Next-day reset: clear the stamp triples and return the job to
		// assigned status for tomorrow's run.
		if err := tx.Model(&models.JobOrder{}).Where("id = ?", job.ID).Updates(map[string]interface{}{
			"status":            models.StatusAssigned,
			"route_started_at":  nil,
			"route_start_lat":   nil,
			"route_start_lng":   nil,
			"work_started_at":   nil,
			"work_start_lat":    nil,
			"work_start_lng":    nil,
			"work_completed_at": nil,
			"work_complete_lat": nil,
			"work_complete_lng": nil,
		}).Error; err != nil {
			return err
		}
		var states []models.WorkflowState
		if err := tx.Where("job_order_id = ?", job.ID).Find(&states).Error; err != nil {
			return err
		}
		for i := range states {
			states[i].Reset()
			if err := tx.Save(&states[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusCreated, entry)
}
