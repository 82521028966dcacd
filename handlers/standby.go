package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"p9e.in/corecut/config"
	"p9e.in/corecut/middleware"
	"p9e.in/corecut/models"
)

// ListStandby returns standby intervals for ?jobOrderId= (admin: any job,
// operator: own assignment).
func ListStandby(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	jobID, err := uuid.Parse(r.URL.Query().Get("jobOrderId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "jobOrderId query parameter is required")
		return
	}

	var job models.JobOrder
	if err := config.DB.First(&job, "id = ?", jobID).Error; err != nil {
		writeError(w, http.StatusNotFound, "job order not found")
		return
	}
	if claims.Role != models.RoleAdmin && (job.AssignedTo == nil || job.AssignedTo.String() != claims.UserID) {
		writeError(w, http.StatusForbidden, "job order is not assigned to you")
		return
	}

	var logs []models.StandbyLog
	if err := config.DB.Where("job_order_id = ?", jobID).Order("started_at ASC").Find(&logs).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, logs)
}

type startStandbyReq struct {
	JobOrderID uuid.UUID `json:"jobOrderId"`
	Reason     string    `json:"reason"`
}

// StartStandby opens a billable idle interval on a job. Only one may be
// open per (job, operator) at a time.
func StartStandby(w http.ResponseWriter, r *http.Request) {
	operatorID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req startStandbyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "reason is required")
		return
	}

	var job models.JobOrder
	if err := config.DB.First(&job, "id = ?", req.JobOrderID).Error; err != nil {
		writeError(w, http.StatusNotFound, "job order not found")
		return
	}
	if middleware.GetRole(r) != models.RoleAdmin && (job.AssignedTo == nil || *job.AssignedTo != operatorID) {
		writeError(w, http.StatusForbidden, "job order is not assigned to you")
		return
	}

	var open models.StandbyLog
	err = config.DB.Where("job_order_id = ? AND operator_id = ? AND ended_at IS NULL", job.ID, operatorID).First(&open).Error
	if err == nil {
		writeError(w, http.StatusConflict, "a standby interval is already open on this job")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	sb := models.StandbyLog{
		JobOrderID: job.ID,
		OperatorID: operatorID,
		Reason:     req.Reason,
		StartedAt:  time.Now(),
	}
	if err := config.DB.Create(&sb).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusCreated, sb)
}

type endStandbyReq struct {
	StandbyID uuid.UUID `json:"standbyId"`
}

// EndStandby closes an open interval and derives its billable minutes.
func EndStandby(w http.ResponseWriter, r *http.Request) {
	operatorID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req endStandbyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var sb models.StandbyLog
	if err := config.DB.First(&sb, "id = ?", req.StandbyID).Error; err != nil {
		writeError(w, http.StatusNotFound, "standby log not found")
		return
	}
	if middleware.GetRole(r) != models.RoleAdmin && sb.OperatorID != operatorID {
		writeError(w, http.StatusForbidden, "standby log belongs to another operator")
		return
	}
	if sb.EndedAt != nil {
		writeError(w, http.StatusConflict, "standby interval already closed")
		return
	}

	sb.Close(time.Now())
	if err := config.DB.Save(&sb).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, sb)
}
