package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"p9e.in/corecut/config"
	"p9e.in/corecut/middleware"
	"p9e.in/corecut/models"
)

// GetWorkflow returns the caller's step record for ?jobOrderId=, creating
// it with all flags false on first read.
func GetWorkflow(w http.ResponseWriter, r *http.Request) {
	operatorID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	jobID, err := uuid.Parse(r.URL.Query().Get("jobOrderId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "jobOrderId query parameter is required")
		return
	}

	state, err := loadOrCreateWorkflow(jobID, operatorID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, state)
}

type completeStepReq struct {
	JobOrderID    uuid.UUID    `json:"jobOrderId"`
	CompletedStep models.Step  `json:"completedStep"`
	CurrentStep   *models.Step `json:"currentStep,omitempty"`
}

// CompleteWorkflowStep marks one named step done. Steps complete strictly
// in field order: a completion whose prerequisites are unmet is rejected.
// Only the explicitly named flag flips; CurrentStep moves only when the
// client passes a new value.
func CompleteWorkflowStep(w http.ResponseWriter, r *http.Request) {
	operatorID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req completeStepReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.JobOrderID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "jobOrderId is required")
		return
	}
	if !models.ValidStep(req.CompletedStep) {
		writeError(w, http.StatusBadRequest, "unknown workflow step: "+string(req.CompletedStep))
		return
	}
	if req.CurrentStep != nil && !models.ValidStep(*req.CurrentStep) {
		writeError(w, http.StatusBadRequest, "unknown workflow step: "+string(*req.CurrentStep))
		return
	}

	var job models.JobOrder
	if err := config.DB.First(&job, "id = ?", req.JobOrderID).Error; err != nil {
		writeError(w, http.StatusNotFound, "job order not found")
		return
	}
	if job.AssignedTo == nil || *job.AssignedTo != operatorID {
		if middleware.GetRole(r) != models.RoleAdmin {
			writeError(w, http.StatusForbidden, "job order is not assigned to you")
			return
		}
	}

	state, err := loadOrCreateWorkflow(req.JobOrderID, operatorID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	if err := state.CompleteStep(req.CompletedStep); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.CurrentStep != nil {
		state.CurrentStep = *req.CurrentStep
	}

	// The row always exists by now, so a retry of the same completion
	// converges on one row.
	if err := config.DB.Save(state).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, state)
}

func loadOrCreateWorkflow(jobID, operatorID uuid.UUID) (*models.WorkflowState, error) {
	var state models.WorkflowState
	err := config.DB.
		Where("job_order_id = ? AND operator_id = ?", jobID, operatorID).
		First(&state).Error
	if err == nil {
		return &state, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	fresh := models.NewWorkflowState(jobID, operatorID)
	if err := config.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_order_id"}, {Name: "operator_id"}},
		DoNothing: true,
	}).Create(fresh).Error; err != nil {
		return nil, err
	}
	// Re-read so a concurrent creator's row wins over our zero-value one.
	if err := config.DB.
		Where("job_order_id = ? AND operator_id = ?", jobID, operatorID).
		First(&state).Error; err != nil {
		return nil, err
	}
	return &state, nil
}
