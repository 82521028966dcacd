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

type ratingReq struct {
	Score int `json:"score"`
}

// SubmitRating records the customer's score on a completed job and folds
// it into the assigned operator's running average. The average moves with
// one SQL expression update, so concurrent submissions cannot lose counts:
// new_avg = (old_avg*old_count + score) / (old_count+1).
func SubmitRating(w http.ResponseWriter, r *http.Request) {
	callerID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := mux.Vars(r)["id"]

	var req ratingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Score < 1 || req.Score > 10 {
		writeError(w, http.StatusBadRequest, "score must be between 1 and 10")
		return
	}

	var job models.JobOrder
	if err := config.DB.First(&job, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "job order not found")
		return
	}
	if middleware.GetRole(r) != models.RoleAdmin && (job.AssignedTo == nil || *job.AssignedTo != callerID) {
		writeError(w, http.StatusForbidden, "job order is not assigned to you")
		return
	}
	if job.CustomerRating != nil {
		writeError(w, http.StatusConflict, "job already has a rating")
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.JobOrder{}).Where("id = ?", job.ID).
			Update("customer_rating", req.Score).Error; err != nil {
			return err
		}
		if job.AssignedTo == nil {
			return nil
		}
		return tx.Model(&models.User{}).Where("id = ?", *job.AssignedTo).
			Updates(map[string]interface{}{
				"rating_avg":   gorm.Expr("(rating_avg * rating_count + ?) / (rating_count + 1)", float64(req.Score)),
				"rating_count": gorm.Expr("rating_count + 1"),
			}).Error
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{
		"jobOrderId": job.ID,
		"score":      req.Score,
	})
}
