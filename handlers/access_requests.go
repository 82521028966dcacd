package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"p9e.in/corecut/config"
	"p9e.in/corecut/middleware"
	"p9e.in/corecut/models"
)

type accessRequestReq struct {
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	DateOfBirth   models.JSONTime `json:"dateOfBirth"`
	RequestedRole string          `json:"requestedRole"`
}

// SubmitAccessRequest is the public application endpoint. Applicants must
// be 18 on the day of submission; the 18th birthday itself qualifies.
func SubmitAccessRequest(w http.ResponseWriter, r *http.Request) {
	var req accessRequestReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name == "" || req.Phone == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "name, email and phone are required")
		return
	}
	if time.Time(req.DateOfBirth).IsZero() {
		writeError(w, http.StatusBadRequest, "dateOfBirth is required")
		return
	}
	role := req.RequestedRole
	if role == "" {
		role = models.RoleOperator
	}

	ar := models.AccessRequest{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		DateOfBirth:   req.DateOfBirth,
		RequestedRole: role,
	}
	if err := ar.CheckAge(time.Now()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := config.DB.Create(&ar).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusCreated, ar)
}

// ListAccessRequests returns requests, optionally filtered by ?status=.
func ListAccessRequests(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Order("created_at DESC")
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var requests []models.AccessRequest
	if err := q.Find(&requests).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, requests)
}

type approveAccessReq struct {
	Password string `json:"password"`
	Role     string `json:"role"`
}

// ApproveAccessRequest creates the user and marks the request approved in
// one transaction. A second approval fails with 409 instead of creating a
// duplicate user.
func ApproveAccessRequest(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	adminID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req approveAccessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password for the new user is required")
		return
	}

	var ar models.AccessRequest
	if err := config.DB.First(&ar, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "access request not found")
		return
	}
	if ar.Status == models.AccessApproved {
		writeError(w, http.StatusConflict, "access request already approved")
		return
	}
	if ar.Status == models.AccessRejected {
		writeError(w, http.StatusConflict, "access request was rejected")
		return
	}

	role := req.Role
	if role == "" {
		role = ar.RequestedRole
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error hashing password")
		return
	}

	user := models.User{
		Name:         ar.Name,
		Email:        ar.Email,
		Phone:        ar.Phone,
		PasswordHash: string(hash),
		Role:         role,
	}
	now := time.Now()
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		// Re-check under the transaction so two concurrent approvals
		// cannot both pass the pending gate.
		var current models.AccessRequest
		if err := tx.First(&current, "id = ?", ar.ID).Error; err != nil {
			return err
		}
		if current.Status != models.AccessPending {
			return errAlreadyReviewed
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Model(&models.AccessRequest{}).
			Where("id = ?", ar.ID).
			Updates(map[string]interface{}{
				"status":          models.AccessApproved,
				"reviewed_by":     adminID,
				"reviewed_at":     now,
				"created_user_id": user.ID,
			}).Error
	})
	if err == errAlreadyReviewed {
		writeError(w, http.StatusConflict, "access request already approved")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{
		"requestId": ar.ID,
		"userId":    user.ID,
	})
}

// RejectAccessRequest marks a pending request rejected.
func RejectAccessRequest(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	adminID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var ar models.AccessRequest
	if err := config.DB.First(&ar, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "access request not found")
		return
	}
	if ar.Status != models.AccessPending {
		writeError(w, http.StatusConflict, "access request already reviewed")
		return
	}
	now := time.Now()
	if err := config.DB.Model(&ar).Updates(map[string]interface{}{
		"status":      models.AccessRejected,
		"reviewed_by": adminID,
		"reviewed_at": now,
	}).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, ar)
}
