package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"p9e.in/corecut/config"
	"p9e.in/corecut/middleware"
	"p9e.in/corecut/models"
	"p9e.in/corecut/utils"
)

type clockReq struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// checkShopFence validates the reported point against the configured shop
// geofence and writes the 403 (with distance) itself when outside.
func checkShopFence(w http.ResponseWriter, lat, lng float64) bool {
	if err := utils.ValidateCoordinate(lat, lng); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	ok, dist := utils.WithinRadius(lat, lng, config.C.ShopLat, config.C.ShopLng, config.C.ShopRadiusM)
	if !ok {
		writeErrorExtra(w, http.StatusForbidden,
			fmt.Sprintf("you are %.0f m from the shop, clock in within %.0f m", dist, config.C.ShopRadiusM),
			map[string]interface{}{"distanceMeters": dist})
		return false
	}
	return true
}

// ClockIn opens a timecard at the shop. At most one card may be open per
// user; a second clock-in while one is open fails with 409.
func ClockIn(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req clockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !checkShopFence(w, req.Latitude, req.Longitude) {
		return
	}

	var open models.Timecard
	err = config.DB.Where("user_id = ? AND clock_out_time IS NULL", userID).First(&open).Error
	if err == nil {
		writeError(w, http.StatusConflict, "a timecard is already open, clock out first")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	card := models.Timecard{
		UserID:      userID,
		ClockInTime: time.Now(),
		ClockInLat:  req.Latitude,
		ClockInLng:  req.Longitude,
	}
	if err := config.DB.Create(&card).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusCreated, card)
}

// ClockOut closes the caller's open timecard and derives total hours.
func ClockOut(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req clockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !checkShopFence(w, req.Latitude, req.Longitude) {
		return
	}

	var card models.Timecard
	err = config.DB.Where("user_id = ? AND clock_out_time IS NULL", userID).First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusConflict, "no open timecard to close")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	card.Close(time.Now(), req.Latitude, req.Longitude)
	if err := config.DB.Save(&card).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, card)
}

// ListMyTimecards returns the caller's timecards newest-first.
func ListMyTimecards(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var cards []models.Timecard
	if err := config.DB.Where("user_id = ?", userID).Order("clock_in_time DESC").Find(&cards).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, cards)
}

// ListAllTimecards is the admin view, optionally filtered by ?userId= and
// a ?from=/?to= date window on clock-in.
func ListAllTimecards(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Order("clock_in_time DESC")
	if userID := r.URL.Query().Get("userId"); userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if from := r.URL.Query().Get("from"); from != "" {
		day, err := time.Parse("2006-01-02", from)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from filter, want YYYY-MM-DD")
			return
		}
		q = q.Where("clock_in_time >= ?", day)
	}
	if to := r.URL.Query().Get("to"); to != "" {
		day, err := time.Parse("2006-01-02", to)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to filter, want YYYY-MM-DD")
			return
		}
		q = q.Where("clock_in_time < ?", day.AddDate(0, 0, 1))
	}
	var cards []models.Timecard
	if err := q.Find(&cards).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, cards)
}
