package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"p9e.in/corecut/config"
	"p9e.in/corecut/middleware"
	"p9e.in/corecut/models"
)

var equipmentStatuses = map[string]bool{
	models.EquipmentAvailable:   true,
	models.EquipmentAssigned:    true,
	models.EquipmentMaintenance: true,
	models.EquipmentRetired:     true,
}

// ListEquipment returns the fleet, optionally filtered by ?status= / ?type=.
func ListEquipment(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Order("name ASC")
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if typ := r.URL.Query().Get("type"); typ != "" {
		q = q.Where("type = ?", typ)
	}
	var items []models.Equipment
	if err := q.Find(&items).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, items)
}

func GetEquipment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var item models.Equipment
	if err := config.DB.First(&item, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "equipment not found")
		return
	}
	writeData(w, http.StatusOK, item)
}

func CreateEquipment(w http.ResponseWriter, r *http.Request) {
	var item models.Equipment
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if item.SerialNumber == "" || item.Name == "" {
		writeError(w, http.StatusBadRequest, "serialNumber and name are required")
		return
	}
	if item.Status == "" {
		item.Status = models.EquipmentAvailable
	}
	if !equipmentStatuses[item.Status] {
		writeError(w, http.StatusBadRequest, "invalid equipment status: "+item.Status)
		return
	}
	item.ID = uuid.Nil
	if err := config.DB.Create(&item).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusCreated, item)
}

// PatchEquipment applies an allow-listed partial update.
func PatchEquipment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var item models.Equipment
	if err := config.DB.First(&item, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "equipment not found")
		return
	}

	updates := make(map[string]interface{})
	for key, raw := range payload {
		col, ok := models.EquipmentPatchFields[key]
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
			if !equipmentStatuses[s] {
				writeError(w, http.StatusBadRequest, "invalid equipment status: "+s)
				return
			}
		}
		updates[col] = v
	}
	if len(updates) == 0 {
		writeError(w, http.StatusBadRequest, "no updatable fields in payload")
		return
	}

	if err := config.DB.Model(&item).Updates(updates).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, item)
}

func DeleteEquipment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	result := config.DB.Where("id = ?", id).Delete(&models.Equipment{})
	if result.Error != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "equipment not found")
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"deleted": id})
}

// ConsumeStock atomically decrements a consumable's stock count. The
// single UPDATE with a guard predicate makes concurrent draws safe.
func ConsumeStock(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	result := config.DB.Model(&models.Equipment{}).
		Where("id = ? AND stock_count >= ?", id, req.Quantity).
		UpdateColumn("stock_count", gorm.Expr("stock_count - ?", req.Quantity))
	if result.Error != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		writeError(w, http.StatusConflict, "insufficient stock")
		return
	}

	var item models.Equipment
	if err := config.DB.First(&item, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, item)
}

// ---- damage reports ----

func ListDamageReports(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Order("created_at DESC")
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var reports []models.DamageReport
	if err := q.Find(&reports).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, reports)
}

func CreateDamageReport(w http.ResponseWriter, r *http.Request) {
	reporterID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var report models.DamageReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if report.EquipmentID == uuid.Nil || report.Description == "" {
		writeError(w, http.StatusBadRequest, "equipmentId and description are required")
		return
	}
	report.ID = uuid.Nil
	report.ReportedBy = reporterID
	report.Status = models.ReportOpen
	if err := config.DB.Create(&report).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusCreated, report)
}

// ---- repair requests ----

func ListRepairRequests(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Order("created_at DESC")
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var reqs []models.RepairRequest
	if err := q.Find(&reqs).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, reqs)
}

func CreateRepairRequest(w http.ResponseWriter, r *http.Request) {
	requesterID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req models.RepairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.EquipmentID == uuid.Nil || req.Description == "" {
		writeError(w, http.StatusBadRequest, "equipmentId and description are required")
		return
	}
	req.ID = uuid.Nil
	req.RequestedBy = requesterID
	req.Status = models.ReportOpen
	if err := config.DB.Create(&req).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusCreated, req)
}

// ---- maintenance records ----

func ListMaintenanceRecords(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Order("created_at DESC")
	if eq := r.URL.Query().Get("equipmentId"); eq != "" {
		q = q.Where("equipment_id = ?", eq)
	}
	var records []models.MaintenanceRecord
	if err := q.Find(&records).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, records)
}

func CreateMaintenanceRecord(w http.ResponseWriter, r *http.Request) {
	performerID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var record models.MaintenanceRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if record.EquipmentID == uuid.Nil || record.Description == "" {
		writeError(w, http.StatusBadRequest, "equipmentId and description are required")
		return
	}
	record.ID = uuid.Nil
	record.PerformedBy = performerID
	if err := config.DB.Create(&record).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusCreated, record)
}

// ---- turn-in requests ----

func ListTurnInRequests(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Order("created_at DESC")
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var reqs []models.TurnInRequest
	if err := q.Find(&reqs).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, reqs)
}

func CreateTurnInRequest(w http.ResponseWriter, r *http.Request) {
	requesterID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req models.TurnInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.EquipmentID == uuid.Nil || req.Reason == "" {
		writeError(w, http.StatusBadRequest, "equipmentId and reason are required")
		return
	}
	req.ID = uuid.Nil
	req.RequestedBy = requesterID
	req.Status = models.ReportOpen
	if err := config.DB.Create(&req).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusCreated, req)
}

var reportStatuses = map[string]bool{
	models.ReportOpen:     true,
	models.ReportApproved: true,
	models.ReportRejected: true,
	models.ReportResolved: true,
}

// UpdateDamageReportStatus moves a damage report through its lifecycle,
// typically open → resolved once the shop has dealt with it.
func UpdateDamageReportStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !reportStatuses[req.Status] {
		writeError(w, http.StatusBadRequest, "invalid report status: "+req.Status)
		return
	}

	var report models.DamageReport
	if err := config.DB.First(&report, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "damage report not found")
		return
	}
	if err := config.DB.Model(&report).Update("status", req.Status).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, report)
}

// UpdateRepairRequestStatus moves a repair request through its lifecycle.
func UpdateRepairRequestStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !reportStatuses[req.Status] {
		writeError(w, http.StatusBadRequest, "invalid report status: "+req.Status)
		return
	}

	var repair models.RepairRequest
	if err := config.DB.First(&repair, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "repair request not found")
		return
	}
	if err := config.DB.Model(&repair).Update("status", req.Status).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, repair)
}

// RejectTurnIn closes a turn-in request without touching the equipment.
func RejectTurnIn(w http.ResponseWriter, r *http.Request) {
	adminID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := mux.Vars(r)["id"]

	var req models.TurnInRequest
	if err := config.DB.First(&req, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "turn-in request not found")
		return
	}
	if req.Status != models.ReportOpen {
		writeError(w, http.StatusConflict, "turn-in request already reviewed")
		return
	}

	now := time.Now()
	if err := config.DB.Model(&req).Updates(map[string]interface{}{
		"status":      models.ReportRejected,
		"reviewed_by": adminID,
		"reviewed_at": now,
	}).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, req)
}

// ApproveTurnIn marks the request approved and flips the equipment to
// maintenance status in one transaction, so a crash cannot apply half.
func ApproveTurnIn(w http.ResponseWriter, r *http.Request) {
	adminID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := mux.Vars(r)["id"]

	var req models.TurnInRequest
	if err := config.DB.First(&req, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "turn-in request not found")
		return
	}
	if req.Status != models.ReportOpen {
		writeError(w, http.StatusConflict, "turn-in request already reviewed")
		return
	}

	now := time.Now()
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TurnInRequest{}).Where("id = ? AND status = ?", req.ID, models.ReportOpen).
			Updates(map[string]interface{}{
				"status":      models.ReportApproved,
				"reviewed_by": adminID,
				"reviewed_at": now,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Equipment{}).Where("id = ?", req.EquipmentID).
			Updates(map[string]interface{}{
				"status":      models.EquipmentMaintenance,
				"assigned_to": nil,
			}).Error
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{
		"requestId":       req.ID,
		"equipmentId":     req.EquipmentID,
		"equipmentStatus": models.EquipmentMaintenance,
	})
}
