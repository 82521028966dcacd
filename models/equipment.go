package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EquipmentAvailable   = "available"
	EquipmentAssigned    = "assigned"
	EquipmentMaintenance = "maintenance"
	EquipmentRetired     = "retired"
)

// Equipment is one saw, drill rig, blade stock line or other tracked asset.
// StockCount only matters for consumables (blades, bits); unit assets keep
// it at zero.
type Equipment struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SerialNumber string     `gorm:"size:60;uniqueIndex;not null" json:"serialNumber"`
	Name         string     `gorm:"size:120;not null" json:"name"`
	Type         string     `gorm:"size:60;not null" json:"type"`
	Status       string     `gorm:"size:20;not null;default:available" json:"status"`
	AssignedTo   *uuid.UUID `gorm:"type:uuid" json:"assignedTo,omitempty"`
	StockCount   int        `gorm:"not null;default:0" json:"stockCount"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (e *Equipment) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}

// EquipmentPatchFields is the allow-list for admin equipment PATCHes.
var EquipmentPatchFields = map[string]string{
	"serialNumber": "serial_number",
	"name":         "name",
	"type":         "type",
	"status":       "status",
	"assignedTo":   "assigned_to",
	"stockCount":   "stock_count",
}

const (
	ReportOpen     = "open"
	ReportApproved = "approved"
	ReportRejected = "rejected"
	ReportResolved = "resolved"
)

// DamageReport is filed by an operator when equipment is damaged on a job.
type DamageReport struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EquipmentID uuid.UUID  `gorm:"type:uuid;not null;index" json:"equipmentId"`
	JobOrderID  *uuid.UUID `gorm:"type:uuid;index" json:"jobOrderId,omitempty"`
	ReportedBy  uuid.UUID  `gorm:"type:uuid;not null" json:"reportedBy"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Photos      *string    `gorm:"type:text" json:"photos,omitempty"`
	Status      string     `gorm:"size:20;not null;default:open" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (d *DamageReport) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}

// RepairRequest asks the shop to repair a piece of equipment.
type RepairRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EquipmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"equipmentId"`
	RequestedBy uuid.UUID `gorm:"type:uuid;not null" json:"requestedBy"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Urgency     string    `gorm:"size:20;not null;default:normal" json:"urgency"`
	Status      string    `gorm:"size:20;not null;default:open" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *RepairRequest) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}

// MaintenanceRecord is the shop-side log of work done on equipment.
type MaintenanceRecord struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EquipmentID uuid.UUID  `gorm:"type:uuid;not null;index" json:"equipmentId"`
	PerformedBy uuid.UUID  `gorm:"type:uuid;not null" json:"performedBy"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Cost        *float64   `json:"cost,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *MaintenanceRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}

// TurnInRequest is an operator asking to hand equipment back to the shop.
// Approval flips the equipment to maintenance status in the same
// transaction that marks the request approved.
type TurnInRequest struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EquipmentID uuid.UUID  `gorm:"type:uuid;not null;index" json:"equipmentId"`
	RequestedBy uuid.UUID  `gorm:"type:uuid;not null" json:"requestedBy"`
	Reason      string     `gorm:"size:255;not null" json:"reason"`
	Status      string     `gorm:"size:20;not null;default:open" json:"status"`
	ReviewedBy  *uuid.UUID `gorm:"type:uuid" json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *TurnInRequest) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}
