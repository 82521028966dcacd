package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Job status values. A job normally walks scheduled → assigned → in_route →
// in_progress → completed; cancelled can happen from any state.
const (
	StatusScheduled  = "scheduled"
	StatusAssigned   = "assigned"
	StatusInRoute    = "in_route"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

var jobStatuses = map[string]bool{
	StatusScheduled:  true,
	StatusAssigned:   true,
	StatusInRoute:    true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
}

// ValidStatus reports whether s is one of the known job statuses.
func ValidStatus(s string) bool {
	return jobStatuses[s]
}

// JobOrder is one scheduled unit of field work assigned to an operator.
// The *At/Lat/Lng triples are stamped once as the operator advances and are
// never cleared except by the explicit next-day continuation reset.
type JobOrder struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobNumber string    `gorm:"size:30;uniqueIndex;not null" json:"jobNumber"`

	CustomerName  string  `gorm:"size:150;not null" json:"customerName"`
	CustomerPhone string  `gorm:"size:20" json:"customerPhone"`
	SiteAddress   string  `gorm:"size:255;not null" json:"siteAddress"`
	SiteLat       float64 `json:"siteLat"`
	SiteLng       float64 `json:"siteLng"`
	JobScope      string  `gorm:"type:text" json:"jobScope"`
	Notes         *string `gorm:"type:text" json:"notes,omitempty"`

	ScheduledDate JSONTime  `gorm:"not null;index" json:"scheduledDate"`
	EndDate       *JSONTime `json:"endDate,omitempty"`
	ArrivalTime   string    `gorm:"size:10" json:"arrivalTime"`

	AssignedTo *uuid.UUID `gorm:"type:uuid;index" json:"assignedTo,omitempty"`
	Assignee   *User      `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	Status     string     `gorm:"size:20;not null;default:scheduled;index" json:"status"`

	RouteStartedAt *time.Time `json:"routeStartedAt,omitempty"`
	RouteStartLat  *float64   `json:"routeStartLat,omitempty"`
	RouteStartLng  *float64   `json:"routeStartLng,omitempty"`

	WorkStartedAt *time.Time `json:"workStartedAt,omitempty"`
	WorkStartLat  *float64   `json:"workStartLat,omitempty"`
	WorkStartLng  *float64   `json:"workStartLng,omitempty"`

	WorkCompletedAt *time.Time `json:"workCompletedAt,omitempty"`
	WorkCompleteLat *float64   `json:"workCompleteLat,omitempty"`
	WorkCompleteLng *float64   `json:"workCompleteLng,omitempty"`

	WorkPerformed      *string `gorm:"type:text" json:"workPerformed,omitempty"`
	CompletionNotes    *string `gorm:"type:text" json:"completionNotes,omitempty"`
	CustomerSignature  *string `gorm:"type:text" json:"customerSignature,omitempty"`
	CustomerSignedName *string `gorm:"size:100" json:"customerSignedName,omitempty"`
	OperatorSignature  *string `gorm:"type:text" json:"operatorSignature,omitempty"`

	LiabilityReleaseSignedAt *time.Time `json:"liabilityReleaseSignedAt,omitempty"`
	SilicaFormSignedAt       *time.Time `json:"silicaFormSignedAt,omitempty"`
	EquipmentChecklistNotes  *string    `gorm:"type:text" json:"equipmentChecklistNotes,omitempty"`

	CustomerRating *int           `json:"customerRating,omitempty"`
	Photos         datatypes.JSON `gorm:"type:jsonb" json:"photos,omitempty"`

	CreatedBy uuid.UUID      `gorm:"type:uuid;not null" json:"createdBy"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (j *JobOrder) BeforeCreate(tx *gorm.DB) (err error) {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return
}

// StatusExtraFields is the allow-list of payload keys a status update may
// merge into the job row alongside the transition itself, keyed by JSON
// field name, valued by DB column.
var StatusExtraFields = map[string]string{
	"notes":                    "notes",
	"arrivalTime":              "arrival_time",
	"workPerformed":            "work_performed",
	"completionNotes":          "completion_notes",
	"customerSignature":        "customer_signature",
	"customerSignedName":       "customer_signed_name",
	"operatorSignature":        "operator_signature",
	"liabilityReleaseSignedAt": "liability_release_signed_at",
	"silicaFormSignedAt":       "silica_form_signed_at",
	"equipmentChecklistNotes":  "equipment_checklist_notes",
	"customerRating":           "customer_rating",
	"photos":                   "photos",
	"endDate":                  "end_date",
}

// AdminPatchFields is the allow-list for admin PATCHes, keyed by JSON field
// name, valued by DB column. Workflow stamps are deliberately absent: only
// the status endpoint and the next-day reset may touch those.
var AdminPatchFields = map[string]string{
	"jobNumber":     "job_number",
	"customerName":  "customer_name",
	"customerPhone": "customer_phone",
	"siteAddress":   "site_address",
	"siteLat":       "site_lat",
	"siteLng":       "site_lng",
	"jobScope":      "job_scope",
	"notes":         "notes",
	"scheduledDate": "scheduled_date",
	"endDate":       "end_date",
	"arrivalTime":   "arrival_time",
	"assignedTo":    "assigned_to",
	"status":        "status",
}

// AuditValues maps the job's tracked columns to their current values for
// history diffing. Pointer fields flatten to nil when unset so a diff
// against a freshly-zeroed field reads naturally.
func (j *JobOrder) AuditValues() map[string]interface{} {
	var assigned interface{}
	if j.AssignedTo != nil {
		assigned = j.AssignedTo.String()
	}
	return map[string]interface{}{
		"job_number":       j.JobNumber,
		"customer_name":    j.CustomerName,
		"customer_phone":   j.CustomerPhone,
		"site_address":     j.SiteAddress,
		"job_scope":        j.JobScope,
		"notes":            j.Notes,
		"scheduled_date":   j.ScheduledDate,
		"end_date":         j.EndDate,
		"arrival_time":     j.ArrivalTime,
		"assigned_to":      assigned,
		"status":           j.Status,
		"work_performed":   j.WorkPerformed,
		"completion_notes": j.CompletionNotes,
		"customer_rating":  j.CustomerRating,
	}
}

// AuditTrackedColumns is the fixed list of columns whose changes are
// recorded in job order history.
var AuditTrackedColumns = []string{
	"job_number",
	"customer_name",
	"customer_phone",
	"site_address",
	"job_scope",
	"notes",
	"scheduled_date",
	"end_date",
	"arrival_time",
	"assigned_to",
	"status",
	"work_performed",
	"completion_notes",
	"customer_rating",
}
