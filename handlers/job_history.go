package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"p9e.in/corecut/config"
	"p9e.in/corecut/middleware"
	"p9e.in/corecut/models"
	"p9e.in/corecut/utils"
)

type historyEntryOut struct {
	ID        string                       `json:"id"`
	Action    string                       `json:"action"`
	Changes   map[string]utils.FieldChange `json:"changes,omitempty"`
	Formatted []string                     `json:"formatted"`
	ChangedBy string                       `json:"changedBy"`
	CreatedAt time.Time                    `json:"createdAt"`
}

// GetJobHistory returns the audit trail newest-first, each entry carrying
// the raw diff plus "Field: old → new" display strings. Admins can read
// any job's history; operators only their own assignment's.
func GetJobHistory(w http.ResponseWriter, r *http.Request) {
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

	var entries []models.JobOrderHistory
	if err := config.DB.
		Where("job_order_id = ?", job.ID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		// History is telemetry; an unreadable trail is an empty trail.
		writeData(w, http.StatusOK, []historyEntryOut{})
		return
	}

	out := make([]historyEntryOut, 0, len(entries))
	for _, e := range entries {
		item := historyEntryOut{
			ID:        e.ID.String(),
			Action:    e.Action,
			ChangedBy: e.ChangedBy.String(),
			CreatedAt: e.CreatedAt,
		}
		if len(e.Changes) > 0 {
			var diff map[string]utils.FieldChange
			if err := json.Unmarshal(e.Changes, &diff); err == nil {
				item.Changes = diff
				for _, col := range models.AuditTrackedColumns {
					if c, ok := diff[col]; ok {
						item.Formatted = append(item.Formatted, utils.FormatChange(col, c))
					}
				}
			}
		}
		if e.Action == models.HistoryDeleted {
			item.Formatted = append(item.Formatted, "Job order deleted")
		}
		out = append(out, item)
	}
	writeData(w, http.StatusOK, out)
}
