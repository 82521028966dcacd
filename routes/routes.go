package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"p9e.in/corecut/config"
	"p9e.in/corecut/handlers"
	"p9e.in/corecut/middleware"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")
	r.HandleFunc("/register", handlers.Register).Methods("POST")
	r.HandleFunc("/login", handlers.Login).Methods("POST")
	r.HandleFunc("/access-requests", handlers.SubmitAccessRequest).Methods("POST")
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(config.C.UploadDir))),
	)

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)
	api.Use(middleware.RequestLogger)

	api.HandleFunc("/profile", handlers.GetCurrentUser).Methods("GET")

	// Job orders (operator view)
	api.HandleFunc("/job-orders", handlers.ListJobOrders).Methods("GET")
	api.HandleFunc("/job-orders/{id}", handlers.GetJobOrder).Methods("GET")
	api.HandleFunc("/job-orders/{id}/status", handlers.UpdateJobStatus).Methods("POST", "PUT")
	api.HandleFunc("/job-orders/{id}/history", handlers.GetJobHistory).Methods("GET")
	api.HandleFunc("/job-orders/{id}/daily-log", handlers.GetDailyLog).Methods("GET")
	api.HandleFunc("/job-orders/{id}/daily-log", handlers.AppendDailyLog).Methods("POST")
	api.HandleFunc("/job-orders/{id}/rating", handlers.SubmitRating).Methods("POST")

	// Operator workflow
	api.HandleFunc("/workflow", handlers.GetWorkflow).Methods("GET")
	api.HandleFunc("/workflow", handlers.CompleteWorkflowStep).Methods("POST")

	// Timecards
	api.HandleFunc("/timecard/clock-in", handlers.ClockIn).Methods("POST")
	api.HandleFunc("/timecard/clock-out", handlers.ClockOut).Methods("POST")
	api.HandleFunc("/timecard", handlers.ListMyTimecards).Methods("GET")

	// Standby intervals
	api.HandleFunc("/standby", handlers.ListStandby).Methods("GET")
	api.HandleFunc("/standby", handlers.StartStandby).Methods("POST")
	api.HandleFunc("/standby", handlers.EndStandby).Methods("PUT")

	// File uploads (photos, signed PDFs)
	api.HandleFunc("/files/upload", handlers.UploadFileHandler).Methods("POST")

	// Equipment reporting open to operators
	api.HandleFunc("/equipment", handlers.ListEquipment).Methods("GET")
	api.HandleFunc("/equipment/damage", handlers.CreateDamageReport).Methods("POST")
	api.HandleFunc("/equipment/repair", handlers.CreateRepairRequest).Methods("POST")
	api.HandleFunc("/equipment/turn-in", handlers.CreateTurnInRequest).Methods("POST")

	// =====================================================
	// Admin Routes (require admin role)
	// =====================================================
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)

	// Job order management
	admin.HandleFunc("/job-orders", handlers.ListJobOrders).Methods("GET")
	admin.HandleFunc("/job-orders", handlers.CreateJobOrder).Methods("POST")
	admin.HandleFunc("/job-orders/{id}", handlers.GetJobOrder).Methods("GET")
	admin.HandleFunc("/job-orders/{id}", handlers.PatchJobOrder).Methods("PATCH")
	admin.HandleFunc("/job-orders/{id}", handlers.DeleteJobOrder).Methods("DELETE")

	// Access requests
	admin.HandleFunc("/access-requests", handlers.ListAccessRequests).Methods("GET")
	admin.HandleFunc("/access-requests/{id}/approve", handlers.ApproveAccessRequest).Methods("POST")
	admin.HandleFunc("/access-requests/{id}/reject", handlers.RejectAccessRequest).Methods("POST")

	// Equipment management
	admin.HandleFunc("/equipment", handlers.CreateEquipment).Methods("POST")
	admin.HandleFunc("/equipment/damage", handlers.ListDamageReports).Methods("GET")
	admin.HandleFunc("/equipment/repair", handlers.ListRepairRequests).Methods("GET")
	admin.HandleFunc("/equipment/maintenance", handlers.ListMaintenanceRecords).Methods("GET")
	admin.HandleFunc("/equipment/maintenance", handlers.CreateMaintenanceRecord).Methods("POST")
	admin.HandleFunc("/equipment/damage/{id}", handlers.UpdateDamageReportStatus).Methods("PATCH")
	admin.HandleFunc("/equipment/repair/{id}", handlers.UpdateRepairRequestStatus).Methods("PATCH")
	admin.HandleFunc("/equipment/turn-in", handlers.ListTurnInRequests).Methods("GET")
	admin.HandleFunc("/equipment/turn-in/{id}/approve", handlers.ApproveTurnIn).Methods("POST")
	admin.HandleFunc("/equipment/turn-in/{id}/reject", handlers.RejectTurnIn).Methods("POST")
	admin.HandleFunc("/equipment/{id}", handlers.GetEquipment).Methods("GET")
	admin.HandleFunc("/equipment/{id}", handlers.PatchEquipment).Methods("PATCH")
	admin.HandleFunc("/equipment/{id}", handlers.DeleteEquipment).Methods("DELETE")
	admin.HandleFunc("/equipment/{id}/consume", handlers.ConsumeStock).Methods("POST")

	// Timecards
	admin.HandleFunc("/timecards", handlers.ListAllTimecards).Methods("GET")
	admin.HandleFunc("/timecards/export", handlers.ExportTimecards).Methods("GET")

	// User management
	admin.HandleFunc("/users", handlers.GetAllUsers).Methods("GET")
	admin.HandleFunc("/users", handlers.Register).Methods("POST")
	admin.HandleFunc("/users/{id}", handlers.GetUserByID).Methods("GET")
	admin.HandleFunc("/users/{id}", handlers.UpdateUser).Methods("PUT")
	admin.HandleFunc("/users/{id}", handlers.DeleteUser).Methods("DELETE")

	return r
}
