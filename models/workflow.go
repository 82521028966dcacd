package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Step names the stages of the operator's on-site procedure, in the order
// they happen in the field.
type Step string

const (
	StepEquipmentCheck    Step = "equipment_check"
	StepRoute             Step = "route"
	StepLiabilityRelease  Step = "liability_release"
	StepSilicaForm        Step = "silica_form"
	StepWorkLog           Step = "work_log"
	StepPhotos            Step = "photos"
	StepCustomerSignature Step = "customer_signature"
	StepCompletion        Step = "completion"
)

// StepOrder is the canonical sequence. Each step requires every earlier
// step to be complete before it may itself be completed.
var StepOrder = []Step{
	StepEquipmentCheck,
	StepRoute,
	StepLiabilityRelease,
	StepSilicaForm,
	StepWorkLog,
	StepPhotos,
	StepCustomerSignature,
	StepCompletion,
}

var stepIndex = func() map[Step]int {
	m := make(map[Step]int, len(StepOrder))
	for i, s := range StepOrder {
		m[s] = i
	}
	return m
}()

// ValidStep reports whether s names a known workflow step.
func ValidStep(s Step) bool {
	_, ok := stepIndex[s]
	return ok
}

// WorkflowState is one row per (job order, operator) holding independent
// completion flags for each step plus the client's current-step pointer.
type WorkflowState struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobOrderID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_workflow_job_operator" json:"jobOrderId"`
	OperatorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_workflow_job_operator" json:"operatorId"`

	EquipmentCheckDone    bool `gorm:"not null;default:false" json:"equipmentCheckDone"`
	RouteDone             bool `gorm:"not null;default:false" json:"routeDone"`
	LiabilityReleaseDone  bool `gorm:"not null;default:false" json:"liabilityReleaseDone"`
	SilicaFormDone        bool `gorm:"not null;default:false" json:"silicaFormDone"`
	WorkLogDone           bool `gorm:"not null;default:false" json:"workLogDone"`
	PhotosDone            bool `gorm:"not null;default:false" json:"photosDone"`
	CustomerSignatureDone bool `gorm:"not null;default:false" json:"customerSignatureDone"`
	CompletionDone        bool `gorm:"not null;default:false" json:"completionDone"`

	CurrentStep Step `gorm:"size:30;not null;default:equipment_check" json:"currentStep"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (w *WorkflowState) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return
}

// NewWorkflowState returns the lazily-created initial record: all flags
// false, current step at the top of the sequence.
func NewWorkflowState(jobOrderID, operatorID uuid.UUID) *WorkflowState {
	return &WorkflowState{
		JobOrderID:  jobOrderID,
		OperatorID:  operatorID,
		CurrentStep: StepEquipmentCheck,
	}
}

// flag returns a pointer to the completion flag for the given step.
func (w *WorkflowState) flag(s Step) *bool {
	switch s {
	case StepEquipmentCheck:
		return &w.EquipmentCheckDone
	case StepRoute:
		return &w.RouteDone
	case StepLiabilityRelease:
		return &w.LiabilityReleaseDone
	case StepSilicaForm:
		return &w.SilicaFormDone
	case StepWorkLog:
		return &w.WorkLogDone
	case StepPhotos:
		return &w.PhotosDone
	case StepCustomerSignature:
		return &w.CustomerSignatureDone
	case StepCompletion:
		return &w.CompletionDone
	}
	return nil
}

// StepCompleted reports whether the named step has been completed.
func (w *WorkflowState) StepCompleted(s Step) bool {
	if f := w.flag(s); f != nil {
		return *f
	}
	return false
}

// MissingPrerequisites returns the earlier steps still incomplete that
// block completing s, in field order.
func (w *WorkflowState) MissingPrerequisites(s Step) []Step {
	idx, ok := stepIndex[s]
	if !ok {
		return nil
	}
	var missing []Step
	for _, prev := range StepOrder[:idx] {
		if !w.StepCompleted(prev) {
			missing = append(missing, prev)
		}
	}
	return missing
}

// CompleteStep marks s done after checking its prerequisites. Only the
// named step's flag flips; there is no implicit chaining, and CurrentStep
// moves only when the caller explicitly passes a new value to the handler.
func (w *WorkflowState) CompleteStep(s Step) error {
	f := w.flag(s)
	if f == nil {
		return fmt.Errorf("unknown workflow step %q", s)
	}
	if missing := w.MissingPrerequisites(s); len(missing) > 0 {
		return fmt.Errorf("step %q requires %v to be completed first", s, missing)
	}
	*f = true
	return nil
}

// Reset clears every flag for next-day continuation of a multi-day job.
func (w *WorkflowState) Reset() {
	for _, s := range StepOrder {
		*w.flag(s) = false
	}
	w.CurrentStep = StepEquipmentCheck
}
