package consultation

import "time"

// ConsultType is the channel a grower asks to be consulted through.
type ConsultType string

const (
	TypeChat        ConsultType = "CHAT"
	TypeCall        ConsultType = "CALL"
	TypeVideo       ConsultType = "VIDEO"
	TypeOnsiteVisit ConsultType = "ONSITE_VISIT"
)

// IsValid reports whether t is a known consultation type.
func (t ConsultType) IsValid() bool {
	switch t {
	case TypeChat, TypeCall, TypeVideo, TypeOnsiteVisit:
		return true
	default:
		return false
	}
}

// Status is the consultation lifecycle state.
type Status string

const (
	StatusRequested  Status = "REQUESTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// IsValid reports whether s is a known consultation status.
func (s Status) IsValid() bool {
	switch s {
	case StatusRequested, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether moving from s to target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusRequested:
		return target == StatusInProgress
	case StatusInProgress:
		return target == StatusCompleted
	default:
		return false
	}
}

// HasDoctor reports whether a doctor must be bound in this state.
func (s Status) HasDoctor() bool {
	return s == StatusInProgress || s == StatusCompleted
}

// PrescriptionStatus is the prescription lifecycle state.
type PrescriptionStatus string

const (
	RxPending         PrescriptionStatus = "PENDING"
	RxApplied         PrescriptionStatus = "APPLIED"
	RxNeedsCorrection PrescriptionStatus = "NEEDS_CORRECTION"
)

// IsValid reports whether s is a known prescription status.
func (s PrescriptionStatus) IsValid() bool {
	switch s {
	case RxPending, RxApplied, RxNeedsCorrection:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether moving from s to target is allowed.
// APPLIED is terminal and nothing returns to PENDING.
func (s PrescriptionStatus) CanTransitionTo(target PrescriptionStatus) bool {
	switch s {
	case RxPending:
		return target == RxApplied || target == RxNeedsCorrection
	case RxNeedsCorrection:
		return target == RxApplied
	default:
		return false
	}
}

// ActionCategory groups prescription lines.
type ActionCategory string

const (
	CategoryFungicide   ActionCategory = "FUNGICIDE"
	CategoryInsecticide ActionCategory = "INSECTICIDE"
	CategoryFertilizer  ActionCategory = "FERTILIZER"
	CategoryLabor       ActionCategory = "LABOR"
	CategoryIrrigation  ActionCategory = "IRRIGATION"
	CategoryOther       ActionCategory = "OTHER"
)

// IsValid reports whether c is a known category.
func (c ActionCategory) IsValid() bool {
	switch c {
	case CategoryFungicide, CategoryInsecticide, CategoryFertilizer, CategoryLabor, CategoryIrrigation, CategoryOther:
		return true
	default:
		return false
	}
}

// ActionItem is one costed line of a prescription.
type ActionItem struct {
	ID            string         `json:"id"`
	Category      ActionCategory `json:"category"`
	ProductName   string         `json:"productName"`
	Dosage        string         `json:"dosage"`
	EstimatedCost float64        `json:"estimatedCost"`
	SortOrder     int            `json:"-"`
}

// Prescription is the treatment plan a doctor attaches to a consultation.
type Prescription struct {
	ID             string             `json:"id"`
	ConsultationID string             `json:"consultationId"`
	DoctorName     string             `json:"doctorName"`
	HospitalName   string             `json:"hospitalName"`
	IssueDiagnosed string             `json:"issueDiagnosed"`
	EppoCode       string             `json:"eppoCode"`
	Recommendation string             `json:"recommendation"`
	ActionItems    []ActionItem       `json:"actionItems"`
	Status         PrescriptionStatus `json:"status"`
	IssuedAt       time.Time          `json:"issuedAt"`
	FollowUpDate   string             `json:"followUpDate"`
}

// TotalCost sums the estimated cost of every action item.
func (p Prescription) TotalCost() float64 {
	total := 0.0
	for _, item := range p.ActionItems {
		total += item.EstimatedCost
	}
	return total
}

// Consultation is a grower's request for agronomic advice.
type Consultation struct {
	ID                string        `json:"id"`
	UserID            string        `json:"userId"`
	GrowerName        string        `json:"growerName"`
	GrowerPhone       string        `json:"growerPhone"`
	FieldID           string        `json:"fieldId"`
	OrchardName       string        `json:"orchardName"`
	DoctorID          *string       `json:"doctorId"`
	PreferredDoctorID string        `json:"preferredDoctorId,omitempty"`
	Type              ConsultType   `json:"type"`
	Status            Status        `json:"status"`
	TargetDateTime    time.Time     `json:"targetDateTime"`
	Notes             string        `json:"notes"`
	Prescription      *Prescription `json:"prescription,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
}

// clone returns a deep copy so snapshots never alias session state.
func (c Consultation) clone() Consultation {
	out := c
	if c.DoctorID != nil {
		id := *c.DoctorID
		out.DoctorID = &id
	}
	if c.Prescription != nil {
		rx := *c.Prescription
		rx.ActionItems = append([]ActionItem(nil), c.Prescription.ActionItems...)
		out.Prescription = &rx
	}
	return out
}
