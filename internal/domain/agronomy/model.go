package agronomy

// Config tunes the advisory service.
type Config struct {
	Margin           float64
	TiePrefers       TiePreference
	StaleAfterMonths int
	HistoryLimit     int
	MaxReportBytes   int64
	SoilBucket       string
	WaterBucket      string
}

// Report is the advisory view of one field for one family.
type Report struct {
	FieldID         string           `json:"fieldId"`
	Family          Family           `json:"family"`
	HasTest         bool             `json:"hasTest"`
	NeedsTest       bool             `json:"needsTest"`
	Indicator       Status           `json:"indicator"`
	Latest          *Sample          `json:"latest,omitempty"`
	Summary         Summary          `json:"summary"`
	Classifications []Classification `json:"classifications"`
	Alerts          []Alert          `json:"deficiencyAlerts"`
}

// SubmitRequest is a manual lab entry.
type SubmitRequest struct {
	FieldID      string             `json:"-"`
	UserID       string             `json:"-"`
	Family       Family             `json:"family"`
	RecordedDate string             `json:"recordedDate"`
	Values       map[string]float64 `json:"values"`
}

// UploadRequest carries a lab report file.
type UploadRequest struct {
	FieldID      string
	UserID       string
	Family       Family
	Filename     string
	MimeType     string
	RecordedDate string
	Content      []byte
}

// UploadResponse returns the stored blob and the placeholder sample row.
type UploadResponse struct {
	Sample Sample       `json:"sample"`
	Report StoredReport `json:"report"`
}

// Export is a rendered history document.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}
