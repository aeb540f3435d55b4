package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orchardcare/orchard-advisor/internal/domain/consultation"
)

type doctorPayload struct {
	DoctorID string `json:"doctorId"`
}

func (h *Handler) session(c *gin.Context) *consultation.Session {
	return h.consultations.Session(c.Param("fieldId"), currentUser(c))
}

// ListConsultations reloads and returns the session snapshot.
func (h *Handler) ListConsultations(c *gin.Context) {
	s := h.session(c)
	if err := s.Reload(c.Request.Context()); err != nil {
		abortWithError(c, fromDomainError(err, "fetch_failed"))
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// RequestConsultation opens a new consultation request.
func (h *Handler) RequestConsultation(c *gin.Context) {
	var in consultation.RequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	created, err := h.session(c).RequestConsultation(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, fromDomainError(err, "request_failed"))
		return
	}
	c.JSON(http.StatusCreated, created)
}

// AcceptConsultation binds the doctor and starts the consultation.
func (h *Handler) AcceptConsultation(c *gin.Context) {
	h.doctorAction(c, func(s *consultation.Session, id, doctorID string) error {
		return s.AcceptRequest(c.Request.Context(), id, doctorID)
	})
}

// CompleteConsultation closes an in-progress consultation.
func (h *Handler) CompleteConsultation(c *gin.Context) {
	h.doctorAction(c, func(s *consultation.Session, id, doctorID string) error {
		return s.Complete(c.Request.Context(), id, doctorID)
	})
}

func (h *Handler) doctorAction(c *gin.Context, fn func(s *consultation.Session, id, doctorID string) error) {
	var body doctorPayload
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	s := h.session(c)
	if err := fn(s, c.Param("id"), body.DoctorID); err != nil {
		abortWithError(c, fromDomainError(err, "update_failed"))
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// IssuePrescription attaches a prescription to a consultation.
func (h *Handler) IssuePrescription(c *gin.Context) {
	var in consultation.IssueInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	in.ConsultationID = c.Param("id")
	rx, err := h.session(c).IssueRx(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, fromDomainError(err, "issue_failed"))
		return
	}
	c.JSON(http.StatusCreated, rx)
}

// ApplyPrescription marks a prescription as applied.
func (h *Handler) ApplyPrescription(c *gin.Context) {
	s := h.session(c)
	if err := s.ExecuteRx(c.Request.Context(), c.Param("rxId")); err != nil {
		abortWithError(c, fromDomainError(err, "update_failed"))
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// FlagPrescription asks the doctor to correct a pending prescription.
func (h *Handler) FlagPrescription(c *gin.Context) {
	s := h.session(c)
	if err := s.FlagCorrection(c.Request.Context(), c.Param("rxId")); err != nil {
		abortWithError(c, fromDomainError(err, "update_failed"))
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}
