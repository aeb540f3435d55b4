package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orchardcare/orchard-advisor/internal/domain/agronomy"
)

// FieldAdvisory returns the RAG report for the field's latest lab sample.
func (h *Handler) FieldAdvisory(c *gin.Context) {
	family, ok := parseFamily(c, c.Query("family"))
	if !ok {
		return
	}
	report, err := h.advisory.Report(c.Request.Context(), c.Param("fieldId"), family)
	if err != nil {
		abortWithError(c, fromDomainError(err, "advisory_failed"))
		return
	}
	c.JSON(http.StatusOK, report)
}

// SubmitTest records a manually entered lab test.
func (h *Handler) SubmitTest(c *gin.Context) {
	var req agronomy.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	family, ok := parseFamily(c, string(req.Family))
	if !ok {
		return
	}
	req.Family = family
	req.FieldID = c.Param("fieldId")
	req.UserID = currentUser(c)

	sample, err := h.advisory.SubmitTest(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "submit_failed"))
		return
	}
	c.JSON(http.StatusCreated, sample)
}

// TestHistory lists the field's lab samples newest first.
func (h *Handler) TestHistory(c *gin.Context) {
	family, ok := parseFamily(c, c.Query("family"))
	if !ok {
		return
	}
	samples, err := h.advisory.History(c.Request.Context(), c.Param("fieldId"), family)
	if err != nil {
		abortWithError(c, fromDomainError(err, "history_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": samples})
}

// ExportHistory streams the lab history as a spreadsheet attachment.
func (h *Handler) ExportHistory(c *gin.Context) {
	family, ok := parseFamily(c, c.Query("family"))
	if !ok {
		return
	}
	doc, err := h.advisory.ExportHistory(c.Request.Context(), c.Param("fieldId"), family)
	if err != nil {
		abortWithError(c, fromDomainError(err, "export_failed"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

// UploadReport stores a lab report file and records an empty sample for it.
func (h *Handler) UploadReport(c *gin.Context) {
	family, ok := parseFamily(c, c.PostForm("family"))
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "file is required", err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "failed to read upload", err))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "upload_failed", "failed to read file", err))
		return
	}

	resp, err := h.advisory.UploadReport(c.Request.Context(), agronomy.UploadRequest{
		FieldID:      c.Param("fieldId"),
		UserID:       currentUser(c),
		Family:       family,
		Filename:     fileHeader.Filename,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		RecordedDate: c.PostForm("recordedDate"),
		Content:      data,
	})
	if err != nil {
		abortWithError(c, fromDomainError(err, "upload_failed"))
		return
	}
	c.JSON(http.StatusCreated, resp)
}
