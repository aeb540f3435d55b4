package agronomy

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/orchardcare/orchard-advisor/pkg/errors"
	"github.com/orchardcare/orchard-advisor/pkg/util"
)

// Service exposes lab advisory capabilities for a field.
type Service interface {
	Report(ctx context.Context, fieldID string, family Family) (Report, error)
	SubmitTest(ctx context.Context, req SubmitRequest) (Sample, error)
	UploadReport(ctx context.Context, req UploadRequest) (UploadResponse, error)
	History(ctx context.Context, fieldID string, family Family) ([]Sample, error)
	ExportHistory(ctx context.Context, fieldID string, family Family) (Export, error)
}

type service struct {
	cfg      Config
	table    *ReferenceTable
	repo     MeasurementRepository
	storage  ReportStorage
	exporter HistoryExporter
	metrics  Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the advisory domain.
func NewService(cfg Config, table *ReferenceTable, repo MeasurementRepository, storage ReportStorage, exporter HistoryExporter, metrics Metrics, logger *slog.Logger) Service {
	if table == nil {
		table = DefaultReferenceTable()
	}
	return &service{
		cfg:      normalizeConfig(cfg),
		table:    table,
		repo:     repo,
		storage:  storage,
		exporter: exporter,
		metrics:  metrics,
		logger:   logger.With("component", "agronomy.service"),
		now:      util.NowUTC,
	}
}

func normalizeConfig(cfg Config) Config {
	if cfg.Margin < 0 {
		cfg.Margin = 0
	}
	if cfg.TiePrefers == "" {
		cfg.TiePrefers = TiePrefersManual
	}
	if cfg.StaleAfterMonths <= 0 {
		cfg.StaleAfterMonths = DefaultStaleAfterMonths
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 50
	}
	if cfg.SoilBucket == "" {
		cfg.SoilBucket = "soil-reports"
	}
	if cfg.WaterBucket == "" {
		cfg.WaterBucket = "water-reports"
	}
	return cfg
}

func (s *service) Report(ctx context.Context, fieldID string, family Family) (Report, error) {
	fieldID = strings.TrimSpace(fieldID)
	if fieldID == "" {
		return Report{}, apperrors.Wrap(apperrors.CodeInvalidInput, "fieldId is required", nil)
	}
	if !family.IsLab() {
		return Report{}, apperrors.Wrap(apperrors.CodeInvalidInput, "family must be soil or water", nil)
	}

	var (
		manual []Sample
		rows   []AnalyticsRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		manual, err = s.repo.LatestSamples(gctx, fieldID, family, 1)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = s.repo.Analytics(gctx, fieldID, family)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, apperrors.Wrap(apperrors.CodeStore, "failed to load measurements", err)
	}

	var latestManual *Sample
	if len(manual) > 0 {
		latestManual = &manual[0]
	}
	latest := SelectLatest(latestManual, LatestFromAnalytics(rows, family, s.table), s.cfg.TiePrefers)

	summary := Summarize(latest, s.table)
	classifications := ClassifySample(latest, s.table, s.cfg.Margin)
	if classifications == nil {
		classifications = []Classification{}
	}
	for _, c := range classifications {
		if s.metrics != nil {
			s.metrics.ObserveClassification(string(family), string(c.Status))
		}
	}
	report := Report{
		FieldID:         fieldID,
		Family:          family,
		HasTest:         latest != nil,
		NeedsTest:       NeedsTest(latest, s.now(), s.cfg.StaleAfterMonths),
		Indicator:       Indicator(summary, latest != nil && Measured(classifications)),
		Latest:          latest,
		Summary:         summary,
		Classifications: classifications,
		Alerts:          DeficiencyAlerts(rows, family, s.table, s.cfg.Margin),
	}
	s.logger.Debug("advisory report built", "field_id", fieldID, "family", family, "indicator", report.Indicator, "has_test", report.HasTest)
	return report, nil
}

func (s *service) SubmitTest(ctx context.Context, req SubmitRequest) (Sample, error) {
	if strings.TrimSpace(req.FieldID) == "" {
		return Sample{}, apperrors.Wrap(apperrors.CodeInvalidInput, "fieldId is required", nil)
	}
	values, err := ValidateSubmission(req.Family, req.Values, s.table)
	if err != nil {
		return Sample{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), err)
	}
	recorded, err := s.resolveDate(req.RecordedDate)
	if err != nil {
		return Sample{}, apperrors.Wrap(apperrors.CodeInvalidInput, "recordedDate must be formatted as YYYY-MM-DD", err)
	}

	sample := Sample{
		ID:           uuid.NewString(),
		FieldID:      req.FieldID,
		UserID:       req.UserID,
		Family:       req.Family,
		Source:       SourceManual,
		RecordedDate: recorded,
		Values:       values,
	}
	if err := s.repo.InsertSample(ctx, sample); err != nil {
		return Sample{}, apperrors.Wrap(apperrors.CodeStore, "failed to save test results", err)
	}
	s.logger.Info("lab test submitted", "field_id", sample.FieldID, "family", sample.Family, "values", len(values))
	return sample, nil
}

func (s *service) UploadReport(ctx context.Context, req UploadRequest) (UploadResponse, error) {
	if strings.TrimSpace(req.FieldID) == "" {
		return UploadResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "fieldId is required", nil)
	}
	if !req.Family.IsLab() {
		return UploadResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "family must be soil or water", nil)
	}
	if len(req.Content) == 0 {
		return UploadResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "file content cannot be empty", nil)
	}
	if s.cfg.MaxReportBytes > 0 && int64(len(req.Content)) > s.cfg.MaxReportBytes {
		return UploadResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "file exceeds maximum allowed size", nil)
	}
	if s.storage == nil {
		return UploadResponse{}, apperrors.Wrap(apperrors.CodeStorage, "report storage is not configured", nil)
	}
	recorded, err := s.resolveDate(req.RecordedDate)
	if err != nil {
		return UploadResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "recordedDate must be formatted as YYYY-MM-DD", err)
	}

	mime := req.MimeType
	if mime == "" {
		mime = http.DetectContentType(req.Content)
	}
	bucket := s.bucketFor(req.Family)
	key := fmt.Sprintf("%s/%s/%s-%s", ownerSegment(req.UserID), req.FieldID, uuid.NewString(), sanitizeFilename(req.Filename))
	stored, err := s.storage.Put(ctx, bucket, key, req.Content, mime)
	if err != nil {
		return UploadResponse{}, apperrors.Wrap(apperrors.CodeStorage, "failed to store report", err)
	}

	sample := Sample{
		ID:           uuid.NewString(),
		FieldID:      req.FieldID,
		UserID:       req.UserID,
		Family:       req.Family,
		Source:       SourceManual,
		RecordedDate: recorded,
		Values:       map[string]float64{},
		ReportKey:    stored.Bucket + "/" + stored.Key,
	}
	if err := s.repo.InsertSample(ctx, sample); err != nil {
		return UploadResponse{}, apperrors.Wrap(apperrors.CodeStore, "failed to record uploaded report", err)
	}
	s.logger.Info("lab report uploaded", "field_id", sample.FieldID, "family", sample.Family, "bucket", stored.Bucket, "size", stored.Size)
	return UploadResponse{Sample: sample, Report: stored}, nil
}

func (s *service) History(ctx context.Context, fieldID string, family Family) ([]Sample, error) {
	if strings.TrimSpace(fieldID) == "" {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "fieldId is required", nil)
	}
	if !family.IsLab() {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "family must be soil or water", nil)
	}
	samples, err := s.repo.LatestSamples(ctx, fieldID, family, s.cfg.HistoryLimit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStore, "failed to load test history", err)
	}
	SortSamplesDesc(samples)
	return samples, nil
}

func (s *service) ExportHistory(ctx context.Context, fieldID string, family Family) (Export, error) {
	if s.exporter == nil {
		return Export{}, apperrors.Wrap(apperrors.CodeStorage, "history export is not configured", nil)
	}
	samples, err := s.History(ctx, fieldID, family)
	if err != nil {
		return Export{}, err
	}
	data, err := s.exporter.Export(family, s.table.Parameters(family), samples)
	if err != nil {
		return Export{}, apperrors.Wrap(apperrors.CodeStorage, "failed to render history", err)
	}
	return Export{
		Filename:    fmt.Sprintf("%s-%s-history%s", sanitizeFilename(fieldID), family, s.exporter.Extension()),
		ContentType: s.exporter.ContentType(),
		Data:        data,
	}, nil
}

func (s *service) resolveDate(input string) (time.Time, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		now := s.now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return util.ParseDate(trimmed)
}

func (s *service) bucketFor(family Family) string {
	if family == FamilyWater {
		return s.cfg.WaterBucket
	}
	return s.cfg.SoilBucket
}

func ownerSegment(userID string) string {
	if strings.TrimSpace(userID) == "" {
		return "anonymous"
	}
	return sanitizeFilename(userID)
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func sanitizeFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == "/" || base == "" {
		return "report"
	}
	return unsafeFilenameChars.ReplaceAllString(base, "_")
}
