package consultrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orchardcare/orchard-advisor/internal/domain/consultation"
)

const uniqueViolation = "23505"

// PostgresRepository persists consultations, prescriptions and action items in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const consultationColumns = `
	c.id, c.user_id, c.grower_name, c.grower_phone, c.field_id, c.orchard_name,
	c.doctor_id, c.preferred_doctor_id, c.type, c.status, c.target_datetime, c.notes, c.created_at`

const prescriptionColumns = `
	p.id, p.consultation_id, p.doctor_name, p.hospital_name, p.issue_diagnosed,
	p.eppo_code, p.recommendation, p.status, p.issued_at, p.follow_up_date`

// FetchConsultations implements consultation.Store. Newest first.
func (r *PostgresRepository) FetchConsultations(ctx context.Context, fieldID, userID string) ([]consultation.Consultation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+consultationColumns+`
		FROM consultations c
		WHERE c.field_id = $1 AND c.user_id = $2
		ORDER BY c.created_at DESC, c.id
	`, fieldID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		out []consultation.Consultation
		ids []string
	)
	for rows.Next() {
		c, err := scanConsultation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []consultation.Consultation{}, nil
	}

	prescriptions, err := r.prescriptionsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if rx, ok := prescriptions[out[i].ID]; ok {
			out[i].Prescription = &rx
		}
	}
	return out, nil
}

// FindConsultation implements consultation.Store.
func (r *PostgresRepository) FindConsultation(ctx context.Context, id string) (consultation.Consultation, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+consultationColumns+`
		FROM consultations c
		WHERE c.id = $1
	`, id)
	c, err := scanConsultation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return consultation.Consultation{}, consultation.ErrNotFound
	}
	if err != nil {
		return consultation.Consultation{}, err
	}
	prescriptions, err := r.prescriptionsFor(ctx, []string{id})
	if err != nil {
		return consultation.Consultation{}, err
	}
	if rx, ok := prescriptions[id]; ok {
		c.Prescription = &rx
	}
	return c, nil
}

// FindPrescription implements consultation.Store.
func (r *PostgresRepository) FindPrescription(ctx context.Context, rxID string) (consultation.Prescription, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+prescriptionColumns+`
		FROM prescriptions p
		WHERE p.id = $1
	`, rxID)
	rx, err := scanPrescription(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return consultation.Prescription{}, consultation.ErrNotFound
	}
	if err != nil {
		return consultation.Prescription{}, err
	}
	items, err := r.actionItems(ctx, []string{rx.ID})
	if err != nil {
		return consultation.Prescription{}, err
	}
	if list, ok := items[rx.ID]; ok {
		rx.ActionItems = list
	}
	return rx, nil
}

// CreateConsultation implements consultation.Store.
func (r *PostgresRepository) CreateConsultation(ctx context.Context, c consultation.Consultation) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO consultations (
			id, user_id, grower_name, grower_phone, field_id, orchard_name,
			doctor_id, preferred_doctor_id, type, status, target_datetime, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, c.ID, c.UserID, c.GrowerName, c.GrowerPhone, c.FieldID, c.OrchardName,
		c.DoctorID, nullIfEmpty(c.PreferredDoctorID), string(c.Type), string(c.Status), c.TargetDateTime, c.Notes, c.CreatedAt)
	return mapPgError(err)
}

// UpdateConsultationStatus implements consultation.Store. The row is locked
// while the transition is checked.
func (r *PostgresRepository) UpdateConsultationStatus(ctx context.Context, id string, status consultation.Status, doctorID *string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var current string
		err := tx.QueryRow(ctx, `SELECT status FROM consultations WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return consultation.ErrNotFound
		}
		if err != nil {
			return err
		}
		if !consultation.Status(current).CanTransitionTo(status) {
			return consultation.ErrInvalidTransition
		}
		_, err = tx.Exec(ctx, `
			UPDATE consultations
			SET status = $2, doctor_id = COALESCE($3, doctor_id)
			WHERE id = $1
		`, id, string(status), doctorID)
		return err
	})
}

// IssuePrescription implements consultation.Store. The prescription and its
// action items are written in one transaction.
func (r *PostgresRepository) IssuePrescription(ctx context.Context, rx consultation.Prescription) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var status string
		err := tx.QueryRow(ctx, `SELECT status FROM consultations WHERE id = $1 FOR UPDATE`, rx.ConsultationID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return consultation.ErrNotFound
		}
		if err != nil {
			return err
		}
		if consultation.Status(status) == consultation.StatusRequested {
			return consultation.ErrInvalidTransition
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO prescriptions (
				id, consultation_id, doctor_name, hospital_name, issue_diagnosed,
				eppo_code, recommendation, status, issued_at, follow_up_date
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, rx.ID, rx.ConsultationID, rx.DoctorName, rx.HospitalName, rx.IssueDiagnosed,
			rx.EppoCode, rx.Recommendation, string(rx.Status), rx.IssuedAt, rx.FollowUpDate)
		if err != nil {
			return mapPgError(err)
		}
		batch := &pgx.Batch{}
		for _, item := range rx.ActionItems {
			batch.Queue(`
				INSERT INTO prescription_action_items (
					id, prescription_id, category, product_name, dosage, estimated_cost, sort_order
				) VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, item.ID, rx.ID, string(item.Category), item.ProductName, item.Dosage, item.EstimatedCost, item.SortOrder)
		}
		if batch.Len() == 0 {
			return nil
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// UpdatePrescriptionStatus implements consultation.Store.
func (r *PostgresRepository) UpdatePrescriptionStatus(ctx context.Context, rxID string, status consultation.PrescriptionStatus) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var current string
		err := tx.QueryRow(ctx, `SELECT status FROM prescriptions WHERE id = $1 FOR UPDATE`, rxID).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return consultation.ErrNotFound
		}
		if err != nil {
			return err
		}
		if !consultation.PrescriptionStatus(current).CanTransitionTo(status) {
			return consultation.ErrInvalidTransition
		}
		_, err = tx.Exec(ctx, `UPDATE prescriptions SET status = $2 WHERE id = $1`, rxID, string(status))
		return err
	})
}

func (r *PostgresRepository) prescriptionsFor(ctx context.Context, consultationIDs []string) (map[string]consultation.Prescription, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+prescriptionColumns+`
		FROM prescriptions p
		WHERE p.consultation_id = ANY($1)
	`, consultationIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]consultation.Prescription)
	var rxIDs []string
	for rows.Next() {
		rx, err := scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		out[rx.ConsultationID] = rx
		rxIDs = append(rxIDs, rx.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(rxIDs) == 0 {
		return out, nil
	}
	items, err := r.actionItems(ctx, rxIDs)
	if err != nil {
		return nil, err
	}
	for cid, rx := range out {
		if list, ok := items[rx.ID]; ok {
			rx.ActionItems = list
			out[cid] = rx
		}
	}
	return out, nil
}

func (r *PostgresRepository) actionItems(ctx context.Context, rxIDs []string) (map[string][]consultation.ActionItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, prescription_id, category, product_name, dosage, estimated_cost, sort_order
		FROM prescription_action_items
		WHERE prescription_id = ANY($1)
		ORDER BY prescription_id, sort_order, id
	`, rxIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]consultation.ActionItem)
	for rows.Next() {
		var (
			item     consultation.ActionItem
			rxID     string
			category string
		)
		if err := rows.Scan(&item.ID, &rxID, &category, &item.ProductName, &item.Dosage, &item.EstimatedCost, &item.SortOrder); err != nil {
			return nil, err
		}
		item.Category = consultation.ActionCategory(category)
		out[rxID] = append(out[rxID], item)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConsultation(row rowScanner) (consultation.Consultation, error) {
	var (
		c         consultation.Consultation
		doctorID  *string
		preferred *string
		kind      string
		status    string
		target    time.Time
		created   time.Time
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.GrowerName, &c.GrowerPhone, &c.FieldID, &c.OrchardName,
		&doctorID, &preferred, &kind, &status, &target, &c.Notes, &created); err != nil {
		return consultation.Consultation{}, err
	}
	c.DoctorID = doctorID
	if preferred != nil {
		c.PreferredDoctorID = *preferred
	}
	c.Type = consultation.ConsultType(kind)
	c.Status = consultation.Status(status)
	c.TargetDateTime = target.UTC()
	c.CreatedAt = created.UTC()
	return c, nil
}

func scanPrescription(row rowScanner) (consultation.Prescription, error) {
	var (
		rx     consultation.Prescription
		status string
		issued time.Time
	)
	if err := row.Scan(&rx.ID, &rx.ConsultationID, &rx.DoctorName, &rx.HospitalName, &rx.IssueDiagnosed,
		&rx.EppoCode, &rx.Recommendation, &status, &issued, &rx.FollowUpDate); err != nil {
		return consultation.Prescription{}, err
	}
	rx.Status = consultation.PrescriptionStatus(status)
	rx.IssuedAt = issued.UTC()
	rx.ActionItems = []consultation.ActionItem{}
	return rx, nil
}

func nullIfEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return consultation.ErrConflict
	}
	return err
}

var _ consultation.Store = (*PostgresRepository)(nil)
