package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"carebridge/internal/consent/models"
	id "carebridge/pkg/domain"
	"carebridge/pkg/platform/sentinel"
)

const pgUniqueViolation = "23505"

// PostgresStore persists consent state in PostgreSQL. When bound to a
// transaction (NewPostgresTx) every statement runs inside it.
type PostgresStore struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPostgres constructs a PostgreSQL-backed consent store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// NewPostgresTx constructs a store bound to an open transaction.
func NewPostgresTx(tx *sql.Tx) *PostgresStore {
	return &PostgresStore{tx: tx}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer() dbExecutor {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// withTx runs fn in the bound transaction, or in a fresh one.
func (s *PostgresStore) withTx(ctx context.Context, fn func(exec dbExecutor) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin consent tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after commit
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit consent tx: %w", err)
	}
	return nil
}

// LockRequest takes a row lock on the request for the rest of the bound
// transaction. A missing row is not an error.
func (s *PostgresStore) LockRequest(ctx context.Context, requestID id.ConsentRequestID) error {
	if s.tx == nil {
		return errors.New("lock consent request: store is not bound to a transaction")
	}
	var locked uuid.UUID
	err := s.tx.QueryRowContext(ctx, `SELECT id FROM consent_requests WHERE id = $1 FOR UPDATE`, uuid.UUID(requestID)).Scan(&locked)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lock consent request: %w", err)
	}
	return nil
}

const requestColumns = `id, patient_id, requester_id, purpose, hip_id, hiu_id, request_date, expiry_date, status, metadata, updated_at, version`

func (s *PostgresStore) CreateRequest(ctx context.Context, r *models.ConsentRequest) error {
	metadata, err := json.Marshal(nonNilMap(r.Metadata))
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	_, err = s.execer().ExecContext(ctx, `
		INSERT INTO consent_requests (`+requestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1)
	`,
		uuid.UUID(r.ID), string(r.PatientID), string(r.RequesterID), r.Purpose,
		string(r.HIPID), string(r.HIUID), r.RequestDate, r.ExpiryDate,
		string(r.Status), string(metadata), r.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert consent request: %w", err)
	}
	r.Version = 1
	return nil
}

func (s *PostgresStore) FindRequest(ctx context.Context, requestID id.ConsentRequestID) (*models.ConsentRequest, error) {
	r, err := scanRequest(s.execer().QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM consent_requests WHERE id = $1`, uuid.UUID(requestID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find consent request: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) UpdateRequest(ctx context.Context, r *models.ConsentRequest) error {
	return updateRequest(ctx, s.execer(), r)
}

func updateRequest(ctx context.Context, exec dbExecutor, r *models.ConsentRequest) error {
	metadata, err := json.Marshal(nonNilMap(r.Metadata))
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	res, err := exec.ExecContext(ctx, `
		UPDATE consent_requests
		SET purpose = $2, status = $3, metadata = $4, updated_at = $5, version = version + 1
		WHERE id = $1 AND version = $6
	`, uuid.UUID(r.ID), r.Purpose, string(r.Status), string(metadata), r.UpdatedAt, r.Version)
	if err != nil {
		return fmt.Errorf("update consent request: %w", err)
	}
	if err := versionedResult(ctx, exec, res, "consent_requests", uuid.UUID(r.ID)); err != nil {
		return err
	}
	r.Version++
	return nil
}

func (s *PostgresStore) DeleteRequest(ctx context.Context, requestID id.ConsentRequestID) error {
	res, err := s.execer().ExecContext(ctx, `
		DELETE FROM consent_requests r
		WHERE r.id = $1
		  AND NOT EXISTS (SELECT 1 FROM consent_artefacts a WHERE a.consent_request_id = r.id)
	`, uuid.UUID(requestID))
	if err != nil {
		return fmt.Errorf("delete consent request: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete consent request rows: %w", err)
	}
	if rows == 1 {
		return nil
	}
	if _, err := s.FindRequest(ctx, requestID); err != nil {
		return err
	}
	return sentinel.ErrConflict
}

func (s *PostgresStore) ListRequestsByPatient(ctx context.Context, patientID id.PatientID, filter *models.RequestFilter) ([]*models.ConsentRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM consent_requests WHERE patient_id = $1`
	args := []any{string(patientID)}
	if filter != nil && filter.Status != nil {
		query += ` AND status = $2`
		args = append(args, string(*filter.Status))
	}
	query += ` ORDER BY request_date, id`
	return s.queryRequests(ctx, query, args...)
}

func (s *PostgresStore) ListRequestsByHIP(ctx context.Context, hipID id.HIPID, status models.Status) ([]*models.ConsentRequest, error) {
	return s.queryRequests(ctx,
		`SELECT `+requestColumns+` FROM consent_requests WHERE hip_id = $1 AND status = $2 ORDER BY request_date, id`,
		string(hipID), string(status))
}

func (s *PostgresStore) queryRequests(ctx context.Context, query string, args ...any) ([]*models.ConsentRequest, error) {
	rows, err := s.execer().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list consent requests: %w", err)
	}
	defer rows.Close()

	out := make([]*models.ConsentRequest, 0)
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan consent request: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consent requests: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListExpiryCandidates(ctx context.Context, now time.Time) ([]id.ConsentRequestID, error) {
	rows, err := s.execer().QueryContext(ctx, `
		SELECT r.id
		FROM consent_requests r
		LEFT JOIN consent_artefacts a ON a.consent_request_id = r.id
		WHERE (r.status IN ('REQUESTED', 'GRANTED') AND r.expiry_date < $1)
		   OR (r.status = 'GRANTED' AND a.date_range_to < $1)
		ORDER BY r.expiry_date, r.id
	`, now)
	if err != nil {
		return nil, fmt.Errorf("list expiry candidates: %w", err)
	}
	defer rows.Close()

	var ids []id.ConsentRequestID
	for rows.Next() {
		var u uuid.UUID
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan expiry candidate: %w", err)
		}
		ids = append(ids, id.ConsentRequestID(u))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expiry candidates: %w", err)
	}
	return ids, nil
}

const artefactColumns = `id, consent_request_id, signature, signed_at, access_mode, date_range_from, date_range_to, frequency, data_categories, created_at, version`

func (s *PostgresStore) SaveGrant(ctx context.Context, r *models.ConsentRequest, a *models.ConsentArtefact) error {
	categories, err := json.Marshal(a.DataCategories)
	if err != nil {
		return fmt.Errorf("encode data categories: %w", err)
	}
	var frequency *string
	if a.Frequency != nil {
		b, err := json.Marshal(a.Frequency)
		if err != nil {
			return fmt.Errorf("encode frequency: %w", err)
		}
		f := string(b)
		frequency = &f
	}

	version := r.Version
	err = s.withTx(ctx, func(exec dbExecutor) error {
		if err := updateRequest(ctx, exec, r); err != nil {
			return err
		}
		_, err := exec.ExecContext(ctx, `
			INSERT INTO consent_artefacts (`+artefactColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1)
		`,
			uuid.UUID(a.ID), uuid.UUID(a.ConsentRequestID), a.Signature, a.SignedAt,
			string(a.AccessMode), a.DateRangeFrom, a.DateRangeTo, frequency,
			string(categories), a.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return sentinel.ErrConflict
			}
			return fmt.Errorf("insert consent artefact: %w", err)
		}
		return nil
	})
	if err != nil {
		r.Version = version
		return err
	}
	a.Version = 1
	return nil
}

func (s *PostgresStore) SaveRevocation(ctx context.Context, r *models.ConsentRequest, a *models.ConsentArtefact) error {
	version := r.Version
	err := s.withTx(ctx, func(exec dbExecutor) error {
		if err := updateRequest(ctx, exec, r); err != nil {
			return err
		}
		res, err := exec.ExecContext(ctx, `
			UPDATE consent_artefacts
			SET date_range_to = $2, version = version + 1
			WHERE id = $1 AND version = $3
		`, uuid.UUID(a.ID), a.DateRangeTo, a.Version)
		if err != nil {
			return fmt.Errorf("truncate consent artefact: %w", err)
		}
		return versionedResult(ctx, exec, res, "consent_artefacts", uuid.UUID(a.ID))
	})
	if err != nil {
		r.Version = version
		return err
	}
	a.Version++
	return nil
}

func (s *PostgresStore) FindArtefact(ctx context.Context, artefactID id.ConsentArtefactID) (*models.ConsentArtefact, error) {
	return s.findArtefact(ctx, `SELECT `+artefactColumns+` FROM consent_artefacts WHERE id = $1`, uuid.UUID(artefactID))
}

func (s *PostgresStore) FindArtefactByRequest(ctx context.Context, requestID id.ConsentRequestID) (*models.ConsentArtefact, error) {
	return s.findArtefact(ctx, `SELECT `+artefactColumns+` FROM consent_artefacts WHERE consent_request_id = $1`, uuid.UUID(requestID))
}

func (s *PostgresStore) findArtefact(ctx context.Context, query string, arg any) (*models.ConsentArtefact, error) {
	a, err := scanArtefact(s.execer().QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find consent artefact: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) ListArtefactsByPatient(ctx context.Context, patientID id.PatientID) ([]*models.ConsentArtefact, error) {
	rows, err := s.execer().QueryContext(ctx, `
		SELECT a.id, a.consent_request_id, a.signature, a.signed_at, a.access_mode, a.date_range_from,
		       a.date_range_to, a.frequency, a.data_categories, a.created_at, a.version
		FROM consent_artefacts a
		JOIN consent_requests r ON r.id = a.consent_request_id
		WHERE r.patient_id = $1
		ORDER BY a.created_at, a.id
	`, string(patientID))
	if err != nil {
		return nil, fmt.Errorf("list consent artefacts: %w", err)
	}
	defer rows.Close()

	out := make([]*models.ConsentArtefact, 0)
	for rows.Next() {
		a, err := scanArtefact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan consent artefact: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consent artefacts: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) AppendAccessRecord(ctx context.Context, rec *models.AccessRecord) error {
	categories, err := json.Marshal(rec.Categories)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	_, err = s.execer().ExecContext(ctx, `
		INSERT INTO consent_access_records
			(id, artefact_id, accessed_at, categories, accessed_by, purpose, client_ip, user_agent, client_description, device_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		string(rec.ID), uuid.UUID(rec.ArtefactID), rec.AccessedAt, string(categories),
		rec.AccessedBy, rec.Purpose, rec.ClientIP, rec.UserAgent, rec.ClientDescription, rec.DeviceID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("insert access record: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountAccessRecords(ctx context.Context, artefactID id.ConsentArtefactID) (int, error) {
	var n int
	err := s.execer().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM consent_access_records WHERE artefact_id = $1`, uuid.UUID(artefactID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count access records: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) ListAccessRecords(ctx context.Context, artefactID id.ConsentArtefactID) ([]*models.AccessRecord, error) {
	rows, err := s.execer().QueryContext(ctx, `
		SELECT id, artefact_id, accessed_at, categories, accessed_by, purpose, client_ip, user_agent, client_description, device_id
		FROM consent_access_records
		WHERE artefact_id = $1
		ORDER BY accessed_at, id
	`, uuid.UUID(artefactID))
	if err != nil {
		return nil, fmt.Errorf("list access records: %w", err)
	}
	defer rows.Close()

	out := make([]*models.AccessRecord, 0)
	for rows.Next() {
		var (
			rec        models.AccessRecord
			recID      string
			artID      uuid.UUID
			categories []byte
		)
		if err := rows.Scan(&recID, &artID, &rec.AccessedAt, &categories, &rec.AccessedBy, &rec.Purpose,
			&rec.ClientIP, &rec.UserAgent, &rec.ClientDescription, &rec.DeviceID); err != nil {
			return nil, fmt.Errorf("scan access record: %w", err)
		}
		if err := json.Unmarshal(categories, &rec.Categories); err != nil {
			return nil, fmt.Errorf("decode access categories: %w", err)
		}
		rec.ID = id.AccessRecordID(recID)
		rec.ArtefactID = id.ConsentArtefactID(artID)
		rec.AccessedAt = rec.AccessedAt.UTC()
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate access records: %w", err)
	}
	return out, nil
}

// versionedResult maps a zero-row versioned write to ErrNotFound or ErrConflict.
func versionedResult(ctx context.Context, exec dbExecutor, res sql.Result, table string, key uuid.UUID) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", table, err)
	}
	if rows == 1 {
		return nil
	}
	var exists bool
	if err := exec.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, key).Scan(&exists); err != nil {
		return fmt.Errorf("%s existence check: %w", table, err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrConflict
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

type row interface {
	Scan(dest ...any) error
}

func scanRequest(rw row) (*models.ConsentRequest, error) {
	var (
		r           models.ConsentRequest
		reqID       uuid.UUID
		patientID   string
		requesterID string
		hipID       string
		hiuID       string
		status      string
		metadata    []byte
	)
	if err := rw.Scan(&reqID, &patientID, &requesterID, &r.Purpose, &hipID, &hiuID,
		&r.RequestDate, &r.ExpiryDate, &status, &metadata, &r.UpdatedAt, &r.Version); err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &r.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	if len(r.Metadata) == 0 {
		r.Metadata = nil
	}
	r.ID = id.ConsentRequestID(reqID)
	r.PatientID = id.PatientID(patientID)
	r.RequesterID = id.RequesterID(requesterID)
	r.HIPID = id.HIPID(hipID)
	r.HIUID = id.HIUID(hiuID)
	r.Status = models.Status(status)
	r.RequestDate = r.RequestDate.UTC()
	r.ExpiryDate = r.ExpiryDate.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return &r, nil
}

func scanArtefact(rw row) (*models.ConsentArtefact, error) {
	var (
		a          models.ConsentArtefact
		artID      uuid.UUID
		reqID      uuid.UUID
		accessMode string
		frequency  []byte
		categories []byte
	)
	if err := rw.Scan(&artID, &reqID, &a.Signature, &a.SignedAt, &accessMode, &a.DateRangeFrom,
		&a.DateRangeTo, &frequency, &categories, &a.CreatedAt, &a.Version); err != nil {
		return nil, err
	}
	if len(frequency) > 0 {
		var f models.Frequency
		if err := json.Unmarshal(frequency, &f); err != nil {
			return nil, fmt.Errorf("decode frequency: %w", err)
		}
		a.Frequency = &f
	}
	if err := json.Unmarshal(categories, &a.DataCategories); err != nil {
		return nil, fmt.Errorf("decode data categories: %w", err)
	}
	a.ID = id.ConsentArtefactID(artID)
	a.ConsentRequestID = id.ConsentRequestID(reqID)
	a.AccessMode = models.AccessMode(accessMode)
	a.SignedAt = a.SignedAt.UTC()
	a.DateRangeFrom = a.DateRangeFrom.UTC()
	a.DateRangeTo = a.DateRangeTo.UTC()
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}
