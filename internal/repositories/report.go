package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/cleansweep/litterwatch/internal/errors"
	"github.com/cleansweep/litterwatch/internal/models"
	"github.com/cleansweep/litterwatch/internal/sqlite"
)

type ReportRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewReportRepository(dbs *sqlite.Database, logger *slog.Logger) *ReportRepository {
	return &ReportRepository{
		dbs:    dbs,
		logger: logger.With("source", "ReportRepository"),
	}
}

// reportRow mirrors the litter_reports table. The detection payload columns
// hold JSON text.
type reportRow struct {
	ID            int64          `db:"id"`
	UserID        int64          `db:"user_id"`
	ImagePath     string         `db:"image_path"`
	Lat           float64        `db:"lat"`
	Lon           float64        `db:"lon"`
	Description   string         `db:"description"`
	Count         int            `db:"count"`
	Categories    []byte         `db:"categories"`
	RawDetections []byte         `db:"raw_detections"`
	Status        string         `db:"status"`
	CreatedAt     time.Time      `db:"created_at"`
	VerifiedBy    sql.NullString `db:"verified_by"`
	VerifiedAt    sql.NullTime   `db:"verified_at"`
}

const reportColumns = `id, user_id, image_path, lat, lon, description, count,
	categories, raw_detections, status, created_at, verified_by, verified_at`

func (row reportRow) toModel() (models.LitterReport, error) {
	report := models.LitterReport{
		ID:          row.ID,
		UserID:      row.UserID,
		ImagePath:   row.ImagePath,
		Lat:         row.Lat,
		Lon:         row.Lon,
		Description: row.Description,
		Count:       row.Count,
		Status:      models.ReportStatus(row.Status),
		CreatedAt:   row.CreatedAt,
	}
	if err := json.Unmarshal(row.Categories, &report.Categories); err != nil {
		return report, errors.Wrap(err, "unmarshal categories", slog.Int64("id", row.ID))
	}
	if err := json.Unmarshal(row.RawDetections, &report.Detections); err != nil {
		return report, errors.Wrap(err, "unmarshal detections", slog.Int64("id", row.ID))
	}
	if row.VerifiedBy.Valid {
		report.VerifiedBy = &row.VerifiedBy.String
	}
	if row.VerifiedAt.Valid {
		verifiedAt := row.VerifiedAt.Time
		report.VerifiedAt = &verifiedAt
	}
	return report, nil
}

func rowsToModels(rows []reportRow) ([]models.LitterReport, error) {
	reports := make([]models.LitterReport, 0, len(rows))
	for _, row := range rows {
		report, err := row.toModel()
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// Create inserts an accepted report with status active, storing the raw
// detection list verbatim. It fills in the report's ID and CreatedAt.
func (r *ReportRepository) Create(ctx context.Context, report *models.LitterReport) error {
	categories, err := json.Marshal(report.Categories)
	if err != nil {
		return errors.Wrap(err, "marshal categories")
	}
	detections, err := json.Marshal(report.Detections)
	if err != nil {
		return errors.Wrap(err, "marshal detections")
	}

	report.Status = models.StatusActive
	report.CreatedAt = time.Now().UTC()

	stmt := `INSERT INTO litter_reports
	(user_id, image_path, lat, lon, description, count, categories, raw_detections, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.dbs.ReadWrite.ExecContext(ctx, stmt,
		report.UserID, report.ImagePath, report.Lat, report.Lon, report.Description,
		report.Count, categories, detections, report.Status, report.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "insert litter report")
	}
	if report.ID, err = res.LastInsertId(); err != nil {
		return errors.Wrap(err, "last insert id")
	}
	return nil
}

// Get reads a report by id or ErrNotFound.
func (r *ReportRepository) Get(ctx context.Context, id int64) (*models.LitterReport, error) {
	var row reportRow
	stmt := `SELECT ` + reportColumns + ` FROM litter_reports WHERE id = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &row, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrNotFound, "report not found", slog.Int64("id", id))
		}
		return nil, errors.Wrap(err, "read report")
	}
	report, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// ListByStatus returns reports with the given status, newest first.
func (r *ReportRepository) ListByStatus(
	ctx context.Context,
	status models.ReportStatus,
) ([]models.LitterReport, error) {
	var rows []reportRow
	stmt := `SELECT ` + reportColumns + ` FROM litter_reports WHERE status = ? ORDER BY created_at DESC`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &rows, stmt, status); err != nil {
		return nil, errors.Wrap(err, "query reports by status", slog.String("status", string(status)))
	}
	return rowsToModels(rows)
}

// ListVerified returns verified reports ordered by verification time, newest first.
func (r *ReportRepository) ListVerified(ctx context.Context) ([]models.LitterReport, error) {
	var rows []reportRow
	stmt := `SELECT ` + reportColumns + ` FROM litter_reports WHERE status = 'verified' ORDER BY verified_at DESC`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &rows, stmt); err != nil {
		return nil, errors.Wrap(err, "query verified reports")
	}
	return rowsToModels(rows)
}

// CompletedReport pairs a completed report with its latest cleanup evidence.
type CompletedReport struct {
	Report  models.LitterReport
	Cleanup *models.CleanupReport
}

// ListCompleted returns completed reports joined with their latest cleanup
// submission, newest report first.
func (r *ReportRepository) ListCompleted(ctx context.Context) ([]CompletedReport, error) {
	type completedRow struct {
		reportRow
		CleanupID          sql.NullInt64  `db:"cleanup_id"`
		CleanupUserID      sql.NullInt64  `db:"cleanup_user_id"`
		CleanupImagePath   sql.NullString `db:"cleanup_image_path"`
		CleanupDescription sql.NullString `db:"cleanup_description"`
		CleanupCreatedAt   sql.NullTime   `db:"cleanup_created_at"`
	}
	stmt := `SELECT lr.id, lr.user_id, lr.image_path, lr.lat, lr.lon, lr.description, lr.count,
	lr.categories, lr.raw_detections, lr.status, lr.created_at, lr.verified_by, lr.verified_at,
	cr.id AS cleanup_id, cr.user_id AS cleanup_user_id, cr.image_path AS cleanup_image_path,
	cr.description AS cleanup_description, cr.created_at AS cleanup_created_at
FROM litter_reports lr
LEFT JOIN cleanup_reports cr ON cr.id = (
	SELECT id FROM cleanup_reports
	WHERE report_id = lr.id
	ORDER BY created_at DESC, id DESC
	LIMIT 1
)
WHERE lr.status = 'completed'
ORDER BY lr.created_at DESC`
	var rows []completedRow
	if err := r.dbs.ReadOnly.SelectContext(ctx, &rows, stmt); err != nil {
		return nil, errors.Wrap(err, "query completed reports")
	}

	completed := make([]CompletedReport, 0, len(rows))
	for _, row := range rows {
		report, err := row.toModel()
		if err != nil {
			return nil, err
		}
		entry := CompletedReport{Report: report, Cleanup: nil}
		if row.CleanupID.Valid {
			entry.Cleanup = &models.CleanupReport{
				ID:          row.CleanupID.Int64,
				ReportID:    report.ID,
				UserID:      row.CleanupUserID.Int64,
				ImagePath:   row.CleanupImagePath.String,
				Description: row.CleanupDescription.String,
				CreatedAt:   row.CleanupCreatedAt.Time,
			}
		}
		completed = append(completed, entry)
	}
	return completed, nil
}

// RecentReport pairs a report with the image paths of all its cleanup submissions.
type RecentReport struct {
	Report        models.LitterReport
	CleanupImages []string
}

// ListRecent returns reports created at or after the given time with their
// aggregated cleanup image references, newest first.
func (r *ReportRepository) ListRecent(ctx context.Context, since time.Time) ([]RecentReport, error) {
	type recentRow struct {
		reportRow
		CleanupImages sql.NullString `db:"cleanup_images"`
	}
	stmt := `SELECT lr.id, lr.user_id, lr.image_path, lr.lat, lr.lon, lr.description, lr.count,
	lr.categories, lr.raw_detections, lr.status, lr.created_at, lr.verified_by, lr.verified_at,
	GROUP_CONCAT(cr.image_path) AS cleanup_images
FROM litter_reports lr
LEFT JOIN cleanup_reports cr ON cr.report_id = lr.id
WHERE lr.created_at >= ?
GROUP BY lr.id
ORDER BY lr.created_at DESC`
	var rows []recentRow
	if err := r.dbs.ReadOnly.SelectContext(ctx, &rows, stmt, since); err != nil {
		return nil, errors.Wrap(err, "query recent reports")
	}

	recent := make([]RecentReport, 0, len(rows))
	for _, row := range rows {
		report, err := row.toModel()
		if err != nil {
			return nil, err
		}
		entry := RecentReport{Report: report, CleanupImages: nil}
		if row.CleanupImages.Valid && row.CleanupImages.String != "" {
			// Image paths are timestamped filenames and never contain commas.
			entry.CleanupImages = strings.Split(row.CleanupImages.String, ",")
		}
		recent = append(recent, entry)
	}
	return recent, nil
}

// Count returns the total number of litter reports.
func (r *ReportRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.dbs.ReadOnly.GetContext(ctx, &count, `SELECT COUNT(*) FROM litter_reports`); err != nil {
		return 0, errors.Wrap(err, "count reports")
	}
	return count, nil
}

// Analytics is the dashboard counter set.
type Analytics struct {
	PendingCount   int64
	CompletedCount int64
	VerifiedCount  int64
	ActiveCitizens int64
}

// GetAnalytics computes status counters plus the number of distinct reporting
// users since the given time.
func (r *ReportRepository) GetAnalytics(ctx context.Context, activeSince time.Time) (Analytics, error) {
	var analytics Analytics
	counts := []struct {
		status models.ReportStatus
		dest   *int64
	}{
		{status: models.StatusActive, dest: &analytics.PendingCount},
		{status: models.StatusCompleted, dest: &analytics.CompletedCount},
		{status: models.StatusVerified, dest: &analytics.VerifiedCount},
	}
	for _, c := range counts {
		stmt := `SELECT COUNT(*) FROM litter_reports WHERE status = ?`
		if err := r.dbs.ReadOnly.GetContext(ctx, c.dest, stmt, c.status); err != nil {
			return analytics, errors.Wrap(err, "count reports by status", slog.String("status", string(c.status)))
		}
	}

	stmt := `SELECT COUNT(DISTINCT user_id) FROM litter_reports WHERE created_at >= ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &analytics.ActiveCitizens, stmt, activeSince); err != nil {
		return analytics, errors.Wrap(err, "count active citizens")
	}
	return analytics, nil
}

// AddCleanup records cleanup evidence for an existing report and marks the
// report completed. Both writes happen in one transaction; a missing report
// yields ErrNotFound and nothing is written.
func (r *ReportRepository) AddCleanup(ctx context.Context, cleanup *models.CleanupReport) error {
	tx, err := r.dbs.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var reportID int64
	if err = tx.GetContext(ctx, &reportID,
		`SELECT id FROM litter_reports WHERE id = ?`, cleanup.ReportID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errors.Wrap(ErrNotFound, "report not found", slog.Int64("report_id", cleanup.ReportID))
		}
		return errors.Wrap(err, "read report")
	}

	cleanup.CreatedAt = time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO cleanup_reports (report_id, user_id, image_path, description, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		cleanup.ReportID, cleanup.UserID, cleanup.ImagePath, cleanup.Description, cleanup.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "insert cleanup report")
	}
	if cleanup.ID, err = res.LastInsertId(); err != nil {
		return errors.Wrap(err, "last insert id")
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE litter_reports SET status = ? WHERE id = ?`,
		models.StatusCompleted, cleanup.ReportID); err != nil {
		return errors.Wrap(err, "mark report completed")
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

// Verify appends a verification audit row and transitions the report in one
// transaction. Approve sets status verified and stamps the verifier,
// disapprove sets status rejected. A missing report yields ErrNotFound; a
// report already in a terminal status yields ErrReportFinalized and the audit
// row is not written.
func (r *ReportRepository) Verify(
	ctx context.Context,
	reportID int64,
	officialName string,
	action models.VerificationAction,
	notes string,
) error {
	tx, err := r.dbs.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var status models.ReportStatus
	if err = tx.GetContext(ctx, &status,
		`SELECT status FROM litter_reports WHERE id = ?`, reportID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errors.Wrap(ErrNotFound, "report not found", slog.Int64("report_id", reportID))
		}
		return errors.Wrap(err, "read report status")
	}
	if status == models.StatusVerified || status == models.StatusRejected {
		return errors.Wrap(ErrReportFinalized, "report already finalized",
			slog.Int64("report_id", reportID), slog.String("status", string(status)))
	}

	now := time.Now().UTC()
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO verifications (report_id, official_name, action, notes, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		reportID, officialName, action, notes, now); err != nil {
		return errors.Wrap(err, "insert verification")
	}

	switch action {
	case models.ActionApprove:
		if _, err = tx.ExecContext(ctx,
			`UPDATE litter_reports SET status = ?, verified_by = ?, verified_at = ? WHERE id = ?`,
			models.StatusVerified, officialName, now, reportID); err != nil {
			return errors.Wrap(err, "mark report verified")
		}
	case models.ActionDisapprove:
		if _, err = tx.ExecContext(ctx,
			`UPDATE litter_reports SET status = ? WHERE id = ?`,
			models.StatusRejected, reportID); err != nil {
			return errors.Wrap(err, "mark report rejected")
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

// Verifications returns the audit records for a report in insertion order.
func (r *ReportRepository) Verifications(ctx context.Context, reportID int64) ([]models.Verification, error) {
	type verificationRow struct {
		ID           int64     `db:"id"`
		ReportID     int64     `db:"report_id"`
		OfficialName string    `db:"official_name"`
		Action       string    `db:"action"`
		Notes        string    `db:"notes"`
		CreatedAt    time.Time `db:"created_at"`
	}
	var rows []verificationRow
	stmt := `SELECT id, report_id, official_name, action, notes, created_at
	FROM verifications WHERE report_id = ? ORDER BY id`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &rows, stmt, reportID); err != nil {
		return nil, errors.Wrap(err, "query verifications")
	}
	verifications := make([]models.Verification, 0, len(rows))
	for _, row := range rows {
		verifications = append(verifications, models.Verification{
			ID:           row.ID,
			ReportID:     row.ReportID,
			OfficialName: row.OfficialName,
			Action:       models.VerificationAction(row.Action),
			Notes:        row.Notes,
			CreatedAt:    row.CreatedAt,
		})
	}
	return verifications, nil
}
