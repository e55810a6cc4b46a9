package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/schema"
)

const fileColumns = "id, filename, technology, content_path, size, fingerprint, status, error_message, created_at, updated_at, failed_at"

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// CreateFile inserts a new file row. A repeated fingerprint returns ErrDuplicate.
func (s *SQLStore) CreateFile(ctx context.Context, file schema.SourceFile) error {
	query := s.bind(fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.q(filesTable), fileColumns))
	_, err := s.db.ExecContext(ctx, query,
		file.ID, file.Filename, string(file.Technology), file.ContentPath, file.Size, file.Fingerprint,
		string(file.Status), nullString(file.ErrorMessage),
		s.ts(file.CreatedAt), s.ts(file.UpdatedAt), formatNullTime(file.FailedAt, s.dialect),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: fingerprint %s", contract.ErrDuplicate, file.Fingerprint)
		}
		return fmt.Errorf("failed to insert file %s: %w", file.ID, err)
	}
	return nil
}

// GetFile returns the file with id or ErrNotFound.
func (s *SQLStore) GetFile(ctx context.Context, id string) (schema.SourceFile, error) {
	query := s.bind(fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, fileColumns, s.q(filesTable)))
	file, err := scanFile(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.SourceFile{}, fmt.Errorf("file %s: %w", id, contract.ErrNotFound)
	}
	if err != nil {
		return schema.SourceFile{}, fmt.Errorf("failed to get file %s: %w", id, err)
	}
	return file, nil
}

// GetFileByFingerprint returns the file with the given fingerprint or ErrNotFound.
func (s *SQLStore) GetFileByFingerprint(ctx context.Context, fingerprint string) (schema.SourceFile, error) {
	query := s.bind(fmt.Sprintf(`SELECT %s FROM %s WHERE fingerprint = ?`, fileColumns, s.q(filesTable)))
	file, err := scanFile(s.db.QueryRowContext(ctx, query, fingerprint))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.SourceFile{}, fmt.Errorf("fingerprint %s: %w", fingerprint, contract.ErrNotFound)
	}
	if err != nil {
		return schema.SourceFile{}, fmt.Errorf("failed to get file by fingerprint: %w", err)
	}
	return file, nil
}

// UpdateStatus is a compare-and-set on the status column. The error message
// and failure time are only kept for FAILED and cleared otherwise.
func (s *SQLStore) UpdateStatus(ctx context.Context, id string, from, to schema.ProcessingStatus, errMsg string, at time.Time) error {
	var failedAt *time.Time
	if to == schema.StatusFailed {
		failedAt = &at
	} else {
		errMsg = ""
	}

	query := s.bind(fmt.Sprintf(
		`UPDATE %s SET status = ?, error_message = ?, updated_at = ?, failed_at = ? WHERE id = ? AND status = ?`,
		s.q(filesTable)))
	res, err := s.db.ExecContext(ctx, query,
		string(to), nullString(errMsg), s.ts(at), formatNullTime(failedAt, s.dialect), id, string(from))
	if err != nil {
		return fmt.Errorf("failed to update status of file %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n > 0 {
		return nil
	}

	current, err := s.GetFile(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: file %s is %s, not %s", contract.ErrInvalidTransition, id, current.Status, from)
}

// ListFiles returns files newest first, narrowed by filter.
func (s *SQLStore) ListFiles(ctx context.Context, filter schema.FileListFilter) ([]schema.SourceFile, error) {
	var where []string
	var args []any
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Technology != "" {
		where = append(where, "technology = ?")
		args = append(args, string(filter.Technology))
	}

	query := fmt.Sprintf(`SELECT %s FROM %s`, fileColumns, s.q(filesTable))
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	return s.queryFiles(ctx, s.bind(query), args...)
}

// ListStale returns files in status whose last update is before olderThan.
func (s *SQLStore) ListStale(ctx context.Context, status schema.ProcessingStatus, olderThan time.Time) ([]schema.SourceFile, error) {
	query := s.bind(fmt.Sprintf(`SELECT %s FROM %s WHERE status = ? AND updated_at < ? ORDER BY updated_at`,
		fileColumns, s.q(filesTable)))
	return s.queryFiles(ctx, query, string(status), s.ts(olderThan))
}

func (s *SQLStore) queryFiles(ctx context.Context, query string, args ...any) ([]schema.SourceFile, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var files []schema.SourceFile
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating files: %w", err)
	}
	return files, nil
}

func scanFile(row rowScanner) (schema.SourceFile, error) {
	var file schema.SourceFile
	var tech, status string
	var errMsg sql.NullString
	var createdAt, updatedAt, failedAt dbTime
	err := row.Scan(&file.ID, &file.Filename, &tech, &file.ContentPath, &file.Size, &file.Fingerprint,
		&status, &errMsg, &createdAt, &updatedAt, &failedAt)
	if err != nil {
		return schema.SourceFile{}, err
	}
	file.Technology = schema.Technology(tech)
	file.Status = schema.ProcessingStatus(status)
	file.ErrorMessage = errMsg.String
	file.CreatedAt = createdAt.Time
	file.UpdatedAt = updatedAt.Time
	file.FailedAt = failedAt.ptr()
	return file, nil
}

// nullString stores empty strings as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
