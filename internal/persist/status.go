package persist

import (
	"context"
	"fmt"

	"github.com/huangsam/legacylens/schema"
)

// GetStatus returns row counts and the most recent analysis.
func (s *SQLStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:       string(s.backend),
		Connected:     s.db != nil,
		FilesByStatus: make(map[schema.ProcessingStatus]int64),
		TableSizes:    make(map[string]int64),
	}
	if s.db == nil {
		return status, nil
	}
	if err := s.db.PingContext(ctx); err != nil {
		status.Connected = false
		return status, fmt.Errorf("failed to ping database: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT status, COUNT(*) FROM %s GROUP BY status", s.q(filesTable)))
	if err != nil {
		return status, fmt.Errorf("failed to count files by status: %w", err)
	}
	for rows.Next() {
		var st string
		var count int64
		if err := rows.Scan(&st, &count); err != nil {
			_ = rows.Close()
			return status, fmt.Errorf("failed to scan file count: %w", err)
		}
		status.FilesByStatus[schema.ProcessingStatus(st)] = count
		status.TotalFiles += count
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return status, fmt.Errorf("error iterating file counts: %w", err)
	}

	for _, table := range allTables {
		var count int64
		row := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.q(table)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalAnalyses = status.TableSizes[analysesTable]

	if status.TotalAnalyses > 0 {
		var lastTime dbTime
		row := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT id, created_at FROM %s ORDER BY id DESC LIMIT 1", s.q(analysesTable)))
		if err := row.Scan(&status.LastAnalysisID, &lastTime); err != nil {
			return status, fmt.Errorf("failed to get last analysis info: %w", err)
		}
		status.LastAnalysisTime = lastTime.Time
	}
	return status, nil
}
