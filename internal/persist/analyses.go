package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/schema"
)

const analysisColumns = `id, file_id, technology,
	total_lines, code_lines, comment_lines, blank_lines, cyclomatic_complexity, nesting_depth,
	function_count, class_count, loop_count, conditional_count, sql_join_count, dependency_count,
	maintainability_index, risk_score, complexity_level, risk_level,
	debt_points, debt_hours, debt_category, quality_score, provenance, analyzer_version,
	details, issues, duration_ns, created_at`

const suggestionColumns = `id, analysis_id, type, severity, category, title, description, fix,
	start_line, end_line, impact, effort, confidence, created_at`

// SaveAnalysis inserts the record and its suggestions in one transaction.
func (s *SQLStore) SaveAnalysis(ctx context.Context, record schema.AnalysisRecord, suggestions []schema.Suggestion) (int64, error) {
	details, err := json.Marshal(record.Details)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal details: %w", err)
	}
	issues := record.Issues
	if issues == nil {
		issues = []schema.Issue{}
	}
	issuesJSON, err := json.Marshal(issues)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal issues: %w", err)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	m := record.Metrics
	args := []any{
		record.FileID, string(record.Technology),
		m.TotalLines, m.CodeLines, m.CommentLines, m.BlankLines, m.CyclomaticComplexity, m.NestingDepth,
		m.FunctionCount, m.ClassCount, m.LoopCount, m.ConditionalCount, m.SQLJoinCount, m.DependencyCount,
		record.MaintainabilityIndex, record.RiskScore, string(record.ComplexityLevel), string(record.RiskLevel),
		record.TechnicalDebt.Points, record.TechnicalDebt.Hours, string(record.TechnicalDebt.Category),
		record.QualityScore, string(record.Provenance), record.AnalyzerVersion,
		string(details), string(issuesJSON), int64(record.Duration), s.ts(record.CreatedAt),
	}
	insert := fmt.Sprintf(`INSERT INTO %s (file_id, technology,
		total_lines, code_lines, comment_lines, blank_lines, cyclomatic_complexity, nesting_depth,
		function_count, class_count, loop_count, conditional_count, sql_join_count, dependency_count,
		maintainability_index, risk_score, complexity_level, risk_level,
		debt_points, debt_hours, debt_category, quality_score, provenance, analyzer_version,
		details, issues, duration_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.q(analysesTable))

	var analysisID int64
	switch s.dialect {
	case schema.PostgreSQLBackend:
		err = tx.QueryRowContext(ctx, s.bind(insert+" RETURNING id"), args...).Scan(&analysisID)
	default: // SQLite and MySQL
		var result sql.Result
		result, err = tx.ExecContext(ctx, insert, args...)
		if err == nil {
			analysisID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis: %w", err)
	}

	suggestionInsert := s.bind(fmt.Sprintf(`INSERT INTO %s (analysis_id, type, severity, category, title, description, fix,
		start_line, end_line, impact, effort, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.q(suggestionsTable)))
	for _, sg := range suggestions {
		createdAt := sg.CreatedAt
		if createdAt.IsZero() {
			createdAt = record.CreatedAt
		}
		_, err := tx.ExecContext(ctx, suggestionInsert,
			analysisID, string(sg.Type), string(sg.Severity), sg.Category, sg.Title, sg.Description, nullString(sg.Fix),
			sg.StartLine, sg.EndLine, sg.Impact, string(sg.Effort), sg.Confidence, s.ts(createdAt))
		if err != nil {
			return 0, fmt.Errorf("failed to insert suggestion %q: %w", sg.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit analysis: %w", err)
	}
	return analysisID, nil
}

// GetAnalysis returns one analysis or ErrNotFound.
func (s *SQLStore) GetAnalysis(ctx context.Context, id int64) (schema.AnalysisRecord, error) {
	query := s.bind(fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, analysisColumns, s.q(analysesTable)))
	record, err := scanAnalysis(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.AnalysisRecord{}, fmt.Errorf("analysis %d: %w", id, contract.ErrNotFound)
	}
	if err != nil {
		return schema.AnalysisRecord{}, fmt.Errorf("failed to get analysis %d: %w", id, err)
	}
	return record, nil
}

// LatestForFile returns the newest analysis of a file or ErrNotFound.
func (s *SQLStore) LatestForFile(ctx context.Context, fileID string) (schema.AnalysisRecord, error) {
	query := s.bind(fmt.Sprintf(`SELECT %s FROM %s WHERE file_id = ? ORDER BY id DESC LIMIT 1`, analysisColumns, s.q(analysesTable)))
	record, err := scanAnalysis(s.db.QueryRowContext(ctx, query, fileID))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.AnalysisRecord{}, fmt.Errorf("analysis for file %s: %w", fileID, contract.ErrNotFound)
	}
	if err != nil {
		return schema.AnalysisRecord{}, fmt.Errorf("failed to get latest analysis for file %s: %w", fileID, err)
	}
	return record, nil
}

// ListForFile returns every analysis of a file, newest first.
func (s *SQLStore) ListForFile(ctx context.Context, fileID string) ([]schema.AnalysisRecord, error) {
	query := s.bind(fmt.Sprintf(`SELECT %s FROM %s WHERE file_id = ? ORDER BY id DESC`, analysisColumns, s.q(analysesTable)))
	return s.queryAnalyses(ctx, query, fileID)
}

// AllAnalyses returns every analysis in insertion order.
func (s *SQLStore) AllAnalyses(ctx context.Context) ([]schema.AnalysisRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id`, analysisColumns, s.q(analysesTable))
	return s.queryAnalyses(ctx, query)
}

// GetSuggestions returns the suggestions of one analysis in stored order.
func (s *SQLStore) GetSuggestions(ctx context.Context, analysisID int64) ([]schema.Suggestion, error) {
	query := s.bind(fmt.Sprintf(`SELECT %s FROM %s WHERE analysis_id = ? ORDER BY id`, suggestionColumns, s.q(suggestionsTable)))
	return s.querySuggestions(ctx, query, analysisID)
}

// AllSuggestions returns every suggestion in insertion order.
func (s *SQLStore) AllSuggestions(ctx context.Context) ([]schema.Suggestion, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id`, suggestionColumns, s.q(suggestionsTable))
	return s.querySuggestions(ctx, query)
}

func (s *SQLStore) queryAnalyses(ctx context.Context, query string, args ...any) ([]schema.AnalysisRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.AnalysisRecord
	for rows.Next() {
		record, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %w", err)
	}
	return records, nil
}

func (s *SQLStore) querySuggestions(ctx context.Context, query string, args ...any) ([]schema.Suggestion, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query suggestions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var suggestions []schema.Suggestion
	for rows.Next() {
		var sg schema.Suggestion
		var kind, severity, effort string
		var fix sql.NullString
		var createdAt dbTime
		err := rows.Scan(&sg.ID, &sg.AnalysisID, &kind, &severity, &sg.Category, &sg.Title, &sg.Description, &fix,
			&sg.StartLine, &sg.EndLine, &sg.Impact, &effort, &sg.Confidence, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		sg.Type = schema.SuggestionType(kind)
		sg.Severity = schema.Severity(severity)
		sg.Effort = schema.Effort(effort)
		sg.Fix = fix.String
		sg.CreatedAt = createdAt.Time
		suggestions = append(suggestions, sg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating suggestions: %w", err)
	}
	return suggestions, nil
}

func scanAnalysis(row rowScanner) (schema.AnalysisRecord, error) {
	var r schema.AnalysisRecord
	var tech, complexity, risk, category, provenance string
	var details, issues sql.NullString
	var durationNs int64
	var createdAt dbTime

	m := &r.Metrics
	err := row.Scan(&r.ID, &r.FileID, &tech,
		&m.TotalLines, &m.CodeLines, &m.CommentLines, &m.BlankLines, &m.CyclomaticComplexity, &m.NestingDepth,
		&m.FunctionCount, &m.ClassCount, &m.LoopCount, &m.ConditionalCount, &m.SQLJoinCount, &m.DependencyCount,
		&r.MaintainabilityIndex, &r.RiskScore, &complexity, &risk,
		&r.TechnicalDebt.Points, &r.TechnicalDebt.Hours, &category, &r.QualityScore, &provenance, &r.AnalyzerVersion,
		&details, &issues, &durationNs, &createdAt)
	if err != nil {
		return schema.AnalysisRecord{}, err
	}

	r.Technology = schema.Technology(tech)
	r.ComplexityLevel = schema.ComplexityLevel(complexity)
	r.RiskLevel = schema.RiskLevel(risk)
	r.TechnicalDebt.Category = schema.DebtCategory(category)
	r.Provenance = schema.Provenance(provenance)
	r.Duration = time.Duration(durationNs)
	r.CreatedAt = createdAt.Time

	if details.Valid && details.String != "" && details.String != "null" {
		if err := json.Unmarshal([]byte(details.String), &r.Details); err != nil {
			return schema.AnalysisRecord{}, fmt.Errorf("failed to unmarshal details: %w", err)
		}
	}
	r.Issues = []schema.Issue{}
	if issues.Valid && issues.String != "" {
		if err := json.Unmarshal([]byte(issues.String), &r.Issues); err != nil {
			return schema.AnalysisRecord{}, fmt.Errorf("failed to unmarshal issues: %w", err)
		}
	}
	return r, nil
}
