// Package audit persists the durable execution trace: every tool
// execution, approval decision, and discovery decision as append-only
// rows. Rows are written once and never mutated, so concurrent writers
// need no coordination beyond what sqlite provides.
package audit

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Log is the append-only execution/discovery store.
type Log struct {
	db *sql.DB
}

// Open opens (or creates) the audit database and initializes the
// schema. WAL mode allows the control thread to query while background
// units append.
func Open(ctx context.Context, dbPath string) (*Log, error) {
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	// sqlite handles one writer at a time; a single pooled connection
	// avoids busy errors under concurrent appends.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}

	l := &Log{db: db}
	if err := l.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}
	return l, nil
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

func (l *Log) initSchema(ctx context.Context) error {
	schema := `
	-- One row per tool execution; written once, never mutated.
	CREATE TABLE IF NOT EXISTS executions (
		id             TEXT PRIMARY KEY,
		session_id     TEXT NOT NULL,
		tool_name      TEXT NOT NULL,
		arguments_json TEXT NOT NULL,
		timestamp      INTEGER NOT NULL,
		success        INTEGER NOT NULL,
		exit_code      INTEGER,
		duration_ms    INTEGER,
		error_message  TEXT
	);

	-- Approval-granted/denied detail and other execution artifacts.
	CREATE TABLE IF NOT EXISTS execution_artifacts (
		execution_id  TEXT NOT NULL,
		artifact_type TEXT NOT NULL,
		content_json  TEXT NOT NULL,
		FOREIGN KEY (execution_id) REFERENCES executions(id)
	);

	-- One row per discovery decision.
	CREATE TABLE IF NOT EXISTS discovery_events (
		id               TEXT PRIMARY KEY,
		session_id       TEXT NOT NULL,
		user_query_hash  TEXT NOT NULL,
		tools_discovered TEXT NOT NULL,
		reason           TEXT NOT NULL,
		timestamp        INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_executions_session ON executions(session_id);
	CREATE INDEX IF NOT EXISTS idx_executions_tool ON executions(tool_name);
	CREATE INDEX IF NOT EXISTS idx_artifacts_execution ON execution_artifacts(execution_id);
	CREATE INDEX IF NOT EXISTS idx_discovery_session ON discovery_events(session_id);
	`
	_, err := l.db.ExecContext(ctx, schema)
	return err
}

// ExecutionRecord is one durable execution row.
type ExecutionRecord struct {
	ID           string
	SessionID    string
	ToolName     string
	Arguments    map[string]string
	Timestamp    time.Time
	Success      bool
	ExitCode     *int
	DurationMS   *int64
	ErrorMessage string
}

// RecordExecution appends one execution row. The id is generated when
// absent.
func (l *Log) RecordExecution(ctx context.Context, rec ExecutionRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	argsJSON, err := json.Marshal(rec.Arguments)
	if err != nil {
		return "", fmt.Errorf("failed to marshal arguments: %w", err)
	}

	successInt := 0
	if rec.Success {
		successInt = 1
	}
	var exitCode sql.NullInt64
	if rec.ExitCode != nil {
		exitCode = sql.NullInt64{Int64: int64(*rec.ExitCode), Valid: true}
	}
	var durationMS sql.NullInt64
	if rec.DurationMS != nil {
		durationMS = sql.NullInt64{Int64: *rec.DurationMS, Valid: true}
	}
	var errMsg sql.NullString
	if rec.ErrorMessage != "" {
		errMsg = sql.NullString{String: rec.ErrorMessage, Valid: true}
	}

	query := `
		INSERT INTO executions (id, session_id, tool_name, arguments_json, timestamp, success, exit_code, duration_ms, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = l.db.ExecContext(ctx, query,
		rec.ID, rec.SessionID, rec.ToolName, string(argsJSON), rec.Timestamp.UnixMilli(),
		successInt, exitCode, durationMS, errMsg)
	if err != nil {
		return "", fmt.Errorf("failed to record execution: %w", err)
	}
	return rec.ID, nil
}

// RecordArtifact appends a detail row attached to an execution, e.g.
// the scope of an approval decision.
func (l *Log) RecordArtifact(ctx context.Context, executionID, artifactType string, content any) error {
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact content: %w", err)
	}
	query := `INSERT INTO execution_artifacts (execution_id, artifact_type, content_json) VALUES (?, ?, ?)`
	if _, err := l.db.ExecContext(ctx, query, executionID, artifactType, string(contentJSON)); err != nil {
		return fmt.Errorf("failed to record artifact: %w", err)
	}
	return nil
}

// DiscoveryEvent is one durable discovery-decision row.
type DiscoveryEvent struct {
	ID              string
	SessionID       string
	UserQueryHash   string
	ToolsDiscovered []string
	Reason          string
	Timestamp       time.Time
}

// HashQuery produces the stable hash under which user queries are
// logged; the raw text is never stored.
func HashQuery(query string) string {
	sum := sha256.Sum256([]byte(query))
	return hex.EncodeToString(sum[:])[:16]
}

// RecordDiscovery appends one discovery-decision row.
func (l *Log) RecordDiscovery(ctx context.Context, ev DiscoveryEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	query := `
		INSERT INTO discovery_events (id, session_id, user_query_hash, tools_discovered, reason, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := l.db.ExecContext(ctx, query,
		ev.ID, ev.SessionID, ev.UserQueryHash, strings.Join(ev.ToolsDiscovered, ","), ev.Reason, ev.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record discovery event: %w", err)
	}
	return nil
}

// RecentExecutions returns the newest execution rows for a session,
// newest first.
func (l *Log) RecentExecutions(ctx context.Context, sessionID string, limit int) ([]ExecutionRecord, error) {
	query := `
		SELECT id, session_id, tool_name, arguments_json, timestamp, success, exit_code, duration_ms, error_message
		FROM executions
		WHERE session_id = ?
		ORDER BY timestamp DESC, id
		LIMIT ?
	`
	rows, err := l.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}
	defer rows.Close()

	var recs []ExecutionRecord
	for rows.Next() {
		var rec ExecutionRecord
		var argsJSON string
		var tsMilli int64
		var successInt int
		var exitCode sql.NullInt64
		var durationMS sql.NullInt64
		var errMsg sql.NullString
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.ToolName, &argsJSON, &tsMilli, &successInt, &exitCode, &durationMS, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}
		if err := json.Unmarshal([]byte(argsJSON), &rec.Arguments); err != nil {
			return nil, fmt.Errorf("failed to decode arguments: %w", err)
		}
		rec.Timestamp = time.UnixMilli(tsMilli)
		rec.Success = successInt == 1
		if exitCode.Valid {
			v := int(exitCode.Int64)
			rec.ExitCode = &v
		}
		if durationMS.Valid {
			v := durationMS.Int64
			rec.DurationMS = &v
		}
		if errMsg.Valid {
			rec.ErrorMessage = errMsg.String
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// DiscoveryEvents returns the discovery rows for a session, oldest
// first.
func (l *Log) DiscoveryEvents(ctx context.Context, sessionID string) ([]DiscoveryEvent, error) {
	query := `
		SELECT id, session_id, user_query_hash, tools_discovered, reason, timestamp
		FROM discovery_events
		WHERE session_id = ?
		ORDER BY timestamp, id
	`
	rows, err := l.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query discovery events: %w", err)
	}
	defer rows.Close()

	var evs []DiscoveryEvent
	for rows.Next() {
		var ev DiscoveryEvent
		var toolsCSV string
		var tsMilli int64
		if err := rows.Scan(&ev.ID, &ev.SessionID, &ev.UserQueryHash, &toolsCSV, &ev.Reason, &tsMilli); err != nil {
			return nil, fmt.Errorf("failed to scan discovery event: %w", err)
		}
		if toolsCSV != "" {
			ev.ToolsDiscovered = strings.Split(toolsCSV, ",")
		}
		ev.Timestamp = time.UnixMilli(tsMilli)
		evs = append(evs, ev)
	}
	return evs, rows.Err()
}
