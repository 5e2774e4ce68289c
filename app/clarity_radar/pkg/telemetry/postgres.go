package telemetry

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/config"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// PostgresSink 把事件写入 analysis_events 表
type PostgresSink struct {
	db    execer
	close func() error
}

// NewPostgresSink 打开连接并建表
func NewPostgresSink(cfg config.DBConfig) (*PostgresSink, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresSink{db: db, close: db.Close}
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *PostgresSink) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func (s *PostgresSink) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS analysis_events (
			request_id UUID PRIMARY KEY,
			subject TEXT NOT NULL,
			source_channel TEXT NOT NULL,
			path_taken TEXT NOT NULL,
			cost_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
			clarity_score INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_events_subject ON analysis_events (subject, created_at)`,
	}

	for _, q := range queries {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

const insertEvent = `INSERT INTO analysis_events
	(request_id, subject, source_channel, path_taken, cost_usd, clarity_score, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (request_id) DO NOTHING`

func (s *PostgresSink) Record(ctx context.Context, ev Event) error {
	_, err := s.db.ExecContext(ctx, insertEvent,
		ev.RequestID.String(), ev.Subject, string(ev.SourceChannel), string(ev.PathTaken),
		ev.CostUSD, ev.ClarityScore, ev.Timestamp)
	if err != nil {
		return fmt.Errorf("insert analysis event: %w", err)
	}
	return nil
}
