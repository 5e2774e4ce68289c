package telemetry

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/model"
)

func sampleEvent() Event {
	return Event{
		RequestID:     uuid.MustParse("5f0c6c1e-4b8a-4c59-9d3a-2f1f0c9b7e11"),
		Subject:       "example-dealer.com",
		SourceChannel: model.ChannelAPI,
		PathTaken:     PathReal,
		CostUSD:       0.015,
		ClarityScore:  73,
		Timestamp:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})

	require.NoError(t, NewLogSink(l).Record(context.Background(), sampleEvent()))
	out := buf.String()
	assert.Contains(t, out, "subject=example-dealer.com")
	assert.Contains(t, out, "path=real")
	assert.Contains(t, out, "cost_usd=0.015")
	assert.Contains(t, out, "request_id=5f0c6c1e-4b8a-4c59-9d3a-2f1f0c9b7e11")
}

type recordingSink struct {
	events []Event
	err    error
}

func (r *recordingSink) Record(_ context.Context, ev Event) error {
	r.events = append(r.events, ev)
	return r.err
}

func TestMulti(t *testing.T) {
	a := &recordingSink{err: errors.New("db down")}
	b := &recordingSink{}
	err := Multi{a, nil, b}.Record(context.Background(), sampleEvent())

	assert.ErrorContains(t, err, "db down")
	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
	assert.NoError(t, Multi{}.Record(context.Background(), sampleEvent()))
	assert.NoError(t, Nop{}.Record(context.Background(), sampleEvent()))
}

type fakeExec struct {
	queries []string
	args    [][]any
	err     error
}

func (f *fakeExec) ExecContext(_ context.Context, q string, args ...any) (sql.Result, error) {
	f.queries = append(f.queries, q)
	f.args = append(f.args, args)
	return nil, f.err
}

func TestPostgresSink(t *testing.T) {
	db := &fakeExec{}
	s := &PostgresSink{db: db}
	require.NoError(t, s.initSchema(context.Background()))
	assert.Contains(t, db.queries[0], "CREATE TABLE IF NOT EXISTS analysis_events")

	require.NoError(t, s.Record(context.Background(), sampleEvent()))
	last := db.args[len(db.args)-1]
	assert.Equal(t, []any{
		"5f0c6c1e-4b8a-4c59-9d3a-2f1f0c9b7e11", "example-dealer.com", "api", "real",
		0.015, 73, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}, last)
	assert.NoError(t, s.Close())
}

func TestPostgresSink_Error(t *testing.T) {
	s := &PostgresSink{db: &fakeExec{err: errors.New("connection refused")}}
	err := s.Record(context.Background(), sampleEvent())
	assert.ErrorContains(t, err, "insert analysis event")
}
