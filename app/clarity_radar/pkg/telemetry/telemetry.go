package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/logger"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/model"
)

// Path 计算路径
type Path string

const (
	PathReal      Path = "real"
	PathSynthetic Path = "synthetic"
)

// Event 一次计算的遥测事件
type Event struct {
	RequestID     uuid.UUID
	Subject       string
	SourceChannel model.SourceChannel
	PathTaken     Path
	CostUSD       float64
	ClarityScore  int
	Timestamp     time.Time
}

// Sink 遥测接收方，调用方不关心结果
type Sink interface {
	Record(ctx context.Context, ev Event) error
}

// LogSink 把事件写入日志
type LogSink struct {
	log *logrus.Logger
}

// NewLogSink l 为 nil 时使用全局日志
func NewLogSink(l *logrus.Logger) *LogSink {
	if l == nil {
		l = logger.Log
	}
	return &LogSink{log: l}
}

func (s *LogSink) Record(_ context.Context, ev Event) error {
	s.log.WithFields(logrus.Fields{
		"request_id": ev.RequestID.String(),
		"subject":    ev.Subject,
		"channel":    string(ev.SourceChannel),
		"path":       string(ev.PathTaken),
		"cost_usd":   ev.CostUSD,
		"clarity":    ev.ClarityScore,
	}).Info("分析完成")
	return nil
}

// Multi 依次写入所有 sink，单个失败不影响其他
type Multi []Sink

func (m Multi) Record(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop 丢弃所有事件
type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }
