package upstream

import (
	"github.com/mauphunmp-boop/ai-affiliate/internal/logger"

	"go.uber.org/zap"
)

// Sink 上游请求诊断流水，按 JSONL 逐行落盘。
// 仅用于排障，不参与正确性判断。
type Sink struct {
	l *zap.SugaredLogger
}

// NewSink 创建诊断流水
func NewSink(options logger.Options) *Sink {
	return &Sink{l: logger.NewJSONLSink(options).Sugar()}
}

// NewNopSink 创建空流水（测试用）
func NewNopSink() *Sink {
	return &Sink{l: zap.NewNop().Sugar()}
}

// With 派生带固定键值对的子流水（如本轮入库的 run_id）
func (s *Sink) With(keysAndValues ...interface{}) *Sink {
	if s == nil || s.l == nil {
		return s
	}
	return &Sink{l: s.l.With(keysAndValues...)}
}

// Write 记录一次上游交互（endpoint 作为事件名，附带任意键值对）
func (s *Sink) Write(endpoint string, keysAndValues ...interface{}) {
	if s == nil || s.l == nil {
		return
	}
	s.l.Infow(endpoint, keysAndValues...)
}
