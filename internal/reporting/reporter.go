package reporting

import (
	"context"

	"socialgraph/internal/logging"
)

// Reporter receives unexpected failures for operational visibility.
// Domain rejections are never reported, only infrastructure errors.
type Reporter interface {
	CaptureException(ctx context.Context, err error, fields map[string]interface{})
}

// LogReporter writes captured errors to the structured logger.
type LogReporter struct {
	logger *logging.Logger
}

func NewLogReporter(logger *logging.Logger) *LogReporter {
	if logger == nil {
		logger = logging.Default
	}
	return &LogReporter{logger: logger}
}

func (r *LogReporter) CaptureException(ctx context.Context, err error, fields map[string]interface{}) {
	if err == nil {
		return
	}
	all := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		all[k] = v
	}
	all["error"] = err.Error()
	r.logger.Error("Unexpected error", all)
}
