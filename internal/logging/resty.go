package logging

import (
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RestyAdapter forwards resty's printf-style logging to a zap logger.
type RestyAdapter struct {
	logger *zap.Logger
}

// NewRestyAdapter creates a new adapter that will forward messages to l.
func NewRestyAdapter(l *zap.Logger) resty.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &RestyAdapter{logger: l}
}

// Errorf logs a message at error level.
func (a *RestyAdapter) Errorf(format string, v ...interface{}) {
	a.logger.Error(sprintfTrim(format, v))
}

// Warnf logs a message at warning level.
func (a *RestyAdapter) Warnf(format string, v ...interface{}) {
	a.logger.Warn(sprintfTrim(format, v))
}

// Debugf logs a message at debug level.
func (a *RestyAdapter) Debugf(format string, v ...interface{}) {
	a.logger.Debug(sprintfTrim(format, v))
}

// resty terminates most of its messages with a newline.
func sprintfTrim(format string, v []interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, v...))
}
