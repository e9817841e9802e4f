package restyclient

import (
	"fmt"

	"github.com/kbukum/restkit/logger"
)

// restyLogger routes resty's internal messages into the structured logger.
type restyLogger struct {
	log *logger.Logger
}

func (l *restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
}

func (l *restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, v...))
}

func (l *restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}
