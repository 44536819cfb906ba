package ui

import (
	"github.com/Mushfiqur07/roadeside-sub002/pkg/logger"
)

// Notifier is the toast/banner surface. Every user-visible error path
// ends here, in an inline field error, or in a returned error.
type Notifier interface {
	Info(msg string)
	Success(msg string)
	Warn(msg string)
	Error(msg string)
	// Banner raises a persistent notice that stays until cleared, used
	// when the realtime reconnect budget is exhausted.
	Banner(msg string)
	ClearBanner()
}

// LogNotifier renders notifications through the structured logger; the
// terminal client's stand-in for a toast stack.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.WithField("component", "notify")}
}

func (n *LogNotifier) Info(msg string)    { n.log.Info(msg) }
func (n *LogNotifier) Success(msg string) { n.log.WithField("kind", "success").Info(msg) }
func (n *LogNotifier) Warn(msg string)    { n.log.Warn(msg) }
func (n *LogNotifier) Error(msg string)   { n.log.Error(msg) }

func (n *LogNotifier) Banner(msg string) {
	n.log.WithField("kind", "banner").Error(msg)
}

func (n *LogNotifier) ClearBanner() {
	n.log.WithField("kind", "banner").Info("Connection restored")
}
