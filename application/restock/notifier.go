package restock

import (
	"github.com/tdhoang/evdealer-client/utils/logger"
	"go.uber.org/zap"
)

// Notifier is the alert/confirmation surface the controller talks to. The
// controller owns no dialog logic: it only asks for confirmation before
// destructive actions and reports outcomes.
type Notifier interface {
	// Confirm asks the user to approve a destructive action and reports the
	// decision.
	Confirm(title, message string) bool
	Success(message string)
	Error(message string)
}

// LogNotifier is the default Notifier: it approves every confirmation and
// writes outcomes to the log. Interactive frontends supply their own.
type LogNotifier struct{}

func (LogNotifier) Confirm(title, message string) bool {
	logger.Info("[Confirm] auto-approved", zap.String("title", title), zap.String("message", message))
	return true
}

func (LogNotifier) Success(message string) {
	logger.Info("[Notify] success", zap.String("message", message))
}

func (LogNotifier) Error(message string) {
	logger.Warn("[Notify] error", zap.String("message", message))
}
