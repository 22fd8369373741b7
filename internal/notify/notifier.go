package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/hireai/scheduling-service/internal/model"
)

// SlotsProposed carries everything the "pick a slot" email needs.
type SlotsProposed struct {
	StudentName  string
	StudentEmail string
	ProposerName string
	JobTitle     string // empty for coffee chats
	Slots        []model.Slot
	ConfirmURL   string
}

// Confirmation carries everything the "it's booked" emails need. It goes to
// both the student and the counterpart.
type Confirmation struct {
	StudentName      string
	StudentEmail     string
	CounterpartName  string
	CounterpartEmail string
	JobTitle         string
	Slot             model.Slot
}

// Notifier delivers the workflow's two templated emails. Implementations are
// best-effort: the workflow logs failures and never rolls back on them.
type Notifier interface {
	SendSlotsProposed(ctx context.Context, msg SlotsProposed) error
	SendConfirmation(ctx context.Context, msg Confirmation) error
}

// NopNotifier drops all email, for local runs without an SMTP server.
type NopNotifier struct {
	logger *zap.Logger
}

func NewNopNotifier(logger *zap.Logger) *NopNotifier {
	return &NopNotifier{logger: logger}
}

func (n *NopNotifier) SendSlotsProposed(_ context.Context, msg SlotsProposed) error {
	n.logger.Info("Email suppressed (nop notifier)",
		zap.String("template", "slots_proposed"),
		zap.String("to", msg.StudentEmail),
	)
	return nil
}

func (n *NopNotifier) SendConfirmation(_ context.Context, msg Confirmation) error {
	n.logger.Info("Email suppressed (nop notifier)",
		zap.String("template", "confirmation"),
		zap.String("to", msg.StudentEmail),
	)
	return nil
}
