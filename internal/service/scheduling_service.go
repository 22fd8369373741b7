package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireai/scheduling-service/internal/directory"
	"github.com/hireai/scheduling-service/internal/model"
	"github.com/hireai/scheduling-service/internal/notify"
	"github.com/hireai/scheduling-service/internal/schedparse"
)

// DefaultTokenTTL is how long a confirmation link stays valid after proposal.
const DefaultTokenTTL = 7 * 24 * time.Hour

// RequestStore captures the persistence interactions the engine needs. The
// Confirm transition must be atomic: the absent-confirmation check and the
// write happen in one conditional statement, never read-then-write.
type RequestStore interface {
	UpsertProposal(ctx context.Context, req *model.SchedulingRequest) error
	GetBySubject(ctx context.Context, subject model.SubjectRef) (*model.SchedulingRequest, error)
	GetByToken(ctx context.Context, token string) (*model.SchedulingRequest, error)
	Confirm(ctx context.Context, token string, slot model.Slot, now time.Time) (bool, error)
}

// SchedulingService is the workflow engine: propose, persist, notify, confirm,
// notify. One instance serves both interviews and coffee chats; the subject
// resolver carries the difference.
type SchedulingService struct {
	store          RequestStore
	resolver       directory.Resolver
	parser         schedparse.Parser
	notifier       notify.Notifier
	logger         *zap.Logger
	confirmBaseURL string
	tokenTTL       time.Duration
	now            func() time.Time
	newID          func() string
}

func NewSchedulingService(
	store RequestStore,
	resolver directory.Resolver,
	parser schedparse.Parser,
	notifier notify.Notifier,
	logger *zap.Logger,
	confirmBaseURL string,
) *SchedulingService {
	return &SchedulingService{
		store:          store,
		resolver:       resolver,
		parser:         parser,
		notifier:       notifier,
		logger:         logger,
		confirmBaseURL: strings.TrimRight(confirmBaseURL, "/"),
		tokenTTL:       DefaultTokenTTL,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *SchedulingService) WithClock(now func() time.Time) *SchedulingService {
	s.now = now
	return s
}

// WithTokenTTL overrides the confirmation-link lifetime.
func (s *SchedulingService) WithTokenTTL(ttl time.Duration) *SchedulingService {
	if ttl > 0 {
		s.tokenTTL = ttl
	}
	return s
}

type ProposeInput struct {
	Message       string
	ProposerName  string
	ProposerEmail string
}

type ProposeResult struct {
	Slots        []model.Slot `json:"slots"`
	StudentName  string       `json:"student_name"`
	StudentEmail string       `json:"student_email"`
	AckMessage   string       `json:"ack_message"`
}

// ProposeSlots parses the recruiter's message into slots, upserts the
// scheduling request with a fresh token, and emails the student a confirmation
// link. Re-proposing replaces the slots and token in place and clears any
// previous confirmation.
func (s *SchedulingService) ProposeSlots(ctx context.Context, subject model.SubjectRef, actor model.Actor, in ProposeInput) (*ProposeResult, error) {
	if err := subject.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if strings.TrimSpace(in.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.ProposerName) == "" || strings.TrimSpace(in.ProposerEmail) == "" {
		return nil, fmt.Errorf("%w: proposer name and email are required", ErrInvalidInput)
	}

	now := s.now()

	parsed, err := s.parser.Parse(ctx, in.Message, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(parsed.Slots) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSlotsUnderstood, parsed.AckMessage)
	}

	if err := s.resolver.AuthorizeProposer(ctx, subject, actor); err != nil {
		return nil, err
	}
	participants, err := s.resolver.Resolve(ctx, subject)
	if err != nil {
		return nil, err
	}

	token, err := NewConfirmationToken()
	if err != nil {
		return nil, err
	}

	req := &model.SchedulingRequest{
		ID:             s.newID(),
		Subject:        subject,
		ProposedSlots:  parsed.Slots,
		Status:         model.ScheduleStatusSlotsProposed,
		Token:          token,
		TokenExpiresAt: now.Add(s.tokenTTL),
	}

	if err := s.store.UpsertProposal(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("Slots proposed",
		zap.String("request_id", req.ID),
		zap.String("subject_kind", string(subject.Kind)),
		zap.Int("slot_count", len(parsed.Slots)),
		zap.String("token_prefix", tokenPrefix(token)),
		zap.Time("token_expires_at", req.TokenExpiresAt),
	)

	// Email is best-effort: the proposal is already durable and a dispatch
	// failure must not roll it back.
	err = s.notifier.SendSlotsProposed(ctx, notify.SlotsProposed{
		StudentName:  participants.StudentName,
		StudentEmail: participants.StudentEmail,
		ProposerName: in.ProposerName,
		JobTitle:     participants.JobTitle,
		Slots:        parsed.Slots,
		ConfirmURL:   s.confirmURL(token),
	})
	if err != nil {
		s.logger.Warn("Failed to send slots-proposed email",
			zap.String("request_id", req.ID),
			zap.Error(err),
		)
	}

	return &ProposeResult{
		Slots:        parsed.Slots,
		StudentName:  participants.StudentName,
		StudentEmail: participants.StudentEmail,
		AckMessage:   parsed.AckMessage,
	}, nil
}

type StatusResult struct {
	ProposedSlots []model.Slot         `json:"proposed_slots"`
	ConfirmedSlot *model.ConfirmedSlot `json:"confirmed_slot"`
	Status        model.ScheduleStatus `json:"status"`
}

// GetStatus reports the current state of the subject's scheduling request.
// Read-only; a subject with no record is simply not_scheduled.
func (s *SchedulingService) GetStatus(ctx context.Context, subject model.SubjectRef, actor model.Actor) (*StatusResult, error) {
	if err := subject.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.resolver.AuthorizeProposer(ctx, subject, actor); err != nil {
		return nil, err
	}

	req, err := s.store.GetBySubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return &StatusResult{Status: model.ScheduleStatusNotScheduled}, nil
	}

	return &StatusResult{
		ProposedSlots: req.ProposedSlots,
		ConfirmedSlot: req.ConfirmedSlot,
		Status:        req.Status,
	}, nil
}

type TokenInfo struct {
	IsValid          bool                 `json:"is_valid"`
	IsExpired        bool                 `json:"is_expired"`
	StudentName      string               `json:"student_name"`
	CounterpartName  string               `json:"counterpart_name"`
	CounterpartEmail string               `json:"counterpart_email"`
	JobTitle         string               `json:"job_title,omitempty"`
	Slots            []model.Slot         `json:"slots"`
	ConfirmedSlot    *model.ConfirmedSlot `json:"confirmed_slot"`
	Status           model.ScheduleStatus `json:"status"`
}

// ValidateToken describes the request behind a confirmation token without
// mutating anything, so a front end can render the confirmation page first.
func (s *SchedulingService) ValidateToken(ctx context.Context, token string) (*TokenInfo, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrInvalidInput)
	}

	req, err := s.store.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrInvalidToken
	}

	participants, err := s.resolver.Resolve(ctx, req.Subject)
	if err != nil {
		return nil, err
	}

	expired := req.TokenExpired(s.now())
	return &TokenInfo{
		IsValid:          !expired,
		IsExpired:        expired,
		StudentName:      participants.StudentName,
		CounterpartName:  participants.CounterpartName,
		CounterpartEmail: participants.CounterpartEmail,
		JobTitle:         participants.JobTitle,
		Slots:            req.ProposedSlots,
		ConfirmedSlot:    req.ConfirmedSlot,
		Status:           req.Status,
	}, nil
}

// ConfirmSlot commits the student to one of the proposed slots. The token is
// the sole authorization credential, scoped to exactly this record. Checks run
// in order: token resolves, not expired, nothing confirmed yet, slot offered.
// The final write is the store's conditional update, so a racing confirm loses
// cleanly instead of overwriting.
func (s *SchedulingService) ConfirmSlot(ctx context.Context, token string, slot model.Slot) (*model.ConfirmedSlot, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrInvalidInput)
	}
	if err := validateSlot(slot); err != nil {
		return nil, err
	}

	req, err := s.store.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrInvalidToken
	}

	now := s.now()
	if req.TokenExpired(now) {
		return nil, ErrTokenExpired
	}
	if req.ConfirmedSlot != nil {
		return nil, ErrAlreadyConfirmed
	}
	if !req.Offers(slot) {
		return nil, ErrSlotNotOffered
	}

	won, err := s.store.Confirm(ctx, token, slot, now)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, s.classifyLostConfirm(ctx, token, now)
	}

	s.logger.Info("Slot confirmed",
		zap.String("request_id", req.ID),
		zap.String("subject_kind", string(req.Subject.Kind)),
		zap.String("date", slot.Date),
		zap.String("time", slot.Time),
	)

	// The confirmation is durable; emails to both sides are best-effort.
	participants, err := s.resolver.Resolve(ctx, req.Subject)
	if err != nil {
		s.logger.Warn("Failed to resolve participants for confirmation email",
			zap.String("request_id", req.ID),
			zap.Error(err),
		)
	} else {
		err = s.notifier.SendConfirmation(ctx, notify.Confirmation{
			StudentName:      participants.StudentName,
			StudentEmail:     participants.StudentEmail,
			CounterpartName:  participants.CounterpartName,
			CounterpartEmail: participants.CounterpartEmail,
			JobTitle:         participants.JobTitle,
			Slot:             slot,
		})
		if err != nil {
			s.logger.Warn("Failed to send confirmation email",
				zap.String("request_id", req.ID),
				zap.Error(err),
			)
		}
	}

	return &model.ConfirmedSlot{Slot: slot, ConfirmedAt: now}, nil
}

// classifyLostConfirm re-reads the record after a conditional update touched
// nothing, to report why this call lost.
func (s *SchedulingService) classifyLostConfirm(ctx context.Context, token string, now time.Time) error {
	req, err := s.store.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	switch {
	case req == nil:
		// Token replaced by a concurrent re-proposal.
		return ErrInvalidToken
	case req.ConfirmedSlot != nil:
		return ErrAlreadyConfirmed
	case req.TokenExpired(now):
		return ErrTokenExpired
	default:
		return ErrAlreadyConfirmed
	}
}

func (s *SchedulingService) confirmURL(token string) string {
	return s.confirmBaseURL + "/confirm/" + token
}

func validateSlot(slot model.Slot) error {
	if _, err := time.Parse("2006-01-02", slot.Date); err != nil {
		return fmt.Errorf("%w: slot date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if _, err := time.Parse("15:04", slot.Time); err != nil {
		return fmt.Errorf("%w: slot time must be HH:MM", ErrInvalidInput)
	}
	return nil
}
