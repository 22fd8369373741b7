package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hireai/scheduling-service/internal/model"
	"github.com/hireai/scheduling-service/internal/repository/base"
)

type SchedulingRepository struct {
	*base.Repository
}

func NewSchedulingRepository(pool *pgxpool.Pool) *SchedulingRepository {
	return &SchedulingRepository{Repository: base.NewRepository(pool)}
}

const requestColumns = `
	id, subject_kind, application_id, recruiter_id, student_id,
	proposed_slots, confirmed_date, confirmed_time, confirmed_at,
	status, confirmation_token, token_expires_at, created_at, updated_at
`

// UpsertProposal inserts a scheduling request for the subject, or replaces the
// slots, token and expiry of the existing one in place. Any previous
// confirmation is cleared and the status returns to slots_proposed.
func (r *SchedulingRepository) UpsertProposal(ctx context.Context, req *model.SchedulingRequest) error {
	slots, err := json.Marshal(req.ProposedSlots)
	if err != nil {
		return fmt.Errorf("marshal proposed slots: %w", err)
	}

	var query string
	args := []interface{}{req.ID, slots, req.Token, req.TokenExpiresAt}

	switch req.Subject.Kind {
	case model.SubjectKindInterview:
		query = `
			INSERT INTO scheduling_requests
				(id, subject_kind, application_id, proposed_slots, status, confirmation_token, token_expires_at)
			VALUES ($1, 'interview', $5, $2, 'slots_proposed', $3, $4)
			ON CONFLICT (application_id) WHERE subject_kind = 'interview'
			DO UPDATE SET
				proposed_slots     = EXCLUDED.proposed_slots,
				confirmed_date     = NULL,
				confirmed_time     = NULL,
				confirmed_at       = NULL,
				status             = 'slots_proposed',
				confirmation_token = EXCLUDED.confirmation_token,
				token_expires_at   = EXCLUDED.token_expires_at,
				updated_at         = now()
			RETURNING id, created_at, updated_at
		`
		args = append(args, req.Subject.ApplicationID)
	case model.SubjectKindCoffeeChat:
		query = `
			INSERT INTO scheduling_requests
				(id, subject_kind, recruiter_id, student_id, proposed_slots, status, confirmation_token, token_expires_at)
			VALUES ($1, 'coffee_chat', $5, $6, $2, 'slots_proposed', $3, $4)
			ON CONFLICT (recruiter_id, student_id) WHERE subject_kind = 'coffee_chat'
			DO UPDATE SET
				proposed_slots     = EXCLUDED.proposed_slots,
				confirmed_date     = NULL,
				confirmed_time     = NULL,
				confirmed_at       = NULL,
				status             = 'slots_proposed',
				confirmation_token = EXCLUDED.confirmation_token,
				token_expires_at   = EXCLUDED.token_expires_at,
				updated_at         = now()
			RETURNING id, created_at, updated_at
		`
		args = append(args, req.Subject.RecruiterID, req.Subject.StudentID)
	default:
		return fmt.Errorf("unknown subject kind %q", req.Subject.Kind)
	}

	err = r.QueryRow(ctx, query, args...).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert scheduling request: %w", err)
	}

	req.Status = model.ScheduleStatusSlotsProposed
	req.ConfirmedSlot = nil
	return nil
}

// GetBySubject returns the scheduling request for the subject, or nil if none exists.
func (r *SchedulingRepository) GetBySubject(ctx context.Context, subject model.SubjectRef) (*model.SchedulingRequest, error) {
	var query string
	var args []interface{}

	switch subject.Kind {
	case model.SubjectKindInterview:
		query = `SELECT ` + requestColumns + ` FROM scheduling_requests
			WHERE subject_kind = 'interview' AND application_id = $1`
		args = []interface{}{subject.ApplicationID}
	case model.SubjectKindCoffeeChat:
		query = `SELECT ` + requestColumns + ` FROM scheduling_requests
			WHERE subject_kind = 'coffee_chat' AND recruiter_id = $1 AND student_id = $2`
		args = []interface{}{subject.RecruiterID, subject.StudentID}
	default:
		return nil, fmt.Errorf("unknown subject kind %q", subject.Kind)
	}

	req, err := scanRequest(r.QueryRow(ctx, query, args...))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get scheduling request by subject: %w", err)
	}
	return req, nil
}

// GetByToken returns the scheduling request holding the token, or nil if none exists.
func (r *SchedulingRepository) GetByToken(ctx context.Context, token string) (*model.SchedulingRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM scheduling_requests WHERE confirmation_token = $1`

	req, err := scanRequest(r.QueryRow(ctx, query, token))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get scheduling request by token: %w", err)
	}
	return req, nil
}

// Confirm performs the confirmation as a single conditional update so that two
// racing confirms cannot both win: the row is touched only while the token
// matches, nothing is confirmed yet, and the token has not expired. Returns
// true when this call won the transition.
func (r *SchedulingRepository) Confirm(ctx context.Context, token string, slot model.Slot, now time.Time) (bool, error) {
	query := `
		UPDATE scheduling_requests
		SET confirmed_date = $2,
		    confirmed_time = $3,
		    confirmed_at   = $4,
		    status         = 'confirmed',
		    updated_at     = now()
		WHERE confirmation_token = $1
		  AND confirmed_at IS NULL
		  AND token_expires_at >= $4
	`

	affected, err := r.ExecAffected(ctx, query, token, slot.Date, slot.Time, now)
	if err != nil {
		return false, fmt.Errorf("confirm scheduling request: %w", err)
	}
	return affected == 1, nil
}

func scanRequest(row pgx.Row) (*model.SchedulingRequest, error) {
	var (
		req           model.SchedulingRequest
		applicationID *int64
		recruiterID   *int64
		studentID     *int64
		slots         []byte
		confirmedDate *string
		confirmedTime *string
		confirmedAt   *time.Time
	)

	err := row.Scan(
		&req.ID,
		&req.Subject.Kind,
		&applicationID,
		&recruiterID,
		&studentID,
		&slots,
		&confirmedDate,
		&confirmedTime,
		&confirmedAt,
		&req.Status,
		&req.Token,
		&req.TokenExpiresAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if applicationID != nil {
		req.Subject.ApplicationID = *applicationID
	}
	if recruiterID != nil {
		req.Subject.RecruiterID = *recruiterID
	}
	if studentID != nil {
		req.Subject.StudentID = *studentID
	}

	if err := json.Unmarshal(slots, &req.ProposedSlots); err != nil {
		return nil, fmt.Errorf("unmarshal proposed slots: %w", err)
	}

	if confirmedAt != nil && confirmedDate != nil && confirmedTime != nil {
		req.ConfirmedSlot = &model.ConfirmedSlot{
			Slot:        model.Slot{Date: *confirmedDate, Time: *confirmedTime},
			ConfirmedAt: *confirmedAt,
		}
	}

	return &req, nil
}
