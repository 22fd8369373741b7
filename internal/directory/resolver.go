package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hireai/scheduling-service/internal/model"
	"github.com/hireai/scheduling-service/internal/repository/base"
)

var (
	// ErrNotFound is returned when the subject does not resolve to existing records.
	ErrNotFound = errors.New("directory: subject not found")
	// ErrUnauthorized is returned when the acting recruiter may not schedule
	// against the subject.
	ErrUnauthorized = errors.New("directory: not authorized for this subject")
)

// Resolver answers who is on each side of a scheduling subject and whether a
// given recruiter may propose against it. Resolution carries no authorization
// on purpose: the token-confirmation path runs without an authenticated actor.
type Resolver interface {
	Resolve(ctx context.Context, subject model.SubjectRef) (*model.Participants, error)
	AuthorizeProposer(ctx context.Context, subject model.SubjectRef, actor model.Actor) error
}

// PGResolver resolves subjects against the job-board directory tables.
type PGResolver struct {
	*base.Repository
}

func NewPGResolver(pool *pgxpool.Pool) *PGResolver {
	return &PGResolver{Repository: base.NewRepository(pool)}
}

func (r *PGResolver) Resolve(ctx context.Context, subject model.SubjectRef) (*model.Participants, error) {
	switch subject.Kind {
	case model.SubjectKindInterview:
		return r.resolveInterview(ctx, subject.ApplicationID)
	case model.SubjectKindCoffeeChat:
		return r.resolveCoffeeChat(ctx, subject.RecruiterID, subject.StudentID)
	default:
		return nil, fmt.Errorf("unknown subject kind %q", subject.Kind)
	}
}

// AuthorizeProposer checks ownership: an interview may only be proposed by the
// recruiter owning the job behind the application, a coffee chat only by the
// recruiter named in the pair.
func (r *PGResolver) AuthorizeProposer(ctx context.Context, subject model.SubjectRef, actor model.Actor) error {
	switch subject.Kind {
	case model.SubjectKindInterview:
		query := `
			SELECT j.recruiter_id
			FROM applications a
			JOIN jobs j ON j.id = a.job_id
			WHERE a.id = $1
		`
		var ownerID int64
		err := r.QueryRow(ctx, query, subject.ApplicationID).Scan(&ownerID)
		if err != nil {
			if base.IsNotFound(err) {
				return ErrNotFound
			}
			return fmt.Errorf("authorize interview proposer: %w", err)
		}
		if ownerID != actor.RecruiterID {
			return ErrUnauthorized
		}
		return nil
	case model.SubjectKindCoffeeChat:
		if subject.RecruiterID != actor.RecruiterID {
			return ErrUnauthorized
		}
		return nil
	default:
		return fmt.Errorf("unknown subject kind %q", subject.Kind)
	}
}

func (r *PGResolver) resolveInterview(ctx context.Context, applicationID int64) (*model.Participants, error) {
	query := `
		SELECT s.name, s.email, rec.name, rec.email, j.title
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		JOIN students s ON s.id = a.student_id
		JOIN recruiters rec ON rec.id = j.recruiter_id
		WHERE a.id = $1
	`

	var p model.Participants
	err := r.QueryRow(ctx, query, applicationID).Scan(
		&p.StudentName,
		&p.StudentEmail,
		&p.CounterpartName,
		&p.CounterpartEmail,
		&p.JobTitle,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("resolve interview subject: %w", err)
	}

	return &p, nil
}

func (r *PGResolver) resolveCoffeeChat(ctx context.Context, recruiterID, studentID int64) (*model.Participants, error) {
	query := `
		SELECT s.name, s.email, rec.name, rec.email
		FROM students s
		JOIN recruiters rec ON rec.id = $1
		WHERE s.id = $2
	`

	var p model.Participants
	err := r.QueryRow(ctx, query, recruiterID, studentID).Scan(
		&p.StudentName,
		&p.StudentEmail,
		&p.CounterpartName,
		&p.CounterpartEmail,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("resolve coffee chat subject: %w", err)
	}

	return &p, nil
}
