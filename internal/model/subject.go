package model

import "fmt"

type SubjectKind string

const (
	SubjectKindInterview  SubjectKind = "interview"
	SubjectKindCoffeeChat SubjectKind = "coffee_chat"
)

// SubjectRef identifies what is being scheduled against: an application for
// interviews, a (recruiter, student) pair for coffee chats.
type SubjectRef struct {
	Kind          SubjectKind `json:"kind"`
	ApplicationID int64       `json:"application_id,omitempty"`
	RecruiterID   int64       `json:"recruiter_id,omitempty"`
	StudentID     int64       `json:"student_id,omitempty"`
}

func InterviewSubject(applicationID int64) SubjectRef {
	return SubjectRef{Kind: SubjectKindInterview, ApplicationID: applicationID}
}

func CoffeeChatSubject(recruiterID, studentID int64) SubjectRef {
	return SubjectRef{Kind: SubjectKindCoffeeChat, RecruiterID: recruiterID, StudentID: studentID}
}

func (s SubjectRef) Validate() error {
	switch s.Kind {
	case SubjectKindInterview:
		if s.ApplicationID <= 0 {
			return fmt.Errorf("interview subject requires application id")
		}
	case SubjectKindCoffeeChat:
		if s.RecruiterID <= 0 || s.StudentID <= 0 {
			return fmt.Errorf("coffee chat subject requires recruiter and student ids")
		}
	default:
		return fmt.Errorf("unknown subject kind %q", s.Kind)
	}
	return nil
}

// Actor is the authenticated caller, resolved once at the HTTP boundary and
// passed explicitly into every workflow operation.
type Actor struct {
	RecruiterID int64
}
