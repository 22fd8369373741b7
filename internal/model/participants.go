package model

// Participants carries the resolved identities on both sides of a scheduling
// subject. Counterpart is the recruiter for interviews and coffee chats alike;
// JobTitle is set only for interviews.
type Participants struct {
	StudentName      string `json:"student_name"`
	StudentEmail     string `json:"student_email"`
	CounterpartName  string `json:"counterpart_name"`
	CounterpartEmail string `json:"counterpart_email"`
	JobTitle         string `json:"job_title,omitempty"`
}
