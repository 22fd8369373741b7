package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hireai/scheduling-service/internal/directory"
	"github.com/hireai/scheduling-service/internal/model"
	"github.com/hireai/scheduling-service/internal/notify"
	"github.com/hireai/scheduling-service/internal/schedparse"
	"github.com/hireai/scheduling-service/internal/service"
)

type memStore struct {
	mu   sync.Mutex
	reqs map[string]*model.SchedulingRequest
}

func newMemStore() *memStore {
	return &memStore{reqs: make(map[string]*model.SchedulingRequest)}
}

func memKey(s model.SubjectRef) string {
	return fmt.Sprintf("%s:%d:%d:%d", s.Kind, s.ApplicationID, s.RecruiterID, s.StudentID)
}

func (m *memStore) UpsertProposal(_ context.Context, req *model.SchedulingRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.reqs[memKey(req.Subject)]; ok {
		req.ID = existing.ID
	}
	req.Status = model.ScheduleStatusSlotsProposed
	req.ConfirmedSlot = nil
	cp := *req
	m.reqs[memKey(req.Subject)] = &cp
	return nil
}

func (m *memStore) GetBySubject(_ context.Context, subject model.SubjectRef) (*model.SchedulingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.reqs[memKey(subject)]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (m *memStore) GetByToken(_ context.Context, token string) (*model.SchedulingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, req := range m.reqs {
		if req.Token == token {
			cp := *req
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) Confirm(_ context.Context, token string, slot model.Slot, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, req := range m.reqs {
		if req.Token != token {
			continue
		}
		if req.ConfirmedSlot != nil || now.After(req.TokenExpiresAt) {
			return false, nil
		}
		req.ConfirmedSlot = &model.ConfirmedSlot{Slot: slot, ConfirmedAt: now}
		req.Status = model.ScheduleStatusConfirmed
		return true, nil
	}
	return false, nil
}

type staticResolver struct {
	authorizeErr error
}

func (r *staticResolver) Resolve(context.Context, model.SubjectRef) (*model.Participants, error) {
	return &model.Participants{
		StudentName:      "Ada Nguyen",
		StudentEmail:     "ada@example.edu",
		CounterpartName:  "Priya Shah",
		CounterpartEmail: "priya@acme.example.com",
		JobTitle:         "Backend Engineer Intern",
	}, nil
}

func (r *staticResolver) AuthorizeProposer(context.Context, model.SubjectRef, model.Actor) error {
	return r.authorizeErr
}

type staticParser struct {
	slots []model.Slot
	err   error
}

func (p *staticParser) Parse(context.Context, string, time.Time) (*schedparse.Result, error) {
	if p.err != nil {
		return nil, p.err
	}
	if len(p.slots) == 0 {
		return &schedparse.Result{AckMessage: schedparse.NoSlotsMessage}, nil
	}
	return &schedparse.Result{Slots: p.slots, AckMessage: "ack"}, nil
}

type env struct {
	router   *gin.Engine
	store    *memStore
	resolver *staticResolver
	parser   *staticParser
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemStore()
	resolver := &staticResolver{}
	parser := &staticParser{slots: []model.Slot{
		{Date: "2025-06-02", Time: "09:00"},
		{Date: "2025-06-03", Time: "09:00"},
	}}

	svc := service.NewSchedulingService(store, resolver, parser, notify.NewNopNotifier(zap.NewNop()), zap.NewNop(), "https://hireai.app")
	handler := NewSchedulingHandler(svc, zap.NewNop())
	router := NewRouter(handler, zap.NewNop(), nil)

	return &env{router: router, store: store, resolver: resolver, parser: parser}
}

func (e *env) do(method, path, recruiterID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if recruiterID != "" {
		req.Header.Set("X-Recruiter-ID", recruiterID)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

const proposeBody = `{"message":"Monday and Tuesday at 9am","proposer_name":"Priya Shah","proposer_email":"priya@acme.example.com"}`

func TestHealth(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodGet, "/api/v1/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
}

func TestProposeInterview(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/v1/scheduling/interviews/1/propose", "7", proposeBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Slots        []model.Slot `json:"slots"`
		StudentEmail string       `json:"student_email"`
		AckMessage   string       `json:"ack_message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Slots) != 2 || resp.StudentEmail != "ada@example.edu" || resp.AckMessage == "" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestProposeRequiresActor(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/v1/scheduling/interviews/1/propose", "", proposeBody)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status without actor header = %d, want 400", w.Code)
	}

	w = e.do(http.MethodPost, "/api/v1/scheduling/interviews/1/propose", "not-a-number", proposeBody)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status with bad actor header = %d, want 400", w.Code)
	}
}

func TestProposeUnauthorized(t *testing.T) {
	e := newEnv(t)
	e.resolver.authorizeErr = directory.ErrUnauthorized

	w := e.do(http.MethodPost, "/api/v1/scheduling/interviews/1/propose", "99", proposeBody)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestProposeUnknownSubject(t *testing.T) {
	e := newEnv(t)
	e.resolver.authorizeErr = directory.ErrNotFound

	w := e.do(http.MethodPost, "/api/v1/scheduling/interviews/424242/propose", "7", proposeBody)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestProposeNoSlotsUnderstood(t *testing.T) {
	e := newEnv(t)
	e.parser.slots = nil

	w := e.do(http.MethodPost, "/api/v1/scheduling/interviews/1/propose", "7",
		`{"message":"sometime next week maybe","proposer_name":"Priya","proposer_email":"p@x.com"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "no slots understood") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestProposeParserDown(t *testing.T) {
	e := newEnv(t)
	e.parser.err = fmt.Errorf("connection refused")

	w := e.do(http.MethodPost, "/api/v1/scheduling/interviews/1/propose", "7", proposeBody)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
}

func TestStatusDefaults(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/api/v1/scheduling/interviews/1/status", "7", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"not_scheduled"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestConfirmFlow(t *testing.T) {
	e := newEnv(t)

	if w := e.do(http.MethodPost, "/api/v1/scheduling/coffee-chats/5/9/propose", "5", proposeBody); w.Code != http.StatusCreated {
		t.Fatalf("propose status = %d", w.Code)
	}
	stored, _ := e.store.GetBySubject(context.Background(), model.CoffeeChatSubject(5, 9))

	// Confirmation page load.
	w := e.do(http.MethodGet, "/api/v1/scheduling/confirm/"+stored.Token, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("validate status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"is_valid":true`) {
		t.Errorf("validate body = %s", w.Body.String())
	}

	// Picking a slot that was never offered.
	w = e.do(http.MethodPost, "/api/v1/scheduling/confirm/"+stored.Token, "",
		`{"selected_slot":{"date":"2025-06-09","time":"09:00"}}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("not-offered status = %d, want 400", w.Code)
	}

	// The real confirmation.
	w = e.do(http.MethodPost, "/api/v1/scheduling/confirm/"+stored.Token, "",
		`{"selected_slot":{"date":"2025-06-03","time":"09:00"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("confirm status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"2025-06-03"`) {
		t.Errorf("confirm body = %s", w.Body.String())
	}

	// Re-confirming is a conflict, not an overwrite.
	w = e.do(http.MethodPost, "/api/v1/scheduling/confirm/"+stored.Token, "",
		`{"selected_slot":{"date":"2025-06-02","time":"09:00"}}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("re-confirm status = %d, want 409", w.Code)
	}
}

func TestConfirmUnknownToken(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/api/v1/scheduling/confirm/deadbeef", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("validate status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"is_valid":false`) {
		t.Errorf("validate body = %s", w.Body.String())
	}

	w = e.do(http.MethodPost, "/api/v1/scheduling/confirm/deadbeef", "",
		`{"selected_slot":{"date":"2025-06-02","time":"09:00"}}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("confirm status = %d, want 404", w.Code)
	}
}

func TestConfirmMalformedSlot(t *testing.T) {
	e := newEnv(t)

	if w := e.do(http.MethodPost, "/api/v1/scheduling/interviews/1/propose", "7", proposeBody); w.Code != http.StatusCreated {
		t.Fatalf("propose status = %d", w.Code)
	}
	stored, _ := e.store.GetBySubject(context.Background(), model.InterviewSubject(1))

	tests := []string{
		`{}`,
		`{"selected_slot":{"date":"June 3rd","time":"09:00"}}`,
		`{"selected_slot":{"date":"2025-06-03","time":"9am"}}`,
	}
	for _, body := range tests {
		w := e.do(http.MethodPost, "/api/v1/scheduling/confirm/"+stored.Token, "", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
	}
}
