package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hireai/scheduling-service/internal/directory"
	"github.com/hireai/scheduling-service/internal/model"
	"github.com/hireai/scheduling-service/internal/service"
)

type proposeRequest struct {
	Message       string `json:"message" binding:"required"`
	ProposerName  string `json:"proposer_name" binding:"required"`
	ProposerEmail string `json:"proposer_email" binding:"required"`
}

type slotRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

type confirmRequest struct {
	SelectedSlot slotRequest `json:"selected_slot" binding:"required"`
}

// SchedulingHandler exposes the workflow engine over HTTP. It owns nothing but
// translation: bind input, resolve the actor, call the engine, map errors.
type SchedulingHandler struct {
	scheduling *service.SchedulingService
	logger     *zap.Logger
}

func NewSchedulingHandler(scheduling *service.SchedulingService, logger *zap.Logger) *SchedulingHandler {
	return &SchedulingHandler{scheduling: scheduling, logger: logger}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *SchedulingHandler) ProposeInterviewSlots(c *gin.Context) {
	subject, ok := interviewSubject(c)
	if !ok {
		return
	}
	h.propose(c, subject)
}

func (h *SchedulingHandler) ProposeCoffeeChatSlots(c *gin.Context) {
	subject, ok := coffeeChatSubject(c)
	if !ok {
		return
	}
	h.propose(c, subject)
}

func (h *SchedulingHandler) propose(c *gin.Context, subject model.SubjectRef) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req proposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := h.scheduling.ProposeSlots(c.Request.Context(), subject, actor, service.ProposeInput{
		Message:       req.Message,
		ProposerName:  req.ProposerName,
		ProposerEmail: req.ProposerEmail,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *SchedulingHandler) InterviewStatus(c *gin.Context) {
	subject, ok := interviewSubject(c)
	if !ok {
		return
	}
	h.status(c, subject)
}

func (h *SchedulingHandler) CoffeeChatStatus(c *gin.Context) {
	subject, ok := coffeeChatSubject(c)
	if !ok {
		return
	}
	h.status(c, subject)
}

func (h *SchedulingHandler) status(c *gin.Context, subject model.SubjectRef) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	result, err := h.scheduling.GetStatus(c.Request.Context(), subject, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *SchedulingHandler) ValidateToken(c *gin.Context) {
	info, err := h.scheduling.ValidateToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, gin.H{"error": msg, "is_valid": false})
		return
	}

	c.JSON(http.StatusOK, info)
}

func (h *SchedulingHandler) ConfirmSlot(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	confirmed, err := h.scheduling.ConfirmSlot(c.Request.Context(), c.Param("token"), model.Slot{
		Date: req.SelectedSlot.Date,
		Time: req.SelectedSlot.Time,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"confirmed_slot": confirmed})
}

func (h *SchedulingHandler) respondError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": msg})
}

// statusFor maps workflow errors to HTTP statuses. Internal detail stays out
// of 5xx bodies.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrNoSlotsUnderstood),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrSlotNotOffered):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrAlreadyConfirmed):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, directory.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, directory.ErrUnauthorized):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrParse):
		return http.StatusBadGateway, "schedule parsing service unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// requireActor reads the authenticated recruiter from the request. Session
// mechanics live upstream; by the time a request reaches this service the
// gateway has stamped the recruiter id onto it.
func requireActor(c *gin.Context) (model.Actor, bool) {
	raw := c.GetHeader("X-Recruiter-ID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid X-Recruiter-ID header"})
		return model.Actor{}, false
	}
	return model.Actor{RecruiterID: id}, true
}

func interviewSubject(c *gin.Context) (model.SubjectRef, bool) {
	id, err := strconv.ParseInt(c.Param("applicationID"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return model.SubjectRef{}, false
	}
	return model.InterviewSubject(id), true
}

func coffeeChatSubject(c *gin.Context) (model.SubjectRef, bool) {
	recruiterID, err := strconv.ParseInt(c.Param("recruiterID"), 10, 64)
	if err != nil || recruiterID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recruiter id"})
		return model.SubjectRef{}, false
	}
	studentID, err := strconv.ParseInt(c.Param("studentID"), 10, 64)
	if err != nil || studentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student id"})
		return model.SubjectRef{}, false
	}
	return model.CoffeeChatSubject(recruiterID, studentID), true
}
