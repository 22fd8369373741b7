package service

import "errors"

var (
	// ErrInvalidInput is returned when a request is missing or malforms a field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrParse is returned when the slot parser fails transport-wise.
	ErrParse = errors.New("schedule parsing failed")
	// ErrNoSlotsUnderstood is returned when the parser found no slots in the
	// message. User-correctable, not a system fault.
	ErrNoSlotsUnderstood = errors.New("no slots understood")
	// ErrInvalidToken is returned when a confirmation token resolves to nothing.
	ErrInvalidToken = errors.New("invalid confirmation token")
	// ErrTokenExpired is returned when the token is past its deadline. Terminal
	// for that token; the proposer must re-propose to issue a new one.
	ErrTokenExpired = errors.New("confirmation token expired")
	// ErrAlreadyConfirmed is returned when a slot was already booked. A slot is
	// a scarce calendar resource, so re-confirmation is rejected, not absorbed.
	ErrAlreadyConfirmed = errors.New("already confirmed")
	// ErrSlotNotOffered is returned when the selected slot is not among the
	// proposed ones.
	ErrSlotNotOffered = errors.New("slot not offered")
)
