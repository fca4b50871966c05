package models

import (
	"errors"
	"fmt"
	"time"

	"makazi/types"
)

var ErrInvalidTransition = errors.New("invalid tour request transition")

// TransitionError describes a rejected action on a tour request.
type TransitionError struct {
	From   TourStatus
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a tour request that is %s", e.Action, e.From)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// TourRequestState holds the transitions allowed from one status.
type TourRequestState interface {
	Approve(r *TourRequest, at time.Time) error
	Deny(r *TourRequest, at time.Time, suggestedDate *types.Date, message *string) error
	Cancel(r *TourRequest, at time.Time) error
}

// PendingState is the only state with outgoing transitions.
type PendingState struct{}

func (s *PendingState) Approve(r *TourRequest, at time.Time) error {
	r.Status = TourStatusApproved
	r.LandlordSuggestedDate = nil
	r.LandlordMessage = nil
	r.RespondedAt = &at
	return nil
}

func (s *PendingState) Deny(r *TourRequest, at time.Time, suggestedDate *types.Date, message *string) error {
	r.Status = TourStatusDenied
	r.LandlordSuggestedDate = suggestedDate
	r.LandlordMessage = message
	r.RespondedAt = &at
	return nil
}

func (s *PendingState) Cancel(r *TourRequest, at time.Time) error {
	r.Status = TourStatusCancelled
	r.RespondedAt = &at
	return nil
}

type terminalState struct {
	status TourStatus
}

func (s terminalState) Approve(_ *TourRequest, _ time.Time) error {
	return &TransitionError{From: s.status, Action: "approve"}
}

func (s terminalState) Deny(_ *TourRequest, _ time.Time, _ *types.Date, _ *string) error {
	return &TransitionError{From: s.status, Action: "deny"}
}

func (s terminalState) Cancel(_ *TourRequest, _ time.Time) error {
	return &TransitionError{From: s.status, Action: "cancel"}
}

type ApprovedState struct{ terminalState }

type DeniedState struct{ terminalState }

type CancelledState struct{ terminalState }

// GetTourRequestState returns the state object for status.
func GetTourRequestState(status TourStatus) (TourRequestState, error) {
	switch status {
	case TourStatusPending:
		return &PendingState{}, nil
	case TourStatusApproved:
		return &ApprovedState{terminalState{TourStatusApproved}}, nil
	case TourStatusDenied:
		return &DeniedState{terminalState{TourStatusDenied}}, nil
	case TourStatusCancelled:
		return &CancelledState{terminalState{TourStatusCancelled}}, nil
	default:
		return nil, fmt.Errorf("unknown tour request status %q", status)
	}
}
