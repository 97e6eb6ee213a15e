package domain

import dErrors "vault/pkg/domain-errors"

// ApplicationReason records why a citizen is requesting issuance.
type ApplicationReason string

const (
	ReasonFirstTime          ApplicationReason = "first_time"
	ReasonRenewal            ApplicationReason = "renewal"
	ReasonReplacementLost    ApplicationReason = "replacement_lost"
	ReasonReplacementStolen  ApplicationReason = "replacement_stolen"
	ReasonReplacementDamaged ApplicationReason = "replacement_damaged"
	ReasonNameChange         ApplicationReason = "name_change"
	ReasonAddressChange      ApplicationReason = "address_change"
	ReasonCorrection         ApplicationReason = "correction"
)

var validReasons = map[ApplicationReason]bool{
	ReasonFirstTime:          true,
	ReasonRenewal:            true,
	ReasonReplacementLost:    true,
	ReasonReplacementStolen:  true,
	ReasonReplacementDamaged: true,
	ReasonNameChange:         true,
	ReasonAddressChange:      true,
	ReasonCorrection:         true,
}

// ParseApplicationReason constructs an ApplicationReason from external input.
func ParseApplicationReason(s string) (ApplicationReason, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "application reason cannot be empty")
	}
	r := ApplicationReason(s)
	if !validReasons[r] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid application reason: "+s)
	}
	return r, nil
}

func (r ApplicationReason) String() string { return string(r) }

// Priority orders review queues. Defaults to medium when unset.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority constructs a Priority, defaulting empty input to medium.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return Priority(s), nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "invalid priority: "+s)
}

func (p Priority) String() string { return string(p) }
