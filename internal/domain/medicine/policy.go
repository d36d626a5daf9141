package medicine

import (
	"fmt"
	"time"
)

// manufacturerOnlyStatuses may only ever be set by the medicine's
// manufacturer, regardless of which role check admitted the handler.
var manufacturerOnlyStatuses = map[Status]bool{
	StatusManufactured: true,
	StatusQualityCheck: true,
}

// regulatorStatuses are the targets the Regulator/Inspector sentinel
// handlers are restricted to.
var regulatorStatuses = map[Status]bool{
	StatusInspected: true,
	StatusApproved:  true,
	StatusRecalled:  true,
}

// resolvingStatuses clear an active flag when reached through a normal
// transition.
var resolvingStatuses = map[Status]bool{
	StatusRemediated: true,
	StatusRepackaged: true,
}

// authorizeTransition applies the transition policy in precedence
// order: the Order Complete claim gate first, then Claimed terminality,
// then role-based authorization for normal transitions. now is the
// transaction time, used for the claim expiry check.
func authorizeTransition(m *Medicine, handler string, next Status, now time.Time) error {
	if m.Status == StatusOrderComplete {
		return authorizeClaim(m, handler, next, now)
	}
	if next == StatusClaimed {
		return fmt.Errorf("%w: medicine %s can only be claimed from status %q, current status is %q",
			ErrInvalidTransition, m.ID, StatusOrderComplete, m.Status)
	}
	if m.Status == StatusClaimed {
		return fmt.Errorf("%w: medicine %s is claimed; no further transitions are permitted",
			ErrInvalidTransition, m.ID)
	}
	return authorizeHandler(m, handler, next)
}

// authorizeClaim gates the only transition out of Order Complete.
func authorizeClaim(m *Medicine, handler string, next Status, now time.Time) error {
	if handler != HandlerPublicUser {
		return fmt.Errorf("%w: only %s may act on a medicine in status %q, got handler %q",
			ErrUnauthorized, HandlerPublicUser, StatusOrderComplete, handler)
	}
	if next != StatusClaimed {
		return fmt.Errorf("%w: from status %q the only permitted transition is %q, got %q",
			ErrInvalidTransition, StatusOrderComplete, StatusClaimed, next)
	}
	if m.Flagged {
		return fmt.Errorf("%w: medicine %s is flagged and cannot be claimed", ErrInvalidTransition, m.ID)
	}
	expired, err := pastExpiry(m.ExpirationDate, now)
	if err != nil {
		return fmt.Errorf("%w: medicine %s has an unreadable expiration date %q",
			ErrValidation, m.ID, m.ExpirationDate)
	}
	if expired {
		return fmt.Errorf("%w: medicine %s expired on %s and cannot be claimed",
			ErrInvalidTransition, m.ID, m.ExpirationDate)
	}
	return nil
}

// authorizeHandler admits a handler to a normal transition. A handler
// qualifies as the manufacturer, the current owner, an assigned
// distributor, or one of the sentinel roles with its restricted target
// set.
func authorizeHandler(m *Medicine, handler string, next Status) error {
	switch {
	case handler == m.Manufacturer:
		// Manufacturer may set any status.
	case handler == m.CurrentOwner:
		if manufacturerOnlyStatuses[next] {
			return fmt.Errorf("%w: status %q may only be set by the manufacturer %q",
				ErrUnauthorized, next, m.Manufacturer)
		}
	case m.AssignedTo(handler):
		if manufacturerOnlyStatuses[next] {
			return fmt.Errorf("%w: status %q may only be set by the manufacturer %q",
				ErrUnauthorized, next, m.Manufacturer)
		}
	case handler == HandlerPublicUser:
		if next != StatusScanned {
			return fmt.Errorf("%w: %s may only record status %q, got %q",
				ErrUnauthorized, HandlerPublicUser, StatusScanned, next)
		}
	case handler == HandlerRegulator || handler == HandlerInspector:
		if !regulatorStatuses[next] {
			return fmt.Errorf("%w: %s may only set Inspected, Approved or Recalled, got %q",
				ErrUnauthorized, handler, next)
		}
	default:
		return fmt.Errorf("%w: handler %q is neither manufacturer, current owner, assigned distributor nor a recognized role for medicine %s",
			ErrUnauthorized, handler, m.ID)
	}
	return nil
}
