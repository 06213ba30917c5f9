package portal

import "errors"

var (
	ErrNoLinkedPortal     = errors.New("portal has no linked portal")
	ErrTravelerNotTracked = errors.New("traveler is not tracked by portal")
	ErrPortalDestroyed    = errors.New("portal is destroyed")
	ErrPortalNotFound     = errors.New("portal not found")
	ErrSelfLink           = errors.New("portal cannot link to itself")
	ErrInvalidOptions     = errors.New("invalid portal options")
)
