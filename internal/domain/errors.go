package domain

import "errors"

var (
	ErrInvalidID           = errors.New("invalid id")
	ErrInvalidWorkshopID   = errors.New("invalid workshop id")
	ErrInvalidTitle        = errors.New("invalid title")
	ErrInvalidActivityType = errors.New("invalid activity type")
	ErrInvalidTimeOfDay    = errors.New("invalid time of day")
	ErrInvalidTimeRange    = errors.New("end time must be after start time")
	ErrInvalidOrderIndex   = errors.New("invalid order index")
	ErrOrderNotContiguous  = errors.New("order indexes are not contiguous")
	ErrInvalidDuration     = errors.New("invalid duration")
)
