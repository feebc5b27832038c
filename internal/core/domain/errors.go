package domain

import "errors"

// ErrDuplicate is returned by repository Create methods when an insert
// hits a unique constraint (duplicate email or token). The logic layer
// uses it to retry token generation after losing a race.
var ErrDuplicate = errors.New("duplicate key")
