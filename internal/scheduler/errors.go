package scheduler

import "errors"

// ErrInvalidConfig is returned by NewWithConfig for out-of-range tuning values.
var ErrInvalidConfig = errors.New("scheduler: invalid config")
