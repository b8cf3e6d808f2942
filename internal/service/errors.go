package service

import "errors"

// ErrInvalidArgument is returned for out-of-range inputs such as a
// non-positive sample count or an AUC outside (0, 1].
var ErrInvalidArgument = errors.New("invalid argument")
