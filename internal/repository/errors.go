package repository

import "errors"

// ErrDuplicateKey signals a write that violated a uniqueness constraint.
// Services translate it into a domain conflict error.
var ErrDuplicateKey = errors.New("duplicate key")
