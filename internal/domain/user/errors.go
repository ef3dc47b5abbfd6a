package user

import "errors"

// ErrEmailAlreadyExists is returned by Create on a unique email violation
var ErrEmailAlreadyExists = errors.New("email already exists")
