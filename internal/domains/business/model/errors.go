package model

import "errors"

var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrUpdateNotFound   = errors.New("update not found")
)
