package repository

import "errors"

// Sentinel kinds for persistence errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
)
