package domain

import "errors"

// ErrNotFound is returned by stores when a key, claim or package does not exist (or has expired).
var ErrNotFound = errors.New("not found")

// ErrClaimExists is returned when a claim identifier is written twice.
var ErrClaimExists = errors.New("claim already exists")
