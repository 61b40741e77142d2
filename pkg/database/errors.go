package database

import "errors"

// ErrNotReady wraps any failure to reach the database.
var ErrNotReady = errors.New("database not ready")
