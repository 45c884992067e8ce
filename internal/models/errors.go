package models

import "errors"

// ErrUnknownEntityType indicates an entity type the sync engine does not support
var ErrUnknownEntityType = errors.New("unknown entity type")
