package digigate

import "github.com/xraph/digigate/id"

// ID is the primary identifier type for all digigate entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
