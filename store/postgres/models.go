package postgres

import (
	"time"

	"github.com/xraph/grove"
)

// recordModel is one row of the key/value table.
type recordModel struct {
	grove.BaseModel `grove:"table:digigate_records"`

	Key       string    `grove:"record_key,pk"`
	Value     string    `grove:"value"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toRecordModel(key string, value []byte) *recordModel {
	return &recordModel{
		Key:       key,
		Value:     string(value),
		UpdatedAt: now(),
	}
}
