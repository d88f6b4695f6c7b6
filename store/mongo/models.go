package mongo

import (
	"strings"
	"time"

	"github.com/xraph/grove"
)

// recordModel is one scoped key. Kind and UserID are split out of the key
// so records can be indexed per user.
type recordModel struct {
	grove.BaseModel `grove:"table:digigate_records"`

	Key       string    `grove:"record_key,pk" bson:"_id"`
	Kind      string    `grove:"kind"          bson:"kind"`
	UserID    string    `grove:"user_id"       bson:"user_id"`
	Value     string    `grove:"value"         bson:"value"`
	UpdatedAt time.Time `grove:"updated_at"    bson:"updated_at"`
}

func toRecordModel(key string, value []byte) *recordModel {
	kind, userID, _ := strings.Cut(key, ":")
	return &recordModel{
		Key:       key,
		Kind:      kind,
		UserID:    userID,
		Value:     string(value),
		UpdatedAt: now(),
	}
}
