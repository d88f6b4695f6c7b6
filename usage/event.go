package usage

import (
	"time"

	"github.com/xraph/digigate/id"
)

// DownloadEvent describes one recorded download. It is handed to plugins
// after the usage record has been persisted.
type DownloadEvent struct {
	ID             id.DownloadID `json:"id"`
	UserID         string        `json:"userId"`
	ProductID      string        `json:"productId"`
	PlanID         string        `json:"planId,omitempty"`
	DailyDownloads int           `json:"dailyDownloads"`
	TotalDownloads int           `json:"totalDownloads"`
	FirstAccess    bool          `json:"firstAccess"`
	Timestamp      time.Time     `json:"timestamp"`
}

// NewDownloadEvent snapshots rec right after productID was downloaded.
func NewDownloadEvent(userID, planID, productID string, rec Record, firstAccess bool, at time.Time) *DownloadEvent {
	return &DownloadEvent{
		ID:             id.NewDownloadID(),
		UserID:         userID,
		ProductID:      productID,
		PlanID:         planID,
		DailyDownloads: rec.DailyDownloads,
		TotalDownloads: rec.TotalDownloads,
		FirstAccess:    firstAccess,
		Timestamp:      at.UTC(),
	}
}
