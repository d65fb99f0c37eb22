package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeDocumentIngested        = "document.ingested"
	EventTypeDocumentIngestionFailed = "document.ingestion_failed"
)

type DocumentIngestedEvent struct {
	BaseEvent
	CompanyID   int64    `json:"company_id"`
	Document    string   `json:"document"`
	StoredYears []int    `json:"stored_years"`
	FailedYears []string `json:"failed_years,omitempty"`
}

func NewDocumentIngestedEvent(companyID int64, document string, stored []int, failed []string) *DocumentIngestedEvent {
	return &DocumentIngestedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeDocumentIngested,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"company_id":   companyID,
				"document":     document,
				"stored_years": stored,
				"failed_years": failed,
			},
		},
		CompanyID:   companyID,
		Document:    document,
		StoredYears: stored,
		FailedYears: failed,
	}
}

type DocumentIngestionFailedEvent struct {
	BaseEvent
	CompanyID int64  `json:"company_id"`
	Document  string `json:"document"`
	Stage     string `json:"stage"`
	Reason    string `json:"reason"`
}

func NewDocumentIngestionFailedEvent(companyID int64, document, stage, reason string) *DocumentIngestionFailedEvent {
	return &DocumentIngestionFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeDocumentIngestionFailed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"company_id": companyID,
				"document":   document,
				"stage":      stage,
				"reason":     reason,
			},
		},
		CompanyID: companyID,
		Document:  document,
		Stage:     stage,
		Reason:    reason,
	}
}
