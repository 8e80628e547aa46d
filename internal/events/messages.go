package events

import (
	"encoding/json"
	"time"

	"github.com/SscSPs/money_recurrence/internal/core/domain"
)

// MessageType identifies the payload on the wire.
const MessageType = "recurrence.materialized"

// MaterializedMessage announces the transactions one materialization run created.
type MaterializedMessage struct {
	Type                 string                  `json:"type"`
	OwnerID              string                  `json:"ownerId"`
	RecurrenceID         string                  `json:"recurrenceId"`
	Transactions         []MaterializedTxnRecord `json:"transactions"`
	LastMaterializedDate *domain.Date            `json:"lastMaterializedDate,omitempty"`
	Timestamp            time.Time               `json:"timestamp"`
}

// MaterializedTxnRecord is the slice of a transaction consumers need to
// fetch or display it.
type MaterializedTxnRecord struct {
	TransactionID string           `json:"transactionId"`
	DueDate       domain.Date      `json:"dueDate"`
	Amount        string           `json:"amount"`
	Direction     domain.Direction `json:"direction"`
}

// NewMaterializedMessage builds the message for result.
func NewMaterializedMessage(ownerID string, result domain.MaterializationResult, at time.Time) *MaterializedMessage {
	records := make([]MaterializedTxnRecord, 0, len(result.Created))
	for _, t := range result.Created {
		records = append(records, MaterializedTxnRecord{
			TransactionID: t.TransactionID,
			DueDate:       t.DueDate,
			Amount:        t.Amount.StringFixed(2),
			Direction:     t.Direction,
		})
	}
	return &MaterializedMessage{
		Type:                 MessageType,
		OwnerID:              ownerID,
		RecurrenceID:         result.RecurrenceID,
		Transactions:         records,
		LastMaterializedDate: result.LastMaterializedDate,
		Timestamp:            at.UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *MaterializedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MaterializedMessageFromJSON decodes a message body.
func MaterializedMessageFromJSON(data []byte) (*MaterializedMessage, error) {
	var msg MaterializedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
