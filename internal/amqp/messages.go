package amqp

import (
	"encoding/json"
	"time"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ReceiptEventMessage announces that a receipt changed. It carries only
// identifiers, the worker fetches current state from the database.
type ReceiptEventMessage struct {
	ReceiptID int64     `json:"receipt_id"`
	AccountID int64     `json:"account_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewReceiptEventMessage(receiptID, accountID int64, action string) *ReceiptEventMessage {
	return &ReceiptEventMessage{
		ReceiptID: receiptID,
		AccountID: accountID,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *ReceiptEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReceiptEventMessageFromJSON(data []byte) (*ReceiptEventMessage, error) {
	var msg ReceiptEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
