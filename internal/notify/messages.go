package notify

import (
	"encoding/json"
	"time"
)

// TransactionChangeMessage is the wire form of a transaction change event.
// Carries only the id and action; the engine refetches transactions itself.
type TransactionChangeMessage struct {
	Action        string    `json:"action"`
	TransactionID string    `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionChangeMessage builds a message stamped with the current time.
func NewTransactionChangeMessage(action string, transactionID string) *TransactionChangeMessage {
	return &TransactionChangeMessage{
		Action:        action,
		TransactionID: transactionID,
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes.
func (message *TransactionChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(message)
}

// TransactionChangeMessageFromJSON decodes a message from JSON bytes.
func TransactionChangeMessageFromJSON(data []byte) (*TransactionChangeMessage, error) {
	var message TransactionChangeMessage
	if err := json.Unmarshal(data, &message); err != nil {
		return nil, err
	}
	return &message, nil
}
