package amqp

import (
	"encoding/json"
	"time"
)

// TransactionSyncMessage asks the export worker to push one stored
// transaction to the spreadsheet. It carries only the ID and version;
// the worker fetches the full row from the database.
type TransactionSyncMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionSyncMessage(id, version int64) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
