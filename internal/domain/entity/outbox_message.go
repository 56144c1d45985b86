package entity

import (
	"encoding/json"
	"time"
)

// OutboxMessage notificación pendiente hacia el sink externo. Se elimina solo tras el ACK.
type OutboxMessage struct {
	ID        int64
	Payload   json.RawMessage
	CreatedAt time.Time
}
