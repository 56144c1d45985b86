package dto

import (
	"encoding/json"
	"time"
)

// ParseScanRequest body para POST /api/scans/parse.
type ParseScanRequest struct {
	Payload string `json:"payload" validate:"required"`
}

// ScanResponse QR interpretado.
type ScanResponse struct {
	Serial      int64  `json:"serial"`
	ProductID   int64  `json:"product_id"`
	ProductCode string `json:"product_code"`
	Description string `json:"description"`
	Lot         string `json:"lot"`
	CreatedOn   string `json:"created_on"`
	ExpiresOn   string `json:"expires_on"`
}

// InboundRequest body para POST /api/inbound. trailing_packs > 0 marca el último pallet como parcial.
type InboundRequest struct {
	StartPayload  string `json:"start_payload" validate:"required"`
	EndPayload    string `json:"end_payload" validate:"required"`
	TrailingPacks int    `json:"trailing_packs" validate:"gte=0"`
}

// RangeResponse rango de ingreso (stock_pp).
type RangeResponse struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"product_id"`
	Lot           string    `json:"lot"`
	SerialStart   int64     `json:"serial_start"`
	SerialEnd     int64     `json:"serial_end"`
	TrailingPacks int       `json:"trailing_packs"`
	Pallets       int64     `json:"pallets"`
	CreatedAt     time.Time `json:"created_at"`
}

// StockResponse stock neto de producto+lote (lot vacío = todos los lotes).
type StockResponse struct {
	ProductID   int64  `json:"product_id"`
	Lot         string `json:"lot,omitempty"`
	Description string `json:"description"`
	Pallets     int64  `json:"pallets"`
	Packs       int64  `json:"packs"`
}

// StockListResponse página de stock neto.
type StockListResponse struct {
	Items []StockResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// SyncResponse resultado del intento de entrega posterior al commit.
type SyncResponse struct {
	Sent    int    `json:"sent"`
	Pending int    `json:"pending"`
	Warning string `json:"warning,omitempty"`
}

// InboundResponse respuesta de POST /api/inbound.
type InboundResponse struct {
	Range RangeResponse `json:"range"`
	Stock StockResponse `json:"stock"`
	Sync  SyncResponse  `json:"sync"`
}

// OutboundRequest body para POST /api/outbound.
type OutboundRequest struct {
	Payload string `json:"payload" validate:"required"`
}

// MovementResponse salida registrada (salidas_qr).
type MovementResponse struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Lot       string    `json:"lot"`
	Serial    int64     `json:"serial"`
	UnitType  string    `json:"unit_type"`
	PacksQty  int       `json:"packs_qty"`
	RangeID   int64     `json:"range_id"`
	CreatedAt time.Time `json:"created_at"`
}

// OutboundResponse respuesta de POST /api/outbound.
type OutboundResponse struct {
	Movement MovementResponse `json:"movement"`
	Stock    StockResponse    `json:"stock"`
	Sync     SyncResponse     `json:"sync"`
}

// RollbackRequest body para POST /api/adjustments/rollback.
type RollbackRequest struct {
	ProductID int64  `json:"product_id" validate:"gt=0"`
	Lot       string `json:"lot" validate:"required"`
	UnitType  string `json:"unit_type" validate:"required,oneof=pallet packs"`
	Quantity  int64  `json:"quantity" validate:"gt=0"`
}

// RollbackStepResponse cambio aplicado a un rango.
type RollbackStepResponse struct {
	RangeID          int64  `json:"range_id"`
	Action           string `json:"action"`
	Taken            int64  `json:"taken"`
	NewSerialEnd     int64  `json:"new_serial_end,omitempty"`
	NewTrailingPacks int    `json:"new_trailing_packs"`
}

// RollbackResponse rangos tocados y la nueva última serie (null si no quedan rangos).
type RollbackResponse struct {
	AffectedRangeIDs []int64                `json:"affected_range_ids"`
	Steps            []RollbackStepResponse `json:"steps"`
	NewLastSerial    *int64                 `json:"new_last_serial"`
	Stock            StockResponse          `json:"stock"`
	Sync             SyncResponse           `json:"sync"`
}

// ReserveRequest body para POST /api/serials/reserve. Lot vacío usa el lote del día.
type ReserveRequest struct {
	ProductID int64  `json:"product_id" validate:"gt=0"`
	Lot       string `json:"lot"`
	Count     int    `json:"count" validate:"gt=0,lte=1000"`
}

// OutboxMessageResponse mensaje pendiente de entrega.
type OutboxMessageResponse struct {
	ID        int64           `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// OutboxListResponse cola pendiente.
type OutboxListResponse struct {
	Pending  int                     `json:"pending"`
	Messages []OutboxMessageResponse `json:"messages"`
}

// FlushRequest query de POST /api/outbox/flush. limit 0 usa el límite configurado.
type FlushRequest struct {
	Limit int `query:"limit" validate:"gte=0,lte=500"`
}

// SnapshotResponse resumen del envío masivo.
type SnapshotResponse struct {
	SnapshotID   string `json:"snapshot_id"`
	SentPending  int    `json:"sent_pending"`
	Rows         int    `json:"rows"`
	BlocksSent   int    `json:"blocks_sent"`
	BlocksTotal  int    `json:"blocks_total"`
	StillPending int    `json:"still_pending"`
	Warning      string `json:"warning,omitempty"`
}
