package repository

// Ledger agrupa los repositorios atados a una misma conexión o transacción.
type Ledger struct {
	Products   ProductRepository
	Ranges     InboundRangeRepository
	Movements  OutboundMovementRepository
	Outbox     OutboxRepository
	Projection StockProjectionRepository
	Watermarks SerialWatermarkRepository
}
