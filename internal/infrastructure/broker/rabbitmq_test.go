package broker_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-qr/internal/infrastructure/broker"
)

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "stock.scan_pp", broker.RoutingKey(json.RawMessage(`{"type":"scan_pp"}`)))
	assert.Equal(t, "stock.bulk_snapshot_pp", broker.RoutingKey(json.RawMessage(`{"type":"bulk_snapshot_pp","rows":[]}`)))
	assert.Equal(t, "stock.unknown", broker.RoutingKey(json.RawMessage(`not json`)))
	assert.Equal(t, "stock.unknown", broker.RoutingKey(json.RawMessage(`{}`)))
}
