package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-admin/internal/application/ports"
)

func TestEncodeEvent(t *testing.T) {
	ev := ports.MovementEvent{
		Type:       ports.EventMovementCreated,
		CompanyID:  1,
		MovementID: 10,
		ProductID:  3,
		Direction:  "salida",
		Quantity:   5,
		StockAfter: 2,
		LowStock:   true,
		OccurredAt: time.Date(2024, time.June, 20, 10, 0, 0, 0, time.UTC),
	}
	body, err := encodeEvent(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "kardex.movement.created", decoded["type"])
	assert.Equal(t, float64(2), decoded["stock_after"])
	assert.Equal(t, true, decoded["low_stock"])
}

func TestPublish_CanalCerrado(t *testing.T) {
	p := &AMQPPublisher{exchange: "kardex.events"}
	err := p.Publish(context.Background(), ports.MovementEvent{Type: ports.EventMovementDeleted})
	assert.Error(t, err)
	assert.NoError(t, p.Close())
}
