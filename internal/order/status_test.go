package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Status
		wantErr bool
	}{
		{name: "plain", raw: "pending", want: StatusPending},
		{name: "uppercase", raw: "READY", want: StatusReady},
		{name: "padded", raw: "  Delivered ", want: StatusDelivered},
		{name: "cancelled", raw: "cancelled", want: StatusCancelled},
		{name: "unknown", raw: "shipped", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatus(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnknownStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOrdinal(t *testing.T) {
	for i, stage := range Stages() {
		ord, ok := stage.Ordinal()
		require.True(t, ok, "stage %s", stage)
		assert.Equal(t, i, ord)
	}

	_, ok := StatusCancelled.Ordinal()
	assert.False(t, ok, "cancelled has no ordinal")

	_, ok = Status("shipped").Ordinal()
	assert.False(t, ok)
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusReady.Terminal())
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{name: "forward one step", from: StatusPending, to: StatusConfirmed, want: true},
		{name: "skip stages", from: StatusPending, to: StatusReady, want: true},
		{name: "same stage noop", from: StatusPreparing, to: StatusPreparing, want: true},
		{name: "backward", from: StatusReady, to: StatusConfirmed, want: false},
		{name: "cancel from pending", from: StatusPending, to: StatusCancelled, want: true},
		{name: "cancel from ready", from: StatusReady, to: StatusCancelled, want: true},
		{name: "cancel after delivery", from: StatusDelivered, to: StatusCancelled, want: false},
		{name: "leave delivered", from: StatusDelivered, to: StatusPending, want: false},
		{name: "leave cancelled", from: StatusCancelled, to: StatusPending, want: false},
		{name: "cancelled to cancelled", from: StatusCancelled, to: StatusCancelled, want: true},
		{name: "unknown from", from: Status("shipped"), to: StatusPending, want: false},
		{name: "unknown to", from: StatusPending, to: Status("shipped"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Ready for Pickup", StatusReady.Label())
	assert.Equal(t, "Cancelled", StatusCancelled.Label())
	assert.Equal(t, "shipped", Status("shipped").Label())
}
