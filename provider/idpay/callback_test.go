package idpay

import (
	"testing"

	"github.com/mstgnz/idpay/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]string
		want    *Callback
		wantErr string
	}{
		{
			name: "paid",
			values: map[string]string{
				"status":   "10",
				"track_id": "4458",
				"id":       "d2e353189823079e1e4181772cff5292",
				"order_id": "ORDER-1001",
			},
			want: &Callback{Status: 10, TrackID: "4458", ID: "d2e353189823079e1e4181772cff5292", OrderID: "ORDER-1001"},
		},
		{
			name:   "cancelled without track id",
			values: map[string]string{"status": " 7 ", "id": "abc", "order_id": "ORDER-1"},
			want:   &Callback{Status: 7, ID: "abc", OrderID: "ORDER-1"},
		},
		{
			name:    "missing status",
			values:  map[string]string{"id": "abc", "order_id": "ORDER-1"},
			wantErr: "status is missing",
		},
		{
			name:    "non numeric status",
			values:  map[string]string{"status": "ok", "id": "abc", "order_id": "ORDER-1"},
			wantErr: "invalid status",
		},
		{
			name:    "missing id",
			values:  map[string]string{"status": "10", "order_id": "ORDER-1"},
			wantErr: "id is missing",
		},
		{
			name:    "missing order id",
			values:  map[string]string{"status": "10", "id": "abc"},
			wantErr: "order_id is missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCallback(tt.values)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCallback_VerifyRequest(t *testing.T) {
	cb := &Callback{Status: StatusAwaitingVerify, ID: "abc", OrderID: "ORDER-1"}
	assert.True(t, cb.ReadyToVerify())
	assert.Equal(t, provider.VerifyPaymentRequest{ID: "abc", OrderID: "ORDER-1"}, cb.VerifyRequest())

	cb.Status = StatusCancelledByPayer
	assert.False(t, cb.ReadyToVerify())
}
