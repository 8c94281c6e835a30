package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func TestIsValidAccountID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"alice.near", true},
		{"bob_1-x.testnet", true},
		{"a1", true},
		{"near", true},
		{"a", false},
		{"Alice.near", false},
		{"alice..near", false},
		{"alice.", false},
		{".alice", false},
		{"al--ice", false},
		{"-alice", false},
		{"alice near", false},
		{"", false},
		{strings.Repeat("a", 64), true},
		{strings.Repeat("a", 65), false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidAccountID(tt.id))
		})
	}
}

func TestParseAmount(t *testing.T) {
	a, err := ParseAmount("340282366920938463463374607431768211455")
	require.NoError(t, err)
	assert.True(t, a.Equals(uint128.Max))

	a, err = ParseAmount("42")
	require.NoError(t, err)
	assert.Equal(t, "42", a.String())

	for _, bad := range []string{"340282366920938463463374607431768211456", "-1", "1.5", "", "12abc"} {
		_, err := ParseAmount(bad)
		assert.Error(t, err, bad)
	}
}

func TestNearApprox(t *testing.T) {
	a, err := ParseAmount("1500000000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, "2", NearApprox(a))
	assert.Equal(t, "0", NearApprox(uint128.From64(40)))
}

func TestPendingTransfer_JSONCarriesAmountAsString(t *testing.T) {
	p := PendingTransfer{
		ID:        uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		Recipient: "bob.near",
		Amount:    uint128.Max,
		Callback: &TransferContext{
			Sender:    "alice.near",
			Amount:    uint128.Max,
			Recipient: "bob.near",
			Source:    FundingBalance,
		},
		DispatchedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"amount":"340282366920938463463374607431768211455"`)

	var back PendingTransfer
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, p, back)
}

func TestPendingTransfer_NoCallbackOmitted(t *testing.T) {
	b, err := json.Marshal(PendingTransfer{Recipient: "bob.near", Amount: uint128.From64(1)})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "callback")
}

func TestOperation_UnmarshalRejectsBadAmount(t *testing.T) {
	var op Operation
	err := json.Unmarshal([]byte(`{"account_id":"bob.near","amount":"-5"}`), &op)
	assert.Error(t, err)

	require.NoError(t, json.Unmarshal([]byte(`{"account_id":"bob.near","amount":"5"}`), &op))
	assert.Equal(t, Operation{Recipient: "bob.near", Amount: uint128.From64(5)}, op)
}
