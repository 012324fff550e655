package entity

import (
	"encoding/json"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestNewAddress(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  Address
	}{
		{"lowercase hex", "0x7d3a1b0c6e8a51a0e4b1f0d2c3e4f5a6b7c8d9e0", "0x7d3a1b0c6e8a51a0e4b1f0d2c3e4f5a6b7c8d9e0"},
		{"checksummed hex", "0x7D3A1B0C6E8A51A0E4B1F0D2C3E4F5A6B7C8D9E0", "0x7d3a1b0c6e8a51a0e4b1f0d2c3e4f5a6b7c8d9e0"},
		{"bare hex", "7d3a1b0c6e8a51a0e4b1f0d2c3e4f5a6b7c8d9e0", "0x7d3a1b0c6e8a51a0e4b1f0d2c3e4f5a6b7c8d9e0"},
		{"padded", "  0x7d3a1b0c6e8a51a0e4b1f0d2c3e4f5a6b7c8d9e0 ", "0x7d3a1b0c6e8a51a0e4b1f0d2c3e4f5a6b7c8d9e0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewAddress(tt.value)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNewAddressRejectsMalformedInput(t *testing.T) {
	for _, value := range []string{"", "0x", "0x1234", "0xzz3a1b0c6e8a51a0e4b1f0d2c3e4f5a6b7c8d9e0", "zil1notanaddress"} {
		_, err := NewAddress(value)
		require.ErrorIs(t, err, ErrInvalidAddress, value)
	}
}

func TestAddressBech32RoundTrip(t *testing.T) {
	addr := MustAddress("0x7d3a1b0c6e8a51a0e4b1f0d2c3e4f5a6b7c8d9e0")

	bech32Address := addr.Bech32()
	require.NotEmpty(t, bech32Address)
	require.Contains(t, bech32Address, "zil1")

	decoded, err := NewAddress(bech32Address)
	require.NoError(t, err)
	require.Equal(t, addr, decoded)
}

func TestAddressIsZero(t *testing.T) {
	require.True(t, Address("").IsZero())
	require.True(t, ZeroAddress.IsZero())
	require.False(t, MustAddress("0x7d3a1b0c6e8a51a0e4b1f0d2c3e4f5a6b7c8d9e0").IsZero())
}

func TestAddressUnmarshalJSON(t *testing.T) {
	var payload struct {
		Seller Address `json:"seller"`
		Buyer  Address `json:"buyer"`
	}

	err := json.Unmarshal([]byte(`{"seller":"0x7D3A1B0C6E8A51A0E4B1F0D2C3E4F5A6B7C8D9E0","buyer":""}`), &payload)
	require.NoError(t, err)
	require.Equal(t, Address("0x7d3a1b0c6e8a51a0e4b1f0d2c3e4f5a6b7c8d9e0"), payload.Seller)
	require.Equal(t, Address(""), payload.Buyer)

	err = json.Unmarshal([]byte(`{"seller":"nope"}`), &payload)
	require.ErrorIs(t, err, ErrInvalidAddress)
}
