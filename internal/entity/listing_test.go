package entity

import (
	"encoding/json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestValidateAmount(t *testing.T) {
	require.NoError(t, ValidateAmount(decimal.Zero))
	require.NoError(t, ValidateAmount(decimal.RequireFromString("3000000000000000000000")))
	require.ErrorIs(t, ValidateAmount(decimal.NewFromInt(-1)), ErrInvalidAmount)
	require.ErrorIs(t, ValidateAmount(decimal.RequireFromString("0.5")), ErrInvalidAmount)
}

func TestParseAmount(t *testing.T) {
	amount, err := ParseAmount("1000000000000000")
	require.NoError(t, err)
	require.Equal(t, "1000000000000000", amount.String())

	_, err = ParseAmount("ten")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseAmount("-10")
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestListingStateText(t *testing.T) {
	for _, state := range []ListingState{ListingCreated, ListingReleased, ListingInactive} {
		parsed, err := ParseListingState(state.String())
		require.NoError(t, err)
		require.Equal(t, state, parsed)
	}

	_, err := ParseListingState("sold")
	require.ErrorIs(t, err, ErrInvalidListingState)
}

func TestListingJSON(t *testing.T) {
	listing := Listing{
		Id:         3,
		Collection: MustAddress("0x6000000000000000000000000000000000000006"),
		AssetId:    42,
		Seller:     MustAddress("0x3000000000000000000000000000000000000003"),
		Buyer:      ZeroAddress,
		Price:      decimal.RequireFromString("1000000000000000"),
		State:      ListingReleased,
	}

	b, err := json.Marshal(listing)
	require.NoError(t, err)
	require.Contains(t, string(b), `"state":"released"`)

	var decoded Listing
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Equal(t, listing.State, decoded.State)
	require.Equal(t, listing.Seller, decoded.Seller)
	require.True(t, listing.Price.Equal(decoded.Price))
}

func TestListingSlug(t *testing.T) {
	require.Equal(t, "listing-12", Listing{Id: 12}.Slug())
}

func TestListingDocument(t *testing.T) {
	listing := Listing{
		Collection: MustAddress("0x6000000000000000000000000000000000000006"),
		Seller:     MustAddress("0x3000000000000000000000000000000000000003"),
		Buyer:      ZeroAddress,
		State:      ListingCreated,
	}

	doc := listing.Document()
	require.NotEmpty(t, doc.CollectionBech32)
	require.NotEmpty(t, doc.SellerBech32)
	require.Empty(t, doc.BuyerBech32)
	require.True(t, doc.IsActive())
}
