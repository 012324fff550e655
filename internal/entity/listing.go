package entity

import (
	"errors"
	"fmt"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"time"
)

type ListingState uint8

const (
	ListingCreated ListingState = iota
	ListingReleased
	ListingInactive
)

var ErrInvalidListingState = errors.New("invalid listing state")

func (s ListingState) String() string {
	switch s {
	case ListingCreated:
		return "created"
	case ListingReleased:
		return "released"
	case ListingInactive:
		return "inactive"
	}
	return fmt.Sprintf("unknown(%d)", uint8(s))
}

func ParseListingState(value string) (ListingState, error) {
	switch value {
	case "created":
		return ListingCreated, nil
	case "released":
		return ListingReleased, nil
	case "inactive":
		return ListingInactive, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrInvalidListingState, value)
}

func (s ListingState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ListingState) UnmarshalText(text []byte) error {
	state, err := ParseListingState(string(text))
	if err != nil {
		return err
	}
	*s = state
	return nil
}

type Listing struct {
	Id         uint64          `json:"id"`
	Collection Address         `json:"collection"`
	AssetId    uint64          `json:"assetId"`
	Seller     Address         `json:"seller"`
	Buyer      Address         `json:"buyer"`
	Price      decimal.Decimal `json:"price"`
	State      ListingState    `json:"state"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func (l Listing) Slug() string {
	return CreateListingSlug(l.Id)
}

func CreateListingSlug(id uint64) string {
	return slug.Make(fmt.Sprintf("listing-%d", id))
}

func (l Listing) IsActive() bool {
	return l.State == ListingCreated
}

func (l Listing) IsFor(collection Address, assetId uint64) bool {
	return l.Collection == collection && l.AssetId == assetId
}

// ListingDocument is the search representation of a listing.
type ListingDocument struct {
	Listing
	CollectionBech32 string `json:"collectionBech32"`
	SellerBech32     string `json:"sellerBech32"`
	BuyerBech32      string `json:"buyerBech32"`
}

func (l Listing) Document() ListingDocument {
	doc := ListingDocument{
		Listing:          l,
		CollectionBech32: l.Collection.Bech32(),
		SellerBech32:     l.Seller.Bech32(),
	}
	if !l.Buyer.IsZero() {
		doc.BuyerBech32 = l.Buyer.Bech32()
	}

	return doc
}
