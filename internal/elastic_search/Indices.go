package elastic_search

import (
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/config"
)

type Indices string

var (
	ListingIndex Indices = "listing"
)

// Sets the network and returns the full string
func (i *Indices) Get() string {
	return fmt.Sprintf("%s.%s.%s", config.Get().Network, config.Get().Index, string(*i))
}
