package ledger

import (
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"sync"
)

// Bank is the directory of tokens, one per settlement currency address.
type Bank struct {
	mu     sync.Mutex
	tokens map[entity.Address]*Token
}

func NewBank(currencies ...entity.Address) *Bank {
	b := &Bank{tokens: map[entity.Address]*Token{}}
	for _, currency := range currencies {
		b.Token(currency)
	}

	return b
}

// Token returns the token for currency, creating it when it does not exist yet.
func (b *Bank) Token(currency entity.Address) *Token {
	b.mu.Lock()
	defer b.mu.Unlock()

	token, ok := b.tokens[currency]
	if !ok {
		token = NewToken(currency)
		b.tokens[currency] = token
	}

	return token
}

func (b *Bank) Ledger(currency entity.Address, spender entity.Address) (*Spender, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	token, ok := b.tokens[currency]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCurrency, currency)
	}

	s := token.For(spender)
	return &s, nil
}
