package ledger

import (
	"context"
	"errors"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"sync"
)

var (
	ErrUnknownCurrency       = errors.New("unknown currency")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

// Token is an in-memory fungible balance ledger with an allowance model.
type Token struct {
	mu         sync.Mutex
	address    entity.Address
	balances   map[entity.Address]decimal.Decimal
	allowances map[entity.Address]map[entity.Address]decimal.Decimal
}

func NewToken(address entity.Address) *Token {
	return &Token{
		address:    address,
		balances:   map[entity.Address]decimal.Decimal{},
		allowances: map[entity.Address]map[entity.Address]decimal.Decimal{},
	}
}

func (t *Token) Address() entity.Address {
	return t.address
}

func (t *Token) Mint(to entity.Address, amount decimal.Decimal) error {
	if err := entity.ValidateAmount(amount); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.balances[to] = t.balances[to].Add(amount)

	return nil
}

func (t *Token) BalanceOf(owner entity.Address) decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.balances[owner]
}

func (t *Token) Approve(owner, spender entity.Address, amount decimal.Decimal) error {
	if err := entity.ValidateAmount(amount); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.allowances[owner]; !ok {
		t.allowances[owner] = map[entity.Address]decimal.Decimal{}
	}
	t.allowances[owner][spender] = amount

	return nil
}

func (t *Token) Allowance(owner, spender entity.Address) decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.allowances[owner][spender]
}

func (t *Token) transferFrom(spender, from, to entity.Address, amount decimal.Decimal) error {
	if err := entity.ValidateAmount(amount); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.balances[from].LessThan(amount) {
		return fmt.Errorf("%w: %s holds %s of %s, needs %s", ErrInsufficientBalance, from, t.balances[from], t.address, amount)
	}

	if spender != from {
		allowance := t.allowances[from][spender]
		if allowance.LessThan(amount) {
			return fmt.Errorf("%w: %s may spend %s of %s for %s, needs %s", ErrInsufficientAllowance, spender, allowance, t.address, from, amount)
		}
		t.allowances[from][spender] = allowance.Sub(amount)
	}

	t.balances[from] = t.balances[from].Sub(amount)
	t.balances[to] = t.balances[to].Add(amount)

	zap.L().With(
		zap.String("currency", t.address.String()),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.String("amount", amount.String()),
	).Debug("Ledger: Transfer")

	return nil
}

// Spender is a view of a token bound to the account that spends allowances.
type Spender struct {
	token   *Token
	spender entity.Address
}

func (t *Token) For(spender entity.Address) Spender {
	return Spender{t, spender}
}

func (s Spender) TransferFrom(ctx context.Context, from, to entity.Address, amount decimal.Decimal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.token.transferFrom(s.spender, from, to, amount)
}
