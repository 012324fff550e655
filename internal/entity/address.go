package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/Zilliqa/gozilliqa-sdk/bech32"
	"regexp"
	"strings"
)

type Address string

const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

var (
	ErrInvalidAddress = errors.New("invalid address")
)

var hexAddress = regexp.MustCompile("^0x[0-9a-f]{40}$")

// NewAddress accepts a 0x prefixed (or bare) hex address or a zil1 bech32 address and
// returns it as lowercase 0x hex.
func NewAddress(value string) (Address, error) {
	addr := strings.TrimSpace(value)
	if strings.HasPrefix(strings.ToLower(addr), "zil1") {
		hex, err := bech32.FromBech32Addr(addr)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrInvalidAddress, value)
		}
		addr = hex
	}

	addr = strings.ToLower(addr)
	if !strings.HasPrefix(addr, "0x") {
		addr = "0x" + addr
	}

	if !hexAddress.MatchString(addr) {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, value)
	}

	return Address(addr), nil
}

func MustAddress(value string) Address {
	addr, err := NewAddress(value)
	if err != nil {
		panic(err)
	}
	return addr
}

func (a Address) String() string {
	return string(a)
}

func (a Address) IsZero() bool {
	return a == "" || a == ZeroAddress
}

func (a Address) Bech32() string {
	if a == "" {
		return ""
	}
	bech32Address, err := bech32.ToBech32Address(string(a))
	if err != nil {
		return ""
	}
	return bech32Address
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	if value == "" {
		*a = ""
		return nil
	}

	addr, err := NewAddress(value)
	if err != nil {
		return err
	}
	*a = addr

	return nil
}
