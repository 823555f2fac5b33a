package entity

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// HederaAccount is what HashPack and Blade return on connect.
type HederaAccount struct {
	AccountID  string `json:"accountId" validate:"required,hedera_account"`
	EVMAddress string `json:"evmAddress" validate:"omitempty,eth_addr"`
}

// Validate checks the account id format and the optional EVM address, then fills the
// EVM address with the long-zero alias when the wallet did not send one.
func (a *HederaAccount) Validate() error {
	if err := Validator().Struct(a); err != nil {
		return fmt.Errorf("hedera account: %w", err)
	}
	if a.EVMAddress == "" {
		alias, err := LongZeroAddress(a.AccountID)
		if err != nil {
			return err
		}
		a.EVMAddress = alias
	} else {
		a.EVMAddress = common.HexToAddress(a.EVMAddress).Hex()
	}
	return nil
}

// ParseHederaAccountID splits a shard.realm.num identifier.
func ParseHederaAccountID(id string) (shard, realm, num uint64, err error) {
	parts := strings.Split(id, ".")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("account id %q is not shard.realm.num", id)
	}
	vals := make([]uint64, 3)
	for i, p := range parts {
		v, perr := strconv.ParseUint(p, 10, 64)
		if perr != nil {
			return 0, 0, 0, fmt.Errorf("account id %q: %w", id, perr)
		}
		vals[i] = v
	}
	if vals[0] > 0xffffffff {
		return 0, 0, 0, fmt.Errorf("account id %q: shard out of range", id)
	}
	return vals[0], vals[1], vals[2], nil
}

// LongZeroAddress derives the 20-byte EVM alias of a Hedera account:
// 4 bytes shard, 8 bytes realm, 8 bytes account number.
func LongZeroAddress(accountID string) (string, error) {
	shard, realm, num, err := ParseHederaAccountID(accountID)
	if err != nil {
		return "", err
	}
	var b [20]byte
	binary.BigEndian.PutUint32(b[0:4], uint32(shard))
	binary.BigEndian.PutUint64(b[4:12], realm)
	binary.BigEndian.PutUint64(b[12:20], num)
	return common.BytesToAddress(b[:]).Hex(), nil
}
