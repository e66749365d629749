package entities

import "github.com/ethereum/go-ethereum/common"

type Token struct {
	Symbol   string      `json:"symbol" toml:"symbol"`
	Name     string      `json:"name" toml:"name"`
	Decimals uint8       `json:"decimals" toml:"decimals"`
	TypeHash common.Hash `json:"typeHash" toml:"typeHash"`
}
