package entities

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

type OutPoint struct {
	TxHash common.Hash    `json:"txHash"`
	Index  hexutil.Uint64 `json:"index"`
}

func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxHash.Hex(), uint64(o.Index))
}

// WithdrawalCell is a layer 2 withdrawal waiting on layer 1 for its finality
// delay. TypeHash is set only when the cell carries a fungible token, in which
// case the first 16 bytes of Data hold the token amount (little-endian u128).
type WithdrawalCell struct {
	OutPoint OutPoint       `json:"outPoint"`
	Capacity hexutil.Uint64 `json:"capacity"`
	TypeHash *common.Hash   `json:"typeHash,omitempty"`
	Data     hexutil.Bytes  `json:"data"`
}

func (c WithdrawalCell) HasToken() bool {
	return c.TypeHash != nil
}

type WithdrawalCellInfo struct {
	Cell            WithdrawalCell `json:"cell"`
	Finalized       bool           `json:"finalized"`
	RemainingBlocks hexutil.Uint64 `json:"remainingBlocks"`
}

type WithdrawalCellsRes struct {
	RPCBaseRes
	Result []*WithdrawalCellInfo `json:"result"`
}

type UnlockRequest struct {
	Cell WithdrawalCell `json:"cell"`
}
