package entities

import "github.com/ethereum/go-ethereum/common/hexutil"

const (
	HistoryTypeWithdrawal = "withdrawal"

	HistoryStatusSuccess = "success"
)

// HistoryEntry is one record of an account's layer 1 transaction log. An empty
// Amount and a nil Token mean the withdrawal carried capacity only.
type HistoryEntry struct {
	Type      string         `json:"type"`
	TxHash    string         `json:"txHash"`
	Capacity  hexutil.Uint64 `json:"capacity"`
	Amount    string         `json:"amount,omitempty"`
	Token     *Token         `json:"token,omitempty"`
	Status    string         `json:"status"`
	CreatedAt int64          `json:"createdAt"`
}
