package tokens

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/lightgodwoken/unlock-workers/entities"
)

const AmountSize = 16

var ErrShortAmount = errors.New("cell data shorter than a u128 amount")

// DecodeLE128 reads the little-endian u128 held in the first 16 bytes of data.
func DecodeLE128(data []byte) (*uint256.Int, error) {
	if len(data) < AmountSize {
		return nil, ErrShortAmount
	}
	var be [AmountSize]byte
	for i := 0; i < AmountSize; i++ {
		be[AmountSize-1-i] = data[i]
	}
	return new(uint256.Int).SetBytes(be[:]), nil
}

// Resolve returns the token and hex amount carried by cell. Both are empty
// for capacity-only cells; an unknown type hash leaves the token nil.
func Resolve(resolver Resolver, cell entities.WithdrawalCell) (*entities.Token, string, error) {
	if !cell.HasToken() {
		return nil, "", nil
	}

	var token *entities.Token
	if resolver != nil {
		token, _ = resolver.ByTypeHash(*cell.TypeHash)
	}

	amount, err := DecodeLE128(cell.Data)
	if err != nil {
		return token, "", err
	}
	return token, amount.Hex(), nil
}
