package tokens

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"

	"github.com/lightgodwoken/unlock-workers/entities"
)

// Resolver maps a cell type hash to a known token.
type Resolver interface {
	ByTypeHash(typeHash common.Hash) (*entities.Token, bool)
}

type Registry struct {
	tokens map[common.Hash]*entities.Token
}

type tokenList struct {
	Tokens []entities.Token `toml:"token"`
}

func NewRegistry(tokens []entities.Token) (*Registry, error) {
	r := &Registry{tokens: make(map[common.Hash]*entities.Token, len(tokens))}
	for i := range tokens {
		token := tokens[i]
		if token.Symbol == "" {
			return nil, fmt.Errorf("token %v: missing symbol", token.TypeHash.Hex())
		}
		if _, isExisted := r.tokens[token.TypeHash]; isExisted {
			return nil, fmt.Errorf("token %v: duplicated type hash %v", token.Symbol, token.TypeHash.Hex())
		}
		r.tokens[token.TypeHash] = &token
	}
	return r, nil
}

// LoadRegistry reads a TOML token list made of [[token]] tables.
func LoadRegistry(path string) (*Registry, error) {
	var list tokenList
	meta, err := toml.DecodeFile(path, &list)
	if err != nil {
		return nil, fmt.Errorf("could not load token list %v: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("token list %v: unknown keys %v", path, undecoded)
	}
	return NewRegistry(list.Tokens)
}

func (r *Registry) ByTypeHash(typeHash common.Hash) (*entities.Token, bool) {
	token, ok := r.tokens[typeHash]
	if !ok {
		return nil, false
	}
	copied := *token
	return &copied, true
}

func (r *Registry) Len() int {
	return len(r.tokens)
}
