package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/lightgodwoken/unlock-workers/entities"
	"github.com/lightgodwoken/unlock-workers/utils"
)

// Version is the protocol generation of the layer 2 the wallet is connected to.
type Version string

const (
	VersionV0 Version = "v0"
	VersionV1 Version = "v1"
)

func (v Version) String() string {
	return string(v)
}

type Layer1Config struct {
	ScannerURL string
}

type Config struct {
	Layer1 Layer1Config
}

// Client is the set of operations every chain client generation supports.
type Client interface {
	GetVersion() Version
	GetL1Address() string
	GetConfig() Config
	GetWithdrawals(ctx context.Context) ([]*entities.WithdrawalCellInfo, error)
}

// Unlocker is implemented only by the generation whose withdrawals need an
// explicit unlock on layer 1.
type Unlocker interface {
	Client
	Unlock(ctx context.Context, req entities.UnlockRequest) (string, error)
}

// AsUnlocker reports whether c can unlock withdrawal cells.
func AsUnlocker(c Client) (Unlocker, bool) {
	if c == nil || c.GetVersion() != VersionV0 {
		return nil, false
	}
	u, ok := c.(Unlocker)
	return u, ok
}

const (
	MethodGetVersion       = "gw_getVersion"
	MethodGetWithdrawals   = "gw_getWithdrawals"
	MethodUnlockWithdrawal = "gw_unlockWithdrawal"
)

var ErrUnsupportedVersion = errors.New("unsupported chain client version")

type rpcClient struct {
	rpc       *utils.HttpClient
	version   Version
	l1Address string
	config    Config
}

func (c *rpcClient) GetVersion() Version {
	return c.version
}

func (c *rpcClient) GetL1Address() string {
	return c.l1Address
}

func (c *rpcClient) GetConfig() Config {
	return c.config
}

func (c *rpcClient) GetWithdrawals(ctx context.Context) ([]*entities.WithdrawalCellInfo, error) {
	params := []interface{}{c.l1Address}
	var withdrawalsRes entities.WithdrawalCellsRes
	err := c.rpc.RPCCall(ctx, MethodGetWithdrawals, params, &withdrawalsRes)
	if err != nil {
		return nil, err
	}
	if withdrawalsRes.RPCError != nil {
		return nil, fmt.Errorf("%v: %v", MethodGetWithdrawals, withdrawalsRes.RPCError.Message)
	}
	return withdrawalsRes.Result, nil
}

type ClientV0 struct {
	rpcClient
}

// Unlock asks the wallet backend to build, sign and send the transaction that
// spends the withdrawal cell back to the owner's layer 1 address.
func (c *ClientV0) Unlock(ctx context.Context, req entities.UnlockRequest) (string, error) {
	params := []interface{}{req}
	var unlockRes entities.UnlockRes
	err := c.rpc.RPCCall(ctx, MethodUnlockWithdrawal, params, &unlockRes)
	if err != nil {
		return "", &UnlockError{Kind: KindGeneric, Message: err.Error(), Err: err}
	}
	if unlockRes.RPCError != nil {
		return "", newRPCUnlockError(unlockRes.RPCError)
	}
	if unlockRes.Result == "" {
		return "", &UnlockError{Kind: KindGeneric, Message: "empty unlock tx hash"}
	}
	return unlockRes.Result, nil
}

type ClientV1 struct {
	rpcClient
}

// NewClient builds the client generation matching version.
func NewClient(rpc *utils.HttpClient, version Version, l1Address string, config Config) (Client, error) {
	base := rpcClient{rpc: rpc, version: version, l1Address: l1Address, config: config}
	switch version {
	case VersionV0:
		return &ClientV0{rpcClient: base}, nil
	case VersionV1:
		return &ClientV1{rpcClient: base}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, version)
}

// Dial asks the backend which generation it serves and returns the matching client.
func Dial(ctx context.Context, rpc *utils.HttpClient, l1Address string, config Config) (Client, error) {
	var versionRes entities.VersionRes
	err := rpc.RPCCall(ctx, MethodGetVersion, []interface{}{}, &versionRes)
	if err != nil {
		return nil, err
	}
	if versionRes.RPCError != nil {
		return nil, fmt.Errorf("%v: %v", MethodGetVersion, versionRes.RPCError.Message)
	}
	return NewClient(rpc, Version(versionRes.Result), l1Address, config)
}
