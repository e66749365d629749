package unlock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/lightgodwoken/unlock-workers/chain"
	"github.com/lightgodwoken/unlock-workers/entities"
	"github.com/lightgodwoken/unlock-workers/tokens"
)

const testAddress = "ckt1qyqrdsefa43s6m882pcj53m4gdnj4k440axqswmu83"

type fakeClient struct {
	version chain.Version
	calls   int
	unlock  func(ctx context.Context, req entities.UnlockRequest) (string, error)
}

func (c *fakeClient) GetVersion() chain.Version { return c.version }
func (c *fakeClient) GetL1Address() string      { return testAddress }
func (c *fakeClient) GetConfig() chain.Config {
	return chain.Config{Layer1: chain.Layer1Config{ScannerURL: "https://pudge.explorer.nervos.org"}}
}
func (c *fakeClient) GetWithdrawals(context.Context) ([]*entities.WithdrawalCellInfo, error) {
	return nil, nil
}
func (c *fakeClient) Unlock(ctx context.Context, req entities.UnlockRequest) (string, error) {
	c.calls++
	return c.unlock(ctx, req)
}

// readOnlyClient is a generation without Unlock.
type readOnlyClient struct {
	version chain.Version
}

func (c *readOnlyClient) GetVersion() chain.Version { return c.version }
func (c *readOnlyClient) GetL1Address() string      { return testAddress }
func (c *readOnlyClient) GetConfig() chain.Config   { return chain.Config{} }
func (c *readOnlyClient) GetWithdrawals(context.Context) ([]*entities.WithdrawalCellInfo, error) {
	return nil, nil
}

type memHistory struct {
	mu      sync.Mutex
	logs    map[string][]entities.HistoryEntry
	failErr error
}

func newMemHistory() *memHistory {
	return &memHistory{logs: map[string][]entities.HistoryEntry{}}
}

func (h *memHistory) Append(key string, entry entities.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failErr != nil {
		return h.failErr
	}
	h.logs[key] = append(h.logs[key], entry)
	return nil
}

func (h *memHistory) List(key string) ([]entities.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]entities.HistoryEntry{}, h.logs[key]...), nil
}

func (h *memHistory) total() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, entries := range h.logs {
		n += len(entries)
	}
	return n
}

type notification struct {
	level string
	msg   string
	link  string
}

type recordingSink struct {
	notifications []notification
}

func (s *recordingSink) Success(msg string, link string) {
	s.notifications = append(s.notifications, notification{level: "success", msg: msg, link: link})
}

func (s *recordingSink) Error(msg string) {
	s.notifications = append(s.notifications, notification{level: "error", msg: msg})
}

func (s *recordingSink) Info(msg string) {
	s.notifications = append(s.notifications, notification{level: "info", msg: msg})
}

type recordingReporter struct {
	captured []error
}

func (r *recordingReporter) Capture(err error) {
	r.captured = append(r.captured, err)
}

type fixture struct {
	client   *fakeClient
	history  *memHistory
	sink     *recordingSink
	reporter *recordingReporter
	hook     *test.Hook
	deps     Deps
}

var (
	usdcTypeHash = common.HexToHash("0x9e3b3557f11b2b3532ce352bfe8017e9fd11d154c4c7f9b7aaaa1e621b539a08")
	fixedNow     = time.Unix(1700000000, 0)
)

func newFixture(t *testing.T, unlock func(context.Context, entities.UnlockRequest) (string, error)) *fixture {
	t.Helper()
	registry, err := tokens.NewRegistry([]entities.Token{{Symbol: "USDC", Name: "USD Coin", Decimals: 6, TypeHash: usdcTypeHash}})
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	f := &fixture{
		client:   &fakeClient{version: chain.VersionV0, unlock: unlock},
		history:  newMemHistory(),
		sink:     &recordingSink{},
		reporter: &recordingReporter{},
		hook:     hook,
	}
	f.deps = Deps{
		Client:   f.client,
		Tokens:   registry,
		History:  f.history,
		Notifier: f.sink,
		Reporter: f.reporter,
		Logger:   logrus.NewEntry(logger),
		Now:      func() time.Time { return fixedNow },
	}
	return f
}

func succeedWith(txHash string) func(context.Context, entities.UnlockRequest) (string, error) {
	return func(context.Context, entities.UnlockRequest) (string, error) {
		return txHash, nil
	}
}

func failWith(err error) func(context.Context, entities.UnlockRequest) (string, error) {
	return func(context.Context, entities.UnlockRequest) (string, error) {
		return "", err
	}
}

var errRPCDown = errors.New("connection refused")
