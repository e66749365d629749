package unlock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightgodwoken/unlock-workers/chain"
	"github.com/lightgodwoken/unlock-workers/entities"
)

var historyKey = "v0/" + testAddress + "/withdrawal"

func openAndConfirm(t *testing.T, flow *Flow) Outcome {
	t.Helper()
	require.NoError(t, flow.Open())
	require.Equal(t, StateConfirming, flow.State())
	outcome, err := flow.Confirm(context.Background())
	require.NoError(t, err)
	require.Equal(t, UIState{}, flow.UIState())
	return outcome
}

func TestCapacityOnlyUnlock(t *testing.T) {
	fx := newFixture(t, succeedWith("0xabc"))
	flow, err := NewFlow(fx.deps, entities.WithdrawalCell{Capacity: 100})
	require.NoError(t, err)

	outcome := openAndConfirm(t, flow)
	require.Equal(t, Success{TxHash: "0xabc", Link: "https://pudge.explorer.nervos.org/transaction/0xabc"}, outcome)

	entries, err := fx.history.List(historyKey)
	require.NoError(t, err)
	require.Equal(t, []entities.HistoryEntry{{
		Type:      "withdrawal",
		TxHash:    "0xabc",
		Capacity:  100,
		Status:    "success",
		CreatedAt: fixedNow.Unix(),
	}}, entries)
	require.Nil(t, entries[0].Token)
	require.Empty(t, entries[0].Amount)

	require.Equal(t, []notification{{
		level: "success",
		msg:   "Unlock Tx(0xabc) is successful",
		link:  "https://pudge.explorer.nervos.org/transaction/0xabc",
	}}, fx.sink.notifications)
	require.Empty(t, fx.reporter.captured)
}

func TestTokenUnlockRecordsAmount(t *testing.T) {
	fx := newFixture(t, succeedWith("0xdef"))
	data := []byte{0x40, 0x42, 0x0f, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	flow, err := NewFlow(fx.deps, entities.WithdrawalCell{Capacity: 40000000000, TypeHash: &usdcTypeHash, Data: data})
	require.NoError(t, err)

	openAndConfirm(t, flow)

	entries, err := fx.history.List(historyKey)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "0xf4240", entries[0].Amount)
	require.Equal(t, "USDC", entries[0].Token.Symbol)
}

func TestUnknownTokenIsNotFatal(t *testing.T) {
	fx := newFixture(t, succeedWith("0x123"))
	unknown := usdcTypeHash
	unknown[0] ^= 0xff
	data := make([]byte, 16)
	data[0] = 7
	flow, err := NewFlow(fx.deps, entities.WithdrawalCell{Capacity: 100, TypeHash: &unknown, Data: data})
	require.NoError(t, err)

	outcome := openAndConfirm(t, flow)
	require.IsType(t, Success{}, outcome)

	entries, err := fx.history.List(historyKey)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Nil(t, entries[0].Token)
	require.Equal(t, "0x7", entries[0].Amount)
}

func TestInsufficientCapacity(t *testing.T) {
	fx := newFixture(t, failWith(chain.NewInsufficientCapacityError("not enough capacity")))
	flow, err := NewFlow(fx.deps, entities.WithdrawalCell{Capacity: 100})
	require.NoError(t, err)

	outcome := openAndConfirm(t, flow)
	failure, ok := outcome.(Failure)
	require.True(t, ok)
	require.Equal(t, chain.KindInsufficientCapacity, failure.Kind)

	require.Equal(t, []notification{{level: "error", msg: MsgInsufficientCapacity}}, fx.sink.notifications)
	require.Empty(t, fx.reporter.captured)
	require.Equal(t, 0, fx.history.total())
}

func TestGenericFailure(t *testing.T) {
	fx := newFixture(t, failWith(errRPCDown))
	flow, err := NewFlow(fx.deps, entities.WithdrawalCell{Capacity: 100})
	require.NoError(t, err)

	outcome := openAndConfirm(t, flow)
	failure, ok := outcome.(Failure)
	require.True(t, ok)
	require.Equal(t, chain.KindGeneric, failure.Kind)
	require.ErrorIs(t, failure.Err, errRPCDown)

	require.Equal(t, []notification{{level: "error", msg: MsgUnknownError}}, fx.sink.notifications)
	require.Len(t, fx.reporter.captured, 1)
	require.ErrorIs(t, fx.reporter.captured[0], errRPCDown)
	require.Equal(t, 0, fx.history.total())
}

func TestPanickingClientIsRecovered(t *testing.T) {
	fx := newFixture(t, func(context.Context, entities.UnlockRequest) (string, error) {
		panic("wallet closed the signing window")
	})
	flow, err := NewFlow(fx.deps, entities.WithdrawalCell{Capacity: 100})
	require.NoError(t, err)

	outcome := openAndConfirm(t, flow)
	failure, ok := outcome.(Failure)
	require.True(t, ok)
	require.Equal(t, chain.KindUnrecognized, failure.Kind)

	require.Equal(t, []notification{{level: "error", msg: MsgUnknownError}}, fx.sink.notifications)
	require.Len(t, fx.reporter.captured, 1)
}

func TestHistoryFailureKeepsSuccess(t *testing.T) {
	fx := newFixture(t, succeedWith("0xabc"))
	fx.history.failErr = errors.New("disk full")
	flow, err := NewFlow(fx.deps, entities.WithdrawalCell{Capacity: 100})
	require.NoError(t, err)

	outcome := openAndConfirm(t, flow)
	require.IsType(t, Success{}, outcome)
	require.Len(t, fx.sink.notifications, 1)
	require.Len(t, fx.reporter.captured, 1)
}

func TestPanickingNotifierStillResets(t *testing.T) {
	fx := newFixture(t, succeedWith("0xabc"))
	fx.deps.Notifier = panicSink{}
	flow, err := NewFlow(fx.deps, entities.WithdrawalCell{Capacity: 100})
	require.NoError(t, err)

	outcome := openAndConfirm(t, flow)
	require.Equal(t, "0xabc", outcome.(Success).TxHash)
	require.Empty(t, fx.reporter.captured)

	entries, err := fx.history.List(historyKey)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "0xabc", entries[0].TxHash)
}

func TestPanickingNotifierKeepsFailureKind(t *testing.T) {
	fx := newFixture(t, failWith(errRPCDown))
	fx.deps.Notifier = panicSink{}
	flow, err := NewFlow(fx.deps, entities.WithdrawalCell{Capacity: 100})
	require.NoError(t, err)

	outcome := openAndConfirm(t, flow)
	failure, ok := outcome.(Failure)
	require.True(t, ok)
	require.Equal(t, chain.KindGeneric, failure.Kind)
	require.ErrorIs(t, failure.Err, errRPCDown)

	require.Len(t, fx.reporter.captured, 1)
	require.ErrorIs(t, fx.reporter.captured[0], errRPCDown)
	require.Equal(t, 0, fx.history.total())
}

type panicSink struct{}

func (panicSink) Success(string, string) { panic("toast container unmounted") }
func (panicSink) Error(string)           { panic("toast container unmounted") }
func (panicSink) Info(string)            { panic("toast container unmounted") }

func TestIneligibleVersion(t *testing.T) {
	type TestCase struct {
		client chain.Client
	}

	cases := []*TestCase{
		{client: &fakeClient{version: chain.VersionV1, unlock: succeedWith("0xabc")}},
		{client: &readOnlyClient{version: chain.VersionV1}},
		{client: &readOnlyClient{version: chain.VersionV0}},
	}

	for _, testcase := range cases {
		fx := newFixture(t, succeedWith("0xabc"))
		fx.deps.Client = testcase.client
		flow, err := NewFlow(fx.deps, entities.WithdrawalCell{Capacity: 100})
		require.NoError(t, err)

		require.False(t, flow.Eligible())
		require.Equal(t, View{}, flow.View())
		require.ErrorIs(t, flow.Open(), ErrIneligible)
		_, err = flow.Confirm(context.Background())
		require.ErrorIs(t, err, ErrIneligible)
		require.Equal(t, StateIdle, flow.State())

		if client, ok := testcase.client.(*fakeClient); ok {
			require.Equal(t, 0, client.calls)
		}
	}
}

func TestCancelBeforeConfirm(t *testing.T) {
	fx := newFixture(t, succeedWith("0xabc"))
	flow, err := NewFlow(fx.deps, entities.WithdrawalCell{Capacity: 100})
	require.NoError(t, err)

	require.NoError(t, flow.Open())
	view := flow.View()
	require.True(t, view.ModalVisible)
	require.True(t, view.ConfirmEnabled)
	require.Equal(t, testAddress, view.Destination)

	require.NoError(t, flow.Cancel())
	require.Equal(t, StateIdle, flow.State())

	_, err = flow.Confirm(context.Background())
	require.ErrorIs(t, err, ErrNotConfirming)
	require.Equal(t, 0, fx.client.calls)
	require.Empty(t, fx.sink.notifications)
}

func TestStateWhileSubmitting(t *testing.T) {
	var flow *Flow
	fx := newFixture(t, func(ctx context.Context, req entities.UnlockRequest) (string, error) {
		ui := flow.UIState()
		require.True(t, ui.Unlocking)
		require.True(t, ui.ModalVisible)
		require.Equal(t, StateSubmitting, flow.State())

		view := flow.View()
		require.False(t, view.ConfirmEnabled)
		require.Equal(t, TipWaitingConfirmation, view.Tip)

		require.ErrorIs(t, flow.Cancel(), ErrBusy)
		require.ErrorIs(t, flow.Open(), ErrBusy)
		_, err := flow.Confirm(ctx)
		require.ErrorIs(t, err, ErrBusy)
		return "0xabc", nil
	})
	var err error
	flow, err = NewFlow(fx.deps, entities.WithdrawalCell{Capacity: 100})
	require.NoError(t, err)

	openAndConfirm(t, flow)
	require.Equal(t, 1, fx.client.calls)
}

func TestRetryAfterFailure(t *testing.T) {
	attempts := 0
	fx := newFixture(t, func(context.Context, entities.UnlockRequest) (string, error) {
		attempts++
		if attempts == 1 {
			return "", errRPCDown
		}
		return "0xabc", nil
	})
	flow, err := NewFlow(fx.deps, entities.WithdrawalCell{Capacity: 100})
	require.NoError(t, err)

	require.IsType(t, Failure{}, openAndConfirm(t, flow))
	require.IsType(t, Success{}, openAndConfirm(t, flow))

	entries, err := fx.history.List(historyKey)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Len(t, fx.reporter.captured, 1)
	require.Equal(t, []string{"error", "success"}, []string{fx.sink.notifications[0].level, fx.sink.notifications[1].level})
}

func TestNewFlowRequiresDeps(t *testing.T) {
	_, err := NewFlow(Deps{}, entities.WithdrawalCell{})
	require.Error(t, err)
}

func TestUIStateInvariant(t *testing.T) {
	require.Equal(t, StateIdle, UIState{}.State())
	require.Equal(t, StateConfirming, UIState{ModalVisible: true}.State())
	require.Equal(t, StateSubmitting, UIState{ModalVisible: true, Unlocking: true}.State())
}
