package unlock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lightgodwoken/unlock-workers/chain"
	"github.com/lightgodwoken/unlock-workers/diagnostics"
	"github.com/lightgodwoken/unlock-workers/entities"
	"github.com/lightgodwoken/unlock-workers/history"
	"github.com/lightgodwoken/unlock-workers/notify"
	"github.com/lightgodwoken/unlock-workers/tokens"
	"github.com/lightgodwoken/unlock-workers/utils"
)

const (
	MsgInsufficientCapacity = "Unlock Transaction fail, you need to get some ckb on L1 first"
	MsgUnknownError         = "Unknown error, please try again later"
	TipWaitingConfirmation  = "Waiting for User Confirmation"
)

var (
	ErrIneligible    = errors.New("chain client cannot unlock withdrawals")
	ErrNotConfirming = errors.New("unlock is not waiting for confirmation")
	ErrBusy          = errors.New("unlock is already being submitted")
)

type Deps struct {
	Client   chain.Client
	Tokens   tokens.Resolver
	History  history.Store
	Notifier notify.Sink
	Reporter diagnostics.Reporter
	Logger   *logrus.Entry
	Now      func() time.Time
}

// Flow drives the unlock of a single withdrawal cell from the user's first
// click to a recorded outcome. At most one submission runs at a time.
type Flow struct {
	deps   Deps
	cell   entities.WithdrawalCell
	logger *logrus.Entry

	mux sync.Mutex
	ui  UIState
}

func NewFlow(deps Deps, cell entities.WithdrawalCell) (*Flow, error) {
	if deps.Client == nil || deps.History == nil || deps.Notifier == nil || deps.Reporter == nil {
		return nil, errors.New("unlock flow needs a chain client, history store, notifier and reporter")
	}
	if deps.Logger == nil {
		deps.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Flow{
		deps:   deps,
		cell:   cell,
		logger: deps.Logger.WithField("cell", cell.OutPoint.String()),
	}, nil
}

func (f *Flow) Eligible() bool {
	_, ok := chain.AsUnlocker(f.deps.Client)
	return ok
}

func (f *Flow) UIState() UIState {
	f.mux.Lock()
	defer f.mux.Unlock()
	return f.ui
}

func (f *Flow) State() State {
	return f.UIState().State()
}

func (f *Flow) View() View {
	if !f.Eligible() {
		return View{}
	}
	ui := f.UIState()
	view := View{
		Visible:        true,
		ModalVisible:   ui.ModalVisible,
		Unlocking:      ui.Unlocking,
		Destination:    f.deps.Client.GetL1Address(),
		ConfirmEnabled: ui.ModalVisible && !ui.Unlocking,
	}
	if ui.Unlocking {
		view.Tip = TipWaitingConfirmation
	}
	return view
}

// Open shows the confirmation.
func (f *Flow) Open() error {
	if !f.Eligible() {
		return ErrIneligible
	}
	f.mux.Lock()
	defer f.mux.Unlock()
	if f.ui.Unlocking {
		return ErrBusy
	}
	f.ui.ModalVisible = true
	return nil
}

// Cancel dismisses the confirmation. It is refused while submitting.
func (f *Flow) Cancel() error {
	f.mux.Lock()
	defer f.mux.Unlock()
	if f.ui.Unlocking {
		return ErrBusy
	}
	f.ui.ModalVisible = false
	return nil
}

// Confirm submits the unlock and blocks until it succeeds or fails. Chain
// failures come back as a Failure outcome, never as err; err only reports a
// confirm that was not allowed to start. The confirmation is closed on return.
func (f *Flow) Confirm(ctx context.Context) (outcome Outcome, err error) {
	unlocker, ok := chain.AsUnlocker(f.deps.Client)
	if !ok {
		return nil, ErrIneligible
	}
	if err := f.acquire(); err != nil {
		return nil, err
	}
	defer f.release()
	defer func() {
		if r := recover(); r != nil {
			panicErr := chain.FromRecovered(r)
			f.logger.WithError(panicErr).Error("Unlock side effect panicked")
			f.deps.Reporter.Capture(panicErr)
			if outcome == nil {
				outcome = Failure{Kind: chain.KindOf(panicErr), Detail: panicErr.Error(), Err: panicErr}
			}
		}
	}()

	f.submit(ctx, unlocker, &outcome)
	return outcome, nil
}

func (f *Flow) acquire() error {
	f.mux.Lock()
	defer f.mux.Unlock()
	if f.ui.Unlocking {
		return ErrBusy
	}
	if !f.ui.ModalVisible {
		return ErrNotConfirming
	}
	f.ui.Unlocking = true
	return nil
}

func (f *Flow) release() {
	f.mux.Lock()
	f.ui = UIState{}
	f.mux.Unlock()
}

func (f *Flow) submit(ctx context.Context, unlocker chain.Unlocker, outcome *Outcome) {
	token, amount, err := tokens.Resolve(f.deps.Tokens, f.cell)
	if err != nil {
		f.logger.Warnf("Could not decode withdrawal amount - with err: %v", err)
	}

	txHash, err := f.callUnlock(ctx, unlocker)
	if err != nil {
		*outcome = f.fail(err)
		return
	}

	link := utils.TxExplorerLink(unlocker.GetConfig().Layer1.ScannerURL, txHash)
	*outcome = Success{TxHash: txHash, Link: link}
	f.safeNotify(func() {
		f.deps.Notifier.Success(fmt.Sprintf("Unlock Tx(%s) is successful", txHash), link)
	})

	key := history.Key(unlocker.GetVersion().String(), unlocker.GetL1Address(), history.CategoryWithdrawal)
	entry := entities.HistoryEntry{
		Type:      entities.HistoryTypeWithdrawal,
		TxHash:    txHash,
		Capacity:  f.cell.Capacity,
		Amount:    amount,
		Token:     token,
		Status:    entities.HistoryStatusSuccess,
		CreatedAt: f.deps.Now().Unix(),
	}
	if err := f.deps.History.Append(key, entry); err != nil {
		f.logger.Errorf("Could not record unlock tx %v - with err: %v", txHash, err)
		f.deps.Reporter.Capture(fmt.Errorf("record unlock tx %v: %w", txHash, err))
		return
	}
	f.logger.WithField("txHash", txHash).Info("Withdrawal unlocked")
}

func (f *Flow) callUnlock(ctx context.Context, unlocker chain.Unlocker) (txHash string, err error) {
	defer func() {
		if r := recover(); r != nil {
			txHash, err = "", chain.FromRecovered(r)
		}
	}()
	return unlocker.Unlock(ctx, entities.UnlockRequest{Cell: f.cell})
}

func (f *Flow) fail(err error) Failure {
	kind := chain.KindOf(err)
	f.logger.WithError(err).WithField("kind", kind).Warn("Unlock failed")

	switch kind {
	case chain.KindInsufficientCapacity:
		f.safeNotify(func() { f.deps.Notifier.Error(MsgInsufficientCapacity) })
	case chain.KindGeneric, chain.KindUnrecognized:
		f.safeNotify(func() { f.deps.Notifier.Error(MsgUnknownError) })
		f.deps.Reporter.Capture(err)
	}
	return Failure{Kind: kind, Detail: err.Error(), Err: err}
}

// safeNotify runs one notification so that a failing sink cannot skip the
// side effects that follow it.
func (f *Flow) safeNotify(send func()) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.WithError(chain.FromRecovered(r)).Error("Notification panicked")
		}
	}()
	send()
}
