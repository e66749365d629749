package workers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/lightgodwoken/unlock-workers/chain"
	"github.com/lightgodwoken/unlock-workers/entities"
	"github.com/lightgodwoken/unlock-workers/unlock"
)

type WithdrawalMonitor struct {
	WorkerAbs
	deps       unlock.Deps
	autoUnlock bool
	db         *leveldb.DB
}

type WithdrawalMonitorDBObject struct {
	UnlockedWithdrawals map[string]string // out point : unlock tx hash
	NotifiedWithdrawals map[string]bool   // out point : ready notice sent
}

// Init wires the monitor to the unlock flow dependencies. deps.Notifier also
// receives the worker's own logs.
func (b *WithdrawalMonitor) Init(
	id int, name string, freq int, network string, deps unlock.Deps, autoUnlock bool, db *leveldb.DB,
) error {
	b.WorkerAbs.Init(id, name, freq, network, deps.Logger, deps.Notifier)
	if deps.Client == nil {
		return fmt.Errorf("%v: missing chain client", name)
	}
	if db == nil {
		return fmt.Errorf("%v: missing db", name)
	}
	deps.Logger = b.Logger
	b.deps = deps
	b.autoUnlock = autoUnlock
	b.db = db
	return nil
}

// Execute scans the account's withdrawal cells once. Finalized cells are
// unlocked when auto unlock is on, otherwise the owner is told they are ready.
func (b *WithdrawalMonitor) Execute() {
	b.Logger.Info("Withdrawal monitor worker is executing...")

	client := b.deps.Client
	if _, ok := chain.AsUnlocker(client); !ok {
		b.Logger.Infof("Chain client %v does not unlock withdrawals, skipping", client.GetVersion())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), ExecuteTimeout)
	defer cancel()

	dbObject, err := b.GetWithdrawalMonitorDBObject()
	if err != nil {
		b.ExportErrorLog(fmt.Sprintf("Could not load withdrawal monitor object from db - with err: %v", err))
		return
	}

	infos, err := client.GetWithdrawals(ctx)
	if err != nil {
		b.ExportErrorLog(fmt.Sprintf("Could not retrieve withdrawals of %v - with err: %v", client.GetL1Address(), err))
		return
	}

	listed := make(map[string]bool, len(infos))
	for _, info := range infos {
		if info == nil {
			continue
		}
		outPoint := info.Cell.OutPoint.String()
		listed[outPoint] = true
		logger := b.Logger.WithField("cell", outPoint)
		if _, isExisted := dbObject.UnlockedWithdrawals[outPoint]; isExisted {
			continue
		}
		if !info.Finalized {
			logger.Debugf("Withdrawal needs %v more blocks", uint64(info.RemainingBlocks))
			continue
		}

		if !b.autoUnlock {
			if !dbObject.NotifiedWithdrawals[outPoint] {
				b.ExportInfoLog(fmt.Sprintf("Withdrawal %v is ready to unlock", outPoint))
				dbObject.NotifiedWithdrawals[outPoint] = true
			}
			continue
		}

		txHash, ok := b.unlockCell(ctx, info.Cell, logger)
		if ok {
			dbObject.UnlockedWithdrawals[outPoint] = txHash
			delete(dbObject.NotifiedWithdrawals, outPoint)
		}
	}

	dbObject.Prune(listed)
	err = b.StoreWithdrawalMonitorDBObject(dbObject)
	if err != nil {
		b.ExportErrorLog(fmt.Sprintf("Could not save withdrawal monitor object to db - with err: %v", err))
	}
}

func (b *WithdrawalMonitor) unlockCell(ctx context.Context, cell entities.WithdrawalCell, logger *logrus.Entry) (string, bool) {
	flow, err := unlock.NewFlow(b.deps, cell)
	if err != nil {
		b.ExportErrorLog(fmt.Sprintf("Could not create unlock flow - with err: %v", err))
		return "", false
	}
	if err := flow.Open(); err != nil {
		logger.Warnf("Could not open unlock - with err: %v", err)
		return "", false
	}

	outcome, err := flow.Confirm(ctx)
	if err != nil {
		logger.Warnf("Could not confirm unlock - with err: %v", err)
		return "", false
	}
	switch o := outcome.(type) {
	case unlock.Success:
		return o.TxHash, true
	case unlock.Failure:
		logger.Warnf("Unlock failed (%v), will retry next round", o.Kind)
	}
	return "", false
}

// Prune forgets out points the backend no longer lists.
func (o *WithdrawalMonitorDBObject) Prune(listed map[string]bool) {
	for outPoint := range o.UnlockedWithdrawals {
		if !listed[outPoint] {
			delete(o.UnlockedWithdrawals, outPoint)
		}
	}
	for outPoint := range o.NotifiedWithdrawals {
		if !listed[outPoint] {
			delete(o.NotifiedWithdrawals, outPoint)
		}
	}
}

func (b *WithdrawalMonitor) StoreWithdrawalMonitorDBObject(dbObject *WithdrawalMonitorDBObject) error {
	dbObjectBytes, err := json.Marshal(dbObject)
	if err != nil {
		return err
	}
	return b.db.Put([]byte(WithdrawalMonitorDBObjectName), dbObjectBytes, nil)
}

func (b *WithdrawalMonitor) GetWithdrawalMonitorDBObject() (*WithdrawalMonitorDBObject, error) {
	dbObject := &WithdrawalMonitorDBObject{}
	lastUpdateBytes, err := b.db.Get([]byte(WithdrawalMonitorDBObjectName), nil)
	if err == leveldb.ErrNotFound {
		err = nil
	} else if err == nil {
		err = json.Unmarshal(lastUpdateBytes, dbObject)
	}
	if err != nil {
		return nil, err
	}
	if dbObject.UnlockedWithdrawals == nil {
		dbObject.UnlockedWithdrawals = map[string]string{}
	}
	if dbObject.NotifiedWithdrawals == nil {
		dbObject.NotifiedWithdrawals = map[string]bool{}
	}
	return dbObject, nil
}
