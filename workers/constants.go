package workers

import "time"

const (
	WithdrawalMonitorID   = 1
	WithdrawalMonitorName = "Withdrawal Monitor"

	WithdrawalMonitorDBFileDir    = "withdrawalmonitor"
	WithdrawalMonitorDBObjectName = "WithdrawalMonitor-LastUpdate"

	ExecuteTimeout = 5 * time.Minute
)
