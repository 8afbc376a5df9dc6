package dto

import "time"

type InboundTransactionsQuery struct {
	Coin    string
	Address string
	Since   time.Time
}

type InboundTransaction struct {
	TxID          string
	AmountMinor   int64
	Confirmations int
}

type SweepMonitoringPaymentsCommand struct {
	Now       time.Time
	BatchSize int
	CallDelay time.Duration
}

type SweepMonitoringPaymentsOutput struct {
	Scanned         int
	Bound           int
	Confirmed       int
	Underpaid       int
	Touched         int
	TransientErrors int
	MonitoringError int
	Skipped         int
}

type FinalizeConfirmedPaymentsCommand struct {
	BatchSize int
}

type FinalizeConfirmedPaymentsOutput struct {
	Scanned         int
	Processed       int
	AlreadyComplete int
	HandlerFailed   int
	DataErrors      int
	UnknownType     int
	MissingTx       int
	Skipped         int
}

type ExpireStalePaymentsCommand struct {
	Now       time.Time
	BatchSize int
}

type ExpireStalePaymentsOutput struct {
	Scanned            int
	ExpiredNotFound    int
	ExpiredUnconfirmed int
	Skipped            int
	Errors             int
}

// ExpireResult reports whether an expiry transition was applied and which
// status the paired transaction received.
type ExpireResult struct {
	Expired           bool
	TransactionStatus string
}
