package policies

import valueobjects "hdpay/internal/domain/value_objects"

// ObservedTransfer is one inbound chain transaction as reported by a block
// explorer, normalized to smallest units and a confirmation count.
type ObservedTransfer struct {
	TxID          string
	AmountMinor   int64
	Confirmations int
}

type PaymentSnapshot struct {
	Status              valueobjects.PendingPaymentStatus
	ExpectedAmountMinor int64
	BlockchainTxID      string
	Confirmations       int
}

type DecisionKind string

const (
	DecisionUnchanged           DecisionKind = "unchanged"
	DecisionTouch               DecisionKind = "touch"
	DecisionBind                DecisionKind = "bind"
	DecisionUpdateConfirmations DecisionKind = "update_confirmations"
	DecisionUnderpaid           DecisionKind = "underpaid"
)

type PaymentDecision struct {
	Kind                DecisionKind
	TxID                string
	ReceivedAmountMinor int64
	Confirmations       int
	NextStatus          valueobjects.PendingPaymentStatus
	NewlyConfirmed      bool
}

// EvaluatePayment decides how a monitored invoice moves given the transfers an
// explorer currently reports for its address. A bound invoice only ever tracks
// its bound transaction and its confirmation count never goes down.
func EvaluatePayment(snapshot PaymentSnapshot, transfers []ObservedTransfer, minConfirmations int) PaymentDecision {
	if snapshot.Status != valueobjects.PendingPaymentStatusMonitoring {
		return PaymentDecision{Kind: DecisionUnchanged, NextStatus: snapshot.Status}
	}
	if minConfirmations < 0 {
		minConfirmations = 0
	}

	if snapshot.BlockchainTxID != "" {
		return evaluateBound(snapshot, transfers, minConfirmations)
	}

	for _, transfer := range transfers {
		if transfer.TxID == "" || transfer.AmountMinor <= 0 {
			continue
		}

		confirmations := transfer.Confirmations
		if confirmations < 0 {
			confirmations = 0
		}

		if transfer.AmountMinor >= snapshot.ExpectedAmountMinor {
			confirmed := confirmations >= minConfirmations
			nextStatus := valueobjects.PendingPaymentStatusMonitoring
			if confirmed {
				nextStatus = valueobjects.PendingPaymentStatusConfirmedUnprocessed
			}
			return PaymentDecision{
				Kind:                DecisionBind,
				TxID:                transfer.TxID,
				ReceivedAmountMinor: transfer.AmountMinor,
				Confirmations:       confirmations,
				NextStatus:          nextStatus,
				NewlyConfirmed:      confirmed,
			}
		}

		return PaymentDecision{
			Kind:                DecisionUnderpaid,
			TxID:                transfer.TxID,
			ReceivedAmountMinor: transfer.AmountMinor,
			Confirmations:       confirmations,
			NextStatus:          valueobjects.PendingPaymentStatusUnderpaid,
		}
	}

	return PaymentDecision{Kind: DecisionTouch, NextStatus: snapshot.Status}
}

func evaluateBound(snapshot PaymentSnapshot, transfers []ObservedTransfer, minConfirmations int) PaymentDecision {
	for _, transfer := range transfers {
		if transfer.TxID != snapshot.BlockchainTxID {
			continue
		}

		confirmations := transfer.Confirmations
		if confirmations < snapshot.Confirmations {
			confirmations = snapshot.Confirmations
		}

		if confirmations >= minConfirmations {
			return PaymentDecision{
				Kind:           DecisionUpdateConfirmations,
				TxID:           snapshot.BlockchainTxID,
				Confirmations:  confirmations,
				NextStatus:     valueobjects.PendingPaymentStatusConfirmedUnprocessed,
				NewlyConfirmed: true,
			}
		}
		if confirmations > snapshot.Confirmations {
			return PaymentDecision{
				Kind:          DecisionUpdateConfirmations,
				TxID:          snapshot.BlockchainTxID,
				Confirmations: confirmations,
				NextStatus:    valueobjects.PendingPaymentStatusMonitoring,
			}
		}
		break
	}

	return PaymentDecision{Kind: DecisionTouch, NextStatus: snapshot.Status}
}
