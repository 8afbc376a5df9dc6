//go:build !integration

package valueobjects

import "testing"

func TestParsePendingPaymentStatus(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		valid  bool
		status PendingPaymentStatus
	}{
		{name: "monitoring", raw: "monitoring", valid: true, status: PendingPaymentStatusMonitoring},
		{name: "confirmed", raw: "confirmed_unprocessed", valid: true, status: PendingPaymentStatusConfirmedUnprocessed},
		{name: "underpaid", raw: "underpaid", valid: true, status: PendingPaymentStatusUnderpaid},
		{name: "monitoring error", raw: "error_monitoring_bad_response", valid: true, status: PendingPaymentStatusErrorBadResponse},
		{name: "invalid", raw: "wat", valid: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, appErr := ParsePendingPaymentStatus(tc.raw)
			if tc.valid {
				if appErr != nil {
					t.Fatalf("expected no error, got %+v", appErr)
				}
				if status != tc.status {
					t.Fatalf("expected %s, got %s", tc.status, status)
				}
				return
			}

			if appErr == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestPendingPaymentStatusCancellable(t *testing.T) {
	if !PendingPaymentStatusMonitoring.Cancellable() || !PendingPaymentStatusUnderpaid.Cancellable() {
		t.Fatalf("expected monitoring and underpaid to be cancellable")
	}
	for _, status := range []PendingPaymentStatus{
		PendingPaymentStatusConfirmedUnprocessed,
		PendingPaymentStatusProcessed,
		PendingPaymentStatusExpired,
		PendingPaymentStatusUserCancelled,
	} {
		if status.Cancellable() {
			t.Fatalf("expected %s not to be cancellable", status)
		}
	}
}
