package valueobjects

// HealthStatus is the aggregate verdict exposed on /healthz.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "ok"
	HealthStatusDegraded HealthStatus = "degraded"
)

func NewHealthyStatus() HealthStatus {
	return HealthStatusOK
}

// HealthFromChecks is ok only when every dependency check passed.
func HealthFromChecks(checks map[string]bool) HealthStatus {
	for _, ok := range checks {
		if !ok {
			return HealthStatusDegraded
		}
	}
	return HealthStatusOK
}

func (h HealthStatus) String() string {
	return string(h)
}
