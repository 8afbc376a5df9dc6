package dto

import "time"

// InitializePersistenceCommand bounds how long startup waits for the database
// before migrations run.
type InitializePersistenceCommand struct {
	ReadinessTimeout       time.Duration
	ReadinessRetryInterval time.Duration
}

type InitializePersistenceOutput struct {
	ReadinessAttempts int
	SeededCoins       []string
}
