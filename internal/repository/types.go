package repository

// Setting is one key/value row of the dashboard's local store. The
// notification ledger persists under a single well-known key here.
type Setting struct {
	Key       string
	Value     string
	Category  string
	UpdatedAt int64
}

// OrderStatusLog records one observed or applied status change for audit.
// Backward marks an observation that moved against the progress sequence,
// which the dashboard treats as an upstream defect worth keeping visible.
type OrderStatusLog struct {
	ID         int64
	OrderID    string
	FromStatus string
	ToStatus   string
	Backward   bool
	ChangedAt  int64
}
