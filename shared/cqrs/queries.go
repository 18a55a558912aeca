package cqrs

// ---------- Authorization queries ----------

// GetAuthorizationQuery fetches the current snapshot of a session, subject to ownership check.
type GetAuthorizationQuery struct {
	SessionID  string
	MerchantID string
}

// GetReceiptQuery fetches the cached receipt of a successful transfer.
type GetReceiptQuery struct {
	TransactionID string
	MerchantID    string
}

// ---------- History queries ----------

// GetHistoryQuery fetches the current snapshot of a history session.
type GetHistoryQuery struct {
	SessionID  string
	MerchantID string
}

// FetchHistoryPageQuery is the backend call for one history page. An empty
// Status means no server-side status filter.
type FetchHistoryPageQuery struct {
	Page   int
	Limit  int
	Status string
}
