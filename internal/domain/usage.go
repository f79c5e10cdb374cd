package domain

// Exchange is a usage ledger record for one completed chat call. It carries
// metadata only; message text is never persisted.
type Exchange struct {
	PK              string
	SK              string
	RequestID       string
	Model           string
	TokensUsed      int
	HistoryMessages int
	MessageLength   int
	CreatedAt       string
	TTL             int64
}
