package id

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// NewLoanID returns a public loan identifier, e.g. "LN-3FA29C01".
func NewLoanID() string {
	return "LN-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}

// NewRepaymentID returns a repayment identifier, e.g. "RP-3fa29c01".
func NewRepaymentID() string {
	return "RP-" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// NewTransactionID returns a transaction receipt identifier, e.g. "TX-3fa29c01".
func NewTransactionID() string {
	return "TX-" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
