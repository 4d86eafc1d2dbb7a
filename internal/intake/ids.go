package intake

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewRunID returns RUN_<yyyymmddHHMMSS>_<6 upper-case hex>
func NewRunID(now time.Time) string {
	return "RUN_" + now.Format("20060102150405") + "_" + randomHex(6)
}

// NewCustomerID returns CUST_<8 upper-case hex>
func NewCustomerID() string {
	return "CUST_" + randomHex(8)
}

// NewSessionID is used when the caller did not supply one
func NewSessionID(now time.Time) string {
	return "SES_" + now.Format("20060102150405") + "_" + randomHex(4)
}

func randomHex(n int) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(hex[:n])
}
