package analysis

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// KeyPrefix namespaces analysis entries in the cache
const KeyPrefix = "analysis"

const keyHashLength = 12

// keyFields is the subset of Params that identifies a cached result.
// Fields are declared in alphabetical order so the encoding is stable.
// Expense rates and the mortgage term are not part of the key: two calls
// differing only in those share one cache entry until it expires.
type keyFields struct {
	DownPaymentPercent string `json:"down_payment_percent"`
	MonthlyRent        string `json:"monthly_rent"`
	MortgageRate       string `json:"mortgage_rate"`
	OccupancyRate      string `json:"occupancy_rate"`
	Strategy           string `json:"strategy"`
}

// CacheKey derives "analysis:{propertyID}:{hash}" where hash is the first
// 12 hex characters of the MD5 of the tracked parameters.
func CacheKey(propertyID int64, p Params) string {
	encoded, err := json.Marshal(keyFields{
		DownPaymentPercent: p.DownPaymentPercent.String(),
		MonthlyRent:        p.MonthlyRent.String(),
		MortgageRate:       p.MortgageRate.String(),
		OccupancyRate:      p.OccupancyRate.String(),
		Strategy:           p.Strategy,
	})
	if err != nil {
		// A struct of strings always encodes
		panic(fmt.Sprintf("encode cache key fields: %v", err))
	}

	sum := md5.Sum(encoded)
	return fmt.Sprintf("%s:%d:%s", KeyPrefix, propertyID, hex.EncodeToString(sum[:])[:keyHashLength])
}

// InvalidationPattern matches every cached analysis of one property
func InvalidationPattern(propertyID int64) string {
	return fmt.Sprintf("%s:%d:*", KeyPrefix, propertyID)
}
