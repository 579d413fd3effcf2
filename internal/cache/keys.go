package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const keyPrefix = "crm"

// AnalyticsKey identifies a cached dashboard for one company and filter set.
func AnalyticsKey(companyID, filterToken, dateRange string) string {
	sum := sha256.Sum256([]byte(filterToken + "|" + dateRange))
	return fmt.Sprintf("%s:analytics:%s:%s", keyPrefix, companyID, hex.EncodeToString(sum[:8]))
}

// AnalyticsPattern matches every cached dashboard of a company.
func AnalyticsPattern(companyID string) string {
	return fmt.Sprintf("%s:analytics:%s:*", keyPrefix, companyID)
}

// PublicQuizKey caches the published form served to anonymous visitors.
func PublicQuizKey(slug string) string {
	return fmt.Sprintf("%s:quiz:slug:%s", keyPrefix, slug)
}
