package redis

import "fmt"

const (
	// KeyPrefixEnriched is the prefix for enrichment records
	KeyPrefixEnriched = "mcphub:enrich:"
	// KeyAllEnriched is the set of every stored enrichment key
	KeyAllEnriched = "mcphub:enrich-keys"
)

// EnrichedKey returns the Redis key for an enrichment cache key
func EnrichedKey(key string) string {
	return KeyPrefixEnriched + key
}

// AllEnrichedKey returns the key for the set of stored enrichment keys
func AllEnrichedKey() string {
	return KeyAllEnriched
}

// ExtractEnrichmentKey strips the prefix from a Redis key
func ExtractEnrichmentKey(key string) (string, error) {
	if len(key) <= len(KeyPrefixEnriched) || key[:len(KeyPrefixEnriched)] != KeyPrefixEnriched {
		return "", fmt.Errorf("invalid enrichment key: %s", key)
	}
	return key[len(KeyPrefixEnriched):], nil
}
