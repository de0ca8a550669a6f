package domain

// ResultCache stores aggregated records by normalized query key
type ResultCache interface {
	// Get returns the live record for key, expired entries are a miss
	Get(key string) (MovieRecord, bool)
	// Put replaces any record stored under key
	Put(key string, record MovieRecord)
}
