package config

const (
	// Compress archived import payloads with snappy before writing them to
	// the payload store.
	CompressImportPayloads = true
	// Accept scraped listings whose offers carry no currency tag. When
	// false, such offers are dropped at the adapter.
	AllowUntaggedCurrency = true
)
