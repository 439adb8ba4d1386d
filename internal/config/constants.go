package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./openshelf.db"

	// DefaultPreviewPageLimit is the number of pages readable without an
	// active subscription or loan.
	DefaultPreviewPageLimit = 3

	// DefaultFallbackPageCount is the page count reported for books whose
	// document is missing or unparsable.
	DefaultFallbackPageCount = 50
)
