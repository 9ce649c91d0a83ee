package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./easyreads.db"

	// DefaultCatalogBaseURL points at the public Gutendex instance
	DefaultCatalogBaseURL = "https://gutendex.com"

	// DefaultCatalogTextURLTemplate is the Project Gutenberg plain-text mirror
	DefaultCatalogTextURLTemplate = "https://www.gutenberg.org/cache/epub/%d/pg%d.txt"

	DefaultLinesPerPage = 60
)
