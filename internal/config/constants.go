package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main library database
	DefaultDatabasePath = "./library.db"

	// DefaultSubmissionsDatabasePath is the default path for the
	// ratings/contacts/notifications database
	DefaultSubmissionsDatabasePath = "./submissions.db"

	// DefaultCoversCacheDir is where fetched cover images are cached
	DefaultCoversCacheDir = "./covers-cache"
)

// DefaultAdminCodePrefix selects the admin role when a registration
// verification code starts with it.
const DefaultAdminCodePrefix = "ADM"
