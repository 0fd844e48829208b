package main

// Exit codes
const (
	ExitSuccess      = 0 // Success
	ExitError        = 1 // General error (runtime failure, unknown key)
	ExitConfigError  = 2 // Configuration error (unreadable config, invalid values)
	ExitInputError   = 3 // Input error (not an id, URL or SSRN PDF)
	ExitNetworkError = 4 // SSRN could not be reached after all retries
)
