package constants

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Credentials
const (
	MinPasswordLength = 4
	MaxUsernameLength = 64
)

// TimeLayout is the form accepted when editing task start and end times.
const TimeLayout = "2006-01-02 15:04:05"
