package domain

// Window bounds for rolling-day queries
const (
	MinWindowDays = 1
	MaxWindowDays = 30
)

// Multiplier bounds, expressed in hundredths to avoid float rounding
const (
	MultiplierScale         = 100
	MinMultiplierHundredths = 100
	MaxMultiplierHundredths = 500
)

// DefaultPageSize is the leaderboard page size used when callers pass none
const DefaultPageSize = 10

// DayLayout is the layout used to render daily counter days
const DayLayout = "2006-01-02"
