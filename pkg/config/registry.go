package config

// Persistent state keys (Registry)
const (
	KeyOLCRules      = "olc_rules"
	KeyHandicap      = "handicap"
	KeySimSource     = "sim_source"
	KeyResumeEnabled = "resume_enabled"
	KeyActiveFlight  = "active_flight"
	KeyMockLat       = "mock_start_lat"
	KeyMockLon       = "mock_start_lon"
	KeyMockAlt       = "mock_start_alt"
)
