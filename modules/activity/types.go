package activity

// ServiceGetStats is the request-reply service exposing room statistics.
const ServiceGetStats = "get-stats"

// GetStatsRequest asks for the current statistics.
type GetStatsRequest struct{}

// GetStatsResponse carries the statistics.
type GetStatsResponse struct {
	Stats Stats `json:"stats"`
}
