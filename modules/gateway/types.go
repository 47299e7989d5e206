package gateway

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the JSON body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the JSON body of GET /api/v1/stats.
type StatsResponse struct {
	Connections   int `json:"connections"`
	OnlineUsers   int `json:"onlineUsers"`
	ActiveRooms   int `json:"activeRooms"`
	PendingTyping int `json:"pendingTyping"`
}

// OnlineUsersResponse is the JSON body of GET /api/v1/online.
type OnlineUsersResponse struct {
	Users []string `json:"users"`
	Count int      `json:"count"`
}
