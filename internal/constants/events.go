package constants

// Wire event kinds exchanged with the node daemon. The panel only ever sends
// EventRequestStats and listens for EventStats and EventStatus.
const (
	// EventRequestStats asks the daemon to emit a stats event. No payload.
	EventRequestStats = "send stats"
	// EventStats carries a JSON-encoded resource stats payload.
	EventStats = "stats"
	// EventStatus carries the server's lifecycle status as a plain string tag.
	EventStatus = "status"
)
