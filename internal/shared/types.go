package shared

// Task types
const (
	TypeGeneratePages = "page:generate"
	TypePublishPages  = "publish:pages"
	TypeAutoPublish   = "publish:auto_pending"
)

// Queues
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// GeneratePagesPayload asks the worker to generate pages for one update.
type GeneratePagesPayload struct {
	UpdateID string `json:"update_id"`
}
