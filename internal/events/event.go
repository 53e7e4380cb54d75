package events

import "time"

const (
	TopicURLRegistered = "url.registered"
	TopicCheckComplete = "check.completed"
	TopicCheckFailed   = "check.failed"
)

// URLRegisteredEvent is emitted after a new URL is stored.
type URLRegisteredEvent struct {
	URLID     int64     `json:"urlId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// CheckCompletedEvent is emitted after a check record is stored.
type CheckCompletedEvent struct {
	CheckID    int64     `json:"checkId"`
	URLID      int64     `json:"urlId"`
	Name       string    `json:"name"`
	StatusCode int       `json:"statusCode"`
	Title      string    `json:"title,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CheckFailedEvent is emitted when a page could not be fetched.
type CheckFailedEvent struct {
	URLID    int64     `json:"urlId"`
	Name     string    `json:"name"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failedAt"`
}
