// Package notify defines core types shared across the push pipeline.
package notify

import (
	"time"
)

// Category values persisted on news rows.
const (
	CategoryPolitics = "정치"
	CategoryEconomy  = "경제"
	CategorySociety  = "사회"
	CategoryWorld    = "국제"
	CategoryCulture  = "문화"
	CategoryIT       = "IT"
	CategorySports   = "스포츠"

	// CategoryAll is the wildcard key in a subscriber's category map.
	CategoryAll = "all"
)

// NewsItem is one published article row.
type NewsItem struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	OriginalLink string     `json:"original_link"`
	Category     string     `json:"category"`
	PubDate      time.Time  `json:"pub_date"`
	NotifiedAt   *time.Time `json:"notification_sent_at,omitempty"`
}

// PushSubscription is the Web Push endpoint descriptor stored per device.
type PushSubscription struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

// Schedule is a subscriber's do-not-disturb window. Start and End are
// "HH:MM" wall-clock times in KST; a Start after End wraps past midnight.
type Schedule struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"startTime"`
	End     string `json:"endTime"`
}

// Subscriber is one device's notification preferences.
type Subscriber struct {
	DeviceID     string            `json:"device_id"`
	Subscription *PushSubscription `json:"push_subscription,omitempty"`
	Enabled      bool              `json:"enabled"`
	Categories   map[string]bool   `json:"categories"`
	Keywords     []string          `json:"keywords"`
	Schedule     Schedule          `json:"schedule"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// MatchResult reports which keywords matched which fields of an article.
type MatchResult struct {
	Matched         bool     `json:"matched"`
	MatchedKeywords []string `json:"matchedKeywords"`
	MatchedIn       []string `json:"matchedIn"`
}

// Target is one resolved delivery destination.
type Target struct {
	DeviceID     string
	Subscription PushSubscription
}

// KeywordRecipient pairs a target with the keywords that selected it.
type KeywordRecipient struct {
	Target
	MatchedKeywords []string
}

// FailureReason classifies a delivery failure.
type FailureReason string

// Delivery failure classifications.
const (
	ReasonGone       FailureReason = "gone"
	ReasonNotFound   FailureReason = "not_found"
	ReasonConfig     FailureReason = "config"
	ReasonSendFailed FailureReason = "send_failed"
)

// DeliveryOutcome is the per-target result of one send attempt.
type DeliveryOutcome struct {
	DeviceID   string        `json:"device_id"`
	Success    bool          `json:"success"`
	Reason     FailureReason `json:"reason,omitempty"`
	StatusCode int           `json:"status_code,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// PayloadAction is one action button rendered by the client.
type PayloadAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// Payload is the JSON document delivered to the service worker.
type Payload struct {
	Title              string          `json:"title"`
	Body               string          `json:"body"`
	Icon               string          `json:"icon"`
	Badge              string          `json:"badge"`
	Tag                string          `json:"tag"`
	Data               map[string]any  `json:"data"`
	RequireInteraction bool            `json:"requireInteraction"`
	Actions            []PayloadAction `json:"actions"`
}

// ItemError records a per-item processing failure inside one run.
type ItemError struct {
	NewsID int64  `json:"news_id"`
	Error  string `json:"error"`
}

// RunReport accumulates totals for one ingestion run.
type RunReport struct {
	ProcessedNews int         `json:"processedNews"`
	KeywordSent   int         `json:"keywordSent"`
	CategorySent  int         `json:"categorySent"`
	Failed        int         `json:"failed"`
	ItemErrors    []ItemError `json:"itemErrors,omitempty"`
}
