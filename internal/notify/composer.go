package notify

import "fmt"

const (
	iconPath  = "/icons/icon-192x192.png"
	badgePath = "/icons/badge-72x72.png"

	// Body titles longer than this are cut to truncateKeep runes plus an
	// ellipsis. Korean titles are multi-byte, so counts are in runes.
	truncateAfter = 50
	truncateKeep  = 47
)

// TruncateTitle shortens an article title for the notification body.
func TruncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= truncateAfter {
		return title
	}
	return string(runes[:truncateKeep]) + "..."
}

func composeBody(title, mediaName string) string {
	body := TruncateTitle(title)
	if mediaName != "" {
		return mediaName + " - " + body
	}
	return body
}

// ComposeKeywordPayload builds the notification for a keyword match. The
// display title names the first matched keyword and the count of others;
// the tag groups notifications for the same keyword on the client.
func ComposeKeywordPayload(title string, matchedKeywords []string, link, mediaName string) Payload {
	primary := ""
	if len(matchedKeywords) > 0 {
		primary = matchedKeywords[0]
	}
	display := fmt.Sprintf("🔔 [%s] 관련 뉴스", primary)
	if extra := len(matchedKeywords) - 1; extra > 0 {
		display = fmt.Sprintf("🔔 [%s 외 %d개] 관련 뉴스", primary, extra)
	}
	return Payload{
		Title: display,
		Body:  composeBody(title, mediaName),
		Icon:  iconPath,
		Badge: badgePath,
		Tag:   "keyword-" + primary,
		Data: map[string]any{
			"url":      link,
			"keywords": matchedKeywords,
		},
		RequireInteraction: false,
		Actions: []PayloadAction{
			{Action: "view", Title: "보기"},
		},
	}
}

// ComposeCategoryPayload builds the notification for a category match.
func ComposeCategoryPayload(title, category, link, mediaName string) Payload {
	return Payload{
		Title: fmt.Sprintf("📰 [%s] 새로운 뉴스", category),
		Body:  composeBody(title, mediaName),
		Icon:  iconPath,
		Badge: badgePath,
		Tag:   "category-" + category,
		Data: map[string]any{
			"url":      link,
			"category": category,
		},
		RequireInteraction: false,
		Actions: []PayloadAction{
			{Action: "view", Title: "보기"},
		},
	}
}
