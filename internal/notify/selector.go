package notify

import "time"

// SelectKeywordRecipients returns the subscribers whose keyword list
// matches the item's title or description. Disabled subscribers, devices
// without a push endpoint, devices with no keywords, and devices inside
// their do-not-disturb window are skipped before any matching runs.
func SelectKeywordRecipients(item NewsItem, subs []Subscriber, now time.Time) []KeywordRecipient {
	var out []KeywordRecipient
	for _, sub := range subs {
		if !sub.Enabled || sub.Subscription == nil || len(sub.Keywords) == 0 {
			continue
		}
		if !sub.Schedule.Allowed(now) {
			continue
		}
		match := Match(Content{Title: item.Title, Description: item.Description}, sub.Keywords)
		if !match.Matched {
			continue
		}
		out = append(out, KeywordRecipient{
			Target:          Target{DeviceID: sub.DeviceID, Subscription: *sub.Subscription},
			MatchedKeywords: match.MatchedKeywords,
		})
	}
	return out
}

// SelectCategoryRecipients returns the subscribers interested in the
// item's category, either via the exact category key or the "all"
// wildcard. Computed independently of the keyword set: a device may
// legitimately appear in both and receive both notification types.
func SelectCategoryRecipients(item NewsItem, subs []Subscriber, now time.Time) []Target {
	var out []Target
	for _, sub := range subs {
		if !sub.Enabled || sub.Subscription == nil {
			continue
		}
		if !sub.Schedule.Allowed(now) {
			continue
		}
		if !sub.Categories[CategoryAll] && !sub.Categories[item.Category] {
			continue
		}
		out = append(out, Target{DeviceID: sub.DeviceID, Subscription: *sub.Subscription})
	}
	return out
}
