package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testSub(deviceID string) Subscriber {
	return Subscriber{
		DeviceID:     deviceID,
		Enabled:      true,
		Subscription: &PushSubscription{Endpoint: "https://push.example/" + deviceID, P256dh: "p", Auth: "a"},
	}
}

func TestSelectKeywordRecipients(t *testing.T) {
	t.Parallel()

	item := NewsItem{Title: "삼성전자 실적 발표", Description: "영업이익 증가", Category: CategoryEconomy}
	now := kstTime(12, 0)

	matching := testSub("dev-1")
	matching.Keywords = []string{"삼성", "애플"}

	disabled := testSub("dev-2")
	disabled.Enabled = false
	disabled.Keywords = []string{"삼성"}

	noEndpoint := testSub("dev-3")
	noEndpoint.Subscription = nil
	noEndpoint.Keywords = []string{"삼성"}

	noKeywords := testSub("dev-4")

	sleeping := testSub("dev-5")
	sleeping.Keywords = []string{"삼성"}
	sleeping.Schedule = Schedule{Enabled: true, Start: "22:00", End: "06:00"}

	noMatch := testSub("dev-6")
	noMatch.Keywords = []string{"현대차"}

	got := SelectKeywordRecipients(item, []Subscriber{matching, disabled, noEndpoint, noKeywords, sleeping, noMatch}, now)

	require.Len(t, got, 1)
	require.Equal(t, "dev-1", got[0].DeviceID)
	require.Equal(t, []string{"삼성"}, got[0].MatchedKeywords)
}

func TestSelectCategoryRecipients(t *testing.T) {
	t.Parallel()

	item := NewsItem{Title: "금리 동결", Category: CategoryEconomy}
	now := kstTime(12, 0)

	exact := testSub("dev-1")
	exact.Categories = map[string]bool{CategoryEconomy: true}

	wildcard := testSub("dev-2")
	wildcard.Categories = map[string]bool{CategoryAll: true}

	optedOut := testSub("dev-3")
	optedOut.Categories = map[string]bool{CategoryEconomy: false, CategoryPolitics: true}

	disabled := testSub("dev-4")
	disabled.Enabled = false
	disabled.Categories = map[string]bool{CategoryAll: true}

	nilMap := testSub("dev-5")

	got := SelectCategoryRecipients(item, []Subscriber{exact, wildcard, optedOut, disabled, nilMap}, now)

	require.Len(t, got, 2)
	require.Equal(t, "dev-1", got[0].DeviceID)
	require.Equal(t, "dev-2", got[1].DeviceID)
}

func TestSelect_SubscriberMayAppearInBothSets(t *testing.T) {
	t.Parallel()

	item := NewsItem{Title: "삼성전자 실적", Category: CategoryEconomy}
	now := kstTime(12, 0)

	both := testSub("dev-1")
	both.Keywords = []string{"삼성"}
	both.Categories = map[string]bool{CategoryEconomy: true}

	kw := SelectKeywordRecipients(item, []Subscriber{both}, now)
	cat := SelectCategoryRecipients(item, []Subscriber{both}, now)

	require.Len(t, kw, 1)
	require.Len(t, cat, 1)
}

func TestSelect_ScheduleGateAppliesNow(t *testing.T) {
	t.Parallel()

	item := NewsItem{Title: "뉴스", Category: CategorySociety}

	sub := testSub("dev-1")
	sub.Categories = map[string]bool{CategoryAll: true}
	sub.Schedule = Schedule{Enabled: true, Start: "09:00", End: "22:00"}

	require.Len(t, SelectCategoryRecipients(item, []Subscriber{sub}, kstTime(12, 0)), 1)
	require.Empty(t, SelectCategoryRecipients(item, []Subscriber{sub}, kstTime(3, 0)))
}

var sinkRecipients []KeywordRecipient

func BenchmarkSelectKeywordRecipients(b *testing.B) {
	item := NewsItem{Title: "삼성전자 실적 발표", Description: "영업이익 증가"}
	subs := make([]Subscriber, 0, 1000)
	for i := 0; i < 1000; i++ {
		s := testSub("dev")
		s.Keywords = []string{"삼성", "금리", "부동산"}
		subs = append(subs, s)
	}
	now := time.Now()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sinkRecipients = SelectKeywordRecipients(item, subs, now)
	}
}
