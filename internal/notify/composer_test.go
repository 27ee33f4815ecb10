package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruncateTitle_Boundary(t *testing.T) {
	t.Parallel()

	exactly50 := strings.Repeat("가", 50)
	require.Equal(t, exactly50, TruncateTitle(exactly50))

	over := strings.Repeat("가", 51)
	got := TruncateTitle(over)
	require.Equal(t, strings.Repeat("가", 47)+"...", got)
	require.Equal(t, 50, len([]rune(got)))
}

func TestComposeKeywordPayload_SingleKeyword(t *testing.T) {
	t.Parallel()

	p := ComposeKeywordPayload("삼성전자 실적 발표", []string{"삼성"}, "https://news.example/1", "")

	require.Equal(t, "🔔 [삼성] 관련 뉴스", p.Title)
	require.Equal(t, "삼성전자 실적 발표", p.Body)
	require.Equal(t, "keyword-삼성", p.Tag)
	require.Equal(t, "https://news.example/1", p.Data["url"])
	require.Equal(t, []string{"삼성"}, p.Data["keywords"])
}

func TestComposeKeywordPayload_MultipleKeywords(t *testing.T) {
	t.Parallel()

	p := ComposeKeywordPayload("제목", []string{"삼성", "반도체", "실적"}, "https://news.example/1", "")

	require.Equal(t, "🔔 [삼성 외 2개] 관련 뉴스", p.Title)
	require.Equal(t, "keyword-삼성", p.Tag)
}

func TestComposeKeywordPayload_MediaPrefix(t *testing.T) {
	t.Parallel()

	p := ComposeKeywordPayload("삼성전자 실적 발표", []string{"삼성"}, "https://news.example/1", "연합뉴스")

	require.Equal(t, "연합뉴스 - 삼성전자 실적 발표", p.Body)
}

func TestComposeKeywordPayload_PrefixAppliedAfterTruncation(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("가", 60)
	p := ComposeKeywordPayload(long, []string{"가"}, "https://news.example/1", "SBS")

	require.Equal(t, "SBS - "+strings.Repeat("가", 47)+"...", p.Body)
}

func TestComposeCategoryPayload(t *testing.T) {
	t.Parallel()

	p := ComposeCategoryPayload("금리 동결", CategoryEconomy, "https://news.example/2", "")

	require.Equal(t, "📰 [경제] 새로운 뉴스", p.Title)
	require.Equal(t, "category-경제", p.Tag)
	require.Equal(t, "금리 동결", p.Body)
	require.Equal(t, CategoryEconomy, p.Data["category"])
	require.Equal(t, "https://news.example/2", p.Data["url"])
	require.NotEmpty(t, p.Icon)
	require.NotEmpty(t, p.Badge)
	require.Len(t, p.Actions, 1)
}
