package notify

import (
	"net/url"
	"strings"
	"sync"
	"time"
)

// mediaNames maps well-known article hosts to display names shown in the
// notification body.
var mediaNames = map[string]string{
	"news.sbs.co.kr":      "SBS",
	"imnews.imbc.com":     "MBC",
	"news.kbs.co.kr":      "KBS",
	"www.yna.co.kr":       "연합뉴스",
	"www.hani.co.kr":      "한겨레",
	"www.chosun.com":      "조선일보",
	"www.donga.com":       "동아일보",
	"www.khan.co.kr":      "경향신문",
	"www.mk.co.kr":        "매일경제",
	"www.hankyung.com":    "한국경제",
	"biz.chosun.com":      "조선비즈",
	"www.ytn.co.kr":       "YTN",
	"news.jtbc.co.kr":     "JTBC",
	"www.newsis.com":      "뉴시스",
	"www.nocutnews.co.kr": "노컷뉴스",
}

type mediaEntry struct {
	name    string
	fetched time.Time
}

// MediaNameCache resolves article links to media display names, caching
// per host with a TTL and an entry cap. Owned and injected by the
// caller rather than living as package state.
type MediaNameCache struct {
	mu         sync.Mutex
	entries    map[string]mediaEntry
	maxEntries int
	ttl        time.Duration
	clock      Clock
}

// NewMediaNameCache builds a cache holding at most maxEntries hosts for
// ttl each. Non-positive limits fall back to 256 entries and one hour.
func NewMediaNameCache(maxEntries int, ttl time.Duration, clock Clock) *MediaNameCache {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MediaNameCache{
		entries:    make(map[string]mediaEntry, maxEntries),
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
	}
}

// Resolve returns the media name for an article link, or "" when the
// host is unknown or the link does not parse.
func (c *MediaNameCache) Resolve(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())

	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[host]; ok && now.Sub(e.fetched) < c.ttl {
		return e.name
	}

	name := lookupMediaName(host)
	if len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.entries[host] = mediaEntry{name: name, fetched: now}
	return name
}

func lookupMediaName(host string) string {
	if name, ok := mediaNames[host]; ok {
		return name
	}
	// Fall back to matching without a leading www/news/m prefix.
	for _, prefix := range []string{"www.", "news.", "m."} {
		if trimmed, ok := strings.CutPrefix(host, prefix); ok {
			for known, name := range mediaNames {
				if strings.HasSuffix(known, trimmed) {
					return name
				}
			}
		}
	}
	return ""
}

func (c *MediaNameCache) evictOldest() {
	var oldestHost string
	var oldest time.Time
	for host, e := range c.entries {
		if oldestHost == "" || e.fetched.Before(oldest) {
			oldestHost = host
			oldest = e.fetched
		}
	}
	if oldestHost != "" {
		delete(c.entries, oldestHost)
	}
}
