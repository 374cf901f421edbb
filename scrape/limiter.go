package scrape

import (
	"context"
	"sync"

	"courtpulse/config"

	"golang.org/x/time/rate"
)

// One token bucket per external host, shared by every pipeline that talks to
// it. Politeness is enforced here instead of with sleeps inside collectors.
var limiters = map[string]*rate.Limiter{}
var limitersMu sync.Mutex

func hostLimiter(host string) *rate.Limiter {
	limitersMu.Lock()
	defer limitersMu.Unlock()
	if l, ok := limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Limit(config.ScrapeRate), config.ScrapeBurst)
	limiters[host] = l
	return l
}

func waitStatsAPI(ctx context.Context) error {
	return hostLimiter("stats.nba.com").Wait(ctx)
}

func waitStatsPages(ctx context.Context) error {
	return hostLimiter("www.nba.com").Wait(ctx)
}
