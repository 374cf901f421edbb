package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostLimiter_SharedPerHost(t *testing.T) {
	api := hostLimiter("stats.nba.com")
	assert.Same(t, api, hostLimiter("stats.nba.com"))

	pages := hostLimiter("www.nba.com")
	assert.Same(t, pages, hostLimiter("www.nba.com"))
	assert.NotSame(t, api, pages)
}
