package memory

import (
	"context"
	"math/rand"
	"time"

	"github.com/adamavenir/tern/internal/logging"
	"github.com/adamavenir/tern/internal/types"
)

var demoLines = []string{
	"deploy finished, watching error rates",
	"anyone looked at the flaky integration test?",
	"lunch?",
	"pushed a fix for the retry loop",
	"```go\nfor i := range jobs {\n\tgo run(i)\n}\n```",
	"@all standup in 5",
	"merged, thanks for the review",
	"the staging db is back up",
}

var demoAuthors = []string{"kim", "ravi", "ola", "june"}

// NewDemo returns an adapter with a few channels and some history.
func NewDemo(username string) *Adapter {
	a := New("demo", username)
	base := time.Now().Add(-6 * time.Hour).Unix()

	channels := []types.Channel{
		{ID: "general", Name: "general", Topic: "company-wide", Following: true},
		{ID: "random", Name: "random", Following: true},
		{ID: "deploys", Name: "deploys", Group: "Engineering", Following: true},
		{ID: "incidents", Name: "incidents", Group: "Engineering", Following: true},
		{ID: "design", Name: "design", New: true},
		{ID: "old-project", Name: "old-project", Unfollowed: true},
	}
	for i, ch := range channels {
		a.AddChannel(ch)
		n := 3 + i*4
		for j := 0; j < n; j++ {
			a.Seed(ch.ID, types.Message{
				Author: demoAuthors[(i+j)%len(demoAuthors)],
				Body:   demoLines[(i*3+j)%len(demoLines)],
				TS:     base + int64(i*600+j*90),
			})
		}
	}
	return a
}

// Chatter posts a random message to a random channel every interval until
// ctx ends.
func (a *Adapter) Chatter(ctx context.Context, interval time.Duration) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			channels, _ := a.Channels(ctx)
			if len(channels) == 0 {
				continue
			}
			ch := channels[rng.Intn(len(channels))]
			author := demoAuthors[rng.Intn(len(demoAuthors))]
			if _, err := a.Push(ch.ID, author, demoLines[rng.Intn(len(demoLines))]); err != nil {
				logging.Warn("demo", "push to %s: %v", ch.ID, err)
			}
		}
	}
}
