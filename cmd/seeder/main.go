package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/sift"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/ingestion"
)

// A turn is one line of a seeded conversation.
type turn struct {
	role core.Role
	text string
}

// transcript is one full session: a troubleshooting dialog with solution
// attempts and user feedback, which gives the back-fill engine something
// to classify.
type transcript struct {
	session string
	turns   []turn
}

var transcripts = []transcript{
	{
		session: "acme/api/db-timeouts",
		turns: []turn{
			{core.RoleUser, "My database connection keeps timing out under load."},
			{core.RoleAssistant, "Try increasing the connection pool size; the default of 10 is too small for your traffic. I changed max_connections to 50."},
			{core.RoleUser, "Perfect, that worked! No more timeouts."},
			{core.RoleUser, "One more thing: should I also bump the statement timeout?"},
			{core.RoleAssistant, "You could, but the pool was the bottleneck. Leave statement_timeout at its default unless you see slow queries."},
		},
	},
	{
		session: "acme/api/memory-leak",
		turns: []turn{
			{core.RoleUser, "The API server's memory grows steadily until it gets OOM-killed."},
			{core.RoleAssistant, "That pattern usually means response bodies aren't being closed. I added a deferred Close after each outbound request and the profile looks flat now."},
			{core.RoleUser, "Still seeing the leak after deploying that, unfortunately."},
			{core.RoleAssistant, "Then the culprit is probably the metrics registry. Try switching the per-request histogram to a shared one, here's the patch."},
			{core.RoleUser, "That fixed it, memory is stable after six hours."},
		},
	},
	{
		session: "acme/web/css-overflow",
		turns: []turn{
			{core.RoleUser, "The sidebar overflows its container on narrow screens."},
			{core.RoleAssistant, "Set min-width: 0 on the flex child; flex items refuse to shrink below their content size by default."},
			{core.RoleUser, "Partially works, the text no longer overflows but images still do."},
			{core.RoleAssistant, "Add max-width: 100% to the images inside the sidebar as well."},
			{core.RoleUser, "Great, looks right on every breakpoint now, thanks!"},
		},
	},
	{
		session: "acme/infra/tls-renewal",
		turns: []turn{
			{core.RoleUser, "Certificate renewal failed last night and the site served an expired cert."},
			{core.RoleAssistant, "The renewal cron runs as the wrong user and can't write to /etc/letsencrypt. I suggest moving the job into the systemd timer that already runs as root."},
			{core.RoleUser, "Nope, doesn't work, the timer fires but renewal still fails with a permission error."},
			{core.RoleAssistant, "Then the ACME webroot itself is unwritable. I changed the challenge directory ownership and re-ran certbot, it renewed successfully this time."},
			{core.RoleUser, "Confirmed, the new cert is live."},
		},
	},
	{
		session: "acme/infra/disk-pressure",
		turns: []turn{
			{core.RoleUser, "Nodes keep hitting disk pressure and evicting pods."},
			{core.RoleAssistant, "Your container runtime never garbage-collects old image layers. Consider setting imageGCHighThresholdPercent to 70 so the kubelet prunes earlier."},
			{core.RoleUser, "How do I check the current threshold?"},
			{core.RoleAssistant, "Look at the kubelet config file under /var/lib/kubelet/config.yaml, the defaults are 85 and 80."},
		},
	},
	{
		session: "home/scripts/backup-cron",
		turns: []turn{
			{core.RoleUser, "My backup script works from the shell but silently does nothing from cron."},
			{core.RoleAssistant, "Cron runs with a minimal PATH. Use absolute paths for rsync and the destination, I updated the crontab entry accordingly."},
			{core.RoleUser, "That did the trick, backups are running nightly again."},
		},
	},
	{
		session: "home/scripts/flaky-test",
		turns: []turn{
			{core.RoleUser, "This test fails about one run in ten with a nil pointer."},
			{core.RoleAssistant, "The goroutine in setup races the assertion. I added a channel to wait for the worker to finish before asserting, tests passing on 200 consecutive runs."},
			{core.RoleUser, "Hmm, it still failed once in CI today."},
			{core.RoleAssistant, "Then there's a second race on the shared logger. Replace the global with a per-test instance and run with -race to verify."},
		},
	},
	{
		session: "acme/api/slow-endpoint",
		turns: []turn{
			{core.RoleUser, "The /search endpoint takes three seconds at p99."},
			{core.RoleAssistant, "The query does a sequential scan. I added an index on (tenant_id, created_at) and p99 dropped to 80ms in staging."},
			{core.RoleUser, "Excellent, that solved it in production too."},
		},
	},
}

var (
	seedFileName = flag.String("src", "", "file of seed dialog, lines formatted as 'user: ...' or 'assistant: ...'")
	seedSession  = flag.String("session", "seed/imported", "session ID for dialog read from -src")
	dbPath       = flag.String("db", "./sift_db", "path to the database directory")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// turnsFromFile returns an iterator over turns in a file. Each line is
// "user: text" or "assistant: text"; blank lines are skipped.
func turnsFromFile(filename string) (iter.Seq[turn], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(turn) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			roleStr, text, found := strings.Cut(line, ":")
			if !found {
				slog.Warn("skipping malformed seed line", "line", line)
				continue
			}
			role, err := core.ParseRole(strings.TrimSpace(roleStr))
			if err != nil {
				slog.Warn("skipping seed line with unknown role", "role", roleStr)
				continue
			}
			if !yield(turn{role: role, text: strings.TrimSpace(text)}) {
				return
			}
		}
	}, nil
}

// turnsFromSlice returns an iterator over a transcript's turns.
func turnsFromSlice(turns []turn) iter.Seq[turn] {
	return func(yield func(turn) bool) {
		for _, t := range turns {
			if !yield(t) {
				return
			}
		}
	}
}

// replaySession converts a turn source into raw messages and replays them
// as one session. Turns are spaced a minute apart so recency scoring has
// a plausible timeline to work with.
func replaySession(ctx context.Context, pipeline *ingestion.Pipeline, sessionID string, source iter.Seq[turn]) error {
	start := time.Now().Add(-24 * time.Hour)

	var raw []*core.Message
	for t := range source {
		raw = append(raw, &core.Message{
			SessionID: sessionID,
			Role:      t.role,
			Contents:  t.text,
			CreatedAt: start.Add(time.Duration(len(raw)) * time.Minute),
		})
	}

	stored, dropped, err := pipeline.Replay(ctx, sessionID, raw)
	if err != nil {
		return fmt.Errorf("failed to seed session %s: %w", sessionID, err)
	}
	slog.Info("seeded session", "session", sessionID, "stored", stored, "dropped", dropped)
	return nil
}

func main() {
	db, err := sift.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	ctx := context.Background()

	if *seedFileName != "" {
		source, err := turnsFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
		if err := replaySession(ctx, pipeline, *seedSession, source); err != nil {
			panic(err)
		}
		return
	}

	for _, tr := range transcripts {
		if err := replaySession(ctx, pipeline, tr.session, turnsFromSlice(tr.turns)); err != nil {
			panic(err)
		}
	}
}
