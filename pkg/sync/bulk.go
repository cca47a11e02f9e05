package sync

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// BulkResult summarizes a guild-wide resynchronization run.
type BulkResult struct {
	// RunID correlates audit entries emitted during the run.
	RunID string

	// Synced counts members whose roles changed.
	Synced int
	// Unchanged counts members already in sync.
	Unchanged int
	// Skipped counts members without identity data or not present in
	// the guild.
	Skipped int
	// Failed counts members whose run errored.
	Failed int
}

// SyncGuild resynchronizes every member with a verified attribute
// record. Platform mutation is rate-limited by running at most the
// configured number of members in parallel. Individual failures are
// counted, not fatal; the context cancels the whole run.
func (s *Synchronizer) SyncGuild(ctx context.Context, guildID string) (BulkResult, error) {
	memberIDs, err := s.identities.MemberIDs(ctx)
	if err != nil {
		return BulkResult{}, err
	}

	result := BulkResult{RunID: uuid.NewString()}

	var synced, unchanged, skipped, failed atomic.Int64

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)

	for _, memberID := range memberIDs {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res, err := s.SyncMember(ctx, guildID, memberID)
			switch {
			case err != nil:
				failed.Add(1)
			case res.Outcome == Applied:
				synced.Add(1)
			case res.Outcome == NoChange:
				unchanged.Add(1)
			default:
				skipped.Add(1)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return result, err
	}

	result.Synced = int(synced.Load())
	result.Unchanged = int(unchanged.Load())
	result.Skipped = int(skipped.Load())
	result.Failed = int(failed.Load())
	return result, nil
}
