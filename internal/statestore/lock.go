package statestore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"goa.design/hierarchical-agents/internal/errs"
)

// releaseScript deletes the lock key only if its value still matches the
// token this acquirer set, avoiding releasing a lock stolen after this
// acquirer's TTL expired. Mirrors
// original_source/.../state_manager.py's _distributed_lock release script.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`

// acquireLock attempts SET NX EX on the lock key, making up to
// cfg.MaxRetries attempts in total (at least one) and waiting
// cfg.RetryDelay after each failed one. Returns a
// release function that performs the compare-and-delete, or an
// errs.KindLockFailed error if the retry budget is exhausted.
func acquireLock(ctx context.Context, client *redis.Client, lockKey string, cfg Config) (release func(context.Context), err error) {
	token := uuid.NewString()
	attempts := cfg.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		ok, setErr := client.SetNX(ctx, lockKey, token, cfg.LockTTL).Result()
		if setErr != nil {
			return nil, errs.Wrap(errs.KindBackendUnavailable, "acquire lock", setErr)
		}
		if ok {
			return func(releaseCtx context.Context) {
				client.Eval(releaseCtx, releaseScript, []string{lockKey}, token)
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, errs.Wrap(errs.KindCancellation, "acquire lock cancelled", ctx.Err())
		case <-time.After(cfg.RetryDelay):
		}
	}
	return nil, errs.Errorf(errs.KindLockFailed, "could not acquire lock %s within %d attempts", lockKey, attempts)
}
