package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const (
	presenceOnlineKey = "presence:online"
	presenceConnsKey  = "presence:conns"
)

// Both scripts touch the counter hash and the online set in one step, so a connect on another
// instance cannot land between the decrement and the removal.
var (
	connectScript = redis.NewScript(`
local n = redis.call('HINCRBY', KEYS[1], ARGV[1], 1)
redis.call('SADD', KEYS[2], ARGV[1])
return n
`)

	// Returns 1 when the user's last connection closed. A counter driven below zero by a stale
	// disconnect is cleared rather than kept negative.
	disconnectScript = redis.NewScript(`
local n = redis.call('HINCRBY', KEYS[1], ARGV[1], -1)
if n > 0 then
  return 0
end
redis.call('HDEL', KEYS[1], ARGV[1])
redis.call('SREM', KEYS[2], ARGV[1])
if n == 0 then
  return 1
end
return 0
`)
)

// Presence tracks online users across API instances. A user stays online while at least one of
// their connections is open.
type Presence struct {
	client *redis.Client
}

func NewPresence(client *redis.Client) *Presence {
	return &Presence{client: client}
}

// Connect registers a connection and reports whether it is the user's first.
func (p *Presence) Connect(ctx context.Context, userID string) (bool, error) {
	n, err := connectScript.Run(ctx, p.client, []string{presenceConnsKey, presenceOnlineKey}, userID).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Disconnect drops a connection and reports whether it was the user's last.
func (p *Presence) Disconnect(ctx context.Context, userID string) (bool, error) {
	last, err := disconnectScript.Run(ctx, p.client, []string{presenceConnsKey, presenceOnlineKey}, userID).Int64()
	if err != nil {
		return false, err
	}
	return last == 1, nil
}

func (p *Presence) Online(ctx context.Context) ([]string, error) {
	return p.client.SMembers(ctx, presenceOnlineKey).Result()
}
