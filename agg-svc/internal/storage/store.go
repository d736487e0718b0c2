package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"flash-delivery/events"

	"github.com/redis/go-redis/v9"
)

// recordCreatedScript claims the marker in KEYS[1] and bumps the totals,
// statuses and menus keys in one step, so a failed write leaves no marker
// behind and the redelivered event is counted later.
//
// ARGV: ttl ms, orders field, revenue field, revenue, status, menu ids...
var recordCreatedScript = redis.NewScript(`
local ttl = tonumber(ARGV[1])
local claimed
if ttl > 0 then
	claimed = redis.call('SET', KEYS[1], 1, 'NX', 'PX', ttl)
else
	claimed = redis.call('SET', KEYS[1], 1, 'NX')
end
if not claimed then
	return 0
end
redis.call('HINCRBY', KEYS[2], ARGV[2], 1)
redis.call('HINCRBY', KEYS[2], ARGV[3], ARGV[4])
if ARGV[5] ~= '' then
	redis.call('HINCRBY', KEYS[3], ARGV[5], 1)
end
for i = 6, #ARGV do
	redis.call('ZINCRBY', KEYS[4], 1, ARGV[i])
end
if ttl > 0 then
	for i = 2, #KEYS do
		redis.call('PEXPIRE', KEYS[i], ttl)
	end
end
return 1
`)

// recordStatusScript is recordCreatedScript for a single status counter.
//
// ARGV: ttl ms, status.
var recordStatusScript = redis.NewScript(`
local ttl = tonumber(ARGV[1])
local claimed
if ttl > 0 then
	claimed = redis.call('SET', KEYS[1], 1, 'NX', 'PX', ttl)
else
	claimed = redis.call('SET', KEYS[1], 1, 'NX')
end
if not claimed then
	return 0
end
redis.call('HINCRBY', KEYS[2], ARGV[2], 1)
if ttl > 0 then
	redis.call('PEXPIRE', KEYS[2], ttl)
end
return 1
`)

// Store keeps the daily order aggregates in Redis. Every event leaves a
// marker key so that a redelivered message is not counted twice. The marker
// and the counters are written by one script, so either both land or neither.
type Store struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{
		Client: client,
		TTL:    ttl,
	}
}

func (s *Store) RecordOrderCreated(ctx context.Context, day string, event events.OrderEvent) (bool, error) {
	keys := []string{
		CreatedMarkerKey(event),
		events.DailyTotalsKey(day),
		events.DailyStatusKey(day),
		events.DailyMenusKey(day),
	}
	args := []interface{}{s.ttlMillis(), events.FieldOrders, events.FieldRevenue, event.TotalPrice, event.Status}
	for _, menuID := range event.MenuIDs {
		args = append(args, strconv.Itoa(menuID))
	}
	return s.run(ctx, recordCreatedScript, keys, args)
}

func (s *Store) RecordStatusChange(ctx context.Context, day string, event events.OrderEvent) (bool, error) {
	if event.Status == "" {
		return false, nil
	}
	keys := []string{StatusMarkerKey(event), events.DailyStatusKey(day)}
	return s.run(ctx, recordStatusScript, keys, []interface{}{s.ttlMillis(), event.Status})
}

func (s *Store) run(ctx context.Context, script *redis.Script, keys []string, args []interface{}) (bool, error) {
	applied, err := script.Run(ctx, s.Client, keys, args...).Int()
	if err != nil {
		return false, err
	}
	return applied == 1, nil
}

func (s *Store) ttlMillis() int64 {
	if s.TTL <= 0 {
		return 0
	}
	return s.TTL.Milliseconds()
}

// CreatedMarkerKey is the dedup marker of an order_created event.
func CreatedMarkerKey(event events.OrderEvent) string {
	return fmt.Sprintf("stats:seen:created:%d", event.OrderID)
}

// StatusMarkerKey is the dedup marker of one status transition. The event
// time is part of the key so that the same status set twice counts twice.
func StatusMarkerKey(event events.OrderEvent) string {
	return fmt.Sprintf("stats:seen:status:%d:%s:%d", event.OrderID, event.Status, event.Timestamp.UnixNano())
}
