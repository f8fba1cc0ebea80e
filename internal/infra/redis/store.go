// Package redis keeps funnel hits, known chats and broadcast stats in Redis sets and lists.
package redis

import (
	"context"
	"encoding/json"
	"slices"
	"strconv"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dharmaRaavi/real-estate-chatbot/internal/usecase"
)

const (
	opTimeout       = 2 * time.Second
	maxKeptStats    = 100
	defaultKeySpace = "leadbot"
)

// Store implements the funnel, user and broadcast-stat repositories on one client.
type Store struct {
	rdb    *goredis.Client
	prefix string
}

func NewClient(addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "ping redis %s", addr)
	}
	return rdb, nil
}

func NewStore(rdb *goredis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = defaultKeySpace
	}
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) key(parts ...string) string {
	k := s.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

func ctxWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

func (s *Store) Hit(stage usecase.Stage, chatID int64) error {
	ctx, cancel := ctxWithTimeout()
	defer cancel()
	pipe := s.rdb.TxPipeline()
	pipe.SAdd(ctx, s.key("funnel", string(stage)), chatID)
	pipe.SAdd(ctx, s.key("funnel", "stages"), string(stage))
	_, err := pipe.Exec(ctx)
	return errors.Wrap(err, "redis funnel hit")
}

func (s *Store) Counts() (map[usecase.Stage]int, error) {
	ctx, cancel := ctxWithTimeout()
	defer cancel()
	stages, err := s.rdb.SMembers(ctx, s.key("funnel", "stages")).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis funnel stages")
	}
	out := make(map[usecase.Stage]int, len(stages))
	for _, st := range stages {
		n, err := s.rdb.SCard(ctx, s.key("funnel", st)).Result()
		if err != nil {
			return nil, errors.Wrapf(err, "redis funnel count %s", st)
		}
		out[usecase.Stage(st)] = int(n)
	}
	return out, nil
}

func (s *Store) SaveUser(chatID int64) error {
	ctx, cancel := ctxWithTimeout()
	defer cancel()
	return errors.Wrap(s.rdb.SAdd(ctx, s.key("users"), chatID).Err(), "redis save user")
}

func (s *Store) ListChatIDs() ([]int64, error) {
	ctx, cancel := ctxWithTimeout()
	defer cancel()
	members, err := s.rdb.SMembers(ctx, s.key("users")).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis list users")
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

type storedStat struct {
	Total     int       `json:"total"`
	Sent      int       `json:"sent"`
	Failed    int       `json:"failed"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Store) Save(stat usecase.BroadcastStat) error {
	if stat.CreatedAt.IsZero() {
		stat.CreatedAt = time.Now()
	}
	raw, err := json.Marshal(storedStat(stat))
	if err != nil {
		return errors.Wrap(err, "encode broadcast stat")
	}
	ctx, cancel := ctxWithTimeout()
	defer cancel()
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, s.key("broadcasts"), raw)
	pipe.LTrim(ctx, s.key("broadcasts"), 0, maxKeptStats-1)
	_, err = pipe.Exec(ctx)
	return errors.Wrap(err, "redis save broadcast stat")
}

func (s *Store) ListRecent(n int) ([]usecase.BroadcastStat, error) {
	// the list is trimmed on save, so -1 reads every kept stat
	stop := int64(-1)
	if n > 0 {
		stop = int64(n - 1)
	}
	ctx, cancel := ctxWithTimeout()
	defer cancel()
	items, err := s.rdb.LRange(ctx, s.key("broadcasts"), 0, stop).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis list broadcast stats")
	}
	out := make([]usecase.BroadcastStat, 0, len(items))
	for _, it := range items {
		var st storedStat
		if err := json.Unmarshal([]byte(it), &st); err != nil {
			return nil, errors.Wrap(err, "decode broadcast stat")
		}
		out = append(out, usecase.BroadcastStat(st))
	}
	return out, nil
}
