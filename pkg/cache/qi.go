package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/qivalidate/pkg/observability"
	"github.com/matzehuels/qivalidate/pkg/qi"
)

// QiStore reads and writes qi results through a Cache.
type QiStore struct {
	Cache Cache
	Keyer Keyer
	TTL   time.Duration
}

// NewQiStore returns a store over c. A nil c disables caching and a nil
// keyer means DefaultKeyer.
func NewQiStore(c Cache, keyer Keyer, ttl time.Duration) *QiStore {
	if c == nil {
		c = NewNullCache()
	}
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	return &QiStore{Cache: c, Keyer: keyer, TTL: ttl}
}

// Get looks up the result for labels at threshold. Undecodable entries
// count as misses.
func (s *QiStore) Get(ctx context.Context, graphHash string, labels []int, threshold int) (qi.Result, bool, error) {
	data, ok, err := s.Cache.Get(ctx, s.Keyer.QiKey(graphHash, labels, threshold))
	if err != nil {
		return qi.Result{}, false, err
	}
	var res qi.Result
	if !ok || json.Unmarshal(data, &res) != nil || res.Method == "" {
		observability.Cache().OnCacheMiss(ctx, KeyTypeQi)
		return qi.Result{}, false, nil
	}
	observability.Cache().OnCacheHit(ctx, KeyTypeQi)
	return res, true, nil
}

// Put stores res for labels at threshold.
func (s *QiStore) Put(ctx context.Context, graphHash string, labels []int, threshold int, res qi.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	if err := s.Cache.Set(ctx, s.Keyer.QiKey(graphHash, labels, threshold), data, s.TTL); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, KeyTypeQi, len(data))
	return nil
}
