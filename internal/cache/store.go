package cache

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Class names an expiration policy shared by a family of entries.
type Class string

const (
	ClassArticleList    Class = "articleList"
	ClassArticleContent Class = "articleContent"
	ClassCategories     Class = "categories"
	ClassRecentlyViewed Class = "recentlyViewed"
)

// Well-known keys in a store's namespace.
const (
	KeyArticles   = "articles"
	KeyCategories = "categories"
	KeyRecent     = "recent"
)

// ArticleKey returns the entry key holding one article's accumulated content.
func ArticleKey(articleID string) string {
	return "article-" + articleID
}

const defaultPrefix = "zine-"

var defaultTTLs = map[Class]time.Duration{
	ClassArticleList:    time.Hour,
	ClassArticleContent: 24 * time.Hour,
	ClassCategories:     24 * time.Hour,
	ClassRecentlyViewed: 7 * 24 * time.Hour,
}

// envelope is the persisted entry layout. The class travels with the entry so
// expiry policy survives without re-deriving it from the key.
type envelope struct {
	Data           json.RawMessage `json:"data"`
	Timestamp      int64           `json:"timestamp"` // epoch milliseconds
	ExpirationType string          `json:"expirationType,omitempty"`
}

// Store is a tiered, expiring key/value store over a Medium. Operational
// failures never reach callers: reads degrade to misses, writes to no-ops,
// and anything unreadable is evicted on contact.
type Store struct {
	mu     sync.Mutex
	medium Medium
	prefix string
	ttls   map[Class]time.Duration
	clock  func() time.Time
	logger zerolog.Logger
}

// Option mutates store configuration.
type Option func(*Store)

// WithPrefix sets the key namespace prefix, isolating this store's entries
// from other users of the same medium.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTTL overrides the lifetime of one expiration class.
func WithTTL(class Class, ttl time.Duration) Option {
	return func(s *Store) {
		if class != "" && ttl > 0 {
			s.ttls[class] = ttl
		}
	}
}

// WithLogger injects a logger for eviction and failure diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func withClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New creates a store over medium with the tiered default TTLs.
func New(medium Medium, options ...Option) *Store {
	store := &Store{
		medium: medium,
		prefix: defaultPrefix,
		ttls:   make(map[Class]time.Duration, len(defaultTTLs)),
		clock:  time.Now,
		logger: zerolog.Nop(),
	}
	for class, ttl := range defaultTTLs {
		store.ttls[class] = ttl
	}
	for _, option := range options {
		option(store)
	}
	return store
}

// Get returns the raw payload stored under key. Expired and corrupt entries
// are evicted on the way out and reported as misses.
func (s *Store) Get(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(key)
}

// GetJSON decodes the payload stored under key into out. A payload that no
// longer decodes is treated like any other corrupt entry: evicted, miss.
func (s *Store) GetJSON(key string, out any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.getLocked(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Warn().Err(errors.Wrap(err, "decode cache payload")).Str("key", key).Msg("corrupt cache entry evicted")
		s.deleteLocked(key)
		return false
	}
	return true
}

// Set overwrites key with value under class. An empty class means the
// article-content default. Failures are logged and leave prior state
// unchanged; Set never reports them to the caller.
func (s *Store) Set(key string, value any, class Class) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if class == "" {
		class = ClassArticleContent
	}
	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("cache write skipped: payload not serializable")
		return
	}
	data, err := json.Marshal(envelope{
		Data:           payload,
		Timestamp:      s.clock().UnixMilli(),
		ExpirationType: string(class),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("cache write skipped: envelope encode failed")
		return
	}
	if err := s.medium.Write(s.prefix+key, data); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// Delete removes key. Missing keys are not an error.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(key)
}

// Clear removes every entry in this store's namespace.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys, err := s.medium.Keys()
	if err != nil {
		s.logger.Warn().Err(err).Msg("cache clear aborted: listing entries failed")
		return
	}
	for _, storageKey := range keys {
		if !strings.HasPrefix(storageKey, s.prefix) {
			continue
		}
		s.deleteLocked(strings.TrimPrefix(storageKey, s.prefix))
	}
}

// SweepExpired scans the namespace once, evicting expired and corrupt
// entries, and returns how many of each were removed.
func (s *Store) SweepExpired() (expired, corrupt int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys, err := s.medium.Keys()
	if err != nil {
		s.logger.Warn().Err(err).Msg("cache sweep aborted: listing entries failed")
		return 0, 0
	}
	for _, storageKey := range keys {
		if !strings.HasPrefix(storageKey, s.prefix) {
			continue
		}
		key := strings.TrimPrefix(storageKey, s.prefix)
		data, ok, err := s.medium.Read(storageKey)
		if err != nil || !ok {
			continue
		}
		env, err := decodeEnvelope(data)
		if err != nil {
			s.deleteLocked(key)
			corrupt++
			continue
		}
		if s.expiredLocked(env, key) {
			s.deleteLocked(key)
			expired++
		}
	}
	if expired > 0 || corrupt > 0 {
		s.logger.Info().Int("expired", expired).Int("corrupt", corrupt).Msg("cache sweep evicted entries")
	}
	return expired, corrupt
}

func (s *Store) getLocked(key string) (json.RawMessage, bool) {
	data, ok, err := s.medium.Read(s.prefix + key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	env, err := decodeEnvelope(data)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("corrupt cache entry evicted")
		s.deleteLocked(key)
		return nil, false
	}
	if s.expiredLocked(env, key) {
		s.deleteLocked(key)
		return nil, false
	}
	return env.Data, true
}

func (s *Store) deleteLocked(key string) {
	if err := s.medium.Delete(s.prefix + key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache delete failed")
	}
}

func (s *Store) expiredLocked(env envelope, key string) bool {
	class := Class(env.ExpirationType)
	if class == "" {
		class = classifyKey(key)
	}
	age := s.clock().UnixMilli() - env.Timestamp
	return age > s.ttlFor(class).Milliseconds()
}

func (s *Store) ttlFor(class Class) time.Duration {
	if ttl, ok := s.ttls[class]; ok {
		return ttl
	}
	return s.ttls[ClassArticleContent]
}

func decodeEnvelope(data []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return envelope{}, errors.Wrap(err, "decode cache envelope")
	}
	if env.Timestamp <= 0 || len(env.Data) == 0 {
		return envelope{}, errors.New("cache envelope missing data or timestamp")
	}
	return env, nil
}

// classifyKey infers an expiration class for entries written before the class
// was persisted alongside the payload.
func classifyKey(key string) Class {
	switch {
	case strings.HasPrefix(key, "article-"):
		return ClassArticleContent
	case key == KeyArticles:
		return ClassArticleList
	case strings.Contains(key, "categor"):
		return ClassCategories
	case strings.Contains(key, "recent"):
		return ClassRecentlyViewed
	default:
		return ClassArticleContent
	}
}
