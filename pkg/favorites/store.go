// Package favorites keeps the user's category → website mapping and parses the
// phrasings used to change and open it.
package favorites

import (
	"regexp"
	"strings"
	"sync"

	"github.com/entrhq/voxbrowse/pkg/logging"
)

// Entry is one category → URL binding.
type Entry struct {
	Category string `json:"category"`
	URL      string `json:"url"`
}

// DefaultEntries are seeded when no favorites file exists yet.
var DefaultEntries = []Entry{
	{"videos", "https://www.youtube.com"},
	{"shopping", "https://www.amazon.in"},
	{"social", "https://www.facebook.com"},
	{"search", "https://www.google.com"},
	{"news", "https://www.cnn.com"},
	{"mail", "https://www.gmail.com"},
	{"movies", "https://www.netflix.com"},
	{"music", "https://www.spotify.com"},
	{"maps", "https://www.google.com/maps"},
}

var schemePrefix = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.\-]*://`)

// HasScheme reports whether site already starts with a URL scheme.
func HasScheme(site string) bool {
	return schemePrefix.MatchString(site)
}

// Normalize turns a spoken site name into a URL. Strings with a scheme are
// returned unchanged; a dotted string without spaces gains https://; anything
// else gains .com and then https://. Normalize(Normalize(s)) == Normalize(s).
func Normalize(site string) string {
	if HasScheme(site) {
		return site
	}
	if strings.Contains(site, ".") && !strings.Contains(site, " ") {
		return "https://" + site
	}
	return "https://" + site + ".com"
}

// Store is an ordered, persisted mapping of lower-cased categories to URLs.
// It is safe for concurrent use.
type Store struct {
	// saveMu orders updates with their writes so the last Set is the one persisted
	saveMu  sync.Mutex
	mu      sync.RWMutex
	order   []string
	urls    map[string]string
	storage Storage
	logger  *logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore loads favorites from storage. A missing file is seeded with
// DefaultEntries and written back; an unreadable one is logged and replaced
// in memory by the defaults without touching the file.
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		urls:    make(map[string]string),
		storage: storage,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	entries, err := storage.Load()
	switch {
	case err == nil:
		s.replace(entries)
	case IsNotExist(err):
		s.replace(DefaultEntries)
		if err := storage.Save(s.Entries()); err != nil {
			s.logger.Errorf("Failed to write default favorites: %v", err)
		}
	default:
		s.logger.Errorf("Failed to load favorites, using defaults: %v", err)
		s.replace(DefaultEntries)
	}

	return s
}

func (s *Store) replace(entries []Entry) {
	s.order = s.order[:0]
	s.urls = make(map[string]string, len(entries))
	for _, e := range entries {
		s.put(strings.ToLower(e.Category), e.URL)
	}
}

func (s *Store) put(category, url string) {
	if _, ok := s.urls[category]; !ok {
		s.order = append(s.order, category)
	}
	s.urls[category] = url
}

// Set binds category to the normalized site, persists the whole mapping and
// returns the stored URL. A persistence failure is logged and returned but the
// binding stays in memory.
func (s *Store) Set(category, site string) (string, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	url := Normalize(strings.TrimSpace(site))

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	s.put(category, url)
	entries := s.entriesLocked()
	s.mu.Unlock()

	if err := s.storage.Save(entries); err != nil {
		s.logger.Errorf("Failed to save favorites: %v", err)
		return url, err
	}
	s.logger.Infof("Set favorite %s -> %s", category, url)
	return url, nil
}

// Get returns the URL for category, case-insensitively.
func (s *Store) Get(category string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	url, ok := s.urls[strings.ToLower(strings.TrimSpace(category))]
	return url, ok
}

// Categories returns the category names in insertion order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Entries returns a snapshot of the mapping in insertion order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entriesLocked()
}

func (s *Store) entriesLocked() []Entry {
	entries := make([]Entry, 0, len(s.order))
	for _, c := range s.order {
		entries = append(entries, Entry{Category: c, URL: s.urls[c]})
	}
	return entries
}

// Len returns the number of categories.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// ListAll renders the mapping for speech as "<category> is set to <url>"
// sentences joined by ". ", in insertion order.
func (s *Store) ListAll() string {
	entries := s.Entries()
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, e.Category+" is set to "+e.URL)
	}
	return strings.Join(parts, ". ")
}
