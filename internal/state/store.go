package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Link status values.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Link source values.
const (
	SourceHeader = "header"
	SourceBody   = "body"
)

// Link records the unsubscribe method discovered for a message and the
// outcome of any attempt against it.
type Link struct {
	MessageID string    `json:"message_id"`
	URL       string    `json:"link_url,omitempty"`
	Mailto    string    `json:"mailto_address,omitempty"`
	Header    string    `json:"list_unsubscribe_header,omitempty"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasMethod reports whether the link carries any usable unsubscribe method.
func (l Link) HasMethod() bool {
	return l.URL != "" || l.Mailto != ""
}

// fileFormat is the on-disk shape of the state file.
type fileFormat struct {
	Links   map[string]Link      `json:"links"`
	Senders map[string]time.Time `json:"unsubscribed_senders"`
}

// Store persists unsubscribe links and per-sender unsubscribe history in a
// JSON file. All methods are safe for concurrent use. Writes are atomic
// (temp file + rename) but best-effort; there is no transactional rollback.
type Store struct {
	mu      sync.Mutex
	path    string
	links   map[string]Link
	senders map[string]time.Time
}

// NewStore loads the state file at path, creating an empty store if the
// file does not exist yet.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:    path,
		links:   make(map[string]Link),
		senders: make(map[string]time.Time),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	if ff.Links != nil {
		s.links = ff.Links
	}
	if ff.Senders != nil {
		s.senders = ff.Senders
	}

	return s, nil
}

// AddLink stores or replaces the link for its message ID and persists.
func (s *Store) AddLink(link Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if link.Status == "" {
		link.Status = StatusPending
	}
	link.UpdatedAt = time.Now()
	s.links[link.MessageID] = link
	return s.save()
}

// Link returns the stored link for a message ID.
func (s *Store) Link(messageID string) (Link, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[messageID]
	return link, ok
}

// UpdateStatus sets the status (and optional error text) for a message's
// link. Unknown message IDs get a bare record so the outcome is not lost.
func (s *Store) UpdateStatus(messageID, status, errText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[messageID]
	if !ok {
		link = Link{MessageID: messageID}
	}
	link.Status = status
	link.Error = errText
	link.UpdatedAt = time.Now()
	s.links[messageID] = link
	return s.save()
}

// AllLinks returns all stored links ordered by message ID.
func (s *Store) AllLinks() []Link {
	s.mu.Lock()
	defer s.mu.Unlock()

	links := make([]Link, 0, len(s.links))
	for _, link := range s.links {
		links = append(links, link)
	}
	sort.Slice(links, func(i, j int) bool {
		return links[i].MessageID < links[j].MessageID
	})
	return links
}

// RecordUnsubscribedSender records a successful unsubscribe for the sender.
// Only the most recent unsubscribe time is kept.
func (s *Store) RecordUnsubscribedSender(address string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeSender(address)
	if key == "" {
		return nil
	}
	if prev, ok := s.senders[key]; !ok || at.After(prev) {
		s.senders[key] = at
	}
	return s.save()
}

// ShouldUnsubscribeFromSender reports whether an email from the sender,
// received at emailDate, still warrants an unsubscribe attempt. Messages
// older than the sender's recorded unsubscribe are covered by it; a newer
// message means the earlier unsubscribe did not stick.
func (s *Store) ShouldUnsubscribeFromSender(address string, emailDate time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.senders[normalizeSender(address)]
	if !ok {
		return true
	}
	return emailDate.After(last)
}

// LastUnsubscribed returns when the sender was last successfully
// unsubscribed from.
func (s *Store) LastUnsubscribed(address string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.senders[normalizeSender(address)]
	return last, ok
}

// save writes the state to disk atomically. Callers must hold s.mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(fileFormat{
		Links:   s.links,
		Senders: s.senders,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// normalizeSender lowercases a sender address for use as a map key.
func normalizeSender(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
