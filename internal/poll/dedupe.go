package poll

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/nhle/trello-bridge/internal/model"
)

// BoundedSet is a string set with a capacity cap. When full, the
// oldest member by insertion order is evicted. Membership is O(1).
type BoundedSet struct {
	capacity int
	order    []string
	members  map[string]struct{}
}

// NewBoundedSet creates a set holding at most capacity members.
func NewBoundedSet(capacity int) *BoundedSet {
	return &BoundedSet{
		capacity: capacity,
		members:  make(map[string]struct{}),
	}
}

// Add inserts a member, evicting the oldest when over capacity.
// Adding an existing member is a no-op and does not refresh its age.
func (s *BoundedSet) Add(member string) {
	if _, ok := s.members[member]; ok {
		return
	}
	s.members[member] = struct{}{}
	s.order = append(s.order, member)

	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.members, oldest)
	}
}

// Contains reports membership.
func (s *BoundedSet) Contains(member string) bool {
	_, ok := s.members[member]
	return ok
}

// Len returns the current member count.
func (s *BoundedSet) Len() int {
	return len(s.members)
}

// ContentHash fingerprints a notification's semantic content. Two
// notifications with the same title and description are the same
// notification, regardless of timestamps or action ids.
func ContentHash(title, description string) string {
	sum := sha256.Sum256([]byte(title + "\n" + description))
	return hex.EncodeToString(sum[:])
}

// HashCache records which content hashes have already been posted to
// which card's thread, bounded by insertion-order eviction.
type HashCache struct {
	set *BoundedSet
}

// NewHashCache creates a cache holding at most capacity entries.
func NewHashCache(capacity int) *HashCache {
	return &HashCache{set: NewBoundedSet(capacity)}
}

// Record remembers that a hash was posted for a card.
func (c *HashCache) Record(cardID, hash string) {
	c.set.Add(cardID + ":" + hash)
}

// Seen reports whether a hash was already posted for a card.
func (c *HashCache) Seen(cardID, hash string) bool {
	return c.set.Contains(cardID + ":" + hash)
}

// SeedFromMessages scans recent thread messages for engine-authored
// notifications (identified by the footer marker) and records their
// content hashes for a card. Run at startup so a restart does not
// re-deliver notifications already visible in the thread.
func (c *HashCache) SeedFromMessages(cardID string, messages []model.Message) int {
	seeded := 0
	for _, msg := range messages {
		if !msg.FromSelf {
			continue
		}
		for _, e := range msg.Embeds {
			if e.FooterText != model.FooterMarker {
				continue
			}
			c.Record(cardID, ContentHash(e.Title, e.Description))
			seeded++
		}
	}
	return seeded
}
