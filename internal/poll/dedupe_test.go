package poll

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/trello-bridge/internal/model"
)

func TestBoundedSetEvictsOldestFirst(t *testing.T) {
	s := NewBoundedSet(3)

	s.Add("a")
	s.Add("b")
	s.Add("c")
	assert.True(t, s.Contains("a"))

	s.Add("d")
	assert.False(t, s.Contains("a"), "oldest member evicted beyond capacity")
	assert.True(t, s.Contains("b"))
	assert.True(t, s.Contains("d"))
	assert.Equal(t, 3, s.Len())
}

func TestBoundedSetDuplicateAddIsNoop(t *testing.T) {
	s := NewBoundedSet(2)

	s.Add("a")
	s.Add("a")
	s.Add("b")
	s.Add("c")

	// "a" was not refreshed by the duplicate add; it is still oldest.
	assert.False(t, s.Contains("a"))
	assert.True(t, s.Contains("b"))
	assert.True(t, s.Contains("c"))
}

func TestContentHashStability(t *testing.T) {
	h1 := ContentHash("Label added", "Label **bugs** was added.")
	h2 := ContentHash("Label added", "Label **bugs** was added.")
	h3 := ContentHash("Label added", "Label **urgent** was added.")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}

func TestHashCacheSeedFromMessages(t *testing.T) {
	cache := NewHashCache(16)

	messages := []model.Message{
		{
			ID: "m1", FromSelf: true,
			Embeds: []model.EmbedRef{{
				Title:       "Label added",
				Description: "Label **bugs** was added.",
				FooterText:  model.FooterMarker,
			}},
		},
		{
			// Not self-authored: ignored even with a marker-like footer.
			ID: "m2", FromSelf: false,
			Embeds: []model.EmbedRef{{
				Title:      "Label added",
				FooterText: model.FooterMarker,
			}},
		},
		{
			// Self-authored but foreign embed: ignored.
			ID: "m3", FromSelf: true,
			Embeds: []model.EmbedRef{{Title: "Something", FooterText: "other bot"}},
		},
	}

	seeded := cache.SeedFromMessages("card-1", messages)
	assert.Equal(t, 1, seeded)

	hash := ContentHash("Label added", "Label **bugs** was added.")
	assert.True(t, cache.Seen("card-1", hash))
	assert.False(t, cache.Seen("card-2", hash), "hashes are scoped per card")
}

func TestHashCacheBounded(t *testing.T) {
	cache := NewHashCache(2)

	for i := 0; i < 3; i++ {
		cache.Record("card-1", ContentHash(fmt.Sprintf("t%d", i), "d"))
	}

	assert.False(t, cache.Seen("card-1", ContentHash("t0", "d")))
	assert.True(t, cache.Seen("card-1", ContentHash("t2", "d")))
}
