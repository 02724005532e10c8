package usecase

import (
	"fmt"
	"sort"
)

// counter counts keys and remembers the order in which each key was first seen.
// Ranking ties are broken by that order.
type counter struct {
	keys   []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key]++
}

func (c *counter) get(key string) int {
	return c.counts[key]
}

func (c *counter) len() int {
	return len(c.keys)
}

type entry struct {
	key   string
	count int
}

// mostCommon returns at most n entries by descending count.
func (c *counter) mostCommon(n int) []entry {
	entries := make([]entry, 0, len(c.keys))
	for _, k := range c.keys {
		entries = append(entries, entry{key: k, count: c.counts[k]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].count > entries[j].count
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// top formats the n most common entries as "key:count".
func (c *counter) top(n int) []string {
	out := []string{}
	for _, e := range c.mostCommon(n) {
		out = append(out, fmt.Sprintf("%s:%d", e.key, e.count))
	}
	return out
}
