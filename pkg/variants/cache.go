// Sheetjoin
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Sheetjoin.
//
// Sheetjoin is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Sheetjoin is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Sheetjoin.  If not, see <http://www.gnu.org/licenses/>.

package variants

// Cache memoizes Generate for the lifetime of one join invocation. It is
// not safe for concurrent use.
type Cache struct {
	entries map[string][]string
	stems   map[string]string
	hits    int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string][]string),
		stems:   make(map[string]string),
	}
}

// Get returns the variants of s, generating them on first use. The returned
// slice is shared and must not be modified.
func (c *Cache) Get(s string) ([]string, error) {
	if v, ok := c.entries[s]; ok {
		c.hits++
		return v, nil
	}
	v, err := Generate(s)
	if err != nil {
		return nil, err
	}
	c.entries[s] = v
	return v, nil
}

// Stem returns the memoized Stem of s.
func (c *Cache) Stem(s string) string {
	if v, ok := c.stems[s]; ok {
		return v
	}
	v := Stem(s)
	c.stems[s] = v
	return v
}

// Len returns the number of cached keys.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Hits returns how many lookups were served from the cache.
func (c *Cache) Hits() int {
	return c.hits
}

// Reset drops every entry.
func (c *Cache) Reset() {
	clear(c.entries)
	clear(c.stems)
	c.hits = 0
}
