//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package kvstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetGetRoundTrip(t *testing.T) {
	store := NewMemStore()
	store.Set("session:abc", []byte(`{"percent":50}`), time.Minute)

	value, ok := store.Get("session:abc")
	assert.True(t, ok)
	assert.Equal(t, `{"percent":50}`, string(value))
}

func TestGetMissingKey(t *testing.T) {
	store := NewMemStore()
	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestEntryExpiresAfterTTL(t *testing.T) {
	store := NewMemStore()
	store.Set("short-lived", []byte("x"), time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := store.Get("short-lived")
	assert.False(t, ok)
}

func TestZeroTTLNeverExpires(t *testing.T) {
	store := NewMemStore()
	store.Set("forever", []byte("x"), 0)
	time.Sleep(5 * time.Millisecond)

	_, ok := store.Get("forever")
	assert.True(t, ok)
}

func TestDelete(t *testing.T) {
	store := NewMemStore()
	store.Set("k", []byte("v"), time.Minute)
	store.Delete("k")

	_, ok := store.Get("k")
	assert.False(t, ok)
}
