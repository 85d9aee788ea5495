// Package idgen produces opaque string identifiers for recipes, ingredients
// and users.
package idgen

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var counter atomic.Uint64

// New returns a random UUID. If the secure random source fails it falls
// back to a time, counter and math/rand based id instead of failing;
// identifiers are never used as secrets.
func New() string {
	id, err := uuid.NewRandom()
	if err == nil {
		return id.String()
	}
	return fallback()
}

func fallback() string {
	return fmt.Sprintf("%x-%x-%x", time.Now().UnixNano(), counter.Add(1), rand.Uint64())
}
