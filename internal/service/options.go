package service

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/recipe-organizer/backend/internal/idgen"
)

type options struct {
	now      func() time.Time
	newID    func() string
	hashCost int
}

func defaultOptions() options {
	return options{
		now:      time.Now,
		newID:    idgen.New,
		hashCost: bcrypt.DefaultCost,
	}
}

// Option customizes a service.
type Option func(*options)

// WithClock replaces the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator replaces the identifier source.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// WithHashCost sets the bcrypt cost used for new passwords.
func WithHashCost(cost int) Option {
	return func(o *options) { o.hashCost = cost }
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// timestamp normalizes t to the precision every supported store keeps.
func timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
