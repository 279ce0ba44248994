// Package service implements the contact and note use cases on top of a
// types.Table: CRUD with duplicate and existence checks, search, upcoming
// birthdays and tag management.
package service

import (
	"log/slog"
	"time"

	"github.com/mesh-intelligence/assistant/pkg/types"
)

type options struct {
	logger *slog.Logger
	now    func() time.Time
	policy types.PhonePolicy
}

// Option configures a service.
type Option func(*options)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock sets the clock used for birthday windows and UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithPhonePolicy sets the region rules applied to new phone numbers.
func WithPhonePolicy(p types.PhonePolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

func newOptions(component string, opts []Option) options {
	o := options{
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.With("component", component)
	return o
}

func checkName(name string) error {
	if _, err := types.NewName(name); err != nil {
		return err
	}
	return nil
}
