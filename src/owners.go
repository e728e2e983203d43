package hue

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pkg/errors"
)

// Owners is the set of users allowed to run owner commands. It is built at startup and shared
// by every handler.
type Owners struct {
	mu  sync.RWMutex
	ids map[snowflake.ID]struct{}
}

// NewOwners returns a set holding ids, which must all be user snowflakes.
func NewOwners(ids ...string) (*Owners, error) {
	o := &Owners{ids: make(map[snowflake.ID]struct{})}
	for _, id := range ids {
		if err := o.Add(id); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Add makes id an owner.
func (o *Owners) Add(id string) error {
	uid, err := snowflake.Parse(id)
	if err != nil {
		return errors.Wrapf(err, "not a valid UID %q", id)
	}
	o.mu.Lock()
	o.ids[uid] = struct{}{}
	o.mu.Unlock()
	return nil
}

// Is reports whether userID is an owner.
func (o *Owners) Is(userID string) bool {
	uid, err := snowflake.Parse(userID)
	if err != nil {
		return false
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.ids[uid]
	return ok
}

// Len returns the number of owners.
func (o *Owners) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.ids)
}
