package color

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/dpatterbee/hue/src/store"
	"github.com/dpatterbee/hue/src/store/guilddb"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Roles manages roles on the chat platform. Role, user and guild IDs are decimal snowflakes.
type Roles interface {
	// List returns the IDs of every role the guild currently has.
	List(guildID string) ([]string, error)
	Create(guildID, name string, c Color) (string, error)
	Delete(guildID, roleID string) error
	Grant(guildID, userID, roleID string) error
	Revoke(guildID, userID, roleID string) error
}

// maxParallelDeletes bounds concurrent role deletions during Clean.
const maxParallelDeletes = 4

// Service assigns colour roles to users and records the assignments per guild.
//
// The colors table maps a colour to the role created for it and the users table maps a user to
// the role they wear. Mutations of one guild are serialised.
type Service struct {
	db    *guilddb.DB
	roles Roles

	mu     sync.Mutex
	guilds map[string]*sync.Mutex
}

func NewService(db *guilddb.DB, roles Roles) *Service {
	return &Service{
		db:     db,
		roles:  roles,
		guilds: make(map[string]*sync.Mutex),
	}
}

// lock serialises mutations of one guild. Entries are never evicted; there is one small
// mutex per guild the bot has ever written for.
func (s *Service) lock(guildID string) func() {
	s.mu.Lock()
	m, ok := s.guilds[guildID]
	if !ok {
		m = &sync.Mutex{}
		s.guilds[guildID] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Set gives userID the role for c, creating the role if the guild has none for that colour,
// and takes away the user's previous colour role.
func (s *Service) Set(guildID, userID string, c Color) error {
	defer s.lock(guildID)()

	g, err := s.db.Guild(guildID)
	if err != nil {
		return err
	}
	if err := g.EnsureDir(); err != nil {
		return err
	}

	existing, err := s.existingRoles(guildID)
	if err != nil {
		return err
	}
	users, err := readTable(g, guilddb.Users)
	if err != nil {
		return err
	}
	colors, err := readTable(g, guilddb.Colors)
	if err != nil {
		return err
	}

	key := c.String()
	oldRole := liveRole(users[userID], existing)
	role := liveRole(colors[key], existing)

	if role == "" {
		if err := g.DiscardTemp(guilddb.Colors); err != nil {
			return err
		}
		role, err = s.roles.Create(guildID, c.RoleName(), c)
		if err != nil {
			return errors.Wrap(err, "color role creation failed")
		}
		log.Info().Str("guild", guildID).Str("color", key).Str("role", role).Msg("Created color role")

		colors[key] = role
		if err := g.Rebuild(guilddb.Colors, fromMap(colors)); err != nil {
			return err
		}
	}

	if oldRole != "" && oldRole != role {
		if err := s.roles.Revoke(guildID, userID, oldRole); err != nil {
			return errors.Wrapf(err, "couldn't remove user from old color role %s", oldRole)
		}
	}

	if err := g.DiscardTemp(guilddb.Users); err != nil {
		return err
	}
	if err := s.roles.Grant(guildID, userID, role); err != nil {
		return errors.Wrapf(err, "couldn't add user to new color role %s", role)
	}

	users[userID] = role
	return g.Rebuild(guilddb.Users, fromMap(users))
}

// Unset takes away userID's colour role.
func (s *Service) Unset(guildID, userID string) error {
	defer s.lock(guildID)()

	g, err := s.db.Guild(guildID)
	if err != nil {
		return err
	}

	snap, err := g.Open(guilddb.Users)
	if err != nil {
		return err
	}
	if snap == nil {
		return store.Msg(store.NotFound, "There are no colors for this guild.")
	}
	users, err := drain(snap)
	if err != nil {
		return err
	}

	existing, err := s.existingRoles(guildID)
	if err != nil {
		return err
	}
	role := liveRole(users[userID], existing)
	if role == "" {
		return store.Msg(store.NotFound, "You have no active color.")
	}

	if err := g.DiscardTemp(guilddb.Users); err != nil {
		return err
	}
	if err := s.roles.Revoke(guildID, userID, role); err != nil {
		return errors.Wrapf(err, "couldn't remove user from old color role %s", role)
	}

	delete(users, userID)
	return g.Rebuild(guilddb.Users, fromMap(users))
}

// Current returns the colour userID is wearing.
func (s *Service) Current(guildID, userID string) (Color, bool, error) {
	g, err := s.db.Guild(guildID)
	if err != nil {
		return Color{}, false, err
	}
	users, err := readTable(g, guilddb.Users)
	if err != nil {
		return Color{}, false, err
	}
	role, ok := users[userID]
	if !ok {
		return Color{}, false, nil
	}
	colors, err := readTable(g, guilddb.Colors)
	if err != nil {
		return Color{}, false, err
	}
	for k, v := range colors {
		if v != role {
			continue
		}
		c, err := Parse(k)
		if err != nil {
			return Color{}, false, store.E(store.FormatFailure, "colors db", g.Dir(), err)
		}
		return c, true, nil
	}
	return Color{}, false, nil
}

// Clean deletes every colour role nobody is wearing and forgets it. It returns the number of
// roles deleted.
func (s *Service) Clean(guildID string) (int, error) {
	defer s.lock(guildID)()

	g, err := s.db.Guild(guildID)
	if err != nil {
		return 0, err
	}
	colors, err := readTable(g, guilddb.Colors)
	if err != nil {
		return 0, err
	}
	users, err := readTable(g, guilddb.Users)
	if err != nil {
		return 0, err
	}

	used := make(map[string]bool, len(colors))
	for _, role := range colors {
		used[role] = false
	}
	for _, role := range users {
		used[role] = true
	}

	if err := g.DiscardTemp(guilddb.Colors); err != nil {
		return 0, err
	}

	var unused []string
	for role, u := range used {
		if u {
			continue
		}
		if _, err := snowflake.Parse(role); err != nil {
			return 0, store.E(store.FormatFailure, "role ID "+role+" wasn't a valid role ID", "", err)
		}
		unused = append(unused, role)
	}

	existing, err := s.existingRoles(guildID)
	if err != nil {
		return 0, err
	}

	var eg errgroup.Group
	eg.SetLimit(maxParallelDeletes)
	deleted := 0
	for _, role := range unused {
		if _, ok := existing[role]; !ok {
			continue
		}
		role := role
		deleted++
		eg.Go(func() error {
			if err := s.roles.Delete(guildID, role); err != nil {
				return errors.Wrapf(err, "failed to delete %s", role)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}

	for k, role := range colors {
		if !used[role] {
			delete(colors, k)
		}
	}
	if err := g.Rebuild(guilddb.Colors, fromMap(colors)); err != nil {
		return 0, err
	}

	log.Info().Str("guild", guildID).Int("deleted", deleted).Int("kept", len(colors)).Msg("Cleaned colors")
	return deleted, nil
}

func (s *Service) existingRoles(guildID string) (map[string]struct{}, error) {
	ids, err := s.roles.List(guildID)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't list guild roles")
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// liveRole returns id if it is a snowflake naming a role the guild still has, else "".
func liveRole(id string, existing map[string]struct{}) string {
	if id == "" {
		return ""
	}
	if _, err := snowflake.Parse(id); err != nil {
		return ""
	}
	if _, ok := existing[id]; !ok {
		return ""
	}
	return id
}

// readTable loads a whole table. An absent table reads as empty.
func readTable(g *guilddb.Guild, t guilddb.Table) (map[string]string, error) {
	snap, err := g.Open(t)
	if err != nil {
		return nil, err
	}
	return drain(snap)
}

// drain reads snap into a map and closes it.
func drain(snap *guilddb.Snapshot) (map[string]string, error) {
	defer snap.Close()

	m := make(map[string]string)
	it := snap.Iter()
	for it.Next() {
		m[string(it.Key())] = string(it.Value())
	}
	return m, it.Err()
}

func fromMap(m map[string]string) func(*guilddb.Builder) error {
	return func(b *guilddb.Builder) error {
		for k, v := range m {
			if err := b.AddString(k, v); err != nil {
				return err
			}
		}
		return nil
	}
}
