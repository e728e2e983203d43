package hue

import (
	"sync"

	"github.com/dpatterbee/hue/src/store"
	"github.com/rs/zerolog/log"
)

type server struct {
	name   string
	prefix string
}

// servers caches guild settings so message handling does not hit the database.
type servers struct {
	m             map[string]*server
	settings      store.Settings
	defaultPrefix string
	sync.RWMutex
}

func newServers(settings store.Settings, defaultPrefix string) *servers {
	return &servers{
		m:             make(map[string]*server),
		settings:      settings,
		defaultPrefix: defaultPrefix,
	}
}

// load records a guild the bot has joined or reconnected to.
func (s *servers) load(guildID, name string) {
	prefix, err := s.settings.GetPrefix(guildID)
	if err != nil {
		if !store.IsKind(err, store.NotFound) {
			log.Error().Err(err).Str("guild", guildID).Msg("Couldn't read prefix")
		}
		prefix = s.defaultPrefix
	}

	if name != "" {
		if err := s.settings.SetName(guildID, name); err != nil {
			log.Error().Err(err).Str("guild", guildID).Msg("Couldn't store guild name")
		}
	}

	s.Lock()
	s.m[guildID] = &server{name: name, prefix: prefix}
	s.Unlock()
}

func (s *servers) prefix(guildID string) string {
	s.RLock()
	defer s.RUnlock()
	if sv, ok := s.m[guildID]; ok {
		return sv.prefix
	}
	return s.defaultPrefix
}

func (s *servers) setPrefix(guildID, prefix string) error {
	if err := s.settings.SetPrefix(guildID, prefix); err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()
	sv, ok := s.m[guildID]
	if !ok {
		sv = &server{}
		s.m[guildID] = sv
	}
	sv.prefix = prefix
	log.Info().Str("guild", guildID).Str("name", sv.name).Str("prefix", prefix).Msg("Prefix updated")
	return nil
}
