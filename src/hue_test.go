package hue

import (
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dpatterbee/hue/src/color"
	"github.com/dpatterbee/hue/src/store"
	"github.com/dpatterbee/hue/src/store/guilddb"
	"github.com/stretchr/testify/require"
)

const (
	testGuild = "414271219219824650"
	testUser  = "72791153467990016"
	testAdmin = "72791153467990017"
	testOwner = "72791153467990018"
)

type fakeGateway struct {
	sync.Mutex
	sent     []string
	embeds   []*discordgo.MessageEmbed
	status   string
	latency  time.Duration
	admins   map[string]bool
	statusFn func() error
}

func (f *fakeGateway) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.Lock()
	defer f.Unlock()
	f.sent = append(f.sent, content)
	return &discordgo.Message{ID: strconv.Itoa(len(f.sent)), ChannelID: channelID, Content: content}, nil
}

func (f *fakeGateway) ChannelMessageSendEmbed(channelID string, e *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.Lock()
	defer f.Unlock()
	f.embeds = append(f.embeds, e)
	return &discordgo.Message{ID: "e", ChannelID: channelID}, nil
}

func (f *fakeGateway) ChannelMessageEdit(channelID, messageID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return &discordgo.Message{ID: messageID, ChannelID: channelID, Content: content}, nil
}

func (f *fakeGateway) ChannelMessageDelete(string, string, ...discordgo.RequestOption) error { return nil }

func (f *fakeGateway) UpdateGameStatus(_ int, name string) error {
	if f.statusFn != nil {
		if err := f.statusFn(); err != nil {
			return err
		}
	}
	f.status = "playing " + name
	return nil
}

func (f *fakeGateway) UpdateStreamingStatus(_ int, name, url string) error {
	f.status = "streaming " + name + " " + url
	return nil
}

func (f *fakeGateway) UpdateListeningStatus(name string) error {
	f.status = "listening " + name
	return nil
}

func (f *fakeGateway) HeartbeatLatency() time.Duration { return f.latency }

func (f *fakeGateway) UserChannelPermissions(userID, _ string, _ ...discordgo.RequestOption) (int64, error) {
	if f.admins[userID] {
		return discordgo.PermissionAdministrator, nil
	}
	return discordgo.PermissionSendMessages, nil
}

type fakeSettings struct {
	sync.Mutex
	prefixes map[string]string
	names    map[string]string
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{prefixes: make(map[string]string), names: make(map[string]string)}
}

func (f *fakeSettings) SetPrefix(guildID, prefix string) error {
	f.Lock()
	defer f.Unlock()
	f.prefixes[guildID] = prefix
	return nil
}

func (f *fakeSettings) GetPrefix(guildID string) (string, error) {
	f.Lock()
	defer f.Unlock()
	p, ok := f.prefixes[guildID]
	if !ok {
		return "", store.E(store.NotFound, "get prefix", guildID, nil)
	}
	return p, nil
}

func (f *fakeSettings) SetName(guildID, name string) error {
	f.Lock()
	defer f.Unlock()
	f.names[guildID] = name
	return nil
}

func (f *fakeSettings) GetName(guildID string) (string, error) {
	f.Lock()
	defer f.Unlock()
	n, ok := f.names[guildID]
	if !ok {
		return "", store.E(store.NotFound, "get name", guildID, nil)
	}
	return n, nil
}

func (f *fakeSettings) Close() error { return nil }

type fakeRoleSession struct {
	sync.Mutex
	next    int64
	roles   map[string]*discordgo.Role
	members map[string]map[string]bool
	createErr error
}

func newFakeRoleSession() *fakeRoleSession {
	return &fakeRoleSession{
		next:    800000000000000000,
		roles:   make(map[string]*discordgo.Role),
		members: make(map[string]map[string]bool),
	}
}

func (f *fakeRoleSession) GuildRoles(string, ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	f.Lock()
	defer f.Unlock()
	var out []*discordgo.Role
	for _, r := range f.roles {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRoleSession) GuildRoleCreate(_ string, data *discordgo.RoleParams, _ ...discordgo.RequestOption) (*discordgo.Role, error) {
	f.Lock()
	defer f.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.next++
	r := &discordgo.Role{ID: strconv.FormatInt(f.next, 10), Name: data.Name}
	if data.Color != nil {
		r.Color = *data.Color
	}
	if data.Permissions != nil {
		r.Permissions = *data.Permissions
	}
	f.roles[r.ID] = r
	return r, nil
}

func (f *fakeRoleSession) GuildRoleDelete(_, roleID string, _ ...discordgo.RequestOption) error {
	f.Lock()
	defer f.Unlock()
	delete(f.roles, roleID)
	return nil
}

func (f *fakeRoleSession) GuildMemberRoleAdd(_, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.Lock()
	defer f.Unlock()
	if f.members[userID] == nil {
		f.members[userID] = make(map[string]bool)
	}
	f.members[userID][roleID] = true
	return nil
}

func (f *fakeRoleSession) GuildMemberRoleRemove(_, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.Lock()
	defer f.Unlock()
	delete(f.members[userID], roleID)
	return nil
}

type harness struct {
	bot      *bot
	gw       *fakeGateway
	roles    *fakeRoleSession
	settings *fakeSettings
	db       *guilddb.DB
	clock    time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		gw:       &fakeGateway{admins: map[string]bool{testAdmin: true}},
		roles:    newFakeRoleSession(),
		settings: newFakeSettings(),
		db:       guilddb.New(filepath.Join(t.TempDir(), "data")),
		clock:    time.Unix(1500000000, 0),
	}
	owners, err := NewOwners(testOwner)
	require.NoError(t, err)

	cfg := Config{Prefix: "%", ColorCooldown: time.Second}
	h.bot = newBot(h.gw, h.settings, color.NewService(h.db, discordRoles{s: h.roles}), owners, cfg)
	h.bot.now = func() time.Time { return h.clock }
	return h
}

// send runs content as userID and returns the reply. Each call advances the clock past the
// colour cooldown unless the test moves it itself.
func (h *harness) send(userID, content string) string {
	h.clock = h.clock.Add(2 * time.Second)
	return h.sendNow(userID, content)
}

func (h *harness) sendNow(userID, content string) string {
	return h.bot.handle(&discordgo.Message{
		ID:        "m",
		ChannelID: "c",
		GuildID:   testGuild,
		Content:   content,
		Author:    &discordgo.User{ID: userID},
	})
}
