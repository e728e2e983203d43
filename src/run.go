package hue

import (
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dpatterbee/hue/src/args"
	"github.com/dpatterbee/hue/src/color"
	hlog "github.com/dpatterbee/hue/src/log"
	"github.com/dpatterbee/hue/src/messages"
	"github.com/dpatterbee/hue/src/store"
	"github.com/dpatterbee/hue/src/store/guilddb"
	"github.com/dpatterbee/hue/src/store/sqlite"
	"github.com/rs/zerolog/log"
)

// gateway is the part of *discordgo.Session the command handlers use.
type gateway interface {
	messages.Sender
	UpdateGameStatus(idle int, name string) error
	UpdateStreamingStatus(idle int, name, url string) error
	UpdateListeningStatus(name string) error
	HeartbeatLatency() time.Duration
	UserChannelPermissions(userID, channelID string, options ...discordgo.RequestOption) (int64, error)
}

var _ gateway = (*discordgo.Session)(nil)

type bot struct {
	session  gateway
	servers  *servers
	colors   *color.Service
	owners   *Owners
	commands map[string]botCommand
	limiter  *cooldown
	now      func() time.Time

	quit     chan struct{}
	quitOnce sync.Once
}

func newBot(session gateway, settings store.Settings, colors *color.Service, owners *Owners, cfg Config) *bot {
	return &bot{
		session:  session,
		servers:  newServers(settings, cfg.Prefix),
		colors:   colors,
		owners:   owners,
		commands: makeDefaultCommands(),
		limiter:  newCooldown(cfg.ColorCooldown),
		now:      time.Now,
		quit:     make(chan struct{}),
	}
}

func (b *bot) stop() {
	b.quitOnce.Do(func() { close(b.quit) })
}

// Run starts hue
func Run(args []string) int {
	cfg, err := loadConfig(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hue:", err)
		return 2
	}

	flush, err := hlog.Setup(os.Stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hue:", err)
		return 2
	}
	defer func() { _ = flush() }()

	owners, err := NewOwners(cfg.ExtraOwners...)
	if err != nil {
		log.Error().Err(err).Msg("Bad EXTRA_OWNERS")
		return 1
	}

	log.Info().Str("path", cfg.SettingsDB).Msg("Opening settings database")
	settings, err := sqlite.New(cfg.SettingsDB)
	if err != nil {
		log.Error().Err(err).Msg("Error opening settings database")
		return 1
	}
	defer settings.Close()

	log.Info().Msg("Creating Discord Session")
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		log.Error().Err(err).Msg("Error creating discord session")
		return 1
	}

	colors := color.NewService(guilddb.New(cfg.DataDir), discordRoles{s: dg})
	b := newBot(dg, settings, colors, owners, cfg)

	log.Info().Msg("Adding event handlers to discordgo session")
	dg.AddHandler(b.ready)
	dg.AddHandler(b.guildCreate)
	dg.AddHandler(b.messageCreate)
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	log.Info().Msg("Opening discord connection")
	if err := dg.Open(); err != nil {
		log.Error().Err(err).Msg("")
		return 1
	}
	defer dg.Close()
	log.Info().Msg("Discord connection opened")

	app, err := dg.Application("@me")
	if err != nil {
		log.Error().Err(err).Msg("Couldn't get application info")
		return 1
	}
	if app.Owner != nil {
		if err := owners.Add(app.Owner.ID); err != nil {
			log.Error().Err(err).Msg("")
			return 1
		}
	}

	log.Info().Int("owners", owners.Len()).Str("data", cfg.DataDir).Msg("Setup Complete")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	select {
	case <-sc:
	case <-b.quit:
	}
	log.Info().Msg("Shutting down")
	return 0
}

func (b *bot) ready(_ *discordgo.Session, event *discordgo.Ready) {
	log.Info().Str("user", event.User.String()).Int("guilds", len(event.Guilds)).Msg("Connected")
}

func (b *bot) guildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	b.servers.load(g.ID, g.Name)
}

func (b *bot) messageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	response := b.handle(m.Message)
	if response == "" {
		return
	}
	if _, err := messages.Reply(b.session, m.Message, response); err != nil {
		log.Error().Err(err).Str("channelID", m.ChannelID).Msg("Couldn't reply")
	}
}

// handle runs the command in m, if any, and returns the reply to send.
func (b *bot) handle(m *discordgo.Message) string {
	if m.Author == nil || m.Author.Bot {
		return ""
	}

	p := b.servers.prefix(m.GuildID)
	if !strings.HasPrefix(m.Content, p) {
		return ""
	}

	a := args.New(strings.TrimPrefix(m.Content, p))
	name, ok := a.Next()
	if !ok {
		return ""
	}
	cmd, ok := b.commands[strings.ToLower(name)]
	if !ok {
		return ""
	}

	if cmd.guildOnly && m.GuildID == "" {
		return "This command only works in servers."
	}

	if cmd.sub != nil {
		subName, _ := a.Next()
		sub, ok := cmd.sub[strings.ToLower(subName)]
		if !ok {
			return "Usage: `" + p + cmd.usage + "`"
		}
		sub.guildOnly = cmd.guildOnly
		sub.limited = cmd.limited
		cmd = sub
	}

	if b.userPermissionLevel(m) < cmd.permission {
		return "Invalid Permission level"
	}

	if cmd.limited {
		if wait := b.limiter.take(m.Author.ID, b.now()); wait > 0 {
			return fmt.Sprintf("Try again in %d seconds.", int(math.Ceil(wait.Seconds())))
		}
	}

	response, err := cmd.function(b, &call{msg: m, args: a})
	if err != nil {
		ev := log.Error()
		if k := store.KindOf(err); k == store.NotFound || k == store.MalformedInput {
			ev = log.Debug()
		}
		ev.Err(err).
			Str("cmd", cmd.command).
			Str("guild", m.GuildID).
			Str("user", m.Author.ID).
			Msg("Command failed")
		return "Error: " + err.Error()
	}
	return response
}

func (b *bot) userPermissionLevel(m *discordgo.Message) int {
	if b.owners.Is(m.Author.ID) {
		return botowner
	}
	if m.GuildID == "" {
		return botunknown
	}

	perms, err := b.session.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		log.Error().Err(err).Str("user", m.Author.ID).Msg("Couldn't read permissions")
		return botunknown
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return botadmin
	}
	return botunknown
}
