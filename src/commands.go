package hue

import (
	"fmt"
	"sort"
	"strings"
	"time"

	dgo "github.com/bwmarrin/discordgo"
	"github.com/dpatterbee/hue/src/args"
	"github.com/dpatterbee/hue/src/color"
	"github.com/dpatterbee/hue/src/messages"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type botCommand struct {
	command    string
	function   defCommand
	permission int
	guildOnly  bool
	limited    bool
	usage      string
	sub        map[string]botCommand
}

const (
	botunknown = iota
	botadmin
	botowner
)

// call is a single invocation of a command.
type call struct {
	msg  *dgo.Message
	args *args.Args
}

func (c *call) guildID() string  { return c.msg.GuildID }
func (c *call) authorID() string { return c.msg.Author.ID }

type defCommand func(*bot, *call) (string, error)

var commandList = []botCommand{
	{command: "about", function: about, permission: botunknown, usage: "about"},
	{command: "ping", function: ping, permission: botunknown, usage: "ping"},
	{command: "latency", function: latency, permission: botunknown, usage: "latency"},
	{command: "help", function: help, permission: botunknown, usage: "help"},
	{command: "prefix", function: prefix, permission: botadmin, guildOnly: true, usage: "prefix [new prefix]"},
	{command: "presence", function: presence, permission: botowner,
		usage: "presence playing <name> | streaming <name> <url> | listening <name> | reset"},
	{command: "quit", function: quit, permission: botowner, usage: "quit [shard]"},
	{command: "color", guildOnly: true, limited: true, usage: "color set <hex> | unset | show | clean",
		sub: map[string]botCommand{
			"set":   {command: "set", function: colorSet, permission: botunknown},
			"unset": {command: "unset", function: colorUnset, permission: botunknown},
			"show":  {command: "show", function: colorShow, permission: botunknown},
			"clean": {command: "clean", function: colorClean, permission: botadmin},
		}},
}

func makeDefaultCommands() map[string]botCommand {
	cmds := make(map[string]botCommand)

	for _, v := range commandList {
		cmds[v.command] = v
	}

	return cmds
}

func about(b *bot, c *call) (string, error) {
	m := messages.New(b.session, c.msg.ChannelID)
	err := m.Embed(&dgo.MessageEmbed{
		Title: "About",
		Description: "hue hands out colour roles. " +
			"Use `color set <hex>` to pick a colour and `color unset` to drop it.",
		Color: 0xb16ab1,
	})
	return "", err
}

func ping(*bot, *call) (string, error) {
	return "Pong!", nil
}

func latency(b *bot, _ *call) (string, error) {
	l := b.session.HeartbeatLatency()
	if l <= 0 {
		return "The shard latency is unknown", nil
	}
	return fmt.Sprintf("The shard latency is %s", l.Round(time.Millisecond)), nil
}

func help(b *bot, c *call) (string, error) {
	level := b.userPermissionLevel(c.msg)

	names := make([]string, 0, len(b.commands))
	for k := range b.commands {
		names = append(names, k)
	}
	sort.Strings(names)

	var sb strings.Builder
	p := b.servers.prefix(c.guildID())
	for _, k := range names {
		cmd := b.commands[k]
		if cmd.permission > level {
			continue
		}
		_, _ = fmt.Fprintf(&sb, "`%s%s`\n", p, cmd.usage)
	}
	return sb.String(), nil
}

func prefix(b *bot, c *call) (string, error) {
	s, ok := c.args.Next()
	if !ok {
		return fmt.Sprintf("The prefix is %q", b.servers.prefix(c.guildID())), nil
	}

	if !c.args.Empty() {
		return "Prefix must be a single word", nil
	}
	if len(s) > maxPrefixLength {
		return fmt.Sprintf("Prefix must be %d or fewer characters", maxPrefixLength), nil
	}

	if err := b.servers.setPrefix(c.guildID(), s); err != nil {
		return "", err
	}

	return "Prefix successfully updated", nil
}

func presence(b *bot, c *call) (string, error) {
	kind, _ := c.args.Next()

	var err error
	switch kind {
	case "playing":
		name, ok := c.args.Next()
		if !ok {
			return "", errors.New("Name needed.")
		}
		err = b.session.UpdateGameStatus(0, name)
	case "streaming":
		name, ok := c.args.Next()
		if !ok {
			return "", errors.New("Name needed.")
		}
		url, ok := c.args.Next()
		if !ok {
			return "", errors.New("URL needed.")
		}
		err = b.session.UpdateStreamingStatus(0, name, url)
	case "listening":
		name, ok := c.args.Next()
		if !ok {
			return "", errors.New("Name needed.")
		}
		err = b.session.UpdateListeningStatus(name)
	case "reset":
		err = b.session.UpdateGameStatus(0, "")
	default:
		return "", errors.New(
			"Give `playing <name>`, `streaming <name> <url>`, `listening <name>`, or `reset`.")
	}
	if err != nil {
		return "", err
	}

	return "Done!", nil
}

func quit(b *bot, c *call) (string, error) {
	var reply string
	switch arg, ok := c.args.Next(); {
	case !ok:
		reply = "Quitting all shards."
	case arg == "shard":
		reply = "Quitting current shard."
	default:
		return "", errors.Errorf("Unknown argument %q.", arg)
	}

	if _, err := messages.Reply(b.session, c.msg, reply); err != nil {
		log.Error().Err(err).Msg("Couldn't say goodbye")
	}
	log.Info().Str("user", c.authorID()).Msg("Quit requested")
	b.stop()
	return "", nil
}

func colorSet(b *bot, c *call) (string, error) {
	s, ok := c.args.Next()
	if !ok {
		return "", errors.New("You must provide a hex RGB color.")
	}
	col, err := color.Parse(s)
	if err != nil {
		return "", errors.Wrap(err, "Color parsing")
	}

	if err := b.colors.Set(c.guildID(), c.authorID(), col); err != nil {
		return "", err
	}

	return fmt.Sprintf("Your color is now #%s.", col), nil
}

func colorUnset(b *bot, c *call) (string, error) {
	if err := b.colors.Unset(c.guildID(), c.authorID()); err != nil {
		return "", err
	}
	return "Your color has been unset.", nil
}

func colorShow(b *bot, c *call) (string, error) {
	col, ok, err := b.colors.Current(c.guildID(), c.authorID())
	if err != nil {
		return "", err
	}
	if !ok {
		return "You have no active color.", nil
	}
	return fmt.Sprintf("Your color is #%s.", col), nil
}

func colorClean(b *bot, c *call) (string, error) {
	if _, err := b.colors.Clean(c.guildID()); err != nil {
		return "", err
	}
	return "Colors cleaned.", nil
}
