package messages

import (
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Sender is the part of *discordgo.Session used to send text.
type Sender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

var _ Sender = (*discordgo.Session)(nil)

// Message represents a message that has or will be sent to a text channel.
type Message struct {
	m       *discordgo.Message
	isSent  bool
	channel string

	session Sender

	sync.Mutex
}

func New(session Sender, channel string) *Message {
	return &Message{
		session: session,
		channel: channel,
	}
}

// ID returns the ID of the sent message, or "" before it is sent.
func (m *Message) ID() string {
	m.Lock()
	defer m.Unlock()

	if !m.isSent {
		return ""
	}
	return m.m.ID
}

func logMessageWithError(channel, content string, err error) {
	log.Error().
		Err(err).
		Str("msg", content).
		Str("channelID", channel).
		Msg("")
}

func logMessage(message *discordgo.Message) {
	ev := log.Info().
		Str("msg", message.ContentWithMentionsReplaced()).
		Str("channelID", message.ChannelID)
	if message.Author != nil {
		ev = ev.Str("author", message.Author.String())
	}
	ev.Msg("")
}

func (m *Message) Delete() error {
	m.Lock()
	defer m.Unlock()

	if !m.isSent {
		return errors.New("message not sent")
	}

	return m.session.ChannelMessageDelete(m.channel, m.m.ID)
}
