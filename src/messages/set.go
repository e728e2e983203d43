package messages

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

// SetRaw sends message s on Message.channel if Message.isSent is not set, or edits the message that
// has been sent if it is set.
func (m *Message) SetRaw(s string) error {
	m.Lock()
	defer m.Unlock()

	if !m.isSent {
		message, err := m.session.ChannelMessageSend(m.channel, s)
		if err != nil {
			logMessageWithError(m.channel, s, err)
			return err
		}
		logMessage(message)
		m.isSent = true
		m.m = message
		return nil
	}

	message, err := m.session.ChannelMessageEdit(m.channel, m.m.ID, s)
	if err != nil {
		logMessageWithError(m.channel, s, err)
		return err
	}
	logMessage(message)
	m.m = message
	return nil
}

// Set sends message s on Message.channel if Message.isSent is not set, or edits the message that
// has been sent if it is set.
// Prepends and appends "**" to s
func (m *Message) Set(s string) error {
	if len(s) == 0 {
		return errors.New("empty message")
	}
	return m.SetRaw("**" + s + "**")
}

// Embed sends e on Message.channel. An already sent message cannot become an embed.
func (m *Message) Embed(e *discordgo.MessageEmbed) error {
	m.Lock()
	defer m.Unlock()

	if m.isSent {
		return errors.New("message already sent")
	}
	message, err := m.session.ChannelMessageSendEmbed(m.channel, e)
	if err != nil {
		logMessageWithError(m.channel, e.Title, err)
		return err
	}
	logMessage(message)
	m.isSent = true
	m.m = message
	return nil
}

// Reply answers to in its channel, mentioning its author.
func Reply(session Sender, to *discordgo.Message, s string) (*Message, error) {
	if len(s) == 0 {
		return nil, errors.New("empty message")
	}
	m := New(session, to.ChannelID)
	text := s
	if to.Author != nil {
		text = to.Author.Mention() + ": " + s
	}
	return m, m.SetRaw(text)
}
