package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

var greetings = map[string]bool{
	"hi":      true,
	"hey":     true,
	"hello":   true,
	"zdr":     true,
	"zdrasti": true,
}

// IsGreetingOnly reports whether a message is a bare greeting with no
// question attached.
func IsGreetingOnly(content string) bool {
	return greetings[strings.ToLower(strings.TrimSpace(content))]
}

// Help and project channels run on full questions, not pings.
func (b *Bot) isMonitoredChannel(name string) bool {
	for _, help := range b.community.HelpChannels {
		if name == help {
			return true
		}
	}
	return strings.Contains(name, "proj-")
}

func (b *Bot) moderate(m *discordgo.MessageCreate) {
	if !IsGreetingOnly(m.Content) {
		return
	}
	channel, err := b.session.State.Channel(m.ChannelID)
	if err != nil {
		if channel, err = b.session.Channel(m.ChannelID); err != nil {
			return
		}
	}
	if !b.isMonitoredChannel(channel.Name) {
		return
	}
	if err := b.session.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
		log.WithError(err).Warn("could not delete greeting message")
	}
	nudge := fmt.Sprintf("<@!%v> we work asynchronously here. Post the whole question: "+
		"context, expected result, actual result, code. A lone 'hi' is not a question.",
		m.Author.ID)
	if _, err := b.session.ChannelMessageSend(m.ChannelID, nudge); err != nil {
		log.WithError(err).Warn("could not send moderation nudge")
	}
}
