package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/DevForge-BG/discord-bot/pkg/provision"
)

// Adapter exposes the messaging and directory surfaces of one guild to the
// core. The core only ever sees channel and member ids.
type Adapter struct {
	session *discordgo.Session
	guildID string
}

func NewAdapter(session *discordgo.Session, guildID string) *Adapter {
	return &Adapter{session: session, guildID: guildID}
}

func (a *Adapter) Send(channelID, content string) error {
	_, err := a.session.ChannelMessageSend(channelID, content)
	return err
}

// HasChannel reports whether the destination still exists, checking the
// session state cache before hitting the API.
func (a *Adapter) HasChannel(channelID string) bool {
	if ch, err := a.session.State.Channel(channelID); err == nil && ch != nil {
		return true
	}
	_, err := a.session.Channel(channelID)
	return err == nil
}

func (a *Adapter) CategoryByName(name string) (string, error) {
	channels, err := a.session.GuildChannels(a.guildID)
	if err != nil {
		return "", err
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildCategory && ch.Name == name {
			return ch.ID, nil
		}
	}
	return "", nil
}

func (a *Adapter) CreateCategory(name string, grants []provision.Grant) (string, error) {
	ch, err := a.session.GuildChannelCreateComplex(a.guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildCategory,
		PermissionOverwrites: overwrites(grants),
	})
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

func (a *Adapter) RefreshCategoryGrants(categoryID string, grants []provision.Grant) error {
	_, err := a.session.ChannelEditComplex(categoryID, &discordgo.ChannelEdit{
		PermissionOverwrites: overwrites(grants),
	})
	return err
}

func (a *Adapter) ChannelByName(categoryID, name string) (string, error) {
	channels, err := a.session.GuildChannels(a.guildID)
	if err != nil {
		return "", err
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText && ch.ParentID == categoryID && ch.Name == name {
			return ch.ID, nil
		}
	}
	return "", nil
}

// Child channels do not inherit category overwrites through the API, so
// grants are applied to each created channel explicitly.
func (a *Adapter) CreateChannel(categoryID, name string, grants []provision.Grant) (string, error) {
	ch, err := a.session.GuildChannelCreateComplex(a.guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             categoryID,
		PermissionOverwrites: overwrites(grants),
	})
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

func overwrites(grants []provision.Grant) []*discordgo.PermissionOverwrite {
	memberPermission := discordgo.PermissionReadMessages | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory
	out := make([]*discordgo.PermissionOverwrite, 0, len(grants))
	for _, g := range grants {
		kind := "member"
		if g.IsRole {
			kind = "role"
		}
		o := &discordgo.PermissionOverwrite{ID: g.SubjectID, Type: kind}
		if g.Deny {
			o.Deny = discordgo.PermissionReadMessages
		} else {
			o.Allow = memberPermission
		}
		out = append(out, o)
	}
	return out
}
