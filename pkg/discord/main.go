package discord

import (
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"github.com/DevForge-BG/discord-bot/pkg/auth"
	"github.com/DevForge-BG/discord-bot/pkg/config"
	"github.com/DevForge-BG/discord-bot/pkg/lifecycle"
	"github.com/DevForge-BG/discord-bot/pkg/provision"
	"github.com/DevForge-BG/discord-bot/pkg/shared"
	"github.com/DevForge-BG/discord-bot/pkg/store"
)

// Create discord session for the bot token.
func Create(token string) (*discordgo.Session, error) {
	return discordgo.New("Bot " + token)
}

type Command struct {
	Keyword    string
	Handler    func(m *discordgo.MessageCreate, actor shared.Actor, args []string) (string, error)
	Permission shared.Permission
}

// Bot binds the command surface and the moderation listener to the core
// services.
type Bot struct {
	session   *discordgo.Session
	guildID   string
	community config.Community
	roles     RoleSet
	guard     auth.Guard
	store     *store.Store
	spaces    *provision.Manager
	projects  *lifecycle.Service
	commands  map[string]Command
}

func NewBot(session *discordgo.Session, guildID string, community config.Community, roles RoleSet,
	guard auth.Guard, st *store.Store, spaces *provision.Manager, projects *lifecycle.Service) *Bot {
	b := &Bot{
		session:   session,
		guildID:   guildID,
		community: community,
		roles:     roles,
		guard:     guard,
		store:     st,
		spaces:    spaces,
		projects:  projects,
		commands:  make(map[string]Command),
	}
	for _, cmd := range []Command{
		{Keyword: "apply", Handler: b.apply, Permission: shared.PermissionEveryone},
		{Keyword: "adopt", Handler: b.adopt, Permission: shared.PermissionAdmin},
		{Keyword: "init", Handler: b.initSpace, Permission: shared.PermissionAdmin},
		{Keyword: "assign", Handler: b.assign, Permission: shared.PermissionAdmin},
		{Keyword: "done", Handler: b.markDone, Permission: shared.PermissionEveryone},
		{Keyword: "feedback", Handler: b.feedback, Permission: shared.PermissionAdmin},
		{Keyword: "approve", Handler: b.approve, Permission: shared.PermissionAdmin},
	} {
		b.RegisterCommand(cmd)
	}
	return b
}

// Register a command to the bot.
func (b *Bot) RegisterCommand(cmd Command) {
	b.commands[cmd.Keyword] = cmd
}

// Attach the message listener to the session.
func (b *Bot) Start() {
	b.session.AddHandler(b.onMessage)
}

// When a message is sent, dispatch it as a command if it carries the prefix,
// otherwise let the moderation listener look at it.
func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}
	if m.GuildID != "" && m.GuildID != b.guildID {
		return
	}
	if !strings.HasPrefix(m.Content, "!") {
		b.moderate(m)
		return
	}
	if err := s.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
		log.WithError(err).Warn("could not delete command message")
	}
	b.dispatch(m)
}

// Dispatch a command and deliver its outcome to the channel.
func (b *Bot) dispatch(m *discordgo.MessageCreate) {
	args, err := splitArgs(strings.TrimPrefix(m.Content, "!"))
	if err != nil {
		b.reply(m.ChannelID, err.Error())
		return
	}
	if len(args) == 0 {
		return
	}
	response, err := b.execute(m, args)
	if err != nil {
		b.reply(m.ChannelID, err.Error())
		return
	}
	if response != "" {
		b.reply(m.ChannelID, response)
	}
}

// execute resolves the actor once, enforces the permission gate and runs the
// command. A refused admin command never reaches its handler, so it cannot
// mutate anything.
func (b *Bot) execute(m *discordgo.MessageCreate, args []string) (string, error) {
	keyword := strings.ToLower(args[0])
	cmd, exists := b.commands[keyword]
	if !exists {
		return "", shared.NewError(shared.ArgumentError, "Unrecognized command, %v", keyword)
	}
	actor := b.actorFor(m)
	if cmd.Permission == shared.PermissionAdmin && !b.guard.IsPrivileged(actor.Roles) {
		return "", shared.NewError(shared.AuthorizationError, "You do not have permission to execute this command")
	}
	return cmd.Handler(m, actor, args[1:])
}

func (b *Bot) actorFor(m *discordgo.MessageCreate) shared.Actor {
	actor := shared.Actor{ID: m.Author.ID}
	if m.Member != nil {
		actor.Roles = m.Member.Roles
		return actor
	}
	member, err := b.session.GuildMember(b.guildID, m.Author.ID)
	if err != nil {
		log.WithError(err).WithField("user", m.Author.ID).Warn("could not fetch member roles")
		return actor
	}
	actor.Roles = member.Roles
	return actor
}

func (b *Bot) reply(channelID, content string) {
	if _, err := b.session.ChannelMessageSend(channelID, content); err != nil {
		log.WithError(err).WithField("channel", channelID).Warn("could not send reply")
	}
}

// splitArgs splits a command line into fields, honoring double quotes so
// multi-word titles survive as a single argument.
func splitArgs(input string) ([]string, error) {
	var args []string
	var current strings.Builder
	inQuotes := false
	flush := func() {
		if current.Len() > 0 {
			args = append(args, current.String())
			current.Reset()
		}
	}
	for _, r := range input {
		switch {
		case r == '"':
			if inQuotes {
				flush()
			}
			inQuotes = !inQuotes
		case unicode.IsSpace(r) && !inQuotes:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	if inQuotes {
		return nil, shared.NewError(shared.ArgumentError, "unbalanced quotes in command")
	}
	flush()
	return args, nil
}
