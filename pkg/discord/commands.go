package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"github.com/DevForge-BG/discord-bot/pkg/shared"
)

// parseMention extracts the user id from a <@id> or <@!id> mention.
func parseMention(arg string) (string, error) {
	if strings.HasPrefix(arg, "<@") && strings.HasSuffix(arg, ">") {
		id := strings.TrimSuffix(strings.TrimPrefix(arg, "<@"), ">")
		id = strings.TrimPrefix(id, "!")
		if id != "" {
			return id, nil
		}
	}
	return "", shared.NewError(shared.ArgumentError, "expected a user mention, got %v", arg)
}

func (b *Bot) participantFor(userID string) (shared.ParticipantHandle, error) {
	member, err := b.session.GuildMember(b.guildID, userID)
	if err != nil {
		return shared.ParticipantHandle{}, shared.NewError(shared.ExecutionError, "could not fetch member: %v", err)
	}
	return shared.ParticipantHandle{ID: userID, Name: member.User.Username}, nil
}

// Record an application: GitHub handle into the store, pending role on the
// applicant, a note for the admins.
func (b *Bot) apply(m *discordgo.MessageCreate, actor shared.Actor, args []string) (string, error) {
	if len(args) < 1 {
		return "", shared.NewError(shared.ArgumentError, "usage: !apply <github-username>")
	}
	handle := strings.TrimSpace(args[0])
	if err := b.store.UpsertParticipant(m.Author.ID, handle); err != nil {
		return "", shared.NewError(shared.ExecutionError, "could not save application: %v", err)
	}
	if err := b.session.GuildMemberRoleAdd(b.guildID, m.Author.ID, b.roles.PendingID); err != nil {
		log.WithError(err).WithField("user", m.Author.ID).Warn("could not grant pending role")
	}
	if appsID, err := b.applicationsChannel(); err != nil {
		log.WithError(err).Warn("could not reach applications channel")
	} else {
		note := fmt.Sprintf("**New application from <@!%v>**\n**GitHub:** %v", m.Author.ID, handle)
		if _, err := b.session.ChannelMessageSend(appsID, note); err != nil {
			log.WithError(err).Warn("could not forward application")
		}
	}
	return "Application received. If you are serious, you will hear back. 🙂", nil
}

// Accept an applicant: pending role off, student role on, active in the
// store, welcome DM.
func (b *Bot) adopt(m *discordgo.MessageCreate, actor shared.Actor, args []string) (string, error) {
	if len(args) < 1 {
		return "", shared.NewError(shared.ArgumentError, "usage: !adopt @user")
	}
	userID, err := parseMention(args[0])
	if err != nil {
		return "", err
	}
	if err := b.store.ActivateParticipant(userID); err != nil {
		return "", shared.NewError(shared.ExecutionError, "could not activate participant: %v", err)
	}
	if err := b.session.GuildMemberRoleRemove(b.guildID, userID, b.roles.PendingID); err != nil {
		log.WithError(err).WithField("user", userID).Warn("could not remove pending role")
	}
	if err := b.session.GuildMemberRoleAdd(b.guildID, userID, b.roles.StudentID); err != nil {
		return "", shared.NewError(shared.ExecutionError, "could not grant student role: %v", err)
	}
	if dm, err := b.session.UserChannelCreate(userID); err == nil {
		welcome := "You are in. Learn the server structure and behave like someone who wants to become an engineer."
		if _, err := b.session.ChannelMessageSend(dm.ID, welcome); err != nil {
			log.WithError(err).WithField("user", userID).Warn("could not send welcome DM")
		}
	}
	return fmt.Sprintf("<@!%v> is now a student.", userID), nil
}

// Provision a participant's personal space and greet them in it.
func (b *Bot) initSpace(m *discordgo.MessageCreate, actor shared.Actor, args []string) (string, error) {
	if len(args) < 1 {
		return "", shared.NewError(shared.ArgumentError, "usage: !init @user")
	}
	userID, err := parseMention(args[0])
	if err != nil {
		return "", err
	}
	participant, err := b.participantFor(userID)
	if err != nil {
		return "", err
	}
	space, err := b.spaces.EnsureParticipantSpace(participant, m.Author.ID)
	if err != nil {
		return "", err
	}
	if err := b.store.ActivateParticipant(userID); err != nil {
		return "", shared.NewError(shared.ExecutionError, "could not record participant: %v", err)
	}
	if space.Created {
		greeting := fmt.Sprintf("<@!%v>, this is your personal space.\nWrite down:\n"+
			"- what experience you have\n"+
			"- what you want to learn or build\n"+
			"- how many hours a week you can commit\n"+
			"- a link to your GitHub.", userID)
		if _, err := b.session.ChannelMessageSend(space.ProfileChannelID, greeting); err != nil {
			log.WithError(err).Warn("could not send space greeting")
		}
	}
	return fmt.Sprintf("Initialized space for <@!%v>.", userID), nil
}

// Assign a project to a participant.
func (b *Bot) assign(m *discordgo.MessageCreate, actor shared.Actor, args []string) (string, error) {
	if len(args) < 5 {
		return "", shared.NewError(shared.ArgumentError,
			`usage: !assign @user "Project title" <repo-url> <difficulty> <focus>`)
	}
	userID, err := parseMention(args[0])
	if err != nil {
		return "", err
	}
	owner, err := b.participantFor(userID)
	if err != nil {
		return "", err
	}
	title, repoURL, difficulty := args[1], args[2], args[3]
	focus := strings.Join(args[4:], " ")
	result, err := b.projects.Assign(actor, owner, title, repoURL, difficulty, focus)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Project `%v` created for <@!%v> in <#%v> (id=%v).",
		title, userID, result.ChannelID, result.ProjectID), nil
}

// Student marks the project in this channel as ready for review.
func (b *Bot) markDone(m *discordgo.MessageCreate, actor shared.Actor, args []string) (string, error) {
	if _, err := b.projects.MarkDone(m.ChannelID); err != nil {
		return "", err
	}
	return "Marked as ready for review. Expect feedback.", nil
}

// Mentor feedback for the project in this channel.
func (b *Bot) feedback(m *discordgo.MessageCreate, actor shared.Actor, args []string) (string, error) {
	if len(args) == 0 {
		return "", shared.NewError(shared.ArgumentError, "usage: !feedback <issues, directions, next steps>")
	}
	issues := strings.Join(args, " ")
	if _, err := b.projects.Feedback(actor, m.ChannelID, issues); err != nil {
		return "", err
	}
	return "Feedback posted.", nil
}

// Mark the project in this channel as production-ready.
func (b *Bot) approve(m *discordgo.MessageCreate, actor shared.Actor, args []string) (string, error) {
	if _, err := b.projects.Approve(actor, m.ChannelID); err != nil {
		return "", err
	}
	return "The project is marked as approved.", nil
}

// applicationsChannel finds the admins' intake channel, creating it if the
// server does not have one yet.
func (b *Bot) applicationsChannel() (string, error) {
	channels, err := b.session.GuildChannels(b.guildID)
	if err != nil {
		return "", err
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == b.community.ApplicationsChannel {
			return ch.ID, nil
		}
	}
	ch, err := b.session.GuildChannelCreate(b.guildID, b.community.ApplicationsChannel, discordgo.ChannelTypeGuildText)
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}
