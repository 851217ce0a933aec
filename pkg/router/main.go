package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/DevForge-BG/discord-bot/pkg/shared"
)

// Resolver looks up the destination channel for a repository. Returns ""
// when the repository was never assigned as a project.
type Resolver interface {
	LookupChannelForRepo(repoFullName string) (string, error)
}

type commitAuthor struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

type commit struct {
	Message string       `json:"message"`
	URL     string       `json:"url"`
	Author  commitAuthor `json:"author"`
}

type pushEvent struct {
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
	Commits []commit `json:"commits"`
}

// BatchResult counts per-commit delivery outcomes for one push event.
type BatchResult struct {
	Delivered int
	Failed    int
}

// Router accepts GitHub webhook deliveries and fans each push out to the
// mapped channel, one message per commit, in payload order.
type Router struct {
	resolver  Resolver
	messenger shared.Messenger
}

func New(resolver Resolver, messenger shared.Messenger) *Router {
	return &Router{resolver: resolver, messenger: messenger}
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.Header.Get("X-GitHub-Event") != "push" {
		respond(w, "ignored")
		return
	}

	var event pushEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "malformed push payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if event.Repository.FullName == "" {
		http.Error(w, "missing repository full name", http.StatusBadRequest)
		return
	}

	channelID, err := rt.resolver.LookupChannelForRepo(event.Repository.FullName)
	if err != nil {
		log.WithError(err).WithField("repo", event.Repository.FullName).Error("mapping lookup failed")
		http.Error(w, "mapping lookup failed", http.StatusInternalServerError)
		return
	}
	if channelID == "" {
		// Pushes for repositories never assigned as projects are a normal
		// steady state, not an error.
		respond(w, "no mapping")
		return
	}
	if !rt.messenger.HasChannel(channelID) {
		respond(w, "no channel")
		return
	}

	result := rt.fanOut(channelID, event.Commits)
	if result.Failed > 0 {
		log.WithFields(log.Fields{
			"repo":      event.Repository.FullName,
			"delivered": result.Delivered,
			"failed":    result.Failed,
		}).Warn("partial commit fan-out")
	}
	respond(w, "ok")
}

// fanOut attempts every commit even when earlier ones fail, so a flaky
// destination still receives as much of the batch as possible.
func (rt *Router) fanOut(channelID string, commits []commit) BatchResult {
	var result BatchResult
	for _, c := range commits {
		content := FormatCommit(c.Author.Username, c.Author.Name, c.Message, c.URL)
		if err := rt.messenger.Send(channelID, content); err != nil {
			result.Failed++
			log.WithError(err).WithField("channel", channelID).Warn("could not deliver commit notification")
			continue
		}
		result.Delivered++
	}
	return result
}

// FormatCommit renders one commit line. The account username wins over the
// display name when both are present.
func FormatCommit(username, name, message, url string) string {
	author := username
	if author == "" {
		author = name
	}
	return fmt.Sprintf("`%v` → `%v`\n<%v>", author, strings.TrimSpace(message), url)
}

func respond(w http.ResponseWriter, text string) {
	if _, err := fmt.Fprint(w, text); err != nil {
		log.WithError(err).Warn("could not write webhook response")
	}
}
