package github

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/bradleyfalzon/ghinstallation"
	"github.com/google/go-github/v29/github"

	"github.com/DevForge-BG/discord-bot/pkg/shared"
)

// Hooks registers push webhooks on assigned repositories through a GitHub
// App installation, so routed repositories start delivering without manual
// setup.
type Hooks struct {
	client    *github.Client
	targetURL string
}

// New builds the App-installation client. creds is the base64-encoded
// private key PEM.
func New(appID, installationID int64, creds, targetURL string) (*Hooks, error) {
	key, err := base64.StdEncoding.DecodeString(creds)
	if err != nil {
		return nil, err
	}
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, key)
	if err != nil {
		return nil, err
	}
	return &Hooks{
		client:    github.NewClient(&http.Client{Transport: itr}),
		targetURL: targetURL,
	}, nil
}

// EnsurePushHook creates a push webhook on the repository pointing at the
// event router, skipping repositories that already have one.
func (h *Hooks) EnsurePushHook(repoFullName string) error {
	parts := strings.SplitN(repoFullName, "/", 2)
	if len(parts) != 2 {
		return shared.NewError(shared.ArgumentError, "malformed repository name: %v", repoFullName)
	}
	owner, repo := parts[0], parts[1]
	ctx := context.Background()

	existing, _, err := h.client.Repositories.ListHooks(ctx, owner, repo, nil)
	if err != nil {
		return err
	}
	for _, hook := range existing {
		if hook.Config["url"] == h.targetURL {
			return nil
		}
	}

	hook := &github.Hook{
		Config: map[string]interface{}{
			"content_type": "json",
			"url":          h.targetURL,
		},
		Events: []string{"push"},
	}
	_, _, err = h.client.Repositories.CreateHook(ctx, owner, repo, hook)
	return err
}
