// Package discordapi talks to the Discord REST API on behalf of a
// dashboard user, using the user's OAuth2 access token.
package discordapi

import (
	"context"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/dghubble/sling"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/pkg/errors"

	"guildhub/internal/permissions"
)

const APIBase = "https://discord.com/api/v10/"

type APIError struct {
	Status  int    `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "discord api: " + http.StatusText(e.Status)
	}
	return "discord api: " + e.Message
}

// Is lets a 401 match permissions.ErrTokenRejected.
func (e *APIError) Is(target error) bool {
	return target == permissions.ErrTokenRejected && e.Status == http.StatusUnauthorized
}

type Client struct {
	http *http.Client
	base *sling.Sling
}

// NewClient uses a pooled cleanhttp client when httpClient is nil.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
	}
	return &Client{
		http: httpClient,
		base: sling.New().Client(httpClient).Base(APIBase).Set("User-Agent", "guildhub (https://github.com/guildhub, 1.0)"),
	}
}

func (c *Client) HTTPClient() *http.Client {
	return c.http
}

func (c *Client) get(ctx context.Context, accessToken, path string, out interface{}) error {
	req, err := c.base.New().Get(path).Set("Authorization", "Bearer "+accessToken).Request()
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	apiErr := &APIError{}
	resp, err := c.base.Do(req.WithContext(ctx), out, apiErr)
	if err != nil {
		return errors.Wrapf(err, "GET %s", path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr.Status = resp.StatusCode
		return apiErr
	}
	return nil
}

func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*discordgo.User, error) {
	user := &discordgo.User{}
	if err := c.get(ctx, accessToken, "users/@me", user); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) UserGuilds(ctx context.Context, accessToken string) ([]permissions.UserGuild, error) {
	var guilds []permissions.UserGuild
	if err := c.get(ctx, accessToken, "users/@me/guilds", &guilds); err != nil {
		return nil, err
	}
	return guilds, nil
}
