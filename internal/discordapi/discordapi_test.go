package discordapi

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildhub/internal/apperr"
	"guildhub/internal/permissions"
)

func newMockedClient(t *testing.T) *Client {
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return NewClient(httpClient)
}

func TestUserGuilds(t *testing.T) {
	client := newMockedClient(t)
	httpmock.RegisterResponder("GET", APIBase+"users/@me/guilds", func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("Authorization") != "Bearer tok" {
			return httpmock.NewStringResponse(401, `{"message":"401: Unauthorized","code":0}`), nil
		}
		return httpmock.NewStringResponse(200, `[
			{"id":"111111111111111111","name":"Guild","icon":"abc","owner":true,"permissions":"2147483647"},
			{"id":"222222222222222222","name":"Other","icon":null,"owner":false,"permissions":"0"}
		]`), nil
	})

	guilds, err := client.UserGuilds(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, guilds, 2)
	assert.Equal(t, "111111111111111111", guilds[0].ID)
	assert.True(t, guilds[0].Owner)
	assert.Equal(t, int64(2147483647), guilds[0].Permissions)
	assert.Equal(t, int64(0), guilds[1].Permissions)

	_, err = client.UserGuilds(context.Background(), "wrong")
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok, "expected *APIError, got %T", err)
	assert.Equal(t, 401, apiErr.Status)
	assert.ErrorIs(t, err, permissions.ErrTokenRejected)

	httpmock.RegisterResponder("GET", APIBase+"users/@me/guilds",
		httpmock.NewStringResponder(502, `{"message":"bad gateway","code":0}`))
	_, err = client.UserGuilds(context.Background(), "tok")
	require.Error(t, err)
	assert.NotErrorIs(t, err, permissions.ErrTokenRejected)
}

func TestRejectedTokenIsUnauthenticated(t *testing.T) {
	client := newMockedClient(t)
	httpmock.RegisterResponder("GET", APIBase+"users/@me/guilds",
		httpmock.NewStringResponder(401, `{"message":"401: Unauthorized","code":0}`))

	_, err := permissions.NewGate(client).Require(context.Background(), permissions.Caller{AccessToken: "revoked"}, "111111111111111111")
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).Status())
	assert.Equal(t, apperr.CodeNoSession, apperr.CodeOf(err))
}

func TestCurrentUser(t *testing.T) {
	client := newMockedClient(t)
	httpmock.RegisterResponder("GET", APIBase+"users/@me",
		httpmock.NewStringResponder(200, `{"id":"444444444444444444","username":"someone","avatar":"a1"}`))

	user, err := client.CurrentUser(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "444444444444444444", user.ID)
	assert.Equal(t, "someone", user.Username)
}

func TestExchange(t *testing.T) {
	client := newMockedClient(t)
	httpmock.RegisterResponder("POST", Endpoint.TokenURL, func(req *http.Request) (*http.Response, error) {
		if err := req.ParseForm(); err != nil {
			return nil, err
		}
		if req.PostForm.Get("code") != "the-code" || req.PostForm.Get("client_id") != "cid" {
			return httpmock.NewStringResponse(400, `{"error":"invalid_grant"}`), nil
		}
		resp := httpmock.NewStringResponse(200, `{"access_token":"tok","token_type":"Bearer","expires_in":604800,"refresh_token":"ref","scope":"identify guilds"}`)
		resp.Header.Set("Content-Type", "application/json")
		return resp, nil
	})
	httpmock.RegisterResponder("GET", APIBase+"users/@me",
		httpmock.NewStringResponder(200, `{"id":"444444444444444444","username":"someone"}`))

	oauth := NewOAuth("cid", "secret", "http://localhost:8080/auth/callback", client)
	token, user, err := oauth.Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "tok", token.AccessToken)
	assert.Equal(t, "444444444444444444", user.ID)

	_, _, err = oauth.Exchange(context.Background(), "bad-code")
	assert.Error(t, err)
}

func TestAuthCodeURL(t *testing.T) {
	oauth := NewOAuth("cid", "secret", "http://localhost:8080/auth/callback", NewClient(nil))
	raw := oauth.AuthCodeURL("state-1")

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "discord.com", parsed.Host)
	q := parsed.Query()
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "identify guilds", q.Get("scope"))
	assert.Equal(t, "code", q.Get("response_type"))
}
