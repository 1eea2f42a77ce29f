package discordapi

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://discord.com/oauth2/authorize",
	TokenURL:  "https://discord.com/api/oauth2/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

var Scopes = []string{"identify", "guilds"}

type OAuth struct {
	config *oauth2.Config
	client *Client
}

func NewOAuth(clientID, clientSecret, redirectURL string, client *Client) *OAuth {
	return &OAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     Endpoint,
			Scopes:       Scopes,
		},
		client: client,
	}
}

func (o *OAuth) AuthCodeURL(state string) string {
	return o.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "none"))
}

// Exchange trades an authorization code for a token and resolves the user
// it belongs to.
func (o *OAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, *discordgo.User, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, o.client.HTTPClient())
	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		return nil, nil, errors.Wrap(err, "exchange code")
	}
	user, err := o.client.CurrentUser(ctx, token.AccessToken)
	if err != nil {
		return nil, nil, errors.Wrap(err, "fetch current user")
	}
	return token, user, nil
}
