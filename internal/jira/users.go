package jira

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// GetUserProfile resolves a user by identifier. On Cloud the identifier may
// be an email address, a display name or an explicit "accountid:" prefix;
// on Server/DC it is a username.
func (c *Client) GetUserProfile(ctx context.Context, identifier string, pat string) (*User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, errors.New("jira: user identifier is required")
	}

	if !c.IsCloud() {
		var user User
		endpoint := c.api("user") + "?username=" + url.QueryEscape(identifier)
		if err := c.call(ctx, pat, http.MethodGet, endpoint, nil, &user); err != nil {
			return nil, err
		}
		return &user, nil
	}

	if rest, ok := strings.CutPrefix(identifier, "accountid:"); ok {
		var user User
		endpoint := c.api("user") + "?accountId=" + url.QueryEscape(strings.TrimSpace(rest))
		if err := c.call(ctx, pat, http.MethodGet, endpoint, nil, &user); err != nil {
			return nil, err
		}
		return &user, nil
	}

	var users []User
	endpoint := c.api("user", "search") + "?query=" + url.QueryEscape(identifier)
	if err := c.call(ctx, pat, http.MethodGet, endpoint, nil, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("jira: user %q not found", identifier)
	}
	return &users[0], nil
}
