package baas

import (
	"context"
	"encoding/json"
	"fmt"
)

// The authentication endpoints are passed through as-is: this client holds
// no credentials and performs no cryptography, it just relays the remote
// service's bearer tokens.

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	var result AuthResult
	if err := c.postJSON(ctx, fmt.Sprintf("%s/login", c.authBase), creds, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResult, error) {
	var result AuthResult
	if err := c.postJSON(ctx, fmt.Sprintf("%s/register", c.authBase), reg, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/profile", c.authBase))
	if err != nil {
		return nil, err
	}
	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &profile, nil
}
