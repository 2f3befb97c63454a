package firebase

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

type user struct {
	LocalID       string `json:"localId"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	EmailVerified bool   `json:"emailVerified"`
	Disabled      bool   `json:"disabled"`
	CreatedAt     string `json:"createdAt"`
	LastLoginAt   string `json:"lastLoginAt"`
}

// millis formats an epoch-milliseconds string.
func millis(ms, fallback string) string {
	n, err := strconv.ParseInt(ms, 10, 64)
	if err != nil || n == 0 {
		return fallback
	}
	return time.UnixMilli(n).UTC().Format(time.RFC1123)
}

func orNotSet(s string) string {
	if s == "" {
		return "Not set"
	}
	return s
}

func (c *Connector) lookup(ctx context.Context, key, value string) (user, error) {
	var resp struct {
		Users []user `json:"users"`
	}
	if err := c.auth.Post(ctx, "accounts:lookup", map[string]any{key: []string{value}}, &resp); err != nil {
		return user{}, err
	}
	if len(resp.Users) == 0 {
		return user{}, types.ErrUpstream("Firebase Auth", http.StatusNotFound, fmt.Sprintf("No user found for %s", value), nil)
	}
	return resp.Users[0], nil
}

func (c *Connector) authCreateUser(ctx context.Context, args tools.Args) (any, error) {
	u := user{Email: args.String("email"), DisplayName: args.String("displayName")}
	if c.cfg.Mock {
		u.LocalID = "mock-uid-1"
		u.CreatedAt = "1767603600000"
	} else {
		if err := c.ready(); err != nil {
			return nil, err
		}
		req := map[string]any{"email": u.Email, "password": args.String("password")}
		if u.DisplayName != "" {
			req["displayName"] = u.DisplayName
		}
		var created user
		if err := c.auth.Post(ctx, "accounts", req, &created); err != nil {
			return nil, err
		}
		var err error
		if u, err = c.lookup(ctx, "localId", created.LocalID); err != nil {
			return nil, err
		}
	}
	return fmt.Sprintf("User created successfully:\n\nUID: %s\nEmail: %s\nDisplay Name: %s\nCreated: %s",
		u.LocalID, u.Email, orNotSet(u.DisplayName), millis(u.CreatedAt, "Unknown")), nil
}

func (c *Connector) authGetUser(ctx context.Context, args tools.Args) (any, error) {
	ident := args.String("identifier")
	var u user
	if c.cfg.Mock {
		u = user{LocalID: "mock-uid-1", Email: "user@example.com", CreatedAt: "1767603600000"}
	} else {
		if err := c.ready(); err != nil {
			return nil, err
		}
		key := "email"
		if args.String("type") == "uid" {
			key = "localId"
		}
		var err error
		if u, err = c.lookup(ctx, key, ident); err != nil {
			return nil, err
		}
	}
	return fmt.Sprintf("User found:\n\nUID: %s\nEmail: %s\nDisplay Name: %s\nEmail Verified: %t\nDisabled: %t\nLast Sign In: %s\nCreated: %s",
		u.LocalID, u.Email, orNotSet(u.DisplayName), u.EmailVerified, u.Disabled,
		millis(u.LastLoginAt, "Never"), millis(u.CreatedAt, "Unknown")), nil
}
