package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/campuscord/rolesync/pkg/roles"
)

// AuditReasonHeader carries the human-readable reason attached to
// role mutations for the platform's audit log.
const AuditReasonHeader = "X-Audit-Log-Reason"

const defaultTimeout = 15 * time.Second

// Role is a role as the platform reports it.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client talks to the platform's bot API over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a Client for the given API base URL and bot token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// WithHTTPClient overrides the underlying HTTP client, e.g. to adjust
// the timeout.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	c.http = httpClient
	return c
}

type memberResponse struct {
	Roles []string `json:"roles"`
}

// MemberRoles returns the member's current role set, excluding the
// guild's implicit everyone role. ok=false when the member is not in
// the guild.
func (c *Client) MemberRoles(ctx context.Context, guildID, memberID string) (roles.Set, bool, error) {
	var member memberResponse
	found, err := c.getJSON(ctx, c.memberPath(guildID, memberID), &member)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	current := make(roles.Set, len(member.Roles))
	for _, id := range member.Roles {
		// The everyone role shares the guild's identifier and is not
		// part of membership state.
		if id == guildID {
			continue
		}
		current.Add(id)
	}
	return current, true, nil
}

// GuildRoles returns the identifiers of all roles in the guild,
// excluding the everyone role.
func (c *Client) GuildRoles(ctx context.Context, guildID string) (roles.Set, error) {
	var guildRoles []Role
	found, err := c.getJSON(ctx, fmt.Sprintf("/guilds/%s/roles", url.PathEscape(guildID)), &guildRoles)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("guild %s not found", guildID)
	}

	existing := make(roles.Set, len(guildRoles))
	for _, role := range guildRoles {
		if role.ID == guildID {
			continue
		}
		existing.Add(role.ID)
	}
	return existing, nil
}

// ApplyRoleChanges applies removals and then additions for a member.
// Removal-before-addition ordering matters: the platform mutates one
// role at a time, and a cascaded removal may be re-granted in the
// same batch. Failures surface immediately; already-applied mutations
// are not rolled back, and re-running the synchronization converges.
func (c *Client) ApplyRoleChanges(ctx context.Context, guildID, memberID string, remove, add []string, reason string) error {
	for _, roleID := range remove {
		if err := c.mutateRole(ctx, http.MethodDelete, guildID, memberID, roleID, reason); err != nil {
			return fmt.Errorf("failed to remove role %s: %w", roleID, err)
		}
	}
	for _, roleID := range add {
		if err := c.mutateRole(ctx, http.MethodPut, guildID, memberID, roleID, reason); err != nil {
			return fmt.Errorf("failed to add role %s: %w", roleID, err)
		}
	}
	return nil
}

func (c *Client) memberPath(guildID, memberID string) string {
	return fmt.Sprintf("/guilds/%s/members/%s", url.PathEscape(guildID), url.PathEscape(memberID))
}

// getJSON performs a GET and decodes the response. found=false on 404.
func (c *Client) getJSON(ctx context.Context, path string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, apiError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("failed to decode platform response: %w", err)
	}
	return true, nil
}

func (c *Client) mutateRole(ctx context.Context, method, guildID, memberID, roleID, reason string) error {
	path := fmt.Sprintf("%s/roles/%s", c.memberPath(guildID, memberID), url.PathEscape(roleID))
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.authorize(req)
	if reason != "" {
		req.Header.Set(AuditReasonHeader, reason)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("Accept", "application/json")
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if len(body) == 0 {
		return fmt.Errorf("platform returned %s", resp.Status)
	}
	return fmt.Errorf("platform returned %s: %s", resp.Status, body)
}
