// Package remote is the HTTP client for the achievements service. The wire
// format for events and work times is the same JSON the local cache uses,
// so a week travels between the server and the cache without a translation
// layer.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tableflip.dev/shiwake/pkg/event"
	"tableflip.dev/shiwake/pkg/store"
	"tableflip.dev/shiwake/pkg/worktime"
)

// Project is one selectable project code.
type Project struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// User is the signed-in employee's profile. WorkTimeDefaults is keyed by
// lowercase weekday name with "HH:MM-HH:MM" values, the same shape the
// local configuration uses.
type User struct {
	EmployeeID       string            `json:"employeeId"`
	Name             string            `json:"name"`
	WorkTimeDefaults map[string]string `json:"workTimeDefaults,omitempty"`
}

// Client talks to one achievements service on behalf of one employee.
type Client struct {
	base       string
	employeeID string
	hc         *http.Client
}

// NewClient builds a client for the service at base.
func NewClient(base, employeeID string) *Client {
	return &Client{
		base:       strings.TrimRight(base, "/"),
		employeeID: employeeID,
		hc:         &http.Client{Timeout: 10 * time.Second},
	}
}

// WeekAchievements fetches the employee's events for one week. A week the
// server has never seen comes back as (nil, nil).
func (c *Client) WeekAchievements(ctx context.Context, key store.WeekKey) ([]*event.Event, error) {
	var out []*event.Event
	err := c.do(ctx, http.MethodGet, c.weekPath("achievements", key), nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveWeekAchievements replaces the employee's events for one week.
func (c *Client) SaveWeekAchievements(ctx context.Context, key store.WeekKey, evs []*event.Event) error {
	if evs == nil {
		evs = []*event.Event{}
	}
	return c.do(ctx, http.MethodPost, c.weekPath("achievements", key), evs, nil)
}

// DeleteAchievement removes one event by id.
func (c *Client) DeleteAchievement(ctx context.Context, id string) error {
	path := "/api/achievements/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// WeekKintai fetches the employee's attendance records for one week. A
// week the server has never seen comes back as (nil, nil).
func (c *Client) WeekKintai(ctx context.Context, key store.WeekKey) ([]worktime.WorkTime, error) {
	var out []worktime.WorkTime
	err := c.do(ctx, http.MethodGet, c.weekPath("kintai", key), nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveWeekKintai replaces the employee's attendance records for one week.
func (c *Client) SaveWeekKintai(ctx context.Context, key store.WeekKey, wts []worktime.WorkTime) error {
	if wts == nil {
		wts = []worktime.WorkTime{}
	}
	return c.do(ctx, http.MethodPost, c.weekPath("kintai", key), wts, nil)
}

// User fetches the employee's profile.
func (c *Client) User(ctx context.Context) (*User, error) {
	var out User
	path := "/api/users/" + url.PathEscape(c.employeeID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Projects lists the project codes the employee can book time against.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var out []Project
	if err := c.do(ctx, http.MethodGet, "/api/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) weekPath(kind string, key store.WeekKey) string {
	return fmt.Sprintf("/api/%s/week/%04d/%02d?employeeId=%s",
		kind, key.Year, key.Week, url.QueryEscape(c.employeeID))
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("remote: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("remote: build %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("remote: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && method == http.MethodGet {
		// An unseen week is not an error, just an empty one.
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("remote: %s %s: %s: %s",
			method, path, resp.Status, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote: decode %s %s: %w", method, path, err)
	}
	return nil
}
