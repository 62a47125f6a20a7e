package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// HTTPClient implements Client over the backend's REST API. Safe for
// concurrent use: SetToken may race with in-flight requests.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// NewHTTPClient constructs an HTTPClient for the given base URL, e.g.
// "https://api.notelink.app".
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) bearerToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// doJSON performs one API request. A nil in skips the request body, a nil out
// discards the response body. Transport failures map to ErrUnavailable and
// error statuses to the package sentinels.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("request encoding error: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.bearerToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("response decoding error: %w", err)
	}
	return nil
}

func statusError(code int) error {
	switch code {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	default:
		return fmt.Errorf("server returned status %d", code)
	}
}

type wireUser struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	PhoneLinked bool      `json:"phoneLinked"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (u wireUser) toUser() *User {
	return &User{ID: u.ID, Username: u.Username, PhoneLinked: u.PhoneLinked, CreatedAt: u.CreatedAt}
}

type wireContact struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Mutual   bool      `json:"mutual"`
	AddedAt  time.Time `json:"addedAt"`
}

func (ct wireContact) toContact() *Contact {
	return &Contact{ID: ct.ID, Username: ct.Username, Mutual: ct.Mutual, AddedAt: ct.AddedAt}
}

type wireShare struct {
	ID        string    `json:"id"`
	NoteID    string    `json:"noteId"`
	InviterID string    `json:"inviterId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s wireShare) toShare() *Share {
	return &Share{ID: s.ID, NoteID: s.NoteID, InviterID: s.InviterID, Status: s.Status, CreatedAt: s.CreatedAt}
}

func (c *HTTPClient) AuthenticateDevice(ctx context.Context, deviceID, phone string) (*AuthResult, error) {
	req := map[string]string{}
	if deviceID != "" {
		req["deviceId"] = deviceID
	}
	if phone != "" {
		req["phone"] = phone
	}

	var resp struct {
		Token     string `json:"token"`
		DeviceID  string `json:"deviceId"`
		AccountID string `json:"accountId"`
		IsNewUser bool   `json:"isNewUser"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/device", req, &resp); err != nil {
		return nil, err
	}
	return &AuthResult{
		Token:     resp.Token,
		DeviceID:  resp.DeviceID,
		AccountID: resp.AccountID,
		IsNewUser: resp.IsNewUser,
	}, nil
}

func (c *HTTPClient) GetMe(ctx context.Context) (*User, error) {
	var resp wireUser
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/me", nil, &resp); err != nil {
		return nil, err
	}
	return resp.toUser(), nil
}

func (c *HTTPClient) UpdateMe(ctx context.Context, username, phone string) (*User, error) {
	req := map[string]string{"username": username, "phone": phone}

	var resp wireUser
	if err := c.doJSON(ctx, http.MethodPut, "/api/users/me", req, &resp); err != nil {
		return nil, err
	}
	return resp.toUser(), nil
}

func (c *HTTPClient) GetUser(ctx context.Context, id string) (*User, error) {
	var resp wireUser
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toUser(), nil
}

func (c *HTTPClient) MatchContacts(ctx context.Context, phoneHashes []string) ([]*User, error) {
	req := map[string][]string{"phoneHashes": phoneHashes}

	var resp struct {
		Users []wireUser `json:"users"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/contacts/match", req, &resp); err != nil {
		return nil, err
	}

	users := make([]*User, 0, len(resp.Users))
	for _, u := range resp.Users {
		users = append(users, u.toUser())
	}
	return users, nil
}

func (c *HTTPClient) ListContacts(ctx context.Context) ([]*Contact, error) {
	var resp struct {
		Contacts []wireContact `json:"contacts"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/contacts", nil, &resp); err != nil {
		return nil, err
	}

	list := make([]*Contact, 0, len(resp.Contacts))
	for _, ct := range resp.Contacts {
		list = append(list, ct.toContact())
	}
	return list, nil
}

func (c *HTTPClient) AddContact(ctx context.Context, userID string) (*Contact, error) {
	req := map[string]string{"userId": userID}

	var resp wireContact
	if err := c.doJSON(ctx, http.MethodPost, "/api/contacts", req, &resp); err != nil {
		return nil, err
	}
	return resp.toContact(), nil
}

func (c *HTTPClient) RemoveContact(ctx context.Context, userID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/contacts/"+userID, nil, nil)
}

func (c *HTTPClient) GetInviteLink(ctx context.Context) (string, error) {
	var resp struct {
		Link string `json:"link"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/invite", nil, &resp); err != nil {
		return "", err
	}
	return resp.Link, nil
}

func (c *HTTPClient) AcceptInvite(ctx context.Context, token string) (*Contact, error) {
	req := map[string]string{"token": token}

	var resp wireContact
	if err := c.doJSON(ctx, http.MethodPost, "/api/invite/accept", req, &resp); err != nil {
		return nil, err
	}
	return resp.toContact(), nil
}

func (c *HTTPClient) CreateShare(ctx context.Context, phone, phoneHash, noteID string) (*Share, error) {
	req := map[string]string{"noteId": noteID}
	if phone != "" {
		req["phone"] = phone
	}
	if phoneHash != "" {
		req["phoneHash"] = phoneHash
	}

	var resp wireShare
	if err := c.doJSON(ctx, http.MethodPost, "/api/shares", req, &resp); err != nil {
		return nil, err
	}
	return resp.toShare(), nil
}

func (c *HTTPClient) ListShares(ctx context.Context) ([]*Share, error) {
	var resp struct {
		Shares []wireShare `json:"shares"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/shares", nil, &resp); err != nil {
		return nil, err
	}

	list := make([]*Share, 0, len(resp.Shares))
	for _, s := range resp.Shares {
		list = append(list, s.toShare())
	}
	return list, nil
}

func (c *HTTPClient) AcceptShare(ctx context.Context, shareID string) (*Share, error) {
	var resp wireShare
	if err := c.doJSON(ctx, http.MethodPost, "/api/shares/"+shareID+"/accept", nil, &resp); err != nil {
		return nil, err
	}
	return resp.toShare(), nil
}
