// Package api is the HTTP client for the LinkBadge server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const defaultTimeout = 15 * time.Second

// Client talks to one LinkBadge server. Safe for concurrent use; the
// token is swapped atomically on login and refresh.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// SetToken installs the access token used for protected endpoints.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{Code: resp.StatusCode}

	var envelope struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		apiErr.Message = envelope.Message
		apiErr.Type = envelope.Type
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// --- Auth ---

func (c *Client) Register(ctx context.Context, name, email, password string) (*Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	}, &session)
	if err != nil {
		return nil, err
	}
	c.SetToken(session.AccessToken)
	return &session, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	}, &session)
	if err != nil {
		return nil, err
	}
	c.SetToken(session.AccessToken)
	return &session, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/api/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	}, &session)
	if err != nil {
		return nil, err
	}
	c.SetToken(session.AccessToken)
	return &session, nil
}

func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", map[string]string{
		"refresh_token": refreshToken,
	}, nil)
	c.SetToken("")
	return err
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) RequestRecovery(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/recovery", map[string]string{"email": email}, nil)
}

func (c *Client) ConfirmRecovery(ctx context.Context, token, password string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/recovery/confirm", map[string]string{
		"token": token, "password": password,
	}, nil)
}

func (c *Client) DeleteAccount(ctx context.Context, password string) error {
	return c.do(ctx, http.MethodDelete, "/api/auth/account", map[string]string{"password": password}, nil)
}

// --- Profile ---

func (c *Client) GetProfile(ctx context.Context) (Profile, error) {
	var p Profile
	err := c.do(ctx, http.MethodGet, "/api/profile", nil, &p)
	return p, err
}

func (c *Client) CreateProfile(ctx context.Context, p Profile) (Profile, error) {
	var out Profile
	err := c.do(ctx, http.MethodPost, "/api/profile", p, &out)
	return out, err
}

func (c *Client) UpdateProfile(ctx context.Context, patch map[string]any) (Profile, error) {
	var out Profile
	err := c.do(ctx, http.MethodPut, "/api/profile", patch, &out)
	return out, err
}

// VCard fetches the user's shareable identity card, the exact text a QR
// renderer encodes.
func (c *Client) VCard(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/profile/vcard", nil)
	if err != nil {
		return "", err
	}
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", decodeError(resp)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// --- QR settings ---

func (c *Client) GetQrSettings(ctx context.Context) (QrSettings, error) {
	var q QrSettings
	err := c.do(ctx, http.MethodGet, "/api/qr-settings", nil, &q)
	return q, err
}

func (c *Client) CreateQrSettings(ctx context.Context, q QrSettings) (QrSettings, error) {
	var out QrSettings
	err := c.do(ctx, http.MethodPost, "/api/qr-settings", q, &out)
	return out, err
}

func (c *Client) UpdateQrSettings(ctx context.Context, patch map[string]any) (QrSettings, error) {
	var out QrSettings
	err := c.do(ctx, http.MethodPut, "/api/qr-settings", patch, &out)
	return out, err
}

// --- Contacts ---

func (c *Client) ListContacts(ctx context.Context) (ContactList, error) {
	var list ContactList
	err := c.do(ctx, http.MethodGet, "/api/contacts", nil, &list)
	return list, err
}

func (c *Client) CreateContact(ctx context.Context, contact Contact) (Contact, error) {
	var out Contact
	err := c.do(ctx, http.MethodPost, "/api/contacts", contact, &out)
	return out, err
}

func (c *Client) UpdateContact(ctx context.Context, id string, patch map[string]any) (Contact, error) {
	var out Contact
	err := c.do(ctx, http.MethodPut, "/api/contacts/"+url.PathEscape(id), patch, &out)
	return out, err
}

func (c *Client) DeleteContact(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/contacts/"+url.PathEscape(id), nil, nil)
}

// Scan submits a decoded QR payload and returns the stored contact along
// with the detected payload format.
func (c *Client) Scan(ctx context.Context, payload, metAt string) (ScanResult, error) {
	var result ScanResult
	err := c.do(ctx, http.MethodPost, "/api/contacts/scan", map[string]string{
		"payload": payload, "met_at": metAt,
	}, &result)
	return result, err
}

// --- Files ---

// UploadFile sends an image as multipart form data and returns the stored
// file id.
func (c *Client) UploadFile(ctx context.Context, filename, contentType string, data io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename)}
	header["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/files", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", decodeError(resp)
	}

	var out struct {
		FileID string `json:"file_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.FileID, nil
}

func (c *Client) DeleteFile(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/files/"+url.PathEscape(id), nil, nil)
}

// PreviewURL asks the server to derive a display URL for a stored file.
func (c *Client) PreviewURL(ctx context.Context, id string, params url.Values) (string, error) {
	path := "/api/files/" + url.PathEscape(id) + "/preview-url"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}
