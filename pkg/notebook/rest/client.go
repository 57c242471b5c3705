// Package rest implements notebook.Backend against a JSON REST ELN API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"study-tracker-be/pkg/notebook"
)

type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	UserAgent  string
	PageSize   int
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	userAgent  string
	pageSize   int
}

// New builds a client. Requests carry no deadline of their own; callers bound
// each call through ctx.
func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("notebook base url required")
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("notebook api key required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(opts.APIKey),
		httpClient: httpClient,
		userAgent:  strings.TrimSpace(opts.UserAgent),
		pageSize:   pageSize,
	}, nil
}

func (c *Client) Driver() notebook.Driver { return notebook.DriverREST }

type folderPayload struct {
	Id             string `json:"id"`
	Name           string `json:"name"`
	Path           string `json:"path,omitempty"`
	WebURL         string `json:"webURL"`
	ParentFolderId string `json:"parentFolderId,omitempty"`
}

type createFolderRequest struct {
	Name           string `json:"name"`
	ParentFolderId string `json:"parentFolderId,omitempty"`
}

type fieldValue struct {
	Value string `json:"value"`
}

type createEntryRequest struct {
	Name            string                `json:"name"`
	FolderId        string                `json:"folderId"`
	AuthorIds       []string              `json:"authorIds,omitempty"`
	EntryTemplateId string                `json:"entryTemplateId,omitempty"`
	Fields          map[string]fieldValue `json:"fields,omitempty"`
}

type entryPayload struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	FolderId string `json:"folderId"`
	WebURL   string `json:"webURL"`
}

type templatePayload struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type templatesPage struct {
	EntryTemplates []templatePayload `json:"entryTemplates"`
	NextToken      string            `json:"nextToken"`
}

type userPayload struct {
	Id     string `json:"id"`
	Handle string `json:"handle"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type usersPage struct {
	Users     []userPayload `json:"users"`
	NextToken string        `json:"nextToken"`
}

func (c *Client) CreateFolder(ctx context.Context, name, parentReferenceId string) (*notebook.Folder, error) {
	var out folderPayload
	err := c.do(ctx, http.MethodPost, "/api/v2/folders", nil, createFolderRequest{Name: name, ParentFolderId: parentReferenceId}, &out)
	if err != nil {
		return nil, err
	}
	return toFolder(out), nil
}

func (c *Client) FindFolderById(ctx context.Context, id string) (*notebook.Folder, error) {
	var out folderPayload
	if err := c.do(ctx, http.MethodGet, "/api/v2/folders/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return toFolder(out), nil
}

func (c *Client) CreateEntry(ctx context.Context, req notebook.EntryRequest) (*notebook.Entry, error) {
	body := createEntryRequest{
		Name:            req.Title,
		FolderId:        req.FolderReferenceId,
		AuthorIds:       req.AuthorIds,
		EntryTemplateId: req.TemplateId,
	}
	if len(req.Fields) > 0 {
		body.Fields = make(map[string]fieldValue, len(req.Fields))
		for _, f := range req.Fields {
			body.Fields[f.Name] = fieldValue{Value: f.Value}
		}
	}
	var out entryPayload
	if err := c.do(ctx, http.MethodPost, "/api/v2/entries", nil, body, &out); err != nil {
		return nil, err
	}
	return &notebook.Entry{ReferenceId: out.Id, Title: out.Name, Url: out.WebURL, FolderReferenceId: out.FolderId}, nil
}

func (c *Client) FindEntryTemplates(ctx context.Context, pageToken string) (notebook.Page[notebook.Template], error) {
	var out templatesPage
	if err := c.do(ctx, http.MethodGet, "/api/v2/entry-templates", c.pageQuery(pageToken), nil, &out); err != nil {
		return notebook.Page[notebook.Template]{}, err
	}
	page := notebook.Page[notebook.Template]{NextToken: out.NextToken}
	for _, t := range out.EntryTemplates {
		page.Items = append(page.Items, notebook.Template{ReferenceId: t.Id, Name: t.Name})
	}
	return page, nil
}

func (c *Client) FindUsers(ctx context.Context, pageToken string) (notebook.Page[notebook.User], error) {
	var out usersPage
	if err := c.do(ctx, http.MethodGet, "/api/v2/users", c.pageQuery(pageToken), nil, &out); err != nil {
		return notebook.Page[notebook.User]{}, err
	}
	page := notebook.Page[notebook.User]{NextToken: out.NextToken}
	for _, u := range out.Users {
		page.Items = append(page.Items, toUser(u))
	}
	return page, nil
}

func (c *Client) FindUserByNativeId(ctx context.Context, id string) (*notebook.User, error) {
	var out userPayload
	if err := c.do(ctx, http.MethodGet, "/api/v2/users/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	user := toUser(out)
	return &user, nil
}

func (c *Client) pageQuery(token string) url.Values {
	q := url.Values{}
	q.Set("pageSize", strconv.Itoa(c.pageSize))
	if token != "" {
		q.Set("nextToken", token)
	}
	return q
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	respBody, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		if out == nil || len(respBody) == 0 {
			return nil
		}
		return json.Unmarshal(respBody, out)
	}
	return responseError(method, path, resp.StatusCode, respBody)
}

func responseError(method, path string, status int, body []byte) error {
	errCode := ""
	errMessage := strings.TrimSpace(string(body))
	var parsed map[string]any
	if json.Unmarshal(body, &parsed) == nil {
		if code, ok := parsed["code"].(string); ok {
			errCode = code
		}
		if message, ok := parsed["message"].(string); ok && strings.TrimSpace(message) != "" {
			errMessage = message
		}
	}
	var wrapped error
	switch status {
	case http.StatusNotFound:
		wrapped = notebook.ErrNotFound
	case http.StatusConflict:
		wrapped = notebook.ErrAlreadyExists
	}
	detail := fmt.Sprintf("notebook %s %s failed: status=%d", method, path, status)
	if errCode != "" {
		detail += " code=" + errCode
	}
	detail += " message=" + errMessage
	if wrapped != nil {
		return fmt.Errorf("%w: %s", wrapped, detail)
	}
	return errors.New(detail)
}

func toFolder(p folderPayload) *notebook.Folder {
	folderPath := p.Path
	if folderPath == "" {
		folderPath = p.Name
	}
	return &notebook.Folder{
		ReferenceId:       p.Id,
		Name:              p.Name,
		Path:              folderPath,
		Url:               p.WebURL,
		ParentReferenceId: p.ParentFolderId,
	}
}

func toUser(p userPayload) notebook.User {
	return notebook.User{ReferenceId: p.Id, Username: p.Handle, Email: p.Email, Name: p.Name}
}
