package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"study-tracker-be/pkg/notebook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(Options{BaseURL: server.URL, APIKey: "sk_test", HTTPClient: server.Client(), PageSize: 2})
	require.NoError(t, err)
	return client
}

func TestNewRequiresBaseURLAndKey(t *testing.T) {
	_, err := New(Options{APIKey: "k"})
	assert.Error(t, err)
	_, err = New(Options{BaseURL: "https://eln.example.org"})
	assert.Error(t, err)
}

func TestCreateFolderSendsExpectedRequest(t *testing.T) {
	var capturedAuth, capturedPath string
	var capturedBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		capturedAuth = r.Header.Get("Authorization")
		capturedPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&capturedBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"lib_9","name":"ONC-1 - Trial One","parentFolderId":"lib_1","webURL":"https://eln/f/lib_9"}`))
	})

	folder, err := client.CreateFolder(context.Background(), "ONC-1 - Trial One", "lib_1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk_test", capturedAuth)
	assert.Equal(t, "/api/v2/folders", capturedPath)
	assert.Equal(t, "lib_1", capturedBody["parentFolderId"])
	assert.Equal(t, "lib_9", folder.ReferenceId)
	assert.Equal(t, "ONC-1 - Trial One", folder.Path)
	assert.Equal(t, "lib_1", folder.ParentReferenceId)
}

func TestCreateFolderConflictMapsToAlreadyExists(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"duplicate","message":"folder exists"}`))
	})
	_, err := client.CreateFolder(context.Background(), "x", "")
	assert.True(t, errors.Is(err, notebook.ErrAlreadyExists))
	assert.Contains(t, err.Error(), "folder exists")
}

func TestFindFolderByIdNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/folders/lib_404", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := client.FindFolderById(context.Background(), "lib_404")
	assert.True(t, errors.Is(err, notebook.ErrNotFound))
}

func TestServerErrorIsNotClassified(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})
	_, err := client.FindFolderById(context.Background(), "lib_1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, notebook.ErrNotFound))
	assert.Contains(t, err.Error(), "status=502")
}

func TestCreateEntryMapsFields(t *testing.T) {
	var captured createEntryRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = w.Write([]byte(`{"id":"etr_1","name":"ONC-1 Study Summary: Trial One","folderId":"lib_9","webURL":"https://eln/e/etr_1"}`))
	})

	entry, err := client.CreateEntry(context.Background(), notebook.EntryRequest{
		Title:             "ONC-1 Study Summary: Trial One",
		FolderReferenceId: "lib_9",
		AuthorIds:         []string{"ent_1"},
		TemplateId:        "tmpl_1",
		Fields:            []notebook.Field{{Name: "Code", Value: "ONC-1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "lib_9", captured.FolderId)
	assert.Equal(t, "tmpl_1", captured.EntryTemplateId)
	assert.Equal(t, []string{"ent_1"}, captured.AuthorIds)
	assert.Equal(t, "ONC-1", captured.Fields["Code"].Value)
	assert.Equal(t, "https://eln/e/etr_1", entry.Url)
}

func TestTemplatesPaginateThroughClient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("pageSize"))
		switch r.URL.Query().Get("nextToken") {
		case "":
			_, _ = w.Write([]byte(`{"entryTemplates":[{"id":"t1","name":"A"},{"id":"t2","name":"B"}],"nextToken":"p2"}`))
		case "p2":
			_, _ = w.Write([]byte(`{"entryTemplates":[{"id":"t3","name":"C"}]}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	templates, err := notebook.Collect(notebook.Templates(context.Background(), client))
	require.NoError(t, err)
	require.Len(t, templates, 3)
	assert.Equal(t, "t3", templates[2].ReferenceId)
}

func TestFindUsers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v2/users/ent_1" {
			_, _ = w.Write([]byte(`{"id":"ent_1","handle":"jdoe","email":"jane@example.org","name":"Jane Doe"}`))
			return
		}
		_, _ = w.Write([]byte(`{"users":[{"id":"ent_1","handle":"jdoe","email":"jane@example.org"}]}`))
	})

	page, err := client.FindUsers(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "jdoe", page.Items[0].Username)
	assert.Empty(t, page.NextToken)

	user, err := client.FindUserByNativeId(context.Background(), "ent_1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", user.Name)
}
