package persistence

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Taichi-iskw/yt-scribe/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// MockDriveFiles is a mock implementation of DriveFiles
type MockDriveFiles struct {
	mock.Mock
}

func (m *MockDriveFiles) FindDocument(ctx context.Context, folderID, name string) (string, error) {
	args := m.Called(ctx, folderID, name)
	return args.String(0), args.Error(1)
}

func (m *MockDriveFiles) CreateDocument(ctx context.Context, folderID, name string) (string, error) {
	args := m.Called(ctx, folderID, name)
	return args.String(0), args.Error(1)
}

// MockDocsEditor is a mock implementation of DocsEditor
type MockDocsEditor struct {
	mock.Mock
}

func (m *MockDocsEditor) ReplaceBody(ctx context.Context, documentID, text string) error {
	return m.Called(ctx, documentID, text).Error(0)
}

func TestGoogleDocsWriter_Write(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(*MockDriveFiles, *MockDocsEditor)
		wantURL    string
		wantCode   string
	}{
		{
			name: "creates a new document",
			setupMocks: func(f *MockDriveFiles, e *MockDocsEditor) {
				f.On("FindDocument", mock.Anything, "folder1", "Learning Go").Return("", nil)
				f.On("CreateDocument", mock.Anything, "folder1", "Learning Go").Return("doc-new", nil)
				e.On("ReplaceBody", mock.Anything, "doc-new", "# body").Return(nil)
			},
			wantURL: "https://docs.google.com/document/d/doc-new/edit",
		},
		{
			name: "overwrites an existing document with the same name",
			setupMocks: func(f *MockDriveFiles, e *MockDocsEditor) {
				f.On("FindDocument", mock.Anything, "folder1", "Learning Go").Return("doc-old", nil)
				e.On("ReplaceBody", mock.Anything, "doc-old", "# body").Return(nil)
			},
			wantURL: "https://docs.google.com/document/d/doc-old/edit",
		},
		{
			name: "lookup failure",
			setupMocks: func(f *MockDriveFiles, e *MockDocsEditor) {
				f.On("FindDocument", mock.Anything, "folder1", "Learning Go").Return("", stderrors.New("403"))
			},
			wantCode: errors.CodeExternal,
		},
		{
			name: "write failure",
			setupMocks: func(f *MockDriveFiles, e *MockDocsEditor) {
				f.On("FindDocument", mock.Anything, "folder1", "Learning Go").Return("doc-old", nil)
				e.On("ReplaceBody", mock.Anything, "doc-old", "# body").Return(stderrors.New("quota"))
			},
			wantCode: errors.CodeExternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := &MockDriveFiles{}
			editor := &MockDocsEditor{}
			tt.setupMocks(files, editor)

			w := NewGoogleDocsWriterWithClients(files, editor, "folder1")
			loc, err := w.Write(context.Background(), "Learning Go", "Tech", "# body")

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, errors.CodeOf(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantURL, loc.URL)
				assert.Equal(t, "cloud_document", loc.Backend)
			}
			files.AssertExpectations(t)
			editor.AssertExpectations(t)
		})
	}
}

func TestDriveAPI_FindAndCreate(t *testing.T) {
	var gotQuery string
	var created drive.File

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/files"):
			gotQuery = r.URL.Query().Get("q")
			_, _ = w.Write([]byte(`{"files":[]}`))
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/files"):
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			_, _ = w.Write([]byte(`{"id":"doc-1"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	svc, err := drive.NewService(ctx, option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	api := &driveAPI{svc: svc}

	id, err := api.FindDocument(ctx, "folder1", "It's here")
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Contains(t, gotQuery, `name = 'It\'s here'`)
	assert.Contains(t, gotQuery, "'folder1' in parents")
	assert.Contains(t, gotQuery, "trashed = false")

	id, err = api.CreateDocument(ctx, "folder1", "It's here")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", id)
	assert.Equal(t, googleDocMimeType, created.MimeType)
	assert.Equal(t, []string{"folder1"}, created.Parents)
}

func TestDocsAPI_ReplaceBody(t *testing.T) {
	tests := []struct {
		name         string
		document     string
		wantRequests int
	}{
		{
			name:         "existing content is deleted first",
			document:     `{"documentId":"d1","body":{"content":[{"endIndex":1},{"startIndex":1,"endIndex":42}]}}`,
			wantRequests: 2,
		},
		{
			name:         "empty document only inserts",
			document:     `{"documentId":"d1","body":{"content":[{"endIndex":1},{"startIndex":1,"endIndex":2}]}}`,
			wantRequests: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var batch docs.BatchUpdateDocumentRequest

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				switch {
				case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/documents/d1"):
					_, _ = w.Write([]byte(tt.document))
				case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/documents/d1:batchUpdate"):
					assert.NoError(t, json.NewDecoder(r.Body).Decode(&batch))
					_, _ = w.Write([]byte(`{"documentId":"d1"}`))
				default:
					http.NotFound(w, r)
				}
			}))
			defer srv.Close()

			ctx := context.Background()
			svc, err := docs.NewService(ctx, option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
			require.NoError(t, err)

			err = (&docsAPI{svc: svc}).ReplaceBody(ctx, "d1", "new text")
			require.NoError(t, err)

			require.Len(t, batch.Requests, tt.wantRequests)
			if tt.wantRequests == 2 {
				del := batch.Requests[0].DeleteContentRange
				require.NotNil(t, del)
				assert.Equal(t, int64(1), del.Range.StartIndex)
				assert.Equal(t, int64(41), del.Range.EndIndex)
			}
			insert := batch.Requests[len(batch.Requests)-1].InsertText
			require.NotNil(t, insert)
			assert.Equal(t, "new text", insert.Text)
			assert.Equal(t, int64(1), insert.Location.Index)
		})
	}
}
