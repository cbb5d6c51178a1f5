package persistence

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Taichi-iskw/yt-scribe/internal/errors"
	"github.com/Taichi-iskw/yt-scribe/internal/model"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const googleDocMimeType = "application/vnd.google-apps.document"

// DriveFiles finds and creates Google Docs inside a Drive folder
type DriveFiles interface {
	FindDocument(ctx context.Context, folderID, name string) (string, error)
	CreateDocument(ctx context.Context, folderID, name string) (string, error)
}

// DocsEditor replaces the body text of a Google Doc
type DocsEditor interface {
	ReplaceBody(ctx context.Context, documentID, text string) error
}

// GoogleDocsWriter writes notes as Google Docs in a Drive folder
type GoogleDocsWriter struct {
	files    DriveFiles
	editor   DocsEditor
	folderID string
}

var _ DocumentWriter = (*GoogleDocsWriter)(nil)

// NewGoogleDocsWriter creates a writer using an authorized HTTP client
func NewGoogleDocsWriter(ctx context.Context, httpClient *http.Client, folderID string, opts ...option.ClientOption) (*GoogleDocsWriter, error) {
	clientOpts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)

	driveSvc, err := drive.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfig, "failed to create Drive service")
	}
	docsSvc, err := docs.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfig, "failed to create Docs service")
	}

	return NewGoogleDocsWriterWithClients(&driveAPI{svc: driveSvc}, &docsAPI{svc: docsSvc}, folderID), nil
}

// NewGoogleDocsWriterWithClients creates a writer with custom clients (for testing)
func NewGoogleDocsWriterWithClients(files DriveFiles, editor DocsEditor, folderID string) *GoogleDocsWriter {
	return &GoogleDocsWriter{files: files, editor: editor, folderID: folderID}
}

func (w *GoogleDocsWriter) Backend() Backend {
	return BackendCloudDocument
}

// Write finds or creates the document and replaces its contents.
// Categories are not mapped to subfolders; the category stays in the front matter.
func (w *GoogleDocsWriter) Write(ctx context.Context, name, category, markdown string) (model.Location, error) {
	if strings.TrimSpace(name) == "" {
		return model.Location{}, errors.New(errors.CodeInvalidArg, "document name is required")
	}

	docID, err := w.files.FindDocument(ctx, w.folderID, name)
	if err != nil {
		return model.Location{}, errors.Wrap(err, errors.CodeExternal, fmt.Sprintf("failed to look up document %q", name))
	}

	if docID == "" {
		docID, err = w.files.CreateDocument(ctx, w.folderID, name)
		if err != nil {
			return model.Location{}, errors.Wrap(err, errors.CodeExternal, fmt.Sprintf("failed to create document %q", name))
		}
	}

	if err := w.editor.ReplaceBody(ctx, docID, markdown); err != nil {
		return model.Location{}, errors.Wrap(err, errors.CodeExternal, fmt.Sprintf("failed to write document %q", name))
	}

	return model.Location{
		Backend: BackendCloudDocument.String(),
		Path:    docID,
		URL:     DocumentURL(docID),
	}, nil
}

// DocumentURL returns the edit URL for a Google Doc
func DocumentURL(documentID string) string {
	return fmt.Sprintf("https://docs.google.com/document/d/%s/edit", documentID)
}

// driveAPI implements DriveFiles with Drive v3
type driveAPI struct {
	svc *drive.Service
}

func (d *driveAPI) FindDocument(ctx context.Context, folderID, name string) (string, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escapeQuery(name), googleDocMimeType)
	if folderID != "" {
		q += fmt.Sprintf(" and '%s' in parents", escapeQuery(folderID))
	}

	list, err := d.svc.Files.List().
		Q(q).
		Fields("files(id, name)").
		PageSize(1).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

func (d *driveAPI) CreateDocument(ctx context.Context, folderID, name string) (string, error) {
	file := &drive.File{
		Name:     name,
		MimeType: googleDocMimeType,
	}
	if folderID != "" {
		file.Parents = []string{folderID}
	}

	created, err := d.svc.Files.Create(file).
		Fields("id").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	return created.Id, nil
}

// docsAPI implements DocsEditor with Docs v1
type docsAPI struct {
	svc *docs.Service
}

// ReplaceBody deletes the existing body and inserts text at the start
func (d *docsAPI) ReplaceBody(ctx context.Context, documentID, text string) error {
	doc, err := d.svc.Documents.Get(documentID).Fields("body/content/endIndex").Context(ctx).Do()
	if err != nil {
		return err
	}

	var requests []*docs.Request

	// The final newline of the body cannot be deleted
	if end := bodyEndIndex(doc); end > 2 {
		requests = append(requests, &docs.Request{
			DeleteContentRange: &docs.DeleteContentRangeRequest{
				Range: &docs.Range{StartIndex: 1, EndIndex: end - 1},
			},
		})
	}
	requests = append(requests, &docs.Request{
		InsertText: &docs.InsertTextRequest{
			Location: &docs.Location{Index: 1},
			Text:     text,
		},
	})

	_, err = d.svc.Documents.BatchUpdate(documentID, &docs.BatchUpdateDocumentRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}

func bodyEndIndex(doc *docs.Document) int64 {
	if doc == nil || doc.Body == nil {
		return 0
	}
	var end int64
	for _, el := range doc.Body.Content {
		if el != nil && el.EndIndex > end {
			end = el.EndIndex
		}
	}
	return end
}

// escapeQuery escapes a value for a Drive search query string literal
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
