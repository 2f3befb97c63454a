package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/provider"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"
)

type owner struct {
	DisplayName string `json:"displayName"`
}

type file struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	MimeType       string  `json:"mimeType"`
	Size           string  `json:"size"`
	CreatedTime    string  `json:"createdTime"`
	ModifiedTime   string  `json:"modifiedTime"`
	Description    string  `json:"description"`
	WebViewLink    string  `json:"webViewLink"`
	WebContentLink string  `json:"webContentLink"`
	Owners         []owner `json:"owners"`
}

type fileList struct {
	Files []file `json:"files"`
}

const (
	listFields   = "files(id,name,mimeType,size,modifiedTime,createdTime,owners)"
	searchFields = "files(id,name,mimeType,size,modifiedTime,webViewLink)"
	getFields    = "id,name,mimeType,size,modifiedTime,createdTime,description,webViewLink,webContentLink"
	createFields = "id,name,webViewLink"
)

func (c *Connector) Tools() []tools.Tool {
	fileID := tools.Field{Name: "fileId", Kind: tools.KindString, Description: "Google Drive file ID"}
	return []tools.Tool{
		{
			Descriptor: tools.Descriptor{
				Name:        "drive_list_files",
				Description: "List files in Google Drive",
				Fields: []tools.Field{
					{Name: "query", Kind: tools.KindString, Description: "Drive search query"},
					{Name: "limit", Kind: tools.KindNumber, Description: "Maximum number of files", Default: 10},
					{Name: "folderId", Kind: tools.KindString, Description: "Only list files in this folder"},
				},
			},
			Handler: c.listFiles,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "drive_search_files",
				Description: "Search files in Google Drive by name",
				Fields: []tools.Field{
					{Name: "searchTerm", Kind: tools.KindString, Description: "Term to search for in file names"},
					{Name: "mimeType", Kind: tools.KindString, Description: "File type to filter by (e.g. application/pdf)"},
					{Name: "limit", Kind: tools.KindNumber, Description: "Maximum number of results", Default: 20},
				},
				Required: []string{"searchTerm"},
			},
			Handler: c.searchFiles,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "drive_get_file",
				Description: "Get file metadata and, for text files, content",
				Fields: []tools.Field{
					fileID,
					{Name: "includeContent", Kind: tools.KindBoolean, Description: "Include the file content", Default: false},
				},
				Required: []string{"fileId"},
			},
			Handler: c.getFile,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "drive_upload_file",
				Description: "Upload a text file to Google Drive",
				Fields: []tools.Field{
					{Name: "name", Kind: tools.KindString, Description: "File name"},
					{Name: "content", Kind: tools.KindString, Description: "File content"},
					{Name: "mimeType", Kind: tools.KindString, Description: "MIME type", Default: "text/plain"},
					{Name: "folderId", Kind: tools.KindString, Description: "Parent folder ID"},
				},
				Required: []string{"name", "content"},
			},
			Handler: c.uploadFile,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "drive_create_folder",
				Description: "Create a folder in Google Drive",
				Fields: []tools.Field{
					{Name: "name", Kind: tools.KindString, Description: "Folder name"},
					{Name: "parentId", Kind: tools.KindString, Description: "Parent folder ID"},
				},
				Required: []string{"name"},
			},
			Handler: c.createFolder,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "drive_share_file",
				Description: "Share a file or folder",
				Fields: []tools.Field{
					fileID,
					{Name: "email", Kind: tools.KindString, Description: "Email address to share with"},
					{Name: "role", Kind: tools.KindString, Description: "Permission role", Enum: []any{"reader", "commenter", "writer", "owner"}, Default: "reader"},
					{Name: "type", Kind: tools.KindString, Description: "Permission type", Enum: []any{"user", "group", "domain", "anyone"}, Default: "user"},
				},
				Required: []string{"fileId", "email"},
			},
			Handler: c.shareFile,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "drive_delete_file",
				Description: "Delete a file or folder",
				Fields:      []tools.Field{fileID},
				Required:    []string{"fileId"},
			},
			Handler: c.deleteFile,
		},
	}
}

func (c *Connector) list(ctx context.Context, q, fields, limit string) ([]file, error) {
	if c.cfg.Mock {
		return mockFiles(), nil
	}
	if err := c.ready(); err != nil {
		return nil, err
	}
	params := url.Values{"pageSize": {limit}, "fields": {fields}}
	if q != "" {
		params.Set("q", q)
	}
	var resp fileList
	if err := c.api.Get(ctx, "files", params, &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

func (c *Connector) listFiles(ctx context.Context, args tools.Args) (any, error) {
	var clauses []string
	if id := args.String("folderId"); id != "" {
		clauses = append(clauses, quote(id)+" in parents")
	}
	if q := args.String("query"); q != "" {
		clauses = append(clauses, q)
	}
	files, err := c.list(ctx, strings.Join(clauses, " and "), listFields, args.Text("limit"))
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d files:\n", len(files))
	for _, f := range files {
		ownerName := "Unknown"
		if len(f.Owners) > 0 && f.Owners[0].DisplayName != "" {
			ownerName = f.Owners[0].DisplayName
		}
		fmt.Fprintf(&b, "\nID: %s\nName: %s\nType: %s\nSize: %s bytes\nModified: %s\nOwner: %s\n",
			f.ID, f.Name, f.MimeType, orNA(f.Size), f.ModifiedTime, ownerName)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Connector) searchFiles(ctx context.Context, args tools.Args) (any, error) {
	term := args.String("searchTerm")
	q := "name contains " + quote(term)
	if mt := args.String("mimeType"); mt != "" {
		q += " and mimeType=" + quote(mt)
	}
	files, err := c.list(ctx, q, searchFields, args.Text("limit"))
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search results for %q:\n\nFound %d files:\n", term, len(files))
	for _, f := range files {
		fmt.Fprintf(&b, "\nName: %s\nID: %s\nType: %s\nSize: %s bytes\nLink: %s\n",
			f.Name, f.ID, f.MimeType, orNA(f.Size), orNA(f.WebViewLink))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Connector) getFile(ctx context.Context, args tools.Args) (any, error) {
	id := args.String("fileId")
	var f file
	if c.cfg.Mock {
		f = mockFiles()[0]
		f.ID = id
	} else {
		if err := c.ready(); err != nil {
			return nil, err
		}
		if err := c.api.Get(ctx, "files/"+url.PathEscape(id), url.Values{"fields": {getFields}}, &f); err != nil {
			return nil, err
		}
	}

	res := tools.Text("File Details:\n\nName: %s\nID: %s\nType: %s\nSize: %s bytes\nCreated: %s\nModified: %s\nDescription: %s\nView Link: %s\nDownload Link: %s",
		f.Name, f.ID, f.MimeType, orNA(f.Size), f.CreatedTime, f.ModifiedTime, or(f.Description, "None"), orNA(f.WebViewLink), orNA(f.WebContentLink))
	if !args.Bool("includeContent") {
		return res, nil
	}

	content, ok, err := c.content(ctx, f)
	switch {
	case err != nil:
		res.Warn("content could not be retrieved: %s", err.Error())
	case !ok:
		res.Warn("content not included: %s is not a text format", f.MimeType)
	default:
		res.Blocks = append(res.Blocks, "File Content:\n"+content)
	}
	return res, nil
}

// content downloads text files and exports Google Workspace documents. ok is
// false for binary types.
func (c *Connector) content(ctx context.Context, f file) (string, bool, error) {
	var (
		path  = "files/" + url.PathEscape(f.ID)
		query url.Values
	)
	switch {
	case strings.HasPrefix(f.MimeType, "text/"):
		query = url.Values{"alt": {"media"}}
	case exportFormats[f.MimeType] != "":
		path += "/export"
		query = url.Values{"mimeType": {exportFormats[f.MimeType]}}
	default:
		return "", false, nil
	}
	if c.cfg.Mock {
		return "Mock file content", true, nil
	}
	var raw []byte
	if err := c.api.Get(ctx, path, query, &raw); err != nil {
		return "", true, err
	}
	return string(raw), true, nil
}

func (c *Connector) create(ctx context.Context, meta map[string]any) (file, error) {
	var f file
	err := c.api.Post(ctx, "files?fields="+url.QueryEscape(createFields), meta, &f)
	return f, err
}

// multipartBody builds a multipart/related upload of metadata plus media.
func multipartBody(meta map[string]any, mimeType, content string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, "", err
	}
	parts := []struct {
		contentType string
		data        []byte
	}{
		{"application/json; charset=UTF-8", metaJSON},
		{mimeType, []byte(content)},
	}
	for _, p := range parts {
		pw, err := w.CreatePart(textproto.MIMEHeader{"Content-Type": {p.contentType}})
		if err != nil {
			return nil, "", err
		}
		if _, err := pw.Write(p.data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "multipart/related; boundary=" + w.Boundary(), nil
}

func (c *Connector) uploadFile(ctx context.Context, args tools.Args) (any, error) {
	meta := map[string]any{"name": args.String("name")}
	if id := args.String("folderId"); id != "" {
		meta["parents"] = []string{id}
	}

	var f file
	if c.cfg.Mock {
		f = file{ID: "mock-file-1", Name: args.String("name"), WebViewLink: "https://drive.google.com/file/d/mock-file-1/view"}
	} else {
		if err := c.ready(); err != nil {
			return nil, err
		}
		body, contentType, err := multipartBody(meta, args.String("mimeType"), args.String("content"))
		if err != nil {
			return nil, fmt.Errorf("drive.uploadFile: %w", err)
		}
		err = c.api.Do(ctx, provider.Request{
			Method:      http.MethodPost,
			Path:        c.cfg.UploadURL,
			Query:       url.Values{"uploadType": {"multipart"}, "fields": {createFields}},
			Body:        body,
			ContentType: contentType,
		}, &f)
		if err != nil {
			return nil, err
		}
	}
	return fmt.Sprintf("File uploaded successfully:\n\nName: %s\nID: %s\nView Link: %s", f.Name, f.ID, orNA(f.WebViewLink)), nil
}

func (c *Connector) createFolder(ctx context.Context, args tools.Args) (any, error) {
	meta := map[string]any{"name": args.String("name"), "mimeType": folderMimeType}
	if id := args.String("parentId"); id != "" {
		meta["parents"] = []string{id}
	}

	var f file
	if c.cfg.Mock {
		f = file{ID: "mock-folder-1", Name: args.String("name"), WebViewLink: "https://drive.google.com/drive/folders/mock-folder-1"}
	} else {
		if err := c.ready(); err != nil {
			return nil, err
		}
		var err error
		if f, err = c.create(ctx, meta); err != nil {
			return nil, err
		}
	}
	return fmt.Sprintf("Folder created successfully:\n\nName: %s\nID: %s\nView Link: %s", f.Name, f.ID, orNA(f.WebViewLink)), nil
}

func (c *Connector) shareFile(ctx context.Context, args tools.Args) (any, error) {
	id, email := args.String("fileId"), args.String("email")
	role, typ := args.String("role"), args.String("type")
	if !c.cfg.Mock {
		if err := c.ready(); err != nil {
			return nil, err
		}
		perm := map[string]any{"type": typ, "role": role, "emailAddress": email}
		path := "files/" + url.PathEscape(id) + "/permissions?sendNotificationEmail=true"
		if role == "owner" {
			path += "&transferOwnership=true"
		}
		if err := c.api.Post(ctx, path, perm, nil); err != nil {
			return nil, err
		}
	}
	return fmt.Sprintf("File shared successfully:\n\nFile ID: %s\nShared with: %s\nRole: %s\nType: %s", id, email, role, typ), nil
}

func (c *Connector) deleteFile(ctx context.Context, args tools.Args) (any, error) {
	id := args.String("fileId")
	if !c.cfg.Mock {
		if err := c.ready(); err != nil {
			return nil, err
		}
		if err := c.api.Delete(ctx, "files/"+url.PathEscape(id)); err != nil {
			return nil, err
		}
	}
	return fmt.Sprintf("File deleted successfully:\n\nFile ID: %s", id), nil
}

func mockFiles() []file {
	return []file{
		{
			ID: "mock-file-1", Name: "Estimate.txt", MimeType: "text/plain", Size: "1024",
			CreatedTime: "2026-01-05T09:00:00Z", ModifiedTime: "2026-01-06T10:00:00Z",
			WebViewLink: "https://drive.google.com/file/d/mock-file-1/view",
			Owners:      []owner{{DisplayName: "Mock Owner"}},
		},
	}
}

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
