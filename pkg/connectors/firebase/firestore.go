package firebase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/provider"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

// operators maps the query operator argument to the structured query op.
var operators = map[string]string{
	"==":                 "EQUAL",
	"!=":                 "NOT_EQUAL",
	"<":                  "LESS_THAN",
	"<=":                 "LESS_THAN_OR_EQUAL",
	">":                  "GREATER_THAN",
	">=":                 "GREATER_THAN_OR_EQUAL",
	"array-contains":     "ARRAY_CONTAINS",
	"in":                 "IN",
	"array-contains-any": "ARRAY_CONTAINS_ANY",
	"not-in":             "NOT_IN",
}

var operatorEnum = []any{"==", "!=", "<", "<=", ">", ">=", "array-contains", "in", "array-contains-any", "not-in"}

type document struct {
	Name       string         `json:"name"`
	Fields     map[string]any `json:"fields"`
	CreateTime string         `json:"createTime"`
	UpdateTime string         `json:"updateTime"`
}

func (d document) id() string { return path.Base(d.Name) }

// docPath escapes each segment of a collection or document path.
func docPath(segments ...string) string {
	var parts []string
	for _, s := range segments {
		for _, p := range strings.Split(strings.Trim(s, "/"), "/") {
			if p != "" {
				parts = append(parts, url.PathEscape(p))
			}
		}
	}
	return strings.Join(parts, "/")
}

func isNotFound(err error) bool {
	var te *types.ToolError
	return errors.As(err, &te) && te.Status == http.StatusNotFound
}

func (c *Connector) firestoreRead(ctx context.Context, args tools.Args) (any, error) {
	coll, id := args.String("collection"), args.String("documentId")
	var data map[string]any
	if c.cfg.Mock {
		data = map[string]any{"name": "Mock document", "status": "active"}
	} else {
		if err := c.ready(); err != nil {
			return nil, err
		}
		var doc document
		if err := c.store.Get(ctx, docPath(coll, id), nil, &doc); err != nil {
			if isNotFound(err) {
				return nil, types.ErrUpstream("Firestore", http.StatusNotFound,
					fmt.Sprintf("Document %s not found in collection %s", id, coll), err)
			}
			return nil, err
		}
		data = decodeFields(doc.Fields)
	}
	return fmt.Sprintf("Document retrieved successfully:\n\nCollection: %s\nDocument ID: %s\nData:\n%s", coll, id, tools.Render(data)), nil
}

func (c *Connector) firestoreWrite(ctx context.Context, args tools.Args) (any, error) {
	coll, id, data := args.String("collection"), args.String("documentId"), args.Object("data")
	switch {
	case c.cfg.Mock:
		if id == "" {
			id = "mock-doc-1"
		}
	default:
		if err := c.ready(); err != nil {
			return nil, err
		}
		body := map[string]any{"fields": encodeFields(data)}
		var doc document
		var err error
		if id != "" {
			err = c.store.Patch(ctx, docPath(coll, id), nil, body, &doc)
		} else {
			err = c.store.Post(ctx, docPath(coll), body, &doc)
			id = doc.id()
		}
		if err != nil {
			return nil, err
		}
	}
	return fmt.Sprintf("Document written successfully:\n\nCollection: %s\nDocument ID: %s\nData written:\n%s", coll, id, tools.Render(data)), nil
}

type queryResult struct {
	ID   string         `json:"id"`
	Data map[string]any `json:"data"`
}

// filterValue turns the string argument into the compared value. List
// operators take a comma-separated list.
func filterValue(op, raw string) any {
	switch op {
	case "in", "not-in", "array-contains-any":
		var items []any
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				items = append(items, s)
			}
		}
		return items
	}
	return raw
}

func (c *Connector) firestoreQuery(ctx context.Context, args tools.Args) (any, error) {
	coll := args.String("collection")
	field, op, value := args.String("field"), args.String("operator"), args.String("value")
	res := &tools.Result{}

	filtered := field != "" && op != "" && args.Has("value")
	if !filtered && (field != "" || op != "" || args.Has("value")) {
		res.Warn("filter ignored: field, operator and value must be given together")
	}

	query := map[string]any{
		"from":  []any{map[string]any{"collectionId": path.Base(coll)}},
		"limit": args.Int("limit"),
	}
	if filtered {
		query["where"] = map[string]any{"fieldFilter": map[string]any{
			"field": map[string]any{"fieldPath": field},
			"op":    operators[op],
			"value": encode(filterValue(op, value)),
		}}
	}

	results := []queryResult{}
	if c.cfg.Mock {
		results = append(results, queryResult{ID: "mock-doc-1", Data: map[string]any{"name": "Mock document"}})
	} else {
		if err := c.ready(); err != nil {
			return nil, err
		}
		// Subcollection queries run against the parent document.
		parent := c.store.BaseURL()
		if dir := path.Dir(strings.Trim(coll, "/")); dir != "." {
			parent += "/" + docPath(dir)
		}
		var rows []struct {
			Document *document `json:"document"`
		}
		err := c.store.Do(ctx, provider.Request{
			Method: http.MethodPost,
			Path:   parent + ":runQuery",
			JSON:   map[string]any{"structuredQuery": query},
		}, &rows)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			if r.Document != nil {
				results = append(results, queryResult{ID: r.Document.id(), Data: decodeFields(r.Document.Fields)})
			}
		}
	}

	filter := "No filter"
	if filtered {
		filter = fmt.Sprintf("%s %s %s", field, op, value)
	}
	res.Text = fmt.Sprintf("Query results:\n\nCollection: %s\nFilter: %s\nResults found: %d\n\n%s", coll, filter, len(results), tools.Render(results))
	return res, nil
}

func (c *Connector) firestoreDelete(ctx context.Context, args tools.Args) (any, error) {
	coll, id := args.String("collection"), args.String("documentId")
	if !c.cfg.Mock {
		if err := c.ready(); err != nil {
			return nil, err
		}
		if err := c.store.Delete(ctx, docPath(coll, id)); err != nil {
			return nil, err
		}
	}
	return fmt.Sprintf("Document deleted successfully:\n\nCollection: %s\nDocument ID: %s", coll, id), nil
}
