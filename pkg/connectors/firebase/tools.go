package firebase

import "github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"

func (c *Connector) Tools() []tools.Tool {
	collection := tools.Field{Name: "collection", Kind: tools.KindString, Description: "Firestore collection path"}
	documentID := tools.Field{Name: "documentId", Kind: tools.KindString, Description: "Document ID"}
	return []tools.Tool{
		{
			Descriptor: tools.Descriptor{
				Name:        "firestore_read",
				Description: "Read a document from a Firestore collection",
				Fields:      []tools.Field{collection, documentID},
				Required:    []string{"collection", "documentId"},
			},
			Handler: c.firestoreRead,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "firestore_write",
				Description: "Write a document to a Firestore collection, replacing any existing one",
				Fields: []tools.Field{
					collection,
					{Name: "documentId", Kind: tools.KindString, Description: "Document ID, generated when empty"},
					{Name: "data", Kind: tools.KindObject, Description: "Document data"},
				},
				Required: []string{"collection", "data"},
			},
			Handler: c.firestoreWrite,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "firestore_query",
				Description: "Query a Firestore collection with an optional filter",
				Fields: []tools.Field{
					collection,
					{Name: "field", Kind: tools.KindString, Description: "Field to filter on"},
					{Name: "operator", Kind: tools.KindString, Description: "Comparison operator", Enum: operatorEnum},
					{Name: "value", Kind: tools.KindString, Description: "Value to compare against, comma-separated for list operators"},
					{Name: "limit", Kind: tools.KindNumber, Description: "Maximum number of results", Default: 10},
				},
				Required: []string{"collection"},
			},
			Handler: c.firestoreQuery,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "firestore_delete",
				Description: "Delete a document from a Firestore collection",
				Fields:      []tools.Field{collection, documentID},
				Required:    []string{"collection", "documentId"},
			},
			Handler: c.firestoreDelete,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "auth_create_user",
				Description: "Create a Firebase Auth user",
				Fields: []tools.Field{
					{Name: "email", Kind: tools.KindString, Description: "User email address"},
					{Name: "password", Kind: tools.KindString, Description: "User password"},
					{Name: "displayName", Kind: tools.KindString, Description: "User display name"},
				},
				Required: []string{"email", "password"},
			},
			Handler: c.authCreateUser,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "auth_get_user",
				Description: "Get a Firebase Auth user by email or UID",
				Fields: []tools.Field{
					{Name: "identifier", Kind: tools.KindString, Description: "User email or UID"},
					{Name: "type", Kind: tools.KindString, Description: "Identifier type", Enum: []any{"email", "uid"}, Default: "email"},
				},
				Required: []string{"identifier"},
			},
			Handler: c.authGetUser,
		},
	}
}
