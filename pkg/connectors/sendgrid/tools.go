package sendgrid

import "github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"

var (
	generations = []any{"legacy", "dynamic"}
	sendFields  = []tools.Field{
		{Name: "subject", Kind: tools.KindString, Description: "Email subject line"},
		{Name: "text", Kind: tools.KindString, Description: "Plain text email content"},
		{Name: "html", Kind: tools.KindString, Description: "HTML email content"},
		{Name: "markdown", Kind: tools.KindBoolean, Description: "Render text as Markdown into the HTML part"},
		{Name: "from", Kind: tools.KindString, Description: "Sender email address (defaults to SENDGRID_FROM_EMAIL)"},
		{Name: "fromName", Kind: tools.KindString, Description: "Sender name"},
		{Name: "templateId", Kind: tools.KindString, Description: "SendGrid template ID"},
	}
)

func (c *Connector) Tools() []tools.Tool {
	single := append([]tools.Field{{Name: "to", Kind: tools.KindString, Description: "Recipient email address"}}, sendFields...)
	single = append(single,
		tools.Field{Name: "replyTo", Kind: tools.KindString, Description: "Reply-to email address"},
		tools.Field{Name: "dynamicTemplateData", Kind: tools.KindObject, Description: "Dynamic template data"},
	)
	bulk := append([]tools.Field{{
		Name:        "recipients",
		Kind:        tools.KindArray,
		Description: "Recipients, each sent an individual copy",
		Items: &tools.Field{
			Kind: tools.KindObject,
			Properties: []tools.Field{
				{Name: "email", Kind: tools.KindString},
				{Name: "name", Kind: tools.KindString},
			},
			Required: []string{"email"},
		},
	}}, sendFields...)

	return []tools.Tool{
		{
			Descriptor: tools.Descriptor{
				Name:        "sendgrid_send_email",
				Description: "Send transactional email via SendGrid",
				Fields:      single,
				Required:    []string{"to", "subject", "text"},
			},
			Handler: c.sendEmail,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "sendgrid_send_bulk_email",
				Description: "Send the same email to multiple recipients",
				Fields:      bulk,
				Required:    []string{"recipients", "subject", "text"},
			},
			Handler: c.sendBulkEmail,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "sendgrid_list_templates",
				Description: "List email templates",
				Fields: []tools.Field{
					{Name: "generations", Kind: tools.KindString, Description: "Template generation", Enum: generations, Default: "dynamic"},
					{Name: "pageSize", Kind: tools.KindNumber, Description: "Number of templates to return", Default: 10},
				},
			},
			Handler: c.listTemplates,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "sendgrid_get_template",
				Description: "Get details of an email template",
				Fields:      []tools.Field{{Name: "templateId", Kind: tools.KindString, Description: "Template ID"}},
				Required:    []string{"templateId"},
			},
			Handler: c.getTemplate,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "sendgrid_create_template",
				Description: "Create a new email template",
				Fields: []tools.Field{
					{Name: "name", Kind: tools.KindString, Description: "Template name"},
					{Name: "generation", Kind: tools.KindString, Description: "Template generation", Enum: generations, Default: "dynamic"},
				},
				Required: []string{"name"},
			},
			Handler: c.createTemplate,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "sendgrid_add_contact",
				Description: "Add or update a marketing contact",
				Fields: []tools.Field{
					{Name: "email", Kind: tools.KindString, Description: "Contact email address"},
					{Name: "firstName", Kind: tools.KindString, Description: "First name"},
					{Name: "lastName", Kind: tools.KindString, Description: "Last name"},
					{Name: "customFields", Kind: tools.KindObject, Description: "Custom field values keyed by field ID"},
					{Name: "listIds", Kind: tools.KindArray, Description: "Marketing list IDs", Items: &tools.Field{Kind: tools.KindString}},
				},
				Required: []string{"email"},
			},
			Handler: c.addContact,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "sendgrid_list_contacts",
				Description: "List marketing contacts",
				Fields: []tools.Field{
					{Name: "pageSize", Kind: tools.KindNumber, Description: "Number of contacts to return", Default: 10},
					{Name: "pageToken", Kind: tools.KindString, Description: "Token from a previous page"},
				},
			},
			Handler: c.listContacts,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "sendgrid_list_marketing_lists",
				Description: "List marketing lists",
				Fields:      []tools.Field{{Name: "pageSize", Kind: tools.KindNumber, Description: "Number of lists to return", Default: 10}},
			},
			Handler: c.listMarketingLists,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "sendgrid_create_marketing_list",
				Description: "Create a marketing list",
				Fields:      []tools.Field{{Name: "name", Kind: tools.KindString, Description: "List name"}},
				Required:    []string{"name"},
			},
			Handler: c.createMarketingList,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "sendgrid_get_email_stats",
				Description: "Get global email statistics for a date range",
				Fields: []tools.Field{
					{Name: "startDate", Kind: tools.KindString, Description: "Start date (YYYY-MM-DD)"},
					{Name: "endDate", Kind: tools.KindString, Description: "End date (YYYY-MM-DD)"},
					{Name: "aggregatedBy", Kind: tools.KindString, Description: "Aggregation period", Enum: []any{"day", "week", "month"}},
				},
				Required: []string{"startDate", "endDate"},
			},
			Handler: c.getEmailStats,
		},
	}
}
