package jobber

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"
)

func (c *Connector) Tools() []tools.Tool {
	return []tools.Tool{
		{
			Descriptor: tools.Descriptor{
				Name:        "get_clients",
				Description: "Get list of clients from Jobber",
				Fields: []tools.Field{
					{Name: "limit", Kind: tools.KindNumber, Description: "Maximum number of clients to return", Default: 10},
					{Name: "search", Kind: tools.KindString, Description: "Search term for client name or email"},
				},
			},
			Handler: c.getClients,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "create_client",
				Description: "Create a new client in Jobber",
				Fields: []tools.Field{
					{Name: "name", Kind: tools.KindString, Description: "Client name"},
					{Name: "email", Kind: tools.KindString, Description: "Client email address"},
					{Name: "phone", Kind: tools.KindString, Description: "Client phone number"},
					{Name: "address", Kind: tools.KindString, Description: "Client street address"},
				},
				Required: []string{"name"},
			},
			Handler: c.createClient,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "get_jobs",
				Description: "Get list of jobs from Jobber",
				Fields: []tools.Field{
					{Name: "clientId", Kind: tools.KindString, Description: "Filter by client ID"},
					{Name: "status", Kind: tools.KindString, Description: "Filter by job status (active, completed, cancelled)"},
					{Name: "limit", Kind: tools.KindNumber, Description: "Maximum number of jobs to return", Default: 10},
				},
			},
			Handler: c.getJobs,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "create_job",
				Description: "Create a new job in Jobber",
				Fields: []tools.Field{
					{Name: "clientId", Kind: tools.KindString, Description: "Client ID for the job"},
					{Name: "title", Kind: tools.KindString, Description: "Job title"},
					{Name: "description", Kind: tools.KindString, Description: "Job description"},
					{Name: "startDate", Kind: tools.KindString, Description: "Job start date (YYYY-MM-DD)"},
				},
				Required: []string{"clientId", "title"},
			},
			Handler: c.createJob,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "get_invoices",
				Description: "Get list of invoices from Jobber",
				Fields: []tools.Field{
					{Name: "clientId", Kind: tools.KindString, Description: "Filter by client ID"},
					{Name: "status", Kind: tools.KindString, Description: "Filter by invoice status (draft, sent, paid, overdue)"},
					{Name: "limit", Kind: tools.KindNumber, Description: "Maximum number of invoices to return", Default: 10},
				},
			},
			Handler: c.getInvoices,
		},
	}
}

const clientsQuery = `query GetClients($first: Int, $filter: ClientFilterAttributes) {
  clients(first: $first, filter: $filter) {
    nodes { id name email phoneNumber }
    totalCount
  }
}`

type client struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

func (c *Connector) getClients(ctx context.Context, args tools.Args) (any, error) {
	var data struct {
		Clients struct {
			Nodes      []client `json:"nodes"`
			TotalCount int      `json:"totalCount"`
		} `json:"clients"`
	}
	if c.cfg.Mock {
		data.Clients.Nodes = []client{
			{ID: "c-1", Name: "Mock Client", Email: "client@example.com", PhoneNumber: "555-0100"},
			{ID: "c-2", Name: "Mock Client Two"},
		}
		data.Clients.TotalCount = 2
	} else {
		vars := map[string]any{"first": args.Int("limit")}
		if s := args.String("search"); s != "" {
			vars["filter"] = map[string]any{"searchTerm": s}
		}
		if err := c.query(ctx, clientsQuery, vars, &data); err != nil {
			return nil, err
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d clients:\n", data.Clients.TotalCount)
	for _, cl := range data.Clients.Nodes {
		fmt.Fprintf(&b, "\n• %s (%s) - %s [ID: %s]", cl.Name, orDefault(cl.Email, "No email"), orDefault(cl.PhoneNumber, "No phone"), cl.ID)
	}
	return b.String(), nil
}

const createClientMutation = `mutation CreateClient($input: ClientCreateInput!) {
  clientCreate(input: $input) {
    client { id name email phoneNumber }
    userErrors { field message }
  }
}`

func (c *Connector) createClient(ctx context.Context, args tools.Args) (any, error) {
	if c.cfg.Mock {
		return fmt.Sprintf("Client created successfully: %s (ID: mock-client-1)", args.String("name")), nil
	}
	input := map[string]any{"name": args.String("name")}
	if v := args.String("email"); v != "" {
		input["email"] = v
	}
	if v := args.String("phone"); v != "" {
		input["phoneNumber"] = v
	}
	if v := args.String("address"); v != "" {
		input["address"] = map[string]any{"street": v}
	}

	var data struct {
		ClientCreate struct {
			Client     *client     `json:"client"`
			UserErrors []userError `json:"userErrors"`
		} `json:"clientCreate"`
	}
	if err := c.query(ctx, createClientMutation, map[string]any{"input": input}, &data); err != nil {
		return nil, err
	}
	if err := userErrors(data.ClientCreate.UserErrors); err != nil {
		return nil, err
	}
	cl := data.ClientCreate.Client
	if cl == nil {
		return nil, userErrors([]userError{{Message: "no client returned"}})
	}
	return fmt.Sprintf("Client created successfully: %s (ID: %s)", cl.Name, cl.ID), nil
}

const jobsQuery = `query GetJobs($first: Int, $filter: JobFilterAttributes) {
  jobs(first: $first, filter: $filter) {
    nodes { id title jobStatus startAt client { id name } }
    totalCount
  }
}`

type job struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	JobStatus string `json:"jobStatus"`
	StartAt   string `json:"startAt"`
	Client    struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"client"`
}

func (c *Connector) getJobs(ctx context.Context, args tools.Args) (any, error) {
	var data struct {
		Jobs struct {
			Nodes      []job `json:"nodes"`
			TotalCount int   `json:"totalCount"`
		} `json:"jobs"`
	}
	if c.cfg.Mock {
		j := job{ID: "j-1", Title: "Mock Job", JobStatus: "ACTIVE", StartAt: "2026-01-15"}
		j.Client.Name = "Mock Client"
		data.Jobs.Nodes = []job{j}
		data.Jobs.TotalCount = 1
	} else {
		filter := map[string]any{}
		if v := args.String("clientId"); v != "" {
			filter["clientId"] = v
		}
		if v := args.String("status"); v != "" {
			filter["status"] = strings.ToUpper(v)
		}
		vars := map[string]any{"first": args.Int("limit"), "filter": filter}
		if err := c.query(ctx, jobsQuery, vars, &data); err != nil {
			return nil, err
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d jobs:\n", data.Jobs.TotalCount)
	for _, j := range data.Jobs.Nodes {
		fmt.Fprintf(&b, "\n• %s (%s) - Client: %s - Start: %s", j.Title, j.JobStatus, orDefault(j.Client.Name, "Unknown"), orDefault(j.StartAt, "Not scheduled"))
	}
	return b.String(), nil
}

const createJobMutation = `mutation CreateJob($input: JobCreateAttributes!) {
  jobCreate(input: $input) {
    job { id title jobStatus client { name } }
    userErrors { field message }
  }
}`

func (c *Connector) createJob(ctx context.Context, args tools.Args) (any, error) {
	if c.cfg.Mock {
		return fmt.Sprintf("Job created successfully: %s for client %s (ID: mock-job-1)", args.String("title"), args.String("clientId")), nil
	}
	input := map[string]any{
		"clientId": args.String("clientId"),
		"title":    args.String("title"),
	}
	if v := args.String("description"); v != "" {
		input["description"] = v
	}
	if v := args.String("startDate"); v != "" {
		input["startAt"] = v
	}

	var data struct {
		JobCreate struct {
			Job        *job        `json:"job"`
			UserErrors []userError `json:"userErrors"`
		} `json:"jobCreate"`
	}
	if err := c.query(ctx, createJobMutation, map[string]any{"input": input}, &data); err != nil {
		return nil, err
	}
	if err := userErrors(data.JobCreate.UserErrors); err != nil {
		return nil, err
	}
	j := data.JobCreate.Job
	if j == nil {
		return nil, userErrors([]userError{{Message: "no job returned"}})
	}
	return fmt.Sprintf("Job created successfully: %s for %s (ID: %s)", j.Title, orDefault(j.Client.Name, "client"), j.ID), nil
}

const invoicesQuery = `query GetInvoices($first: Int, $filter: InvoiceFilterAttributes) {
  invoices(first: $first, filter: $filter) {
    nodes { id invoiceNumber invoiceStatus dueDate amounts { total } client { id name } }
    totalCount
  }
}`

type invoice struct {
	ID            string `json:"id"`
	InvoiceNumber string `json:"invoiceNumber"`
	InvoiceStatus string `json:"invoiceStatus"`
	DueDate       string `json:"dueDate"`
	Amounts       struct {
		Total float64 `json:"total"`
	} `json:"amounts"`
	Client struct {
		Name string `json:"name"`
	} `json:"client"`
}

func (c *Connector) getInvoices(ctx context.Context, args tools.Args) (any, error) {
	var data struct {
		Invoices struct {
			Nodes      []invoice `json:"nodes"`
			TotalCount int       `json:"totalCount"`
		} `json:"invoices"`
	}
	if c.cfg.Mock {
		inv := invoice{ID: "i-1", InvoiceNumber: "1001", InvoiceStatus: "SENT", DueDate: "2026-02-01"}
		inv.Amounts.Total = 1250
		inv.Client.Name = "Mock Client"
		data.Invoices.Nodes = []invoice{inv}
		data.Invoices.TotalCount = 1
	} else {
		filter := map[string]any{}
		if v := args.String("clientId"); v != "" {
			filter["clientId"] = v
		}
		if v := args.String("status"); v != "" {
			filter["status"] = strings.ToUpper(v)
		}
		vars := map[string]any{"first": args.Int("limit"), "filter": filter}
		if err := c.query(ctx, invoicesQuery, vars, &data); err != nil {
			return nil, err
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d invoices:\n", data.Invoices.TotalCount)
	for _, inv := range data.Invoices.Nodes {
		fmt.Fprintf(&b, "\n• #%s - %s (%s) - Client: %s - Due: %s", inv.InvoiceNumber, money(inv.Amounts.Total), inv.InvoiceStatus, orDefault(inv.Client.Name, "Unknown"), orDefault(inv.DueDate, "No due date"))
	}
	return b.String(), nil
}
