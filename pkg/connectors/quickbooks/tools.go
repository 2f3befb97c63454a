package quickbooks

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"
)

var summarizeBy = []any{"Month", "Quarter", "Year", "Week"}

func (c *Connector) Tools() []tools.Tool {
	return []tools.Tool{
		{
			Descriptor: tools.Descriptor{Name: "qb_get_company_info", Description: "Get QuickBooks company information"},
			Handler:    c.getCompanyInfo,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "qb_get_profit_loss",
				Description: "Get the Profit & Loss report for a period",
				Fields: []tools.Field{
					{Name: "startDate", Kind: tools.KindString, Description: "Start date (YYYY-MM-DD)"},
					{Name: "endDate", Kind: tools.KindString, Description: "End date (YYYY-MM-DD)"},
					{Name: "summarizeColumnBy", Kind: tools.KindString, Description: "Column grouping", Enum: summarizeBy},
				},
				Required: []string{"startDate", "endDate"},
			},
			Handler: c.getProfitLoss,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "qb_get_balance_sheet",
				Description: "Get the Balance Sheet as of a date",
				Fields: []tools.Field{
					{Name: "asOfDate", Kind: tools.KindString, Description: "Report date (YYYY-MM-DD)"},
					{Name: "summarizeColumnBy", Kind: tools.KindString, Description: "Column grouping", Enum: summarizeBy},
				},
				Required: []string{"asOfDate"},
			},
			Handler: c.getBalanceSheet,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "qb_list_customers",
				Description: "List customers",
				Fields: []tools.Field{
					{Name: "maxResults", Kind: tools.KindNumber, Description: "Maximum number of customers", Default: 20},
					{Name: "active", Kind: tools.KindBoolean, Description: "Only active customers; false includes inactive ones", Default: true},
				},
			},
			Handler: c.listCustomers,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "qb_create_customer",
				Description: "Create a customer",
				Fields: []tools.Field{
					{Name: "name", Kind: tools.KindString, Description: "Customer display name"},
					{Name: "companyName", Kind: tools.KindString, Description: "Company name"},
					{Name: "email", Kind: tools.KindString, Description: "Email address"},
					{Name: "phone", Kind: tools.KindString, Description: "Phone number"},
				},
				Required: []string{"name"},
			},
			Handler: c.createCustomer,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "qb_list_items",
				Description: "List products and services",
				Fields: []tools.Field{
					{Name: "maxResults", Kind: tools.KindNumber, Description: "Maximum number of items", Default: 20},
					{Name: "type", Kind: tools.KindString, Description: "Item type", Enum: []any{"Inventory", "NonInventory", "Service"}},
				},
			},
			Handler: c.listItems,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "qb_list_invoices",
				Description: "List invoices, newest first",
				Fields: []tools.Field{
					{Name: "maxResults", Kind: tools.KindNumber, Description: "Maximum number of invoices", Default: 10},
					{Name: "customerId", Kind: tools.KindString, Description: "Only invoices for this customer"},
					{Name: "status", Kind: tools.KindString, Description: "Email status", Enum: []any{"NotSet", "NeedToSend", "EmailSent"}},
				},
			},
			Handler: c.listInvoices,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "qb_create_invoice",
				Description: "Create an invoice for a customer",
				Fields: []tools.Field{
					{Name: "customerId", Kind: tools.KindString, Description: "Customer ID"},
					{
						Name:        "lineItems",
						Kind:        tools.KindArray,
						Description: "Invoice lines",
						Items: &tools.Field{
							Kind: tools.KindObject,
							Properties: []tools.Field{
								{Name: "itemId", Kind: tools.KindString},
								{Name: "quantity", Kind: tools.KindNumber},
								{Name: "unitPrice", Kind: tools.KindNumber},
								{Name: "description", Kind: tools.KindString},
							},
							Required: []string{"itemId", "quantity", "unitPrice"},
						},
					},
					{Name: "dueDate", Kind: tools.KindString, Description: "Due date (YYYY-MM-DD)"},
				},
				Required: []string{"customerId", "lineItems"},
			},
			Handler: c.createInvoice,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "qb_create_bill",
				Description: "Create a vendor bill",
				Fields: []tools.Field{
					{Name: "vendorId", Kind: tools.KindString, Description: "Vendor ID"},
					{Name: "amount", Kind: tools.KindNumber, Description: "Bill amount"},
					{Name: "dueDate", Kind: tools.KindString, Description: "Due date (YYYY-MM-DD)"},
					{Name: "memo", Kind: tools.KindString, Description: "Private memo"},
				},
				Required: []string{"vendorId", "amount"},
			},
			Handler: c.createBill,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "qb_list_payments",
				Description: "List customer payments",
				Fields: []tools.Field{
					{Name: "maxResults", Kind: tools.KindNumber, Description: "Maximum number of payments", Default: 20},
					{Name: "startDate", Kind: tools.KindString, Description: "Earliest transaction date (YYYY-MM-DD)"},
					{Name: "endDate", Kind: tools.KindString, Description: "Latest transaction date (YYYY-MM-DD)"},
				},
			},
			Handler: c.listPayments,
		},
	}
}

// maxQueryResults is the largest page the query endpoint returns.
const maxQueryResults = 1000

func maxResults(args tools.Args) int {
	return min(max(args.Int("maxResults"), 1), maxQueryResults)
}

func (c *Connector) getCompanyInfo(ctx context.Context, _ tools.Args) (any, error) {
	var resp struct {
		CompanyInfo companyInfo `json:"CompanyInfo"`
	}
	if c.cfg.Mock {
		resp.CompanyInfo = companyInfo{CompanyName: "Mock Company LLC", Country: "US"}
	} else if err := c.get(ctx, "companyinfo/"+url.PathEscape(c.cfg.CompanyID), nil, &resp); err != nil {
		return nil, err
	}
	ci := resp.CompanyInfo
	addr := ""
	if ci.CompanyAddr != nil {
		addr = ci.CompanyAddr.Line1
	}
	return fmt.Sprintf("Company Information:\n\nName: %s\nLegal Name: %s\nAddress: %s\nEmail: %s\nPhone: %s\nFiscal Year Start: %s\nCountry: %s",
		ci.CompanyName, orNA(ci.LegalName), orNA(addr), orNA(email(ci.Email)), orNA(phoneNumber(ci.PrimaryPhone)),
		orNA(ci.FiscalYearStartMonth), orNA(ci.Country)), nil
}

func (c *Connector) fetchReport(ctx context.Context, name string, q url.Values, args tools.Args) (report, error) {
	if c.cfg.Mock {
		return mockReport(name), nil
	}
	if by := args.String("summarizeColumnBy"); by != "" {
		q.Set("summarize_column_by", by)
	}
	var r report
	err := c.get(ctx, "reports/"+name, q, &r)
	return r, err
}

func renderReport(title, period string, r report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s\n", title, period)
	if r.Header.Currency != "" {
		fmt.Fprintf(&b, "Currency: %s\n", r.Header.Currency)
	}
	lines := r.lines()
	if len(lines) == 0 {
		b.WriteString("\nNo rows in this report.")
		return b.String()
	}
	b.WriteString("\n")
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

func (c *Connector) getProfitLoss(ctx context.Context, args tools.Args) (any, error) {
	start, end := args.String("startDate"), args.String("endDate")
	r, err := c.fetchReport(ctx, "ProfitAndLoss", url.Values{"start_date": {start}, "end_date": {end}}, args)
	if err != nil {
		return nil, err
	}
	return renderReport("Profit & Loss Report", fmt.Sprintf("Period: %s to %s", start, end), r), nil
}

func (c *Connector) getBalanceSheet(ctx context.Context, args tools.Args) (any, error) {
	asOf := args.String("asOfDate")
	// The report API takes a range; a sheet as of a date ends there.
	r, err := c.fetchReport(ctx, "BalanceSheet", url.Values{"end_date": {asOf}}, args)
	if err != nil {
		return nil, err
	}
	return renderReport("Balance Sheet", "As of: "+asOf, r), nil
}

func (c *Connector) listCustomers(ctx context.Context, args tools.Args) (any, error) {
	// QuickBooks returns only active records unless the query names both.
	stmt := "SELECT * FROM Customer WHERE Active = true"
	if !args.Bool("active") {
		stmt = "SELECT * FROM Customer WHERE Active IN (true, false)"
	}
	stmt += fmt.Sprintf(" MAXRESULTS %d", maxResults(args))

	var resp struct {
		QueryResponse struct {
			Customer []customer `json:"Customer"`
		} `json:"QueryResponse"`
	}
	if c.cfg.Mock {
		active := true
		resp.QueryResponse.Customer = []customer{{ID: "1", DisplayName: "Mock Customer", Active: &active}}
	} else if err := c.query(ctx, stmt, &resp); err != nil {
		return nil, err
	}

	list := resp.QueryResponse.Customer
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d customers:\n", len(list))
	for _, cu := range list {
		active := cu.Active != nil && *cu.Active
		fmt.Fprintf(&b, "\nID: %s\nName: %s\nCompany: %s\nEmail: %s\nPhone: %s\nActive: %t\n",
			cu.ID, cu.DisplayName, orNA(cu.CompanyName), orNA(email(cu.PrimaryEmailAddr)), orNA(phoneNumber(cu.PrimaryPhone)), active)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Connector) createCustomer(ctx context.Context, args tools.Args) (any, error) {
	in := customer{DisplayName: args.String("name"), CompanyName: args.String("companyName")}
	if v := args.String("email"); v != "" {
		in.PrimaryEmailAddr = &emailAddr{Address: v}
	}
	if v := args.String("phone"); v != "" {
		in.PrimaryPhone = &phone{FreeFormNumber: v}
	}

	var resp struct {
		Customer customer `json:"Customer"`
	}
	if c.cfg.Mock {
		resp.Customer = in
		resp.Customer.ID = "mock-58"
	} else if err := c.post(ctx, "customer", in, &resp); err != nil {
		return nil, err
	}
	cu := resp.Customer
	return fmt.Sprintf("Customer created successfully:\n\nID: %s\nName: %s\nCompany: %s\nEmail: %s\nPhone: %s",
		cu.ID, cu.DisplayName, orNA(cu.CompanyName), orNA(email(cu.PrimaryEmailAddr)), orNA(phoneNumber(cu.PrimaryPhone))), nil
}

func (c *Connector) listItems(ctx context.Context, args tools.Args) (any, error) {
	stmt := "SELECT * FROM Item"
	if t := args.String("type"); t != "" {
		stmt += " WHERE Type = " + quote(t)
	}
	stmt += fmt.Sprintf(" MAXRESULTS %d", maxResults(args))

	var resp struct {
		QueryResponse struct {
			Item []item `json:"Item"`
		} `json:"QueryResponse"`
	}
	if c.cfg.Mock {
		resp.QueryResponse.Item = []item{{ID: "1", Name: "Consulting", Type: "Service", UnitPrice: 150, Active: true}}
	} else if err := c.query(ctx, stmt, &resp); err != nil {
		return nil, err
	}

	list := resp.QueryResponse.Item
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d items:\n", len(list))
	for _, it := range list {
		fmt.Fprintf(&b, "\nID: %s\nName: %s\nType: %s\nDescription: %s\nUnit Price: %s\nActive: %t\n",
			it.ID, it.Name, it.Type, orNA(it.Description), money(it.UnitPrice), it.Active)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Connector) listInvoices(ctx context.Context, args tools.Args) (any, error) {
	var conds []string
	if id := args.String("customerId"); id != "" {
		conds = append(conds, "CustomerRef = "+quote(id))
	}
	if st := args.String("status"); st != "" {
		conds = append(conds, "EmailStatus = "+quote(st))
	}
	stmt := "SELECT * FROM Invoice"
	if len(conds) > 0 {
		stmt += " WHERE " + strings.Join(conds, " AND ")
	}
	stmt += fmt.Sprintf(" ORDERBY TxnDate DESC MAXRESULTS %d", maxResults(args))

	var resp struct {
		QueryResponse struct {
			Invoice []invoice `json:"Invoice"`
		} `json:"QueryResponse"`
	}
	if c.cfg.Mock {
		resp.QueryResponse.Invoice = []invoice{{ID: "130", DocNumber: "1037", CustomerRef: ref{Value: "1", Name: "Mock Customer"}, TotalAmt: 362.07, Balance: 362.07, TxnDate: "2026-01-05", DueDate: "2026-02-04", EmailStatus: "EmailSent"}}
	} else if err := c.query(ctx, stmt, &resp); err != nil {
		return nil, err
	}

	list := resp.QueryResponse.Invoice
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d invoices:\n", len(list))
	for _, inv := range list {
		due := inv.DueDate
		if due == "" {
			due = "No due date"
		}
		fmt.Fprintf(&b, "\nInvoice #%s (ID %s)\nCustomer: %s\nTotal: %s\nBalance: %s\nDate: %s\nDue: %s\nStatus: %s\n",
			orNA(inv.DocNumber), inv.ID, refName(&inv.CustomerRef), money(inv.TotalAmt), money(inv.Balance), orNA(inv.TxnDate), due, orNA(inv.EmailStatus))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Connector) createInvoice(ctx context.Context, args tools.Args) (any, error) {
	var lines []map[string]any
	var total float64
	for i, obj := range args.Objects("lineItems") {
		li := tools.Args(obj)
		qty, price := li.Float("quantity"), li.Float("unitPrice")
		amount := math.Round(qty*price*100) / 100
		total += amount
		detail := map[string]any{
			"ItemRef":   ref{Value: li.Text("itemId")},
			"Qty":       qty,
			"UnitPrice": price,
		}
		line := map[string]any{
			"LineNum":             i + 1,
			"Amount":              amount,
			"DetailType":          "SalesItemLineDetail",
			"SalesItemLineDetail": detail,
		}
		if d := li.String("description"); d != "" {
			line["Description"] = d
		}
		lines = append(lines, line)
	}
	body := map[string]any{
		"CustomerRef": ref{Value: args.String("customerId")},
		"Line":        lines,
	}
	if d := args.String("dueDate"); d != "" {
		body["DueDate"] = d
	}

	var resp struct {
		Invoice invoice `json:"Invoice"`
	}
	if c.cfg.Mock {
		resp.Invoice = invoice{ID: "mock-130", DocNumber: "1038", CustomerRef: ref{Value: args.String("customerId")}, TotalAmt: total, DueDate: args.String("dueDate")}
	} else if err := c.post(ctx, "invoice", body, &resp); err != nil {
		return nil, err
	}
	inv := resp.Invoice
	due := inv.DueDate
	if due == "" {
		due = "Not set"
	}
	return fmt.Sprintf("Invoice created successfully:\n\nInvoice ID: %s\nInvoice Number: %s\nCustomer: %s\nTotal Amount: %s\nDue Date: %s",
		inv.ID, orNA(inv.DocNumber), refName(&inv.CustomerRef), money(inv.TotalAmt), due), nil
}

func (c *Connector) createBill(ctx context.Context, args tools.Args) (any, error) {
	amount := args.Float("amount")
	body := map[string]any{
		"VendorRef": ref{Value: args.String("vendorId")},
		"Line": []any{map[string]any{
			"Amount":     amount,
			"DetailType": "AccountBasedExpenseLineDetail",
			"AccountBasedExpenseLineDetail": map[string]any{
				"AccountRef": ref{Value: c.cfg.ExpenseAccountID},
			},
		}},
	}
	if d := args.String("dueDate"); d != "" {
		body["DueDate"] = d
	}
	if m := args.String("memo"); m != "" {
		body["PrivateNote"] = m
	}

	var resp struct {
		Bill bill `json:"Bill"`
	}
	if c.cfg.Mock {
		resp.Bill = bill{ID: "mock-bill", VendorRef: ref{Value: args.String("vendorId")}, TotalAmt: amount, DueDate: args.String("dueDate"), PrivateNote: args.String("memo")}
	} else if err := c.post(ctx, "bill", body, &resp); err != nil {
		return nil, err
	}
	b := resp.Bill
	due := b.DueDate
	if due == "" {
		due = "Not set"
	}
	return fmt.Sprintf("Bill created successfully:\n\nBill ID: %s\nVendor: %s\nAmount: %s\nDue Date: %s\nMemo: %s",
		b.ID, refName(&b.VendorRef), money(b.TotalAmt), due, orNA(b.PrivateNote)), nil
}

func (c *Connector) listPayments(ctx context.Context, args tools.Args) (any, error) {
	var conds []string
	if d := args.String("startDate"); d != "" {
		conds = append(conds, "TxnDate >= "+quote(d))
	}
	if d := args.String("endDate"); d != "" {
		conds = append(conds, "TxnDate <= "+quote(d))
	}
	stmt := "SELECT * FROM Payment"
	if len(conds) > 0 {
		stmt += " WHERE " + strings.Join(conds, " AND ")
	}
	stmt += fmt.Sprintf(" MAXRESULTS %d", maxResults(args))

	var resp struct {
		QueryResponse struct {
			Payment []payment `json:"Payment"`
		} `json:"QueryResponse"`
	}
	if c.cfg.Mock {
		resp.QueryResponse.Payment = []payment{{ID: "p-1", CustomerRef: &ref{Value: "1", Name: "Mock Customer"}, TotalAmt: 500, TxnDate: "2026-01-10"}}
	} else if err := c.query(ctx, stmt, &resp); err != nil {
		return nil, err
	}

	list := resp.QueryResponse.Payment
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d payments:\n", len(list))
	for _, p := range list {
		fmt.Fprintf(&b, "\nID: %s\nCustomer: %s\nAmount: %s\nDate: %s\nPayment Method: %s\n",
			p.ID, orNA(refName(p.CustomerRef)), money(p.TotalAmt), p.TxnDate, orNA(refName(p.PaymentMethodRef)))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
