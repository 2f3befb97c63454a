package quickbooks

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/connectortest"
)

func newTestConnector(t *testing.T, h http.HandlerFunc) *Connector {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{AccessToken: "qb-token-xyz", CompanyID: "4620816365", URL: srv.URL}, connectortest.Options())
}

func TestNew_SandboxURL(t *testing.T) {
	c := New(Config{CompanyID: "1", Sandbox: true}, connectortest.Options())
	if want := SandboxURL + "/v3/company/1"; c.api.BaseURL() != want {
		t.Errorf("BaseURL = %q, want %q", c.api.BaseURL(), want)
	}
	c = New(Config{CompanyID: "1"}, connectortest.Options())
	if want := ProductionURL + "/v3/company/1"; c.api.BaseURL() != want {
		t.Errorf("BaseURL = %q, want %q", c.api.BaseURL(), want)
	}
}

func TestListCustomers_Query(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/company/4620816365/query" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("minorversion") != minorVersion {
			t.Errorf("minorversion = %q", q.Get("minorversion"))
		}
		if got, want := q.Get("query"), "SELECT * FROM Customer WHERE Active = true MAXRESULTS 20"; got != want {
			t.Errorf("query = %q, want %q", got, want)
		}
		connectortest.WriteJSON(w, 200, map[string]any{"QueryResponse": map[string]any{"Customer": []any{
			map[string]any{"Id": "7", "DisplayName": "Amy's Bird Sanctuary", "Active": true, "PrimaryEmailAddr": map[string]any{"Address": "birds@intuit.com"}},
		}}})
	})
	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "qb_list_customers", nil))
	for _, want := range []string{"Found 1 customers:", "Name: Amy's Bird Sanctuary", "Email: birds@intuit.com", "Phone: N/A", "Active: true"} {
		if !strings.Contains(text, want) {
			t.Errorf("text %q missing %q", text, want)
		}
	}
}

func TestListPayments_DateRange(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		want := "SELECT * FROM Payment WHERE TxnDate >= '2026-01-01' AND TxnDate <= '2026-01-31' MAXRESULTS 5"
		if got := r.URL.Query().Get("query"); got != want {
			t.Errorf("query = %q, want %q", got, want)
		}
		connectortest.WriteJSON(w, 200, map[string]any{"QueryResponse": map[string]any{}})
	})
	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "qb_list_payments", map[string]any{
		"startDate": "2026-01-01", "endDate": "2026-01-31", "maxResults": 5,
	}))
	if text != "Found 0 payments:" {
		t.Errorf("text = %q", text)
	}
}

func TestListItems_TypeEnum(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider must not be called")
	})
	connectortest.MustFail(t, connectortest.Call(t, c, "qb_list_items", map[string]any{"type": "Bundle"}), "Inventory, NonInventory, Service")
}

func TestCreateInvoice(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/invoice") {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		body := connectortest.DecodeJSON(t, r)
		lines, _ := body["Line"].([]any)
		if len(lines) != 2 {
			t.Errorf("lines = %v", body["Line"])
		} else if first, _ := lines[0].(map[string]any); first["Amount"] != 25.0 {
			t.Errorf("first amount = %v, want 25", first["Amount"])
		}
		connectortest.WriteJSON(w, 200, map[string]any{"Invoice": map[string]any{
			"Id": "130", "DocNumber": "1037", "TotalAmt": 65.5,
			"CustomerRef": map[string]any{"value": "7", "name": "Amy's Bird Sanctuary"},
		}})
	})
	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "qb_create_invoice", map[string]any{
		"customerId": "7",
		"lineItems": []any{
			map[string]any{"itemId": "1", "quantity": 2, "unitPrice": 12.5},
			map[string]any{"itemId": "2", "quantity": 1, "unitPrice": 40.5, "description": "Setup"},
		},
	}))
	for _, want := range []string{"Invoice ID: 130", "Customer: Amy's Bird Sanctuary", "Total Amount: $65.50", "Due Date: Not set"} {
		if !strings.Contains(text, want) {
			t.Errorf("text %q missing %q", text, want)
		}
	}
}

func TestCreateInvoice_LineMissingPrice(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider must not be called")
	})
	env := connectortest.Call(t, c, "qb_create_invoice", map[string]any{
		"customerId": "7",
		"lineItems":  []any{map[string]any{"itemId": "1", "quantity": 2}},
	})
	connectortest.MustFail(t, env, "lineItems[0].unitPrice")
}

func TestCreateBill_ExpenseAccount(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		body := connectortest.DecodeJSON(t, r)
		lines, _ := body["Line"].([]any)
		line, _ := lines[0].(map[string]any)
		detail, _ := line["AccountBasedExpenseLineDetail"].(map[string]any)
		acc, _ := detail["AccountRef"].(map[string]any)
		if acc["value"] != defaultExpenseAcc {
			t.Errorf("AccountRef = %v", acc)
		}
		connectortest.WriteJSON(w, 200, map[string]any{"Bill": map[string]any{
			"Id": "b1", "TotalAmt": 99, "VendorRef": map[string]any{"value": "56", "name": "Bob's Burgers"},
		}})
	})
	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "qb_create_bill", map[string]any{"vendorId": "56", "amount": 99}))
	if !strings.Contains(text, "Vendor: Bob's Burgers") || !strings.Contains(text, "Memo: N/A") {
		t.Errorf("text = %q", text)
	}
}

func TestProfitLossReport(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/reports/ProfitAndLoss") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("summarize_column_by"); got != "Quarter" {
			t.Errorf("summarize_column_by = %q", got)
		}
		_, _ = w.Write([]byte(`{"Header":{"ReportName":"ProfitAndLoss","Currency":"USD"},"Rows":{"Row":[
			{"Header":{"ColData":[{"value":"Income"},{"value":""}]},
			 "Rows":{"Row":[{"ColData":[{"value":"Landscaping Services"},{"value":"1477.5"}]}]},
			 "Summary":{"ColData":[{"value":"Total Income"},{"value":"1477.50"}]}}
		]}}`))
	})
	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "qb_get_profit_loss", map[string]any{
		"startDate": "2026-01-01", "endDate": "2026-03-31", "summarizeColumnBy": "Quarter",
	}))
	for _, want := range []string{"Period: 2026-01-01 to 2026-03-31", "Income:", "  Landscaping Services: $1477.50", "Total Income: $1477.50"} {
		if !strings.Contains(text, want) {
			t.Errorf("text %q missing %q", text, want)
		}
	}
}

func TestAPIError(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"Fault":{"Error":[{"Message":"AuthenticationFailed"}]}}`))
	})
	connectortest.MustFail(t, connectortest.Call(t, c, "qb_get_company_info", nil), "QuickBooks API error: 401")
}

func TestNotConfigured(t *testing.T) {
	c := New(Config{AccessToken: "x"}, connectortest.Options())
	connectortest.MustFail(t, connectortest.Call(t, c, "qb_get_company_info", nil), "QB_COMPANY_ID")
}

func TestMock(t *testing.T) {
	c := New(Config{Mock: true}, connectortest.Options())
	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "qb_get_balance_sheet", map[string]any{"asOfDate": "2026-06-30"}))
	if !strings.Contains(text, "As of: 2026-06-30") || !strings.Contains(text, "Services: $12000.00") {
		t.Errorf("text = %q", text)
	}
}

func TestListCustomers_IncludeInactive(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if got, want := r.URL.Query().Get("query"), "SELECT * FROM Customer WHERE Active IN (true, false) MAXRESULTS 20"; got != want {
			t.Errorf("query = %q, want %q", got, want)
		}
		connectortest.WriteJSON(w, 200, map[string]any{"QueryResponse": map[string]any{"Customer": []any{
			map[string]any{"Id": "9", "DisplayName": "Closed Account", "Active": false},
		}}})
	})
	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "qb_list_customers", map[string]any{"active": false}))
	if !strings.Contains(text, "Name: Closed Account") || !strings.Contains(text, "Active: false") {
		t.Errorf("text = %q", text)
	}
}

func TestListInvoices_Filters(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		want := "SELECT * FROM Invoice WHERE CustomerRef = '7' AND EmailStatus = 'EmailSent' ORDERBY TxnDate DESC MAXRESULTS 10"
		if got := r.URL.Query().Get("query"); got != want {
			t.Errorf("query = %q, want %q", got, want)
		}
		connectortest.WriteJSON(w, 200, map[string]any{"QueryResponse": map[string]any{"Invoice": []any{
			map[string]any{"Id": "130", "DocNumber": "1037", "CustomerRef": map[string]any{"value": "7", "name": "Amy's Bird Sanctuary"},
				"TotalAmt": 362.07, "Balance": 100, "TxnDate": "2026-01-05", "EmailStatus": "EmailSent"},
		}}})
	})
	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "qb_list_invoices", map[string]any{"customerId": "7", "status": "EmailSent"}))
	for _, want := range []string{"Found 1 invoices:", "Invoice #1037 (ID 130)", "Customer: Amy's Bird Sanctuary", "Total: $362.07", "Balance: $100.00", "Due: No due date", "Status: EmailSent"} {
		if !strings.Contains(text, want) {
			t.Errorf("text %q missing %q", text, want)
		}
	}
}

func TestListInvoices_BadStatus(t *testing.T) {
	c := New(Config{Mock: true}, connectortest.Options())
	connectortest.MustFail(t, connectortest.Call(t, c, "qb_list_invoices", map[string]any{"status": "Paid"}), "must be one of NotSet, NeedToSend, EmailSent")
}

func TestMaxResults_Capped(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if got, want := r.URL.Query().Get("query"), "SELECT * FROM Item MAXRESULTS 1000"; got != want {
			t.Errorf("query = %q, want %q", got, want)
		}
		connectortest.WriteJSON(w, 200, map[string]any{"QueryResponse": map[string]any{}})
	})
	connectortest.MustSucceed(t, connectortest.Call(t, c, "qb_list_items", map[string]any{"maxResults": 1e20}))
}
