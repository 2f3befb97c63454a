package quickbooks

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type ref struct {
	Value string `json:"value"`
	Name  string `json:"name,omitempty"`
}

type emailAddr struct {
	Address string `json:"Address"`
}

type phone struct {
	FreeFormNumber string `json:"FreeFormNumber"`
}

type companyInfo struct {
	CompanyName string `json:"CompanyName"`
	LegalName   string `json:"LegalName"`
	CompanyAddr *struct {
		Line1 string `json:"Line1"`
		City  string `json:"City"`
	} `json:"CompanyAddr"`
	Email                *emailAddr `json:"Email"`
	PrimaryPhone         *phone     `json:"PrimaryPhone"`
	FiscalYearStartMonth string     `json:"FiscalYearStartMonth"`
	Country              string     `json:"Country"`
}

type customer struct {
	ID               string     `json:"Id,omitempty"`
	DisplayName      string     `json:"DisplayName"`
	CompanyName      string     `json:"CompanyName,omitempty"`
	PrimaryEmailAddr *emailAddr `json:"PrimaryEmailAddr,omitempty"`
	PrimaryPhone     *phone     `json:"PrimaryPhone,omitempty"`
	Active           *bool      `json:"Active,omitempty"`
	Balance          float64    `json:"Balance,omitempty"`
}

type item struct {
	ID          string  `json:"Id"`
	Name        string  `json:"Name"`
	Type        string  `json:"Type"`
	Description string  `json:"Description"`
	UnitPrice   float64 `json:"UnitPrice"`
	Active      bool    `json:"Active"`
}

type invoice struct {
	ID          string  `json:"Id"`
	DocNumber   string  `json:"DocNumber"`
	CustomerRef ref     `json:"CustomerRef"`
	TotalAmt    float64 `json:"TotalAmt"`
	Balance     float64 `json:"Balance"`
	TxnDate     string  `json:"TxnDate"`
	DueDate     string  `json:"DueDate"`
	EmailStatus string  `json:"EmailStatus"`
}

type bill struct {
	ID          string  `json:"Id"`
	VendorRef   ref     `json:"VendorRef"`
	TotalAmt    float64 `json:"TotalAmt"`
	DueDate     string  `json:"DueDate"`
	PrivateNote string  `json:"PrivateNote"`
}

type payment struct {
	ID               string  `json:"Id"`
	CustomerRef      *ref    `json:"CustomerRef"`
	TotalAmt         float64 `json:"TotalAmt"`
	TxnDate          string  `json:"TxnDate"`
	PaymentMethodRef *ref    `json:"PaymentMethodRef"`
}

func email(e *emailAddr) string {
	if e == nil {
		return ""
	}
	return e.Address
}

func phoneNumber(p *phone) string {
	if p == nil {
		return ""
	}
	return p.FreeFormNumber
}

func refName(r *ref) string {
	if r == nil {
		return ""
	}
	if r.Name != "" {
		return r.Name
	}
	return r.Value
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// report is the column-data tree QuickBooks returns for financial reports.
type report struct {
	Header struct {
		ReportName  string `json:"ReportName"`
		StartPeriod string `json:"StartPeriod"`
		EndPeriod   string `json:"EndPeriod"`
		Currency    string `json:"Currency"`
	} `json:"Header"`
	Rows rows `json:"Rows"`
}

type rows struct {
	Row []row `json:"Row"`
}

type colData struct {
	Value string `json:"value"`
}

type colRow struct {
	ColData []colData `json:"ColData"`
}

type row struct {
	Type    string    `json:"type"`
	Header  *colRow   `json:"Header"`
	Rows    *rows     `json:"Rows"`
	ColData []colData `json:"ColData"`
	Summary *colRow   `json:"Summary"`
}

// lines flattens the report tree into indented "name: amount" lines, using
// the last column as the amount.
func (r report) lines() []string {
	var out []string
	var walk func(rs []row, depth int)
	walk = func(rs []row, depth int) {
		indent := strings.Repeat("  ", depth)
		for _, rw := range rs {
			if rw.Header != nil && len(rw.Header.ColData) > 0 && rw.Header.ColData[0].Value != "" {
				out = append(out, indent+rw.Header.ColData[0].Value+":")
			}
			if len(rw.ColData) > 0 {
				if l := cols(rw.ColData); l != "" {
					out = append(out, indent+l)
				}
			}
			if rw.Rows != nil {
				walk(rw.Rows.Row, depth+1)
			}
			if rw.Summary != nil {
				if l := cols(rw.Summary.ColData); l != "" {
					out = append(out, indent+l)
				}
			}
		}
	}
	walk(r.Rows.Row, 0)
	return out
}

func cols(cd []colData) string {
	if len(cd) == 0 || cd[0].Value == "" {
		return ""
	}
	amount := "0.00"
	if len(cd) > 1 && cd[len(cd)-1].Value != "" {
		amount = cd[len(cd)-1].Value
	}
	if f, err := strconv.ParseFloat(amount, 64); err == nil {
		amount = fmt.Sprintf("%.2f", f)
	}
	return fmt.Sprintf("%s: $%s", cd[0].Value, amount)
}

func mockReport(name string) report {
	var r report
	r.Header.ReportName = name
	r.Header.Currency = "USD"
	_ = json.Unmarshal([]byte(`{"Row":[
		{"Header":{"ColData":[{"value":"Income"}]},
		 "Rows":{"Row":[{"ColData":[{"value":"Services"},{"value":"12000.00"}]}]},
		 "Summary":{"ColData":[{"value":"Total Income"},{"value":"12000.00"}]}}
	]}`), &r.Rows)
	return r
}
