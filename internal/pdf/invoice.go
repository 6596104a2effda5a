// Package pdf renders invoices as PDF documents.
package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"agency-portal/internal/invoice"
	"agency-portal/internal/models"
)

// Issuer is the agency block printed in the invoice header.
type Issuer struct {
	Name     string
	Address  string
	Email    string
	Phone    string
	Website  string
	Currency string
}

const (
	marginLeft   = 15.0
	marginTop    = 15.0
	marginRight  = 15.0
	marginBottom = 20.0
	lineHeight   = 6.0

	colDescription = 95.0
	colQuantity    = 25.0
	colRate        = 30.0
	colAmount      = 30.0
)

// Filename is the download name of an invoice document.
func Filename(number string) string {
	return "invoice-" + number + ".pdf"
}

// RenderInvoice lays out inv on A4 pages. It has no side effects.
func RenderInvoice(inv models.Invoice, client models.Client, issuer Issuer) ([]byte, error) {
	f := fpdf.New("P", "mm", "A4", "")
	r := &renderer{
		f:        f,
		tr:       f.UnicodeTranslatorFromDescriptor(""),
		currency: issuer.Currency,
	}
	if r.currency == "" {
		r.currency = "$"
	}

	f.SetTitle("Invoice "+inv.Number, true)
	f.SetAuthor(issuer.Name, true)
	f.SetCreator("agency-portal", false)
	if !inv.CreatedAt.IsZero() {
		f.SetCreationDate(inv.CreatedAt)
	}
	f.SetMargins(marginLeft, marginTop, marginRight)
	f.SetAutoPageBreak(true, marginBottom)
	f.SetFooterFunc(func() {
		f.SetY(-15)
		f.SetFont("Helvetica", "I", 8)
		f.SetTextColor(120, 120, 120)
		footer := fmt.Sprintf("%s  |  Page %d", inv.Number, f.PageNo())
		if issuer.Website != "" {
			footer = issuer.Website + "  |  " + footer
		}
		f.CellFormat(0, 10, r.tr(footer), "", 0, "C", false, 0, "")
	})

	f.AddPage()
	r.header(inv, issuer)
	r.billTo(client)
	r.tableHeader()
	for _, item := range inv.Items {
		r.itemRow(item)
	}
	r.totals(inv)
	r.section("Notes", inv.Notes)
	r.section("Terms", inv.Terms)

	var buf bytes.Buffer
	if err := f.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", inv.Number, err)
	}
	return buf.Bytes(), nil
}

type renderer struct {
	f        *fpdf.Fpdf
	tr       func(string) string
	currency string
}

func (r *renderer) money(v float64) string {
	return r.currency + invoice.FormatAmount(v)
}

func (r *renderer) header(inv models.Invoice, issuer Issuer) {
	f := r.f
	f.SetTextColor(30, 30, 30)
	f.SetFont("Helvetica", "B", 20)
	f.CellFormat(100, 10, r.tr(issuer.Name), "", 0, "L", false, 0, "")
	f.SetFont("Helvetica", "B", 16)
	f.CellFormat(0, 10, "INVOICE", "", 1, "R", false, 0, "")

	f.SetFont("Helvetica", "", 10)
	left := []string{issuer.Address, issuer.Email, issuer.Phone}
	right := []string{
		"No. " + inv.Number,
		"Issued " + inv.IssueDate.Format("Jan 2, 2006"),
		"Due " + inv.DueDate.Format("Jan 2, 2006"),
		"Status " + strings.ToUpper(string(inv.Status)),
	}
	for i := 0; i < len(right); i++ {
		l := ""
		if i < len(left) {
			l = left[i]
		}
		f.CellFormat(100, 5, r.tr(l), "", 0, "L", false, 0, "")
		f.CellFormat(0, 5, r.tr(right[i]), "", 1, "R", false, 0, "")
	}
	f.Ln(8)
}

func (r *renderer) billTo(client models.Client) {
	f := r.f
	f.SetFont("Helvetica", "B", 11)
	f.CellFormat(0, lineHeight, "Bill to", "", 1, "L", false, 0, "")
	f.SetFont("Helvetica", "", 10)
	for _, line := range []string{client.Name, client.Email, client.Phone} {
		if line == "" {
			continue
		}
		f.CellFormat(0, 5, r.tr(line), "", 1, "L", false, 0, "")
	}
	f.Ln(6)
}

func (r *renderer) tableHeader() {
	f := r.f
	f.SetFont("Helvetica", "B", 10)
	f.SetFillColor(240, 240, 240)
	f.SetTextColor(30, 30, 30)
	f.CellFormat(colDescription, 8, "Description", "B", 0, "L", true, 0, "")
	f.CellFormat(colQuantity, 8, "Qty", "B", 0, "R", true, 0, "")
	f.CellFormat(colRate, 8, "Rate", "B", 0, "R", true, 0, "")
	f.CellFormat(colAmount, 8, "Amount", "B", 1, "R", true, 0, "")
	f.SetFont("Helvetica", "", 10)
}

func (r *renderer) itemRow(item models.InvoiceItem) {
	f := r.f
	desc := r.tr(item.Description)
	lines := f.SplitLines([]byte(desc), colDescription-2)
	height := float64(len(lines)) * lineHeight
	if height < lineHeight {
		height = lineHeight
	}

	_, pageHeight := f.GetPageSize()
	if f.GetY()+height > pageHeight-marginBottom {
		f.AddPage()
		r.tableHeader()
	}

	x, y := f.GetXY()
	f.MultiCell(colDescription, lineHeight, desc, "", "L", false)
	f.SetXY(x+colDescription, y)
	f.CellFormat(colQuantity, height, strconv.FormatFloat(item.Quantity, 'f', -1, 64), "", 0, "R", false, 0, "")
	f.CellFormat(colRate, height, r.tr(r.money(item.Rate)), "", 0, "R", false, 0, "")
	f.CellFormat(colAmount, height, r.tr(r.money(item.Amount)), "", 1, "R", false, 0, "")

	f.SetDrawColor(220, 220, 220)
	f.Line(marginLeft, f.GetY(), marginLeft+colDescription+colQuantity+colRate+colAmount, f.GetY())
}

func (r *renderer) totals(inv models.Invoice) {
	f := r.f
	f.Ln(4)
	labelW := colDescription + colQuantity + colRate
	rows := []struct {
		label string
		value float64
		bold  bool
	}{
		{"Subtotal", inv.Subtotal, false},
		{fmt.Sprintf("Tax (%s%%)", strconv.FormatFloat(inv.TaxRate, 'f', -1, 64)), inv.Tax, false},
		{"Total", inv.Total, true},
	}
	for _, row := range rows {
		style := ""
		if row.bold {
			style = "B"
		}
		f.SetFont("Helvetica", style, 10)
		f.CellFormat(labelW, lineHeight, row.label, "", 0, "R", false, 0, "")
		f.CellFormat(colAmount, lineHeight, r.tr(r.money(row.value)), "", 1, "R", false, 0, "")
	}
	f.Ln(6)
}

func (r *renderer) section(title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	f := r.f
	f.SetFont("Helvetica", "B", 10)
	f.CellFormat(0, lineHeight, title, "", 1, "L", false, 0, "")
	f.SetFont("Helvetica", "", 9)
	f.MultiCell(0, 5, r.tr(body), "", "L", false)
	f.Ln(4)
}
