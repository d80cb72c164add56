package receipt

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/loganlanou/merch-storefront/internal/apperr"
	"github.com/loganlanou/merch-storefront/internal/cart"
	"github.com/loganlanou/merch-storefront/internal/checkout"
	"github.com/loganlanou/merch-storefront/internal/utils"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

var ErrEmptyReceipt = apperr.New(apperr.CodeValidation, "Receipt has no items")

// Summary is everything printed on an order summary.
type Summary struct {
	OrderNumber     string
	PaymentIntentID string
	CustomerEmail   string
	ShipTo          checkout.Address
	Items           []cart.LineItem
	Shipping        *checkout.ShippingOption
	Currency        string
	IssuedAt        time.Time
}

// Goods is the full value of every non-discount line.
func (s Summary) Goods() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		if !item.IsDiscount {
			total = total.Add(item.Total())
		}
	}
	return total.Round(2)
}

func (s Summary) Discount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		if item.IsDiscount {
			total = total.Add(item.Total())
		}
	}
	return total.Round(2)
}

func (s Summary) ShippingCost() decimal.Decimal {
	if s.Shipping == nil {
		return decimal.Zero
	}
	return s.Shipping.Rate.Round(2)
}

func (s Summary) Total() decimal.Decimal {
	return s.Goods().Add(s.Discount()).Add(s.ShippingCost())
}

const (
	pageWidth  = 210.0
	margin     = 15.0
	qrSizePx   = 256
	qrSizeMM   = 35.0
	lineHeight = 7.0
)

// Render lays the summary out on one A4 page and returns the PDF bytes.
func Render(s Summary) ([]byte, error) {
	return render(s, true)
}

func render(s Summary, compress bool) ([]byte, error) {
	if len(s.Items) == 0 {
		return nil, ErrEmptyReceipt
	}
	if s.IssuedAt.IsZero() {
		s.IssuedAt = time.Now()
	}
	currency := s.Currency
	if currency == "" {
		currency = utils.DefaultCurrency
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetCreationDate(s.IssuedAt)
	pdf.SetTitle("Order Summary", true)
	pdf.SetMargins(margin, margin, margin)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Order Summary", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	if s.OrderNumber != "" {
		pdf.CellFormat(0, 5, tr("Order "+s.OrderNumber), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 5, s.IssuedAt.Format("2 January 2006"), "", 1, "L", false, 0, "")
	if s.CustomerEmail != "" {
		pdf.CellFormat(0, 5, tr(s.CustomerEmail), "", 1, "L", false, 0, "")
	}

	if s.PaymentIntentID != "" {
		png, err := qrcode.Encode(s.PaymentIntentID, qrcode.Medium, qrSizePx)
		if err != nil {
			return nil, fmt.Errorf("failed to generate QR code: %w", err)
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("payment-qr", opts, bytes.NewReader(png))
		pdf.ImageOptions("payment-qr", pageWidth-margin-qrSizeMM, margin, qrSizeMM, qrSizeMM, false, opts, 0, "")
	}

	if s.ShipTo.Address1 != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 5, "Ship to", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, line := range addressLines(s.ShipTo) {
			pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
		}
	}

	pdf.SetY(margin + qrSizeMM + 25)
	nameWidth := pageWidth - 2*margin - 60
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(nameWidth, lineHeight, "Item", "B", 0, "L", true, 0, "")
	pdf.CellFormat(20, lineHeight, "Qty", "B", 0, "R", true, 0, "")
	pdf.CellFormat(40, lineHeight, "Amount", "B", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range s.Items {
		if item.IsDiscount {
			continue
		}
		name := item.Name
		if variant := variantLabel(item); variant != "" {
			name += " - " + variant
		}
		pdf.CellFormat(nameWidth, lineHeight, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, lineHeight, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, lineHeight, tr(utils.FormatPrice(item.Total(), currency)), "", 1, "R", false, 0, "")
	}

	pdf.SetTextColor(0, 128, 0)
	for _, item := range s.Items {
		if !item.IsDiscount {
			continue
		}
		pdf.CellFormat(nameWidth+20, lineHeight, tr(item.Name), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, lineHeight, tr(utils.FormatPrice(item.Total(), currency)), "", 1, "R", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)

	pdf.Ln(2)
	totals := []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Subtotal", s.Goods()},
		{"Discounts", s.Discount()},
		{shippingLabel(s.Shipping), s.ShippingCost()},
	}
	for _, row := range totals {
		pdf.CellFormat(nameWidth+20, lineHeight, tr(row.label), "T", 0, "R", false, 0, "")
		pdf.CellFormat(40, lineHeight, tr(utils.FormatPrice(row.amount, currency)), "T", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(nameWidth+20, lineHeight+2, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(40, lineHeight+2, tr(utils.FormatPrice(s.Total(), currency)), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func addressLines(a checkout.Address) []string {
	var lines []string
	for _, v := range []string{a.Name, a.Address1, a.City, a.StateCode, a.Zip, a.CountryCode} {
		if v != "" {
			lines = append(lines, v)
		}
	}
	return lines
}

func variantLabel(item cart.LineItem) string {
	switch {
	case item.Size != "" && item.Color != "":
		return item.Color + " / " + item.Size
	case item.Color != "":
		return item.Color
	}
	return item.Size
}

func shippingLabel(option *checkout.ShippingOption) string {
	if option == nil || option.Name == "" {
		return "Shipping"
	}
	return "Shipping (" + option.Name + ")"
}
