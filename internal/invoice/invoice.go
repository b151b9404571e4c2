// Package invoice renders order invoices as PDF.
package invoice

import (
	"fmt"
	"strings"

	"github.com/aniskhan146/Cartify-sub000/internal/orders/domain"
	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
	"github.com/shopspring/decimal"
)

var (
	darkGray   = color.Color{Red: 38, Green: 38, Blue: 34}
	mediumGray = color.Color{Red: 121, Green: 119, Blue: 109}
)

// Renderer satisfies the order service's invoice dependency.
type Renderer struct {
	StoreName string
}

func NewRenderer(storeName string) *Renderer {
	return &Renderer{StoreName: storeName}
}

func (r *Renderer) Render(order *domain.Order) ([]byte, error) {
	return Render(order, r.StoreName)
}

func Render(order *domain.Order, storeName string) ([]byte, error) {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 20, 20)

	m.Row(15, func() {
		m.Col(12, func() {
			m.Text("INVOICE", props.Text{Size: 24, Style: consts.Bold, Color: darkGray})
		})
	})
	m.Row(10, func() {
		m.Col(12, func() {
			m.Text(strings.ToUpper(storeName), props.Text{Size: 16, Style: consts.Bold, Color: darkGray})
		})
	})
	m.Row(8, func() {})

	m.Row(5, func() {
		m.Col(6, func() {
			m.Text("BILL TO", props.Text{Size: 8, Style: consts.Bold, Color: darkGray})
		})
		m.Col(6, func() {
			m.Text("INVOICE DETAILS", props.Text{Size: 8, Style: consts.Bold, Color: darkGray, Align: consts.Right})
		})
	})
	m.Row(5, func() {
		m.Col(6, func() {
			m.Text(order.CustomerName, props.Text{Size: 10, Style: consts.Bold, Color: darkGray})
		})
		m.Col(6, func() {
			m.Text(fmt.Sprintf("Invoice #%s", shortID(order.ID)), props.Text{Size: 10, Color: darkGray, Align: consts.Right})
		})
	})
	m.Row(5, func() {
		m.Col(6, func() {
			m.Text(fmt.Sprintf("Shipping zone: %s", order.Zone), props.Text{Size: 9, Color: mediumGray})
		})
		m.Col(6, func() {
			m.Text(fmt.Sprintf("Date: %s", order.Date.Format("Jan 02, 2006")), props.Text{Size: 9, Color: mediumGray, Align: consts.Right})
		})
	})
	m.Row(5, func() {
		m.Col(12, func() {
			m.Text(fmt.Sprintf("Status: %s", order.Status), props.Text{Size: 9, Color: mediumGray, Align: consts.Right})
		})
	})
	m.Row(8, func() {})

	header := props.Text{Size: 8, Style: consts.Bold, Color: darkGray}
	headerRight := props.Text{Size: 8, Style: consts.Bold, Color: darkGray, Align: consts.Right}
	m.Row(6, func() {
		m.Col(6, func() { m.Text("Description", header) })
		m.Col(2, func() { m.Text("Qty", headerRight) })
		m.Col(2, func() { m.Text("Price", headerRight) })
		m.Col(2, func() { m.Text("Total", headerRight) })
	})

	cell := props.Text{Size: 9, Color: darkGray}
	cellRight := props.Text{Size: 9, Color: darkGray, Align: consts.Right}
	for _, item := range order.Items {
		price := decimal.NewFromFloat(item.VariantPrice)
		lineTotal := price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		m.Row(6, func() {
			m.Col(6, func() { m.Text(itemLabel(item), cell) })
			m.Col(2, func() { m.Text(fmt.Sprintf("%d", item.Quantity), cellRight) })
			m.Col(2, func() { m.Text(money(price), cellRight) })
			m.Col(2, func() { m.Text(money(lineTotal), cellRight) })
		})
	}
	m.Row(8, func() {})

	summaryRow := func(label string, amount float64) {
		m.Row(5, func() {
			m.Col(8, func() {})
			m.Col(2, func() { m.Text(label, props.Text{Size: 9, Color: mediumGray, Align: consts.Right}) })
			m.Col(2, func() { m.Text(money(decimal.NewFromFloat(amount)), cellRight) })
		})
	}
	summaryRow("Subtotal", order.Subtotal)
	summaryRow("Shipping", order.Shipping)
	summaryRow("Tax", order.Tax)

	total := props.Text{Size: 12, Style: consts.Bold, Color: darkGray, Align: consts.Right}
	m.Row(8, func() {
		m.Col(8, func() {})
		m.Col(2, func() { m.Text("Total", total) })
		m.Col(2, func() { m.Text(money(decimal.NewFromFloat(order.Total)), total) })
	})

	m.Row(12, func() {})
	m.Row(5, func() {
		m.Col(12, func() {
			m.Text("Thank you for your order!", props.Text{Size: 8, Style: consts.Bold, Color: darkGray})
		})
	})

	buf, err := m.Output()
	if err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", order.ID, err)
	}
	return buf.Bytes(), nil
}

func itemLabel(item domain.OrderItem) string {
	if item.VariantName == "" {
		return item.ProductName
	}
	return fmt.Sprintf("%s (%s)", item.ProductName, item.VariantName)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}
