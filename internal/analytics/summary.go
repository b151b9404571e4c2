// Package analytics computes the admin dashboard figures.
package analytics

import (
	"sort"

	catalog "github.com/aniskhan146/Cartify-sub000/internal/catalog/domain"
	orders "github.com/aniskhan146/Cartify-sub000/internal/orders/domain"
	"github.com/shopspring/decimal"
)

const topProductsLimit = 5

type ProductSales struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type Summary struct {
	Revenue           decimal.Decimal            `json:"revenue"`
	OrderCount        int                        `json:"orderCount"`
	OrdersByStatus    map[orders.OrderStatus]int `json:"ordersByStatus"`
	AverageOrderValue decimal.Decimal            `json:"averageOrderValue"`
	TopProducts       []ProductSales             `json:"topProducts"`
	ProductCount      int                        `json:"productCount"`
	LowStockVariants  int                        `json:"lowStockVariants"`
}

// Summarize ignores canceled orders for revenue and product sales but still
// counts them by status.
func Summarize(all []orders.Order, products []catalog.Product, lowStockThreshold int) Summary {
	s := Summary{
		Revenue:           decimal.Zero,
		AverageOrderValue: decimal.Zero,
		OrdersByStatus:    make(map[orders.OrderStatus]int),
		TopProducts:       []ProductSales{},
		ProductCount:      len(products),
	}

	sales := make(map[string]*ProductSales)
	billable := 0
	for _, o := range all {
		s.OrderCount++
		s.OrdersByStatus[o.Status]++
		if o.Status == orders.OrderStatusCanceled {
			continue
		}
		billable++
		s.Revenue = s.Revenue.Add(decimal.NewFromFloat(o.Total))

		for _, item := range o.Items {
			ps, ok := sales[item.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: item.ProductID, ProductName: item.ProductName, Revenue: decimal.Zero}
				sales[item.ProductID] = ps
			}
			ps.Quantity += item.Quantity
			ps.Revenue = ps.Revenue.Add(decimal.NewFromFloat(item.VariantPrice).Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	if billable > 0 {
		s.AverageOrderValue = s.Revenue.Div(decimal.NewFromInt(int64(billable))).Round(2)
	}

	for _, ps := range sales {
		s.TopProducts = append(s.TopProducts, *ps)
	}
	sort.Slice(s.TopProducts, func(i, j int) bool {
		a, b := s.TopProducts[i], s.TopProducts[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.ProductID < b.ProductID
	})
	if len(s.TopProducts) > topProductsLimit {
		s.TopProducts = s.TopProducts[:topProductsLimit]
	}

	for _, p := range products {
		for _, v := range p.Variants {
			if v.Stock <= lowStockThreshold {
				s.LowStockVariants++
			}
		}
	}
	return s
}
