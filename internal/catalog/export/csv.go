// Package export renders the admin product list as CSV.
package export

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/aniskhan146/Cartify-sub000/internal/catalog/domain"
)

var header = []string{
	"ID", "Name", "Category", "Description",
	"Variant SKU", "Variant Name", "Price", "OriginalPrice", "Stock",
}

// WriteCSV writes one row per product variant. Every field is quoted and
// embedded quotes are doubled.
func WriteCSV(w io.Writer, products []domain.Product) error {
	bw := bufio.NewWriter(w)
	if err := writeRow(bw, header); err != nil {
		return err
	}

	for _, p := range products {
		for _, v := range p.Variants {
			original := ""
			if v.OriginalPrice != nil {
				original = formatMoney(*v.OriginalPrice)
			}
			row := []string{
				p.ID, p.Name, p.Category, p.Description,
				v.ID, v.Name, formatMoney(v.Price), original, strconv.Itoa(v.Stock),
			}
			if err := writeRow(bw, row); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func writeRow(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(quote(f)); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func formatMoney(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
