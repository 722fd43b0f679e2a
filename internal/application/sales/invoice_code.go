package sales

import (
	"fmt"

	"github.com/tu-usuario/pharma-pos/internal/domain/repository"
)

const invoiceCodePrefix = "INV"

// FormatInvoiceCode produce el código legible de una venta: INV-YYYY-NNNN.
// El sufijo usa 4 dígitos con ceros a la izquierda y crece sin tope.
func FormatInvoiceCode(year, n int) string {
	return fmt.Sprintf("%s-%d-%04d", invoiceCodePrefix, year, n)
}

// nextInvoiceCode genera el siguiente consecutivo del año leyendo el máximo
// existente. DEBE invocarse con el saleRepo de la transacción de la venta:
// bajo checkouts concurrentes la unicidad la garantiza el índice único sobre
// sales.code, y la violación resultante se propaga como conflicto reintentable.
func nextInvoiceCode(saleRepo repository.SaleRepository, year int) (string, error) {
	last, err := saleRepo.MaxCodeNumber(year)
	if err != nil {
		return "", fmt.Errorf("consecutivo de factura: %w", err)
	}
	return FormatInvoiceCode(year, last+1), nil
}
