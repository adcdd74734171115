package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"ctedash/pkg/contracts/domain"
)

// documentHeaders is the column order shared by the CSV and XLSX exports.
var documentHeaders = []string{
	"Numero",
	"Emissao",
	"Unidade Coleta",
	"Unidade Entrega",
	"Valor",
	"Prazo",
	"Status Prazo",
	"Baixa",
	"Manifesto",
	"Remetente",
	"Destinatario",
}

// documentRow renders one shipment in the shared column order.
func documentRow(c domain.Cte) []string {
	return []string{
		c.ID,
		formatDate(c.IssueDate),
		c.CollectionUnit,
		c.DeliveryUnit,
		formatCurrency(c.Value),
		formatDate(c.SLADeadline),
		c.SLAStatus,
		c.DeliveryProof,
		c.ManifestStatus,
		c.Sender,
		c.Recipient,
	}
}

// WriteCSV writes the documents as CSV. A UTF-8 BOM is emitted first so
// Excel detects the encoding.
func WriteCSV(w io.Writer, ctes []domain.Cte) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(documentHeaders); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	for i := range ctes {
		if err := cw.Write(documentRow(ctes[i])); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
