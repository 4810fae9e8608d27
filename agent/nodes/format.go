package nodes

import (
	"fmt"
	"strings"

	contractx "github.com/renzovallejo/lima-property-agent/agent/contract"
)

// formatItems renders the found properties as plain lines for the model
// context. Only real catalog data goes in.
func formatItems(items []contractx.PropertySummary) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s", i+1, item.Title)
		if item.ProjectName != "" {
			fmt.Fprintf(&b, " (proyecto %s)", item.ProjectName)
		}
		if item.District != "" {
			fmt.Fprintf(&b, ", %s", item.District)
		}
		if item.Bedrooms > 0 {
			fmt.Fprintf(&b, ", %d dormitorios", item.Bedrooms)
		}
		if item.PriceUSD > 0 {
			fmt.Fprintf(&b, ", USD %d", item.PriceUSD)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func deterministicSummary(items []contractx.PropertySummary) string {
	if len(items) == 0 {
		return noResultsMessage
	}

	var b strings.Builder
	if len(items) == 1 {
		b.WriteString("Encontré esta opción para ti:\n")
	} else {
		fmt.Fprintf(&b, "Encontré %d opciones para ti:\n", len(items))
	}
	b.WriteString(formatItems(items))
	b.WriteString("¿Te gustaría agendar una visita a alguna?")
	return b.String()
}
