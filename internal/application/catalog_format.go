package application

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"gifts-buyer/internal/domain/model"
	"gifts-buyer/internal/domain/ports/adapter"
	"gifts-buyer/internal/usecase"
)

// catalogChunk is the number of gift entries per message; Telegram caps a message at 4096 chars.
const catalogChunk = 25

// FormatCatalog renders the /l listing: available gifts first, then sold-out ones, split
// into several messages.
func FormatCatalog(tr adapter.Translator, items []model.CatalogItem) []string {
	if len(items) == 0 {
		return []string{tr.T("catalog_empty")}
	}
	sorted := usecase.SortForListing(items)

	entries := make([]string, 0, len(sorted))
	for n, it := range sorted {
		entries = append(entries, catalogEntry(tr, n+1, it))
	}

	var out []string
	for start := 0; start < len(entries); start += catalogChunk {
		end := min(start+catalogChunk, len(entries))
		var b strings.Builder
		if start == 0 {
			b.WriteString(tr.T("catalog_header"))
			b.WriteString("\n\n")
		}
		b.WriteString(strings.Join(entries[start:end], "\n"))
		out = append(out, b.String())
	}
	return out
}

func catalogEntry(tr adapter.Translator, number int, it model.CatalogItem) string {
	if !it.SoldOut {
		return tr.T("catalog_item",
			"number", strconv.Itoa(number),
			"id", strconv.FormatInt(it.ID, 10),
			"price", humanize.Comma(it.Price),
		)
	}
	line := tr.T("catalog_sold_out_item",
		"number", strconv.Itoa(number),
		"emoji", it.Emoji,
		"id", strconv.FormatInt(it.ID, 10),
		"price", humanize.Comma(it.Price),
		"available", humanize.Comma(it.RemainingSupply)+"/"+humanize.Comma(it.TotalSupply),
	)
	if it.Upgradable() {
		line += "\n" + tr.T("catalog_upgrade", "upgrade", humanize.Comma(it.UpgradePrice))
	}
	return line
}
