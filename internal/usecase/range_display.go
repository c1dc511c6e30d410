package usecase

import (
	"strconv"
	"strings"

	"gifts-buyer/internal/domain/model"
	"gifts-buyer/internal/domain/ports/adapter"

	"github.com/dustin/go-humanize"
)

// DescribeRange renders one range for operators, e.g. "1,000-5,000⭐️ / Supply: up to 500,000".
func DescribeRange(tr adapter.Translator, r model.GiftRange) string {
	supply := tr.T("range_supply_unlimited")
	if r.SupplyLimit > 0 {
		supply = tr.T("range_supply_limit", "limit", humanize.Comma(r.SupplyLimit))
	}
	names := make([]string, len(r.Recipients))
	for i, rec := range r.Recipients {
		names[i] = rec.Display()
	}
	return tr.T("range_display",
		"min", humanize.Comma(r.MinPrice),
		"max", humanize.Comma(r.MaxPrice),
		"supply", supply,
		"recipients", strings.Join(names, ", "),
		"quantity", strconv.Itoa(r.Quantity),
	)
}

// DescribeRanges renders a numbered list, one block per range, separated by blank lines.
func DescribeRanges(tr adapter.Translator, ranges []model.GiftRange) string {
	if len(ranges) == 0 {
		return tr.T("no_ranges_configured")
	}
	blocks := make([]string, len(ranges))
	for i, r := range ranges {
		blocks[i] = tr.T("range_list_item", "number", strconv.Itoa(i+1), "range", DescribeRange(tr, r))
	}
	return strings.Join(blocks, "\n\n")
}

// SettingsSummary is the /settings reply.
func SettingsSummary(tr adapter.Translator, ranges []model.GiftRange) string {
	return tr.T("settings_menu", "count", strconv.Itoa(len(ranges)), "ranges", DescribeRanges(tr, ranges))
}
