package usecase

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gifts-buyer/internal/domain"
	"gifts-buyer/internal/domain/model"
)

const (
	rangeSeparator     = ";"
	recipientSeparator = ","
	handleMarker       = "@"
)

// ParseError describes why a range string was rejected. It unwraps to domain.ErrInvalidRangeFormat.
type ParseError struct {
	Input  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s %q: %s", domain.ErrInvalidRangeFormat, e.Input, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{domain.ErrInvalidRangeFormat, e.Err}
	}
	return []error{domain.ErrInvalidRangeFormat}
}

func parseErr(input, reason string, err error) *ParseError {
	return &ParseError{Input: input, Reason: reason, Err: err}
}

// ParseRange parses "<min>-<max>:<supply>x<quantity>:<recipients>".
func ParseRange(text string) (model.GiftRange, error) {
	raw := strings.TrimSpace(text)
	fields := strings.Split(raw, ":")
	if len(fields) != 3 {
		return model.GiftRange{}, parseErr(raw, fmt.Sprintf("expected 3 ':'-separated fields, got %d", len(fields)), nil)
	}

	prices := strings.Split(fields[0], "-")
	if len(prices) != 2 {
		return model.GiftRange{}, parseErr(raw, "price must be <min>-<max>", nil)
	}
	minPrice, err := parseInt(prices[0])
	if err != nil {
		return model.GiftRange{}, parseErr(raw, "min price", err)
	}
	maxPrice, err := parseInt(prices[1])
	if err != nil {
		return model.GiftRange{}, parseErr(raw, "max price", err)
	}

	supplyQty := strings.Split(strings.TrimSpace(fields[1]), "x")
	if len(supplyQty) != 2 {
		return model.GiftRange{}, parseErr(raw, "supply and quantity must be separated by 'x'", nil)
	}
	supply, err := parseInt(supplyQty[0])
	if err != nil {
		return model.GiftRange{}, parseErr(raw, "supply limit", err)
	}
	qty, err := parseInt(supplyQty[1])
	if err != nil {
		return model.GiftRange{}, parseErr(raw, "quantity", err)
	}

	recipients, err := ParseRecipients(fields[2])
	if err != nil {
		return model.GiftRange{}, parseErr(raw, "recipients", err)
	}

	r := model.GiftRange{
		MinPrice:    minPrice,
		MaxPrice:    maxPrice,
		SupplyLimit: supply,
		Quantity:    int(qty),
		Recipients:  recipients,
	}
	if err := validateRange(r); err != nil {
		return model.GiftRange{}, parseErr(raw, err.Error(), nil)
	}
	return r, nil
}

func validateRange(r model.GiftRange) error {
	switch {
	case r.MinPrice < 0:
		return errors.New("min price must not be negative")
	case r.MinPrice > r.MaxPrice:
		return errors.New("min price is greater than max price")
	case r.SupplyLimit < 0:
		return errors.New("supply limit must not be negative")
	case r.Quantity <= 0:
		return errors.New("quantity must be positive")
	case len(r.Recipients) == 0:
		return errors.New("at least one recipient is required")
	}
	return nil
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

// ParseRecipients splits a comma separated list; duplicates are dropped keeping first position.
func ParseRecipients(text string) ([]model.Recipient, error) {
	out := make([]model.Recipient, 0, 2)
	seen := make(map[model.Recipient]struct{})
	for _, token := range strings.Split(text, recipientSeparator) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		r, err := ParseRecipient(token)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out, nil
}

// ParseRecipient maps "@name" and "name" to handles and all-digit tokens to numeric ids.
func ParseRecipient(token string) (model.Recipient, error) {
	token = strings.TrimSpace(token)
	if strings.HasPrefix(token, handleMarker) {
		name := strings.TrimSpace(strings.TrimPrefix(token, handleMarker))
		if name == "" {
			return model.Recipient{}, errors.New("empty handle")
		}
		return model.RecipientHandle(name), nil
	}
	if isDigits(token) {
		id, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return model.Recipient{}, err
		}
		return model.RecipientID(id), nil
	}
	if token == "" {
		return model.Recipient{}, errors.New("empty recipient")
	}
	return model.RecipientHandle(token), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// FormatRange is the inverse of ParseRange in normalized form.
func FormatRange(r model.GiftRange) string {
	names := make([]string, len(r.Recipients))
	for i, rec := range r.Recipients {
		names[i] = rec.String()
	}
	return fmt.Sprintf("%d-%d:%dx%d:%s", r.MinPrice, r.MaxPrice, r.SupplyLimit, r.Quantity, strings.Join(names, recipientSeparator))
}

func FormatRanges(ranges []model.GiftRange) string {
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		parts[i] = FormatRange(r)
	}
	return strings.Join(parts, rangeSeparator)
}

// ParseRanges parses a ';'-joined list. Empty entries are skipped; any malformed entry fails
// the whole list.
func ParseRanges(text string) ([]model.GiftRange, error) {
	var out []model.GiftRange
	for i, item := range strings.Split(text, rangeSeparator) {
		if strings.TrimSpace(item) == "" {
			continue
		}
		r, err := ParseRange(item)
		if err != nil {
			return nil, fmt.Errorf("range entry %d: %w", i+1, err)
		}
		out = append(out, r)
	}
	return out, nil
}
