package model

import "strconv"

// Recipient is either a numeric platform id or a handle stored without the leading '@'.
type Recipient struct {
	ID       int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
}

func RecipientID(id int64) Recipient { return Recipient{ID: id} }

func RecipientHandle(name string) Recipient { return Recipient{Username: name} }

func (r Recipient) IsID() bool { return r.Username == "" }

// String returns the persisted form: digits for ids, the bare handle otherwise.
func (r Recipient) String() string {
	if r.IsID() {
		return strconv.FormatInt(r.ID, 10)
	}
	return r.Username
}

// Display returns the operator-facing form, "@handle" or the numeric id.
func (r Recipient) Display() string {
	if r.IsID() {
		return strconv.FormatInt(r.ID, 10)
	}
	return "@" + r.Username
}

// GiftRange is one purchase rule. A zero SupplyLimit means the rule has no supply ceiling.
type GiftRange struct {
	MinPrice    int64
	MaxPrice    int64
	SupplyLimit int64
	Quantity    int
	Recipients  []Recipient
}

// Covers reports whether the range admits an item with the given price and remaining supply.
func (g GiftRange) Covers(price, remaining int64) bool {
	if price < g.MinPrice || price > g.MaxPrice {
		return false
	}
	return g.SupplyLimit == 0 || remaining <= g.SupplyLimit
}

// HasRecipientID reports whether a numeric recipient equals id.
func (g GiftRange) HasRecipientID(id int64) bool {
	for _, r := range g.Recipients {
		if r.IsID() && r.ID == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers never share the recipients backing array.
func (g GiftRange) Clone() GiftRange {
	cp := g
	cp.Recipients = append([]Recipient(nil), g.Recipients...)
	return cp
}

// Match is the outcome of matching a catalog item against the range list.
type Match struct {
	Matched    bool
	Index      int
	Quantity   int
	Recipients []Recipient
}
