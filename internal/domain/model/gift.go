package model

// CatalogItem is one gift from the platform catalog snapshot.
// TotalSupply is zero for gifts that are not limited.
type CatalogItem struct {
	ID              int64
	Emoji           string
	Price           int64
	RemainingSupply int64
	TotalSupply     int64
	SoldOut         bool
	UpgradePrice    int64
}

func (c CatalogItem) Limited() bool    { return c.TotalSupply > 0 }
func (c CatalogItem) Upgradable() bool { return c.UpgradePrice > 0 }

// Origin tells where an inbound operator message came from.
type Origin int

const (
	OriginDirect Origin = iota
	OriginBroadcast
)

func (o Origin) String() string {
	if o == OriginBroadcast {
		return "broadcast"
	}
	return "direct"
}

// InboundMessage is a text message delivered by the messaging platform.
// ChatUsername is only set for public channels.
type InboundMessage struct {
	SenderID     int64
	ChatID       int64
	ChatUsername string
	Origin       Origin
	Text         string
}

// OperatorID is the sender when known, otherwise the chat (anonymous channel posts).
func (m InboundMessage) OperatorID() int64 {
	if m.SenderID != 0 {
		return m.SenderID
	}
	return m.ChatID
}
