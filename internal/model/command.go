package model

import "github.com/shopspring/decimal"

// CommandKind identifies an inbound command.
type CommandKind string

const (
	CommandAddProduct    CommandKind = "add_product"
	CommandRemoveProduct CommandKind = "remove_product"
	CommandStockAdd      CommandKind = "stock_add"
	CommandStockRemove   CommandKind = "stock_remove"
	CommandStockList     CommandKind = "stock_list"
	CommandInfo          CommandKind = "info"
)

// Command is an inbound request with the fields already resolved by the platform.
type Command struct {
	Kind      CommandKind
	RequestID string
	Sequence  uint64
	Roles     []Role

	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int64
	Quantity    int64
	Color       string
	ImageURL    string

	// Reply receives the single answer for this command. May be nil.
	Reply func(Reply) `json:"-"`
}

// Reply is the one answer delivered to the requester of a command.
type Reply struct {
	Content string
	Card    *StatusCard
	// Err is the failure kind behind a denial; never shown to the requester.
	Err error
}
