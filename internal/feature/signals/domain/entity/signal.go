// Package entity defines the domain models for the signals feature.
package entity

import "time"

// Signal is one intraday trade recommendation fetched from the signals
// service: enter above Entry, exit at Target or Stoploss.
type Signal struct {
	Symbol   string
	Entry    float64
	Target   float64
	Stoploss float64
	Qty      float64
}

// TradeStatus is the outcome of replaying a signal against candle data.
type TradeStatus string

const (
	StatusNotEntered   TradeStatus = "NOT_ENTERED"
	StatusEntered      TradeStatus = "ENTERED"
	StatusExitedTarget TradeStatus = "EXITED_TARGET"
	StatusExitedSL     TradeStatus = "EXITED_SL"
)

// TradeAnalysis is the simulated execution of one signal. Optional fields are
// nil until the corresponding event happened.
type TradeAnalysis struct {
	Status    TradeStatus
	EntryTime *time.Time
	ExitTime  *time.Time
	ExitLTP   *float64
	PnL       *float64
}
