package models

import "strings"

type StockSymbol string

func NewStockSymbol(s string) StockSymbol {
	return StockSymbol(strings.ToUpper(strings.TrimSpace(s)))
}

func (s StockSymbol) String() string {
	return string(s)
}

type OptionSymbol string
