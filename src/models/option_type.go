package models

import "fmt"

type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

func (o OptionType) Validate() error {
	if o != Call && o != Put {
		return fmt.Errorf("OptionType: Validate: invalid option type: %s", o)
	}

	return nil
}

type SpreadType string

const (
	BullCall        SpreadType = "bull_call"
	BearPut         SpreadType = "bear_put"
	LeapCall        SpreadType = "leap_call"
	LeapPut         SpreadType = "leap_put"
	LeapsSpreadCall SpreadType = "leaps_spread_call"
)

func (s SpreadType) Validate() error {
	switch s {
	case BullCall, BearPut, LeapCall, LeapPut, LeapsSpreadCall:
		return nil
	}

	return fmt.Errorf("SpreadType: Validate: invalid spread type: %s", s)
}

// IsLeaps reports whether the strategy uses the LEAPS DTE band.
func (s SpreadType) IsLeaps() bool {
	return s == LeapCall || s == LeapPut || s == LeapsSpreadCall
}

// IsSingleLeg reports whether the strategy holds only a long leg.
func (s SpreadType) IsSingleLeg() bool {
	return s == LeapCall || s == LeapPut
}

func (s SpreadType) IsVertical() bool {
	return s == BullCall || s == BearPut || s == LeapsSpreadCall
}
