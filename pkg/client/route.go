package client

import (
	"encoding/json"
	"fmt"
)

// SideSell prices a fixed source amount
const SideSell = "SELL"

// PricedRoute is the aggregator's quote for one swap. The decoded fields are the
// ones the pipeline reads; the original JSON object is kept so the build request
// can echo it back unchanged.
type PricedRoute struct {
	Network      int64  `json:"network"`
	SrcToken     string `json:"srcToken"`
	SrcDecimals  uint8  `json:"srcDecimals"`
	SrcAmount    string `json:"srcAmount"`
	DestToken    string `json:"destToken"`
	DestDecimals uint8  `json:"destDecimals"`
	DestAmount   string `json:"destAmount"`
	Side         string `json:"side"`

	raw json.RawMessage
}

type pricedRouteFields PricedRoute

// UnmarshalJSON decodes the known fields and retains the raw object
func (r *PricedRoute) UnmarshalJSON(data []byte) error {
	var fields pricedRouteFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*r = PricedRoute(fields)
	r.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON returns the object exactly as the aggregator sent it
func (r PricedRoute) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return r.raw, nil
	}
	return json.Marshal(pricedRouteFields(r))
}

// Raw returns the route JSON as received
func (r *PricedRoute) Raw() json.RawMessage {
	return r.raw
}

func (r *PricedRoute) validate() error {
	if r.DestAmount == "" {
		return fmt.Errorf("price route has no destAmount")
	}
	if r.SrcToken == "" || r.DestToken == "" {
		return fmt.Errorf("price route is missing token addresses")
	}
	return nil
}
