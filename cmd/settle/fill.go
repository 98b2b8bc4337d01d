package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parseFill parses a counter fill expressed on the command line as
// <order_id>:<amount_owner_receives>:<amount_counter_receives>.
func parseFill(raw string) (map[string]interface{}, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf(
			"invalid fill %q: expected <order_id>:<amount_owner_receives>:<amount_counter_receives>",
			raw,
		)
	}

	ownerReceives, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid fill %q: %s", raw, err)
	}
	counterReceives, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid fill %q: %s", raw, err)
	}

	return map[string]interface{}{
		"order_id":                parts[0],
		"amount_owner_receives":   ownerReceives,
		"amount_counter_receives": counterReceives,
	}, nil
}
