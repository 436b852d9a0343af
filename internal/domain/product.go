package domain

import (
	"strconv"
	"strings"
)

type Product struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	Image    string `json:"image"`
}

// ParsePrice strips every non-digit from a price string such as "৳1,200".
// Strings without digits, or whose digits overflow int64, count as zero.
func ParsePrice(price string) int64 {
	var b strings.Builder
	for _, r := range price {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	v, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Amount returns the numeric value of the product's price.
func (p Product) Amount() int64 {
	return ParsePrice(p.Price)
}
