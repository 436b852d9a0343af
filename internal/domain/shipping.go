package domain

type Area string

const (
	AreaDhaka   Area = "Dhaka"
	AreaOutside Area = "Outside"
)

const (
	DeliveryFeeDhaka   int64 = 60
	DeliveryFeeOutside int64 = 120
)

// DeliveryFee is flat: Dhaka or anything else.
func DeliveryFee(area Area) int64 {
	if area == AreaDhaka {
		return DeliveryFeeDhaka
	}
	return DeliveryFeeOutside
}

type ShippingInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Area    Area   `json:"area"`
}

func NewShippingInfo() ShippingInfo {
	return ShippingInfo{Area: AreaDhaka}
}

// Complete reports whether name, phone and address are all filled in.
func (s ShippingInfo) Complete() bool {
	return s.Name != "" && s.Phone != "" && s.Address != ""
}
