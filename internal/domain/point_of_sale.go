package domain

// ============================================================
// Points of sale
// ============================================================

// Point of sale types.
const (
	PointOfSalePhysical = "PHYSICAL"
	PointOfSaleOnline   = "ONLINE"
)

// PointOfSale is a shop or website where the merchant accepts discounts.
type PointOfSale struct {
	ID             string `json:"id,omitempty"`
	Type           string `json:"type" validate:"required,oneof=PHYSICAL ONLINE"`
	FranchiseName  string `json:"franchiseName" validate:"required,max=255"`
	Region         string `json:"region,omitempty" validate:"required_if=Type PHYSICAL"`
	Province       string `json:"province,omitempty" validate:"required_if=Type PHYSICAL"`
	City           string `json:"city,omitempty" validate:"required_if=Type PHYSICAL"`
	ZipCode        string `json:"zipCode,omitempty" validate:"required_if=Type PHYSICAL"`
	Address        string `json:"address,omitempty" validate:"required_if=Type PHYSICAL"`
	Website        string `json:"website,omitempty" validate:"required_if=Type ONLINE"`
	ContactEmail   string `json:"contactEmail" validate:"required,email"`
	ContactName    string `json:"contactName" validate:"required"`
	ContactSurname string `json:"contactSurname" validate:"required"`
	ChannelPhone   string `json:"channelPhone,omitempty"`
	ChannelEmail   string `json:"channelEmail,omitempty" validate:"omitempty,email"`
	ChannelWebsite string `json:"channelWebsite,omitempty" validate:"omitempty,url"`
}
