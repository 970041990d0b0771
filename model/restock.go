package model

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdhoang/evdealer-client/constant"
)

// Warehouse is the nested warehouse object embedded in a restock order
// detail payload.
type Warehouse struct {
	ID       uint64 `json:"id,omitempty"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Address  string `json:"address,omitempty"`
}

// ElectricMotorbike is the nested vehicle object embedded in a restock order
// detail payload.
type ElectricMotorbike struct {
	ID   uint64 `json:"id,omitempty"`
	Name string `json:"name"`
}

// RestockOrder is one restock request from a dealer agency to a warehouse.
// List payloads carry only the association ids; the detail payload embeds
// Warehouse and ElectricMotorbike. All monetary amounts are VND.
type RestockOrder struct {
	ID                  uint64                 `json:"id"`
	Status              constant.RestockStatus `json:"status"`
	AgencyID            uint64                 `json:"agencyId"`
	WarehouseID         uint64                 `json:"warehouseId"`
	ElectricMotorbikeID uint64                 `json:"electricMotorbikeId"`
	PricePolicyID       uint64                 `json:"pricePolicyId,omitempty"`
	DiscountID          uint64                 `json:"discountId,omitempty"`
	PromotionID         uint64                 `json:"promotionId,omitempty"`
	ColorID             uint64                 `json:"colorId,omitempty"`
	Quantity            int                    `json:"quantity"`
	BasePrice           decimal.Decimal        `json:"basePrice"`
	WholesalePrice      decimal.Decimal        `json:"wholesalePrice"`
	FinalPrice          decimal.Decimal        `json:"finalPrice"`
	DiscountTotal       decimal.Decimal        `json:"discountTotal"`
	PromotionTotal      decimal.Decimal        `json:"promotionTotal"`
	Subtotal            decimal.Decimal        `json:"subtotal"`
	OrderAt             time.Time              `json:"orderAt"`
	Warehouse           *Warehouse             `json:"warehouse,omitempty"`
	ElectricMotorbike   *ElectricMotorbike     `json:"electricMotorbike,omitempty"`
}

// HasEmbeddedNames reports whether the payload already carries the display
// names the list screen needs, making a detail fetch unnecessary.
func (o *RestockOrder) HasEmbeddedNames() bool {
	return o.Warehouse != nil && o.Warehouse.Name != "" &&
		o.ElectricMotorbike != nil && o.ElectricMotorbike.Name != ""
}

// Agency is a dealer agency from the agency directory.
type Agency struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Address  string `json:"address,omitempty"`
}

// PaginationInfo mirrors the paginationInfo object of list responses.
type PaginationInfo struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ListRestockParams are the query parameters of the restock list endpoints.
// Status and AgencyID are optional server-side filters.
type ListRestockParams struct {
	Page     int                    `validate:"gte=1"`
	Limit    int                    `validate:"gte=1,lte=100"`
	Status   constant.RestockStatus `validate:"omitempty,restockstatus"`
	AgencyID uint64
}

// UpdateStatusRequest is the body of the status PATCH endpoint.
type UpdateStatusRequest struct {
	Status constant.RestockStatus `json:"status" validate:"required,restockstatus"`
}
