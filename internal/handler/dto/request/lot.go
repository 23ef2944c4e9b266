package request

import "time"

type CreateLotRequest struct {
	Product         string    `json:"product" binding:"required" example:"Day-old bread"`
	Quantity        int       `json:"quantity" binding:"required,gt=0" example:"40"`
	Unit            string    `json:"unit" binding:"required" example:"loaves"`
	ExpiryDate      time.Time `json:"expiry_date" binding:"required" example:"2026-09-05T00:00:00Z"`
	ShelfBufferDays int       `json:"shelf_buffer_days" binding:"gte=0" example:"2"`
}

type UpdateLotRequest struct {
	Quantity        *int       `json:"quantity,omitempty" binding:"omitempty,gt=0"`
	Unit            *string    `json:"unit,omitempty"`
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`
	ShelfBufferDays *int       `json:"shelf_buffer_days,omitempty" binding:"omitempty,gte=0"`
}
