package request

import "time"

type ClaimRequest struct {
	RequestedPickupDate *time.Time `json:"requested_pickup_date,omitempty" example:"2026-09-03T10:00:00Z"`
}

type TransitionRequest struct {
	TargetState string `json:"target_state" binding:"required" example:"confirmed"`
	Note        string `json:"note" example:"Dock 3, ask for Sam"`
}
