package model

import "time"

type Lead struct {
	ID             string     `json:"id"`
	MemberID       string     `json:"member_id"`
	LeadDate       time.Time  `json:"lead_date"`
	NumLeads       int        `json:"num_leads"`
	Converted      bool       `json:"converted"`
	ConversionDate *time.Time `json:"conversion_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
