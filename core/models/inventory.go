package models

import "time"

// Inventory is a point-in-time listing of platform resources matching the naming convention
type Inventory struct {
	Endpoints    []Endpoint    `json:"endpoints"`
	Models       []Model       `json:"models"`
	TrainingJobs []TrainingJob `json:"training_jobs"`

	// MonthlyCostUSD estimates what the listed endpoints cost per month if left running
	MonthlyCostUSD float64   `json:"estimated_monthly_cost_usd"`
	GeneratedAt    time.Time `json:"generated_at"`
}
