package models

// GenderCount is the total/male/female split every census count carries.
type GenderCount struct {
	Total  int64 `json:"total"`
	Male   int64 `json:"male"`
	Female int64 `json:"female"`
}

// CastePopulation pairs the scheduled-caste and scheduled-tribe counts.
type CastePopulation struct {
	SC GenderCount `json:"sc"`
	ST GenderCount `json:"st"`
}

// Households is the block served per state by the households operation.
type Households struct {
	Households int64       `json:"households"`
	Population GenderCount `json:"population"`
	Under6     GenderCount `json:"under_6"`
}

// WorkerSplit breaks a worker count into the census occupation
// categories.
type WorkerSplit struct {
	Total                 GenderCount `json:"total"`
	Cultivators           GenderCount `json:"cultivators"`
	AgriculturalLabourers GenderCount `json:"agricultural_labourers"`
	HouseholdIndustry     GenderCount `json:"household_industry"`
	Other                 GenderCount `json:"other"`
}

// MarginalWorkers joins the overall category split with the two
// duration bands marginal work is recorded under.
type MarginalWorkers struct {
	WorkerSplit
	Months3To6 WorkerSplit `json:"months_3_6"`
	Months0To3 WorkerSplit `json:"months_0_3"`
}
