package models

// UnitTypeSupply aggregates competitor unit-mix entries for one unit type.
// AvgPrice is computed only from entries that supplied a price range; a
// zero value with PricedEntries == 0 means no pricing was observed.
type UnitTypeSupply struct {
	UnitType       string  `json:"unit_type"`
	Label          string  `json:"label"`
	TotalUnits     int     `json:"total_units"`
	AvailableUnits int     `json:"available_units"`
	Projects       int     `json:"projects"`
	PricedEntries  int     `json:"priced_entries"`
	AvgPrice       float64 `json:"avg_price"`
	SupplySharePct float64 `json:"supply_share_pct"`
}

// LifecyclePartition buckets total unit counts by project lifecycle stage.
// Upcoming is pre-launch + newly-launched, Active is under-construction +
// ready-to-move.
type LifecyclePartition struct {
	Upcoming  int `json:"upcoming"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

// DemandSupplyReport surfaces oversupply/undersupply signals for a
// locality. ByUnitType is sorted by supply share descending: the ranking
// is the primary signal for spotting over-concentration in one unit type.
type DemandSupplyReport struct {
	City       string             `json:"city"`
	Area       string             `json:"area"`
	TotalUnits int                `json:"total_units"`
	ByUnitType []UnitTypeSupply   `json:"by_unit_type"`
	Lifecycle  LifecyclePartition `json:"lifecycle"`
	Message    string             `json:"message,omitempty"`
}
