package application

import "time"

// PickUnitDTO is one allocation of an order line inside a picklist
type PickUnitDTO struct {
	SKU        string    `json:"sku"`
	OrderID    string    `json:"orderId"`
	Store      string    `json:"store"`
	Bin        string    `json:"bin"`
	BinRank    string    `json:"binRank"`
	Units      int       `json:"units"`
	UnitWeight float64   `json:"unitWeight"`
	Cutoff     time.Time `json:"cutoff"`
	Priority   int       `json:"priority"`
	Fragile    bool      `json:"fragile"`
}

// PicklistDTO is the API representation of a sealed picklist
type PicklistDTO struct {
	Zone           string        `json:"zone"`
	Type           string        `json:"picklistType"`
	SequenceNumber int           `json:"sequenceNumber"`
	Status         string        `json:"status"`
	TotalUnits     int           `json:"totalUnits"`
	TotalWeight    float64       `json:"totalWeight"`
	UnitCap        int           `json:"unitCap"`
	WeightCap      float64       `json:"weightCap"`
	DistinctOrders int           `json:"distinctOrders"`
	DistinctBins   int           `json:"distinctBins"`
	EarliestCutoff time.Time     `json:"earliestCutoff"`
	SealedAt       *time.Time    `json:"sealedAt,omitempty"`
	Units          []PickUnitDTO `json:"units,omitempty"`
}

// SummaryRowDTO is one row of the run summary table
type SummaryRowDTO struct {
	Zone           string    `json:"zone"`
	SequenceNumber int       `json:"sequenceNumber"`
	Type           string    `json:"picklistType"`
	TotalUnits     int       `json:"totalUnits"`
	TotalWeight    float64   `json:"totalWeight"`
	DistinctOrders int       `json:"distinctOrders"`
	DistinctBins   int       `json:"distinctBins"`
	EarliestCutoff time.Time `json:"earliestCutoff"`
	CreatedAt      time.Time `json:"createdAt"`
}

// RunMetricsDTO is the API representation of run-level quality metrics
type RunMetricsDTO struct {
	TotalPicklists            int            `json:"totalPicklists"`
	AvgUnitsPerPicklist       float64        `json:"avgUnitsPerPicklist"`
	AvgWeightPerPicklist      float64        `json:"avgWeightPerPicklist"`
	ViolationCount            int            `json:"violationCount"`
	ViolationRate             float64        `json:"violationRate"`
	UnitDominatedViolations   int            `json:"unitDominatedViolations"`
	WeightDominatedViolations int            `json:"weightDominatedViolations"`
	AvgUnitUtilization        float64        `json:"avgUnitUtilization"`
	AvgWeightUtilization      float64        `json:"avgWeightUtilization"`
	AvgOrdersPerPicklist      float64        `json:"avgOrdersPerPicklist"`
	AvgBinsPerPicklist        float64        `json:"avgBinsPerPicklist"`
	BaselinePicklists         int            `json:"baselinePicklists"`
	BaselineReduction         float64        `json:"baselineReduction"`
	TypeCounts                map[string]int `json:"typeCounts"`
	ZoneCounts                map[string]int `json:"zoneCounts"`
	MalformedLines            int            `json:"malformedLines"`
	UnpackableLines           int            `json:"unpackableLines"`
	QualityScore              float64        `json:"qualityScore"`
}

// ExcludedLineDTO is one line excluded from packing
type ExcludedLineDTO struct {
	OrderID string `json:"orderId"`
	SKU     string `json:"sku"`
	Zone    string `json:"zone"`
	Kind    string `json:"kind"`
	Reason  string `json:"reason"`
}

// RunDTO is the full API representation of a generation run
type RunDTO struct {
	RunID         string            `json:"runId"`
	Status        string            `json:"status"`
	Zones         []string          `json:"zones"`
	Picklists     []PicklistDTO     `json:"picklists"`
	Summaries     []SummaryRowDTO   `json:"summaries"`
	Metrics       RunMetricsDTO     `json:"metrics"`
	Exclusions    []ExcludedLineDTO `json:"exclusions"`
	SourceLines   int               `json:"sourceLines"`
	FailureReason string            `json:"failureReason,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	CompletedAt   *time.Time        `json:"completedAt,omitempty"`
}

// RunListItemDTO is the compact list representation of a run
type RunListItemDTO struct {
	RunID          string     `json:"runId"`
	Status         string     `json:"status"`
	TotalPicklists int        `json:"totalPicklists"`
	QualityScore   float64    `json:"qualityScore"`
	SourceLines    int        `json:"sourceLines"`
	CreatedAt      time.Time  `json:"createdAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}
