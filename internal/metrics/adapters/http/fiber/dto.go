package fiber

type CountsResponse struct {
	MICAnomaly   int64 `json:"MIC_anomaly"`
	MICProcessed int64 `json:"MIC_processed"`
	ACCAnomaly   int64 `json:"ACC_anomaly"`
	ACCProcessed int64 `json:"ACC_processed"`
}

type MachineCountsResponse struct {
	MachineID   string         `json:"machine_id"`
	DisplayName string         `json:"display_name"`
	Counts      CountsResponse `json:"counts"`
}

type BucketResponse struct {
	Key      string                  `json:"key" example:"2025-01-01"`
	Machines []MachineCountsResponse `json:"machines"`
}

type CountsSeriesResponse struct {
	Granularity string           `json:"granularity" example:"day"`
	From        string           `json:"from,omitempty"`
	To          string           `json:"to,omitempty"`
	MachineID   string           `json:"machine_id,omitempty"`
	FirstDate   string           `json:"first_date,omitempty" example:"20250101_090000"`
	UpdatedAt   string           `json:"updated_at,omitempty" example:"2025-01-01 12:00:00"`
	Buckets     []BucketResponse `json:"buckets"`
	Totals      CountsResponse   `json:"totals"`
}

type WatermarkResponse struct {
	LastProcessedTime string `json:"last_processed_time" example:"20250101_090000"`
	UpdatedAt         string `json:"updated_at,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_query"`
	Message string `json:"message" example:"invalid granularity"`
}
