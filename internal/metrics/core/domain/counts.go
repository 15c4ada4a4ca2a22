package domain

// Counts are the four per-machine counters of one bucket.
type Counts struct {
	MICAnomaly   int64
	MICProcessed int64
	ACCAnomaly   int64
	ACCProcessed int64
}

func (c *Counts) Add(o Counts) {
	c.MICAnomaly += o.MICAnomaly
	c.MICProcessed += o.MICProcessed
	c.ACCAnomaly += o.ACCAnomaly
	c.ACCProcessed += o.ACCProcessed
}

type MachineCounts struct {
	MachineID   string
	DisplayName string
	Counts      Counts
}

type BucketCounts struct {
	Key      string
	Machines []MachineCounts // sorted by machine id
}

// CountsSeries is one granularity of the counts document, cut to a key range.
type CountsSeries struct {
	Granularity string
	From        string // inclusive, "" = unbounded
	To          string // inclusive, "" = unbounded
	MachineID   string

	FirstDate string
	UpdatedAt string

	Buckets []BucketCounts // chronological
	Totals  Counts
}

type WatermarkView struct {
	LastProcessedTime string
	UpdatedAt         string
}
