package domain

import "time"

// UpdatedAtLayout formats Document.UpdatedAt.
const UpdatedAtLayout = "2006-01-02 15:04:05"

// Document is the persisted counts document read by the dashboard.
type Document struct {
	FirstDate   string                 `json:"first_date,omitempty"`
	HourlyData  BucketMap              `json:"hourlyData"`
	DailyData   BucketMap              `json:"dailyData"`
	WeeklyData  BucketMap              `json:"weeklyData"`
	MonthlyData BucketMap              `json:"monthlyData"`
	MinuteData  BucketMap              `json:"minuteData"`
	MachineInfo map[string]MachineInfo `json:"machine_info"`
	UpdatedAt   string                 `json:"updated_at"`
}

func NewDocument() *Document {
	d := &Document{}
	d.Normalize()
	return d
}

// Normalize replaces nil maps left by decoding with empty ones.
func (d *Document) Normalize() {
	if d.HourlyData == nil {
		d.HourlyData = BucketMap{}
	}
	if d.DailyData == nil {
		d.DailyData = BucketMap{}
	}
	if d.WeeklyData == nil {
		d.WeeklyData = BucketMap{}
	}
	if d.MonthlyData == nil {
		d.MonthlyData = BucketMap{}
	}
	if d.MinuteData == nil {
		d.MinuteData = BucketMap{}
	}
	if d.MachineInfo == nil {
		d.MachineInfo = map[string]MachineInfo{}
	}
}

func (d *Document) Buckets(g Granularity) BucketMap {
	switch g {
	case Hour:
		return d.HourlyData
	case Day:
		return d.DailyData
	case Week:
		return d.WeeklyData
	case Month:
		return d.MonthlyData
	case Minute:
		return d.MinuteData
	}
	return nil
}

// ResetCounts zeroes every granularity. The anchor is kept.
func (d *Document) ResetCounts() {
	d.HourlyData = BucketMap{}
	d.DailyData = BucketMap{}
	d.WeeklyData = BucketMap{}
	d.MonthlyData = BucketMap{}
	d.MinuteData = BucketMap{}
}

// Anchor parses FirstDate in loc. ok is false when no anchor is set.
func (d *Document) Anchor(loc *time.Location) (t time.Time, ok bool, err error) {
	if d.FirstDate == "" {
		return time.Time{}, false, nil
	}
	t, err = time.ParseInLocation(TimestampLayout, d.FirstDate, loc)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// Watermark is the persisted last-processed marker.
type Watermark struct {
	LastProcessedTime string `json:"last_processed_time"`
}
