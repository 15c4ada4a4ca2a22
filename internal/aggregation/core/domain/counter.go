package domain

// CounterEntry holds the four per-machine counts of one bucket.
type CounterEntry struct {
	MICAnomaly   int64  `json:"MIC_anomaly"`
	MICProcessed int64  `json:"MIC_processed"`
	ACCAnomaly   int64  `json:"ACC_anomaly"`
	ACCProcessed int64  `json:"ACC_processed"`
	DisplayName  string `json:"display_name"`
}

func NewCounterEntry(displayName string) *CounterEntry {
	return &CounterEntry{DisplayName: displayName}
}

func (c *CounterEntry) slot(ch Channel, st Status) *int64 {
	switch {
	case ch == ChannelMIC && st == StatusAnomaly:
		return &c.MICAnomaly
	case ch == ChannelMIC && st == StatusProcessed:
		return &c.MICProcessed
	case ch == ChannelACC && st == StatusAnomaly:
		return &c.ACCAnomaly
	case ch == ChannelACC && st == StatusProcessed:
		return &c.ACCProcessed
	}
	return nil
}

// Add increments the (channel, status) count. Unknown pairs are ignored.
func (c *CounterEntry) Add(ch Channel, st Status, n int64) {
	if p := c.slot(ch, st); p != nil {
		*p += n
	}
}

func (c *CounterEntry) Set(ch Channel, st Status, n int64) {
	if p := c.slot(ch, st); p != nil {
		*p = n
	}
}

func (c *CounterEntry) Get(ch Channel, st Status) int64 {
	if p := c.slot(ch, st); p != nil {
		return *p
	}
	return 0
}

// ChannelTotal sums anomaly and processed counts of one channel.
func (c *CounterEntry) ChannelTotal(ch Channel) int64 {
	return c.Get(ch, StatusAnomaly) + c.Get(ch, StatusProcessed)
}

// AddAll sums every count of o into c; the display name is left untouched.
func (c *CounterEntry) AddAll(o *CounterEntry) {
	c.MICAnomaly += o.MICAnomaly
	c.MICProcessed += o.MICProcessed
	c.ACCAnomaly += o.ACCAnomaly
	c.ACCProcessed += o.ACCProcessed
}

func (c *CounterEntry) IsZero() bool {
	return c.MICAnomaly == 0 && c.MICProcessed == 0 && c.ACCAnomaly == 0 && c.ACCProcessed == 0
}
