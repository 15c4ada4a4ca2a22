package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDocument_JSONFieldNames(t *testing.T) {
	doc := NewDocument()
	doc.FirstDate = "20250101_090000"
	doc.DailyData.Entry("2025-01-01", "MACHINE2", func() *CounterEntry {
		return NewCounterEntry("MACHINE2")
	}).Add(ChannelMIC, StatusProcessed, 1)

	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(b)
	for _, field := range []string{
		`"first_date":"20250101_090000"`,
		`"hourlyData":{}`,
		`"dailyData":{"2025-01-01":{"MACHINE2":{"MIC_anomaly":0,"MIC_processed":1,"ACC_anomaly":0,"ACC_processed":0,"display_name":"MACHINE2"}}}`,
		`"weeklyData"`,
		`"monthlyData"`,
		`"minuteData"`,
		`"machine_info"`,
		`"updated_at"`,
	} {
		if !strings.Contains(out, field) {
			t.Fatalf("expected %s in %s", field, out)
		}
	}
}

func TestDocument_NormalizeAfterDecode(t *testing.T) {
	var doc Document
	if err := json.Unmarshal([]byte(`{"first_date":"20250101_090000"}`), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	doc.Normalize()
	for _, g := range Granularities {
		if doc.Buckets(g) == nil {
			t.Fatalf("expected %s buckets to be non-nil", g)
		}
	}
	anchor, ok, err := doc.Anchor(time.UTC)
	if err != nil || !ok {
		t.Fatalf("expected anchor, got ok=%v err=%v", ok, err)
	}
	if !anchor.Equal(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected anchor %s", anchor)
	}
}

func TestCounterEntry_AddSetGet(t *testing.T) {
	e := NewCounterEntry("m")
	e.Add(ChannelACC, StatusAnomaly, 2)
	e.Add(ChannelACC, StatusProcessed, 3)
	e.Add(Channel("XYZ"), StatusProcessed, 10)

	if e.ChannelTotal(ChannelACC) != 5 {
		t.Fatalf("expected ACC total 5, got %d", e.ChannelTotal(ChannelACC))
	}
	if e.ChannelTotal(ChannelMIC) != 0 {
		t.Fatalf("expected MIC total 0, got %d", e.ChannelTotal(ChannelMIC))
	}
	e.Set(ChannelACC, StatusAnomaly, 0)
	if e.Get(ChannelACC, StatusAnomaly) != 0 {
		t.Fatalf("expected overwrite to 0")
	}
}

func TestMachineRegistry_FallbackToID(t *testing.T) {
	r := NewMachineRegistry([]Machine{
		{ID: "MACHINE2", DisplayName: "Press #2"},
		{ID: "MACHINE3"},
		{ID: "MACHINE2", DisplayName: "dup"},
	})
	if got := r.DisplayName("MACHINE2"); got != "Press #2" {
		t.Fatalf("expected Press #2, got %s", got)
	}
	if got := r.DisplayName("MACHINE3"); got != "MACHINE3" {
		t.Fatalf("expected fallback MACHINE3, got %s", got)
	}
	if got := r.DisplayName("OTHER"); got != "OTHER" {
		t.Fatalf("expected fallback OTHER, got %s", got)
	}
	if ids := r.IDs(); len(ids) != 2 || ids[0] != "MACHINE2" || ids[1] != "MACHINE3" {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestStreamsFor_Order(t *testing.T) {
	streams := StreamsFor([]string{"M1"})
	want := []string{
		"M1/result_MIC/anomaly/",
		"M1/result_MIC/processed/",
		"M1/result_ACC/anomaly/",
		"M1/result_ACC/processed/",
	}
	if len(streams) != len(want) {
		t.Fatalf("expected %d streams, got %d", len(want), len(streams))
	}
	for i, s := range streams {
		if s.Prefix() != want[i] {
			t.Fatalf("stream %d: expected %s, got %s", i, want[i], s.Prefix())
		}
	}
}
