// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package bridge

import (
	"encoding/json"
	"testing"
	"time"
)

func TestValue_RoundTripScalars(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		json string
	}{
		{"null", Null(), "null"},
		{"bool true", Bool(true), "true"},
		{"int", Int(42), "42"},
		{"float", Float(3.5), "3.5"},
		{"text", Text("hello"), `"hello"`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			data, err := json.Marshal(c.v)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if string(data) != c.json {
				t.Errorf("Marshal(%v) = %s, want %s", c.name, data, c.json)
			}

			var decoded Value
			if err := json.Unmarshal([]byte(c.json), &decoded); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if decoded.kind != c.v.kind {
				t.Errorf("decoded kind = %v, want %v", decoded.kind, c.v.kind)
			}
		})
	}
}

func TestValue_UnmarshalIntegralFloatBecomesInt(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte("7"), &v); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if v.kind != kindInt {
		t.Fatalf("expected kindInt for integral JSON number, got %v", v.kind)
	}
	if v.Int() != 7 {
		t.Errorf("Int() = %d, want 7", v.Int())
	}
}

func TestValue_UnmarshalFractionalFloatStaysFloat(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte("7.25"), &v); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if v.kind != kindFloat {
		t.Fatalf("expected kindFloat for fractional JSON number, got %v", v.kind)
	}
}

func TestValue_TimeDegradesOnEmptyString(t *testing.T) {
	v := Text("")
	before := time.Now().UTC()
	got := v.Time()
	if got.Before(before) {
		t.Errorf("Time() for empty string should degrade to now, got %v before %v", got, before)
	}
}

func TestValue_TimeDegradesOnParseFailure(t *testing.T) {
	v := Text("not-a-timestamp")
	before := time.Now().UTC()
	got := v.Time()
	if got.Before(before) {
		t.Errorf("Time() for unparsable string should degrade to now, got %v", got)
	}
}

func TestValue_TimeParsesRFC3339(t *testing.T) {
	v := Text("2026-01-15T10:30:00Z")
	got := v.Time()
	want := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Time() = %v, want %v", got, want)
	}
}

func TestValue_Float32Slice(t *testing.T) {
	v := List([]Value{Float(0.1), Int(2), Float(3.3)})
	got := v.Float32Slice()
	want := []float32{0.1, 2, 3.3}
	if len(got) != len(want) {
		t.Fatalf("len(Float32Slice()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Float32Slice()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestValue_DecodeBytesRoundTrip(t *testing.T) {
	original := []byte("hello bridge")
	wire := Bytes(original)
	data, err := json.Marshal(wire)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Value
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	// Bytes travel as base64 text on the wire, so the decoded Value is
	// text; DecodeBytes recovers the original bytes.
	got, err := decoded.DecodeBytes()
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}
	if string(got) != string(original) {
		t.Errorf("DecodeBytes() = %q, want %q", got, original)
	}
}
