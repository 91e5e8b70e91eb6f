package queue

import (
	"encoding/json"
	"testing"
)

type alertPayload struct {
	Area string `json:"area"`
	AQI  int    `json:"aqi"`
}

func TestParsePayloadStruct(t *testing.T) {
	in := alertPayload{Area: "delhi", AQI: 320}
	out, err := ParsePayload[alertPayload](in)
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if out.Area != "delhi" || out.AQI != 320 {
		t.Fatalf("unexpected payload: %+v", out)
	}
}

func TestParsePayloadMap(t *testing.T) {
	in := map[string]interface{}{"area": "mumbai", "aqi": float64(210)}
	out, err := ParsePayload[alertPayload](in)
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if out.Area != "mumbai" || out.AQI != 210 {
		t.Fatalf("unexpected payload: %+v", out)
	}
}

func TestParsePayloadRawMessage(t *testing.T) {
	raw := json.RawMessage(`{"area":"pune","aqi":95}`)
	out, err := ParsePayload[alertPayload](raw)
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if out.Area != "pune" || out.AQI != 95 {
		t.Fatalf("unexpected payload: %+v", out)
	}
}

func TestParsePayloadInvalid(t *testing.T) {
	if _, err := ParsePayload[alertPayload](42); err == nil {
		t.Fatal("expected error for invalid payload type")
	}
}
