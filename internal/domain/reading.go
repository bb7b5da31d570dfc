package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Reading is the latest vitals sample reported by a single device.
type Reading struct {
	DeviceID      int           `json:"id"`
	Temperature   float64       `json:"temperature"`
	HeartRate     int           `json:"heart_rate"`
	BloodPressure BloodPressure `json:"blood_pressure"`
	Humidity      float64       `json:"humidity"`
	Oxygen        int           `json:"oxygen"`
}

// BloodPressure is a systolic/diastolic pair. On the wire it travels as "120/80".
type BloodPressure struct {
	Systolic  int
	Diastolic int
}

// ParseBloodPressure parses the "systolic/diastolic" notation.
func ParseBloodPressure(value string) (BloodPressure, error) {
	systolic, diastolic, found := strings.Cut(strings.TrimSpace(value), "/")
	if !found {
		return BloodPressure{}, fmt.Errorf("blood pressure %q: missing separator", value)
	}

	sys, err := strconv.Atoi(strings.TrimSpace(systolic))
	if err != nil {
		return BloodPressure{}, fmt.Errorf("blood pressure %q: systolic: %w", value, err)
	}
	dia, err := strconv.Atoi(strings.TrimSpace(diastolic))
	if err != nil {
		return BloodPressure{}, fmt.Errorf("blood pressure %q: diastolic: %w", value, err)
	}

	return BloodPressure{Systolic: sys, Diastolic: dia}, nil
}

func (bp BloodPressure) String() string {
	return strconv.Itoa(bp.Systolic) + "/" + strconv.Itoa(bp.Diastolic)
}

// MarshalJSON encodes the pair as a "systolic/diastolic" string.
func (bp BloodPressure) MarshalJSON() ([]byte, error) {
	return json.Marshal(bp.String())
}

// UnmarshalJSON decodes the "systolic/diastolic" string form.
func (bp *BloodPressure) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("blood pressure: %w", err)
	}

	parsed, err := ParseBloodPressure(raw)
	if err != nil {
		return err
	}
	*bp = parsed
	return nil
}
