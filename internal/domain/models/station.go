package models

// StationReading is the wire-level event emitted by the sensor gateway and
// carried through the ingest bus. Timestamp is unix seconds.
type StationReading struct {
	Area        string  `json:"area"`
	Timestamp   int64   `json:"ts"`
	AQI         float64 `json:"aqi"`
	PM25        float64 `json:"pm25"`
	PM10        float64 `json:"pm10"`
	NO2         float64 `json:"no2"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Pressure    float64 `json:"pressure"`
	WindSpeed   float64 `json:"wind_speed"`
}
