package domain

import "time"

// TelemetryRecord — одна строка append-only журнала телеметрии.
// Пишется на каждый обработанный запрос, включая неуспешные.
type TelemetryRecord struct {
	Timestamp    time.Time
	Artist       string
	Confidence   float64
	ResponseTime float64 // секунды
}

func NewTelemetryRecord(artist string, confidence, responseTime float64) *TelemetryRecord {
	return &TelemetryRecord{
		Timestamp:    time.Now(),
		Artist:       artist,
		Confidence:   confidence,
		ResponseTime: responseTime,
	}
}
