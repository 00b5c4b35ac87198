package helper

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"
)

// ArrivalStats summarizes the time of day attendance was marked.
type ArrivalStats struct {
	Count         int     `json:"count"`
	MeanSeconds   float64 `json:"mean_seconds"`
	StdDevSeconds float64 `json:"stddev_seconds"`
	Mean          string  `json:"mean"`
}

// ComputeArrivalStats converts each timestamp to seconds after midnight in
// loc and returns their mean and sample standard deviation.
func ComputeArrivalStats(times []time.Time, loc *time.Location) ArrivalStats {
	if len(times) == 0 {
		return ArrivalStats{}
	}

	seconds := make([]float64, len(times))
	for i, t := range times {
		t = t.In(loc)
		seconds[i] = float64(t.Hour()*3600 + t.Minute()*60 + t.Second())
	}

	res := ArrivalStats{Count: len(seconds)}
	if len(seconds) == 1 {
		res.MeanSeconds = seconds[0]
	} else {
		res.MeanSeconds, res.StdDevSeconds = stat.MeanStdDev(seconds, nil)
	}
	res.Mean = ClockString(res.MeanSeconds)
	return res
}

// ClockString formats seconds after midnight as HH:MM:SS.
func ClockString(seconds float64) string {
	s := int(seconds + 0.5)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}
