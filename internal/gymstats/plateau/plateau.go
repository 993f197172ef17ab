package plateau

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/2beens/gymstats/internal/gymstats/records"
	"github.com/2beens/gymstats/internal/gymstats/timeseries"
)

const (
	minSessionsForPlateau       = 2
	minSessionsForStickingPoint = 3
)

type Config struct {
	// StickingPointThreshold is the max relative intensity change vs the
	// average of the two previous sessions that still counts as stuck.
	StickingPointThreshold float64
	// PlateauThreshold is the max session-to-session relative volume change inside a plateau.
	PlateauThreshold float64
	// VariationAfterDays is how long an active plateau lasts before we suggest changing the program.
	VariationAfterDays int
}

func DefaultConfig() Config {
	return Config{
		StickingPointThreshold: 0.05,
		PlateauThreshold:       0.03,
		VariationAfterDays:     14,
	}
}

// Session aggregates one exercise's sets logged on one calendar day.
type Session struct {
	Date               time.Time `json:"date"`
	Intensity          float64   `json:"intensity"`
	Volume             float64   `json:"volume"`
	EstimatedOneRepMax float64   `json:"estimatedOneRepMax"`
}

type StickingPoint struct {
	Date           time.Time `json:"date"`
	SessionIndex   int       `json:"sessionIndex"`
	Intensity      float64   `json:"intensity"`
	ReferenceAvg   float64   `json:"referenceAvg"`
	RelativeChange float64   `json:"relativeChange"`
}

type Period struct {
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	Value        float64   `json:"value"`
	Sessions     int       `json:"sessions"`
	DurationDays int       `json:"durationDays"`
	Active       bool      `json:"active"`
}

type ExerciseReport struct {
	Exercise                 string              `json:"exercise"`
	Sessions                 int                 `json:"sessions"`
	StickingPoints           []StickingPoint     `json:"stickingPoints"`
	Plateaus                 []Period            `json:"plateaus"`
	IntensityTrend           records.TrendResult `json:"intensityTrend"`
	LatestEstimatedOneRepMax float64             `json:"latestEstimatedOneRepMax"`
	Recommendations          []string            `json:"recommendations"`
}

type Detector struct {
	cfg Config
}

func NewDetector(cfg Config) *Detector {
	def := DefaultConfig()
	if cfg.StickingPointThreshold <= 0 {
		cfg.StickingPointThreshold = def.StickingPointThreshold
	}
	if cfg.PlateauThreshold <= 0 {
		cfg.PlateauThreshold = def.PlateauThreshold
	}
	if cfg.VariationAfterDays <= 0 {
		cfg.VariationAfterDays = def.VariationAfterDays
	}
	return &Detector{cfg: cfg}
}

// BuildSessions turns the exercise's workout sets into per-day sessions, oldest first.
// Workouts are expected to be valid already (see records.CleanWorkouts).
func BuildSessions(workouts []records.WorkoutSet, exercise string) []Session {
	byDay := make(map[time.Time]*Session)
	for _, w := range records.FilterExercise(workouts, exercise) {
		day := records.Day(w.Date)
		s, ok := byDay[day]
		if !ok {
			s = &Session{Date: day}
			byDay[day] = s
		}
		s.Intensity = math.Max(s.Intensity, w.Weight)
		s.Volume += w.Volume()
		s.EstimatedOneRepMax = math.Max(s.EstimatedOneRepMax, w.EstimatedOneRepMax())
	}

	sessions := make([]Session, 0, len(byDay))
	for _, s := range byDay {
		sessions = append(sessions, *s)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Date.Before(sessions[j].Date)
	})
	return sessions
}

// Detect returns one report per exercise with at least two sessions, sorted by exercise name.
func (d *Detector) Detect(workouts []records.WorkoutSet) []ExerciseReport {
	clean := records.CleanWorkouts(workouts)

	// display the most recently logged spelling of each exercise
	names := make(map[string]string)
	for _, w := range clean {
		names[records.NormalizeExercise(w.Exercise)] = w.Exercise
	}

	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var reports []ExerciseReport
	for _, key := range keys {
		report, ok := d.Analyze(names[key], BuildSessions(clean, key))
		if !ok {
			continue
		}
		reports = append(reports, report)
	}
	return reports
}

// Analyze reports on one exercise's sessions. ok is false when there are too few sessions.
func (d *Detector) Analyze(exercise string, sessions []Session) (_ ExerciseReport, ok bool) {
	if len(sessions) < minSessionsForPlateau {
		return ExerciseReport{}, false
	}

	intensities := make([]float64, len(sessions))
	for i, s := range sessions {
		intensities[i] = s.Intensity
	}

	report := ExerciseReport{
		Exercise:                 exercise,
		Sessions:                 len(sessions),
		StickingPoints:           d.StickingPoints(sessions),
		Plateaus:                 d.PlateauPeriods(sessions),
		IntensityTrend:           timeseries.LinearTrend(intensities),
		LatestEstimatedOneRepMax: sessions[len(sessions)-1].EstimatedOneRepMax,
	}
	report.Recommendations = d.recommendations(report)
	return report, true
}

// StickingPoints flags session i (i >= 2) when its intensity is within the threshold
// of the average of the two sessions before it.
func (d *Detector) StickingPoints(sessions []Session) []StickingPoint {
	if len(sessions) < minSessionsForStickingPoint {
		return nil
	}

	var points []StickingPoint
	for i := 2; i < len(sessions); i++ {
		avg := (sessions[i-1].Intensity + sessions[i-2].Intensity) / 2
		if avg <= 0 {
			continue
		}
		change := math.Abs(sessions[i].Intensity-avg) / avg
		if change < d.cfg.StickingPointThreshold {
			points = append(points, StickingPoint{
				Date:           sessions[i].Date,
				SessionIndex:   i,
				Intensity:      sessions[i].Intensity,
				ReferenceAvg:   avg,
				RelativeChange: change,
			})
		}
	}
	return points
}

// PlateauPeriods returns every maximal run of consecutive sessions whose volume
// changes by less than the threshold from one session to the next.
func (d *Detector) PlateauPeriods(sessions []Session) []Period {
	if len(sessions) < minSessionsForPlateau {
		return nil
	}

	var periods []Period
	runStart := -1
	closeRun := func(end int) {
		if runStart < 0 {
			return
		}
		periods = append(periods, d.period(sessions, runStart, end, end == len(sessions)-1))
		runStart = -1
	}

	for i := 1; i < len(sessions); i++ {
		if d.flat(sessions[i-1].Volume, sessions[i].Volume) {
			if runStart < 0 {
				runStart = i - 1
			}
			continue
		}
		closeRun(i - 1)
	}
	closeRun(len(sessions) - 1)

	return periods
}

func (d *Detector) flat(prev, cur float64) bool {
	if prev <= 0 {
		return false
	}
	return math.Abs(cur-prev)/prev < d.cfg.PlateauThreshold
}

func (d *Detector) period(sessions []Session, start, end int, active bool) Period {
	volumes := make([]float64, 0, end-start+1)
	for _, s := range sessions[start : end+1] {
		volumes = append(volumes, s.Volume)
	}
	return Period{
		StartDate:    sessions[start].Date,
		EndDate:      sessions[end].Date,
		Value:        timeseries.Mean(volumes),
		Sessions:     end - start + 1,
		DurationDays: records.DaysBetween(sessions[start].Date, sessions[end].Date),
		Active:       active,
	}
}

func (d *Detector) recommendations(report ExerciseReport) []string {
	var recs []string
	for _, p := range report.Plateaus {
		if p.Active && p.DurationDays >= d.cfg.VariationAfterDays {
			recs = append(recs, fmt.Sprintf(
				"Volume has been flat for %d days (%d sessions): time for program variation, e.g. change rep scheme, tempo or swap in a variation of %s.",
				p.DurationDays, p.Sessions, report.Exercise,
			))
		}
	}

	if n := len(report.StickingPoints); n > 0 && report.StickingPoints[n-1].SessionIndex == report.Sessions-1 {
		recs = append(recs, fmt.Sprintf(
			"Working weight is stuck around %.1f: consider a small deload or adding an extra set before pushing the weight.",
			report.StickingPoints[n-1].ReferenceAvg,
		))
	}

	if len(recs) == 0 {
		switch report.IntensityTrend.Direction {
		case records.DirectionIncreasing:
			recs = append(recs, "Intensity is trending up: keep the current progression.")
		case records.DirectionDecreasing:
			recs = append(recs, "Intensity is trending down: check recovery, sleep and nutrition.")
		default:
			recs = append(recs, "No plateau detected yet: keep logging sessions.")
		}
	}
	return recs
}
