package bahtinov

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

// ErrSeriesNotFound is returned when a series ID is unknown to the store.
var ErrSeriesNotFound = errors.New("focus series not found")

// Sample is one focus measurement.
type Sample struct {
	FocusError float64   `json:"focus_error"`
	Distance   float64   `json:"distance"`
	At         time.Time `json:"at"`
}

// Stats summarises the samples of a series.
type Stats struct {
	ID    string `json:"id"`
	Count int    `json:"count"`

	// MeanFocusError and StdDevFocusError describe the signed error.
	// StdDevFocusError is 0 with fewer than two samples.
	MeanFocusError   float64 `json:"mean_focus_error"`
	StdDevFocusError float64 `json:"stddev_focus_error"`

	// MeanDistance is the mean unsigned distance.
	MeanDistance float64 `json:"mean_distance"`
}

// Series collects focus measurements of one star across frames. Averaging
// several frames smooths out seeing.
type Series struct {
	ID      string   `json:"id"`
	Samples []Sample `json:"samples"`
}

// Stats computes the summary of the series.
func (s *Series) Stats() Stats {
	st := Stats{ID: s.ID, Count: len(s.Samples)}
	if st.Count == 0 {
		return st
	}

	errs := make([]float64, len(s.Samples))
	dists := make([]float64, len(s.Samples))
	for i, sample := range s.Samples {
		errs[i] = sample.FocusError
		dists[i] = sample.Distance
	}

	if st.Count == 1 {
		st.MeanFocusError = errs[0]
	} else {
		st.MeanFocusError, st.StdDevFocusError = stat.MeanStdDev(errs, nil)
	}
	st.MeanDistance = stat.Mean(dists, nil)
	return st
}

// SeriesStore keeps focus series in memory for the lifetime of the server.
//
// SeriesStore is safe for concurrent use by multiple goroutines. Series are
// returned as copies, so callers never observe later appends.
type SeriesStore struct {
	mu     sync.RWMutex
	series map[string]*Series
	now    func() time.Time
}

// NewSeriesStore creates an empty store.
func NewSeriesStore() *SeriesStore {
	return &SeriesStore{
		series: make(map[string]*Series),
		now:    time.Now,
	}
}

// Create starts a new, empty series with a random ID.
func (s *SeriesStore) Create() Series {
	series := &Series{ID: uuid.NewString(), Samples: make([]Sample, 0)}

	s.mu.Lock()
	s.series[series.ID] = series
	s.mu.Unlock()

	return Series{ID: series.ID, Samples: make([]Sample, 0)}
}

// Get returns a copy of the series with the given ID.
func (s *SeriesStore) Get(id string) (Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, ok := s.series[id]
	if !ok {
		return Series{}, fmt.Errorf("%w: %s", ErrSeriesNotFound, id)
	}
	return Series{ID: series.ID, Samples: append([]Sample(nil), series.Samples...)}, nil
}

// Append records a measurement and returns the updated statistics.
func (s *SeriesStore) Append(id string, focus Focus) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	series, ok := s.series[id]
	if !ok {
		return Stats{}, fmt.Errorf("%w: %s", ErrSeriesNotFound, id)
	}
	series.Samples = append(series.Samples, Sample{
		FocusError: focus.Error,
		Distance:   focus.Distance,
		At:         s.now(),
	})
	return series.Stats(), nil
}

// Delete removes a series. Deleting an unknown ID does nothing.
func (s *SeriesStore) Delete(id string) {
	s.mu.Lock()
	delete(s.series, id)
	s.mu.Unlock()
}

// Clear removes all series.
func (s *SeriesStore) Clear() {
	s.mu.Lock()
	s.series = make(map[string]*Series)
	s.mu.Unlock()
}

// Len returns the number of series held.
func (s *SeriesStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.series)
}
