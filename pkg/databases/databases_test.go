package databases

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tosih/rpm-simulator/pkg/clock"
	"github.com/tosih/rpm-simulator/pkg/formula"
	"github.com/tosih/rpm-simulator/pkg/models"
	"github.com/tosih/rpm-simulator/pkg/store"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func defaultState() store.State {
	return store.New(store.NewMemoryStorage(), formula.DefaultThresholds).State()
}

type fakeDatabase struct {
	mu      sync.Mutex
	samples []Sample
	err     error
}

func (f *fakeDatabase) Insert(ctx context.Context, sample Sample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples = append(f.samples, sample)
	return f.err
}

func (f *fakeDatabase) Close() error { return nil }

func (f *fakeDatabase) recorded() []Sample {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Sample(nil), f.samples...)
}

func TestNewSample(t *testing.T) {
	s := defaultState()
	sample := NewSample(s, epoch)
	assert.Equal(t, "custom", sample.Vehicle)
	assert.Equal(t, 4, sample.Gear)
	assert.Equal(t, s.RPM, sample.RPM)
	assert.Equal(t, formula.ZoneGreen, sample.Zone)
	assert.Equal(t, epoch, sample.Timestamp)

	s.IsCustomMode = false
	s.SelectedVehicle = models.VehicleIdentity{Make: "Ford", Model: "Mustang", Year: 2018, Trim: "GT"}
	assert.Equal(t, "Ford/Mustang/GT", NewSample(s, epoch).Vehicle)

	s.SelectedVehicle.Trim = ""
	assert.Equal(t, "custom", NewSample(s, epoch).Vehicle)
}

func TestInfluxDbInsert(t *testing.T) {
	var body string
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/write" {
			http.NotFound(w, r)
			return
		}
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		query = r.URL.RawQuery
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	db, err := OpenInfluxDbDatabase(server.URL, "", "", "rpm")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Insert(context.Background(), NewSample(defaultState(), epoch)))
	assert.Contains(t, query, "db=rpm")
	assert.Contains(t, body, "rpm,gear=4,vehicle=custom,zone=green ")
	assert.Contains(t, body, "speed=60")
	assert.Contains(t, body, "custom_mode=true")
}

func TestInfluxDbInsert_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"database not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	db, err := OpenInfluxDbDatabase(server.URL, "", "", "rpm")
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, db.Insert(ctx, NewSample(defaultState(), epoch)))
}

func TestRecorder(t *testing.T) {
	db := &fakeDatabase{err: errors.New("write failed")}
	clk := &clock.FakeClock{CurrentTime: epoch}
	r := NewRecorder(db, clk, 4)

	sim := store.New(store.NewMemoryStorage(), formula.DefaultThresholds)
	sim.AddChangeListener(r.Record)
	sim.SetSpeed(30)
	clk.Advance(time.Second)
	sim.SetSpeed(90)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Run(ctx)

	samples := db.recorded()
	require.Len(t, samples, 2)
	assert.Equal(t, 30.0, samples[0].Speed)
	assert.Equal(t, epoch, samples[0].Timestamp)
	assert.Equal(t, 90.0, samples[1].Speed)
	assert.Equal(t, epoch.Add(time.Second), samples[1].Timestamp)
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	db := &fakeDatabase{}
	r := NewRecorder(db, &clock.FakeClock{CurrentTime: epoch}, 1)
	s := defaultState()
	r.Record(s)
	r.Record(s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Run(ctx)
	assert.Len(t, db.recorded(), 1)
}
