package state

import (
	"errors"
	"testing"
	"time"

	"ahab-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(max int, ttl time.Duration) (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 10, 4, 12, 0, 0, 0, time.UTC)}
	st := NewStore(max, ttl)
	st.now = clock.Now
	return st, clock
}

func sampleCandidates() []models.Candidate {
	return []models.Candidate{
		{ID: "KOI-1000", Class: models.ClassConfirmed},
		{ID: "KOI-1001", Class: models.ClassNotConfirmed},
	}
}

func TestStore_CreateGetDelete(t *testing.T) {
	st, _ := newTestStore(0, 0)

	sess := st.Create("koi.csv", sampleCandidates())
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, "koi.csv", sess.Filename)

	got, err := st.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	c, ok := got.Candidate("KOI-1001")
	require.True(t, ok)
	assert.Equal(t, models.ClassNotConfirmed, c.Class)
	_, ok = got.Candidate("KOI-9999")
	assert.False(t, ok)

	require.NoError(t, st.Delete(sess.ID))
	_, err = st.Get(sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, st.Delete(sess.ID), ErrSessionNotFound)
}

func TestStore_UniqueIDs(t *testing.T) {
	st, _ := newTestStore(0, 0)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		sess := st.Create("", nil)
		assert.False(t, seen[sess.ID])
		seen[sess.ID] = true
	}
	assert.Equal(t, 50, st.Len())
}

func TestStore_EvictsOldest(t *testing.T) {
	st, clock := newTestStore(2, 0)

	first := st.Create("a.csv", nil)
	clock.Advance(time.Second)
	second := st.Create("b.csv", nil)
	clock.Advance(time.Second)
	third := st.Create("c.csv", nil)

	assert.Equal(t, 2, st.Len())
	_, err := st.Get(first.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = st.Get(second.ID)
	assert.NoError(t, err)
	_, err = st.Get(third.ID)
	assert.NoError(t, err)
}

func TestStore_Expiry(t *testing.T) {
	st, clock := newTestStore(0, time.Minute)

	old := st.Create("", nil)
	clock.Advance(2 * time.Minute)

	_, err := st.Get(old.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	fresh := st.Create("", nil)
	assert.Equal(t, 1, st.Len(), "expired sessions are pruned on create")
	_, err = st.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestSession_CurveIsMemoized(t *testing.T) {
	st, _ := newTestStore(0, 0)
	sess := st.Create("", nil)

	calls := 0
	build := func() ([]models.ROCPoint, error) {
		calls++
		return []models.ROCPoint{{Threshold: 1}, {FalsePositiveRate: 1, TruePositiveRate: 1}}, nil
	}

	a, err := sess.Curve("xgboost", build)
	require.NoError(t, err)
	b, err := sess.Curve("xgboost", build)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, a, b)

	_, err = sess.Curve("ahab", build)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, sess.CachedCurves())
}

func TestSession_FailedCurveIsNotCached(t *testing.T) {
	st, _ := newTestStore(0, 0)
	sess := st.Create("", nil)

	boom := errors.New("boom")
	_, err := sess.Curve("bad", func() ([]models.ROCPoint, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, sess.CachedCurves())
}
