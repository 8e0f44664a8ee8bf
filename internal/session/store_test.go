package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/interview-invite-agent/internal/wizard"
)

func TestStore_Lifecycle(t *testing.T) {
	st := NewStore()
	s := st.Create(wizard.NewSession())
	assert.Equal(t, 1, st.Len())

	got, err := st.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	got, err = st.Update(s.ID, func(s wizard.Session) (wizard.Session, error) {
		s.Candidate = "Asha"
		return s, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Candidate)
	got, err = st.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Candidate)

	require.NoError(t, st.Delete(s.ID))
	assert.Equal(t, 0, st.Len())

	_, err = st.Get(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.Update(s.ID, func(s wizard.Session) (wizard.Session, error) { return s, nil })
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, st.Delete(s.ID), ErrNotFound)
}

func TestStore_SessionsAreIndependent(t *testing.T) {
	st := NewStore()
	a := st.Create(wizard.NewSession())
	b := st.Create(wizard.NewSession())
	require.NotEqual(t, a.ID, b.ID)

	_, err := st.Update(a.ID, func(s wizard.Session) (wizard.Session, error) {
		s.Candidate = "Asha"
		return s, nil
	})
	require.NoError(t, err)

	got, err := st.Get(b.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Candidate)
}

func TestStore_UpdateFailureKeepsSession(t *testing.T) {
	st := NewStore()
	s := st.Create(wizard.NewSession())
	boom := errors.New("boom")

	_, err := st.Update(s.ID, func(s wizard.Session) (wizard.Session, error) {
		s.Candidate = "Asha"
		return s, boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := st.Get(s.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Candidate)

	_, err = st.Update("missing", func(s wizard.Session) (wizard.Session, error) { return s, nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ConcurrentUpdatesSerialise(t *testing.T) {
	st := NewStore()
	s := st.Create(wizard.NewSession())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.Update(s.ID, func(s wizard.Session) (wizard.Session, error) {
				s.SendCount++
				return s, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := st.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.SendCount)
}
