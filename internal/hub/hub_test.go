package hub

import (
	stderrors "errors"
	"testing"

	"hcpdash/domain/dataset"
	apperrors "hcpdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPanel records OnData calls
type MockPanel struct {
	mock.Mock
	id string
}

func (m *MockPanel) ID() string { return m.id }

func (m *MockPanel) OnData(ds *dataset.Dataset) error {
	args := m.Called(ds)
	return args.Error(0)
}

// orderPanel appends its id to a shared log when notified
type orderPanel struct {
	id  string
	log *[]string
	err error
}

func (p *orderPanel) ID() string { return p.id }

func (p *orderPanel) OnData(*dataset.Dataset) error {
	*p.log = append(*p.log, p.id)
	return p.err
}

func newDataset(t *testing.T, source string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(source, []string{"Age"}, [][]dataset.Value{{dataset.Number(22)}})
	require.NoError(t, err)
	return ds
}

func TestPublish_StoresDataset(t *testing.T) {
	ds := newDataset(t, "a.csv")

	t.Run("no panels", func(t *testing.T) {
		h := New()
		assert.Nil(t, h.Dataset())
		require.NoError(t, h.Publish(ds))
		assert.Same(t, ds, h.Dataset())
	})

	t.Run("failing panel", func(t *testing.T) {
		p := &MockPanel{id: "broken"}
		p.On("OnData", ds).Return(stderrors.New("boom"))

		h := New()
		h.Register(p)
		assert.Error(t, h.Publish(ds))
		assert.Same(t, ds, h.Dataset())
	})
}

func TestPublish_NilDataset(t *testing.T) {
	ds := newDataset(t, "a.csv")
	p := &MockPanel{id: "behavior"}
	p.On("OnData", ds).Return(nil).Once()

	h := New()
	h.Register(p)
	require.NoError(t, h.Publish(ds))

	err := h.Publish(nil)
	assert.ErrorIs(t, err, ErrNilDataset)
	assert.Same(t, ds, h.Dataset())
	p.AssertNumberOfCalls(t, "OnData", 1)
}

func TestRegister_Idempotent(t *testing.T) {
	ds := newDataset(t, "a.csv")
	p := &MockPanel{id: "behavior"}
	p.On("OnData", ds).Return(nil)

	h := New()
	h.Register(p)
	h.Register(p)
	assert.Len(t, h.Panels(), 1)

	require.NoError(t, h.Publish(ds))
	p.AssertNumberOfCalls(t, "OnData", 1)
}

func TestUnregister(t *testing.T) {
	first := newDataset(t, "first.csv")
	second := newDataset(t, "second.csv")

	p := &MockPanel{id: "tract"}
	p.On("OnData", first).Return(nil)

	h := New()
	h.Register(p)
	require.NoError(t, h.Publish(first))

	h.Unregister(p)
	h.Unregister(p)
	assert.False(t, h.IsRegistered(p))

	require.NoError(t, h.Publish(second))
	p.AssertNumberOfCalls(t, "OnData", 1)
	p.AssertCalled(t, "OnData", first)
	p.AssertNotCalled(t, "OnData", second)
}

func TestPublish_RegistrationOrder(t *testing.T) {
	var got []string
	h := New()
	for _, id := range []string{"c", "a", "b"} {
		h.Register(&orderPanel{id: id, log: &got})
	}

	require.NoError(t, h.Publish(newDataset(t, "x.csv")))
	assert.Equal(t, []string{"c", "a", "b"}, got)
}

func TestPublish_FailFast(t *testing.T) {
	var got []string
	boom := apperrors.MissingColumns("second", []string{"Age"})

	h := New(WithPolicy(PolicyFailFast))
	h.Register(&orderPanel{id: "first", log: &got})
	h.Register(&orderPanel{id: "second", log: &got, err: boom})
	h.Register(&orderPanel{id: "third", log: &got})

	err := h.Publish(newDataset(t, "x.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "second"}, got)

	failures := Failures(err)
	require.Len(t, failures, 1)
	assert.Equal(t, "second", failures[0].PanelID)
}

func TestPublish_Isolate(t *testing.T) {
	var got []string
	boom := apperrors.MissingColumns("second", []string{"Age"})

	h := New()
	h.Register(&orderPanel{id: "first", log: &got})
	h.Register(&orderPanel{id: "second", log: &got, err: boom})
	h.Register(&orderPanel{id: "third", log: &got, err: stderrors.New("render failed")})

	err := h.Publish(newDataset(t, "x.csv"))
	require.Error(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, got)

	var pubErr *PublishError
	require.ErrorAs(t, err, &pubErr)
	require.Len(t, pubErr.Failures, 2)
	assert.Equal(t, "second", pubErr.Failures[0].PanelID)
	assert.Equal(t, "third", pubErr.Failures[1].PanelID)
	assert.True(t, apperrors.HasCode(pubErr.Failures[0].Err, apperrors.CodeMissingColumn))
	assert.ErrorIs(t, err, boom)
}

func TestHubsDoNotShareRegistry(t *testing.T) {
	a, b := New(), New()
	a.Register(&MockPanel{id: "behavior"})
	assert.Len(t, a.Panels(), 1)
	assert.Empty(t, b.Panels())
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyIsolate, false},
		{"isolate", PolicyIsolate, false},
		{"FailFast", PolicyFailFast, false},
		{"fail-fast", PolicyFailFast, false},
		{"sometimes", PolicyIsolate, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFailures_NotAPublishError(t *testing.T) {
	assert.Nil(t, Failures(nil))
	assert.Nil(t, Failures(stderrors.New("plain")))
}
