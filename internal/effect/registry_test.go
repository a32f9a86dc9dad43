package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyrmlight/ledcore/internal/layout"
)

type fakeEffect struct{ calls int }

func (f *fakeEffect) Render(frame layout.Frame, lay layout.Layout, ms int64, params Params) {
	f.calls++
}
func (f *fakeEffect) OnLayoutChange(lay layout.Layout) {}

func TestRegistryRegisterAndNew(t *testing.T) {
	r := NewRegistry()
	r.Register("Fake", Descriptor{Label: "Fake Effect"}, func() Effect { return &fakeEffect{} })

	assert.True(t, r.Has("Fake"))
	assert.Equal(t, []string{"Fake"}, r.Names())

	e, err := r.New("Fake")
	require.NoError(t, err)
	require.NotNil(t, e)

	_, err = r.New("Missing")
	assert.Error(t, err)
}

func TestRegistryNewReturnsFreshInstances(t *testing.T) {
	r := NewRegistry()
	r.Register("Fake", Descriptor{}, func() Effect { return &fakeEffect{} })

	a, _ := r.New("Fake")
	b, _ := r.New("Fake")
	assert.NotSame(t, a, b)
}

func TestRegistryDuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register("Fake", Descriptor{}, func() Effect { return &fakeEffect{} })
	assert.Panics(t, func() {
		r.Register("Fake", Descriptor{}, func() Effect { return &fakeEffect{} })
	})
}
