package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdnotes/internal/service"
)

func TestSettingsService_WindowSize(t *testing.T) {
	f := newFixture(t)
	s := service.NewSettingsService(f.db)

	assert.Equal(t, service.WindowSize{Width: 1280, Height: 800}, s.LoadWindowSize())

	require.NoError(t, s.SaveWindowSize(1500, 900))
	assert.Equal(t, service.WindowSize{Width: 1500, Height: 900}, s.LoadWindowSize())

	require.NoError(t, s.SaveWindowSize(300, 200))
	assert.Equal(t, service.WindowSize{Width: 1280, Height: 800}, s.LoadWindowSize(), "too small falls back")
}

func TestSettingsService_ViewModeAndLastDocument(t *testing.T) {
	f := newFixture(t)
	s := service.NewSettingsService(f.db)

	assert.Equal(t, service.ViewEdit, s.ViewMode())
	require.NoError(t, s.SetViewMode(service.ViewSplit))
	assert.Equal(t, service.ViewSplit, s.ViewMode())
	assert.Error(t, s.SetViewMode("wysiwyg"))

	assert.Empty(t, s.LastDocument())
	require.NoError(t, s.SetLastDocument("doc-1"))
	assert.Equal(t, "doc-1", s.LastDocument())
}

func TestSettingsService_NilDB(t *testing.T) {
	s := service.NewSettingsService(nil)
	assert.Equal(t, service.WindowSize{Width: 1280, Height: 800}, s.LoadWindowSize())
	assert.Error(t, s.SaveWindowSize(1, 1))
}
