package app

import (
	"mdnotes/internal/service"
)

// ============================================================
// Settings & backups
// ============================================================

func (a *App) GetViewMode() service.ViewMode {
	return a.settings.ViewMode()
}

func (a *App) SetViewMode(mode string) error {
	return a.settings.SetViewMode(service.ViewMode(mode))
}

// SaveWindowSize is called by the frontend on resize (debounced there).
func (a *App) SaveWindowSize(width, height int) error {
	return a.settings.SaveWindowSize(width, height)
}

// RunBackup exports every document now, whether or not backups are scheduled.
func (a *App) RunBackup() (*service.BackupResult, error) {
	return a.backups.Run(a.ctx)
}

// BackupRunning lets the frontend disable the backup button mid-run.
func (a *App) BackupRunning() bool {
	return a.backups.Running()
}
