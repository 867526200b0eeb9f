package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"mdnotes/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Backup Service — scheduled Markdown export of every document
// ─────────────────────────────────────────────────────────────

// ErrBackupRunning is returned when a backup is already in progress.
var ErrBackupRunning = errors.New("backup already running")

const backupJobID = "backup"

// BackupResult is the payload of backup:finished.
type BackupResult struct {
	Dir       string `json:"dir"`
	Documents int    `json:"documents"`
	Error     string `json:"error,omitempty"`
}

// BackupService writes every document as <title>.md into a timestamped
// directory, on a cron schedule or on demand.
type BackupService struct {
	docs    domain.DocumentStore
	dir     string
	emitter EventEmitter
	logger  *zap.Logger
	guard   jobGuard
	cron    *cron.Cron
	now     func() time.Time
}

// NewBackupService creates a BackupService writing below dir.
func NewBackupService(docs domain.DocumentStore, dir string, emitter EventEmitter, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &BackupService{
		docs:    docs,
		dir:     dir,
		emitter: emitter,
		logger:  logger,
		now:     time.Now,
	}
}

// Start schedules backups with a standard cron spec or descriptor
// such as "@daily".
func (s *BackupService) Start(ctx context.Context, schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := s.Run(ctx); err != nil && !errors.Is(err, ErrBackupRunning) {
			s.logger.Error("scheduled backup failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", schedule, err)
	}
	c.Start()
	s.cron = c
	s.logger.Info("backups scheduled", zap.String("schedule", schedule), zap.String("dir", s.dir))
	return nil
}

// Stop cancels the schedule and waits for a running backup.
func (s *BackupService) Stop(ctx context.Context) {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.guard.WaitAll(ctx)
}

// Running reports whether a backup is being written.
func (s *BackupService) Running() bool {
	return s.guard.Running(backupJobID)
}

// Run exports all documents now and returns the backup directory.
func (s *BackupService) Run(ctx context.Context) (*BackupResult, error) {
	if !s.guard.TryLock(backupJobID) {
		return nil, ErrBackupRunning
	}
	defer s.guard.Unlock(backupJobID)

	res, err := s.run(ctx)
	if err != nil {
		res.Error = err.Error()
	}
	s.emitter.Emit(ctx, EventBackupFinished, res)
	return res, err
}

func (s *BackupService) run(ctx context.Context) (*BackupResult, error) {
	dir := filepath.Join(s.dir, s.now().Format("20060102-150405"))
	res := &BackupResult{Dir: dir}

	list, err := s.docs.ListDocuments(ctx)
	if err != nil {
		return res, fmt.Errorf("list documents: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return res, fmt.Errorf("create backup dir: %w", err)
	}

	used := make(map[string]int)
	for _, sum := range list {
		doc, err := s.docs.GetDocument(ctx, sum.ID)
		if err != nil {
			return res, fmt.Errorf("read %s: %w", sum.ID, err)
		}
		name := backupFileName(doc.Title, used)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(doc.Content), 0644); err != nil {
			return res, fmt.Errorf("write %s: %w", name, err)
		}
		res.Documents++
	}

	s.logger.Info("backup written", zap.String("dir", dir), zap.Int("documents", res.Documents))
	return res, nil
}

// backupFileName turns a title into a unique, file-system safe name.
func backupFileName(title string, used map[string]int) string {
	base := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, r) || r < 0x20 {
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	base = strings.TrimLeft(base, ".")
	if base == "" {
		base = "Untitled"
	}
	key := strings.ToLower(base)
	used[key]++
	if n := used[key]; n > 1 {
		base += " " + strconv.Itoa(n)
	}
	return base + ".md"
}
