package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"user-directory-api/internal/domain"
	"user-directory-api/internal/storage"
)

// ExportFilename is the attachment name offered to the client.
const ExportFilename = "users_export.csv"

var exportHeader = []string{
	"ID", "First Name", "Last Name", "Email", "Mobile", "Gender",
	"Status", "Location", "Profile Image URL", "Created At", "Last Updated",
}

// Exporter writes the full filtered record set to a uniquely named CSV in
// a temp directory. The caller streams the file and removes it afterwards;
// Exporter removes it itself on any failure before handing it over.
type Exporter struct {
	store  domain.UserStore
	tmpDir string
	log    *zap.Logger
}

func NewExporter(store domain.UserStore, tmpDir string, log *zap.Logger) *Exporter {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	return &Exporter{store: store, tmpDir: tmpDir, log: log}
}

// ExportCSV runs the export query (same filter as listing, plus mobile,
// no pagination, createdAt descending) and returns the path of the written
// temp file.
func (e *Exporter) ExportCSV(ctx context.Context, search, baseURL string) (string, error) {
	users, err := e.store.FindAllForExport(ctx, strings.TrimSpace(search))
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.CreateTemp(e.tmpDir, "users-*.csv")
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	path := f.Name()

	if err := writeCSV(f, users, baseURL); err != nil {
		_ = f.Close()
		if rerr := os.Remove(path); rerr != nil {
			e.log.Warn("remove failed export file", zap.String("path", path), zap.Error(rerr))
		}
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close export file: %w", err)
	}
	return path, nil
}

func writeCSV(f *os.File, users []domain.User, baseURL string) error {
	w := csv.NewWriter(f)
	if err := w.Write(exportHeader); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}
	for i, u := range users {
		row := []string{
			strconv.Itoa(i + 1), // 1-based row index, not the store id
			u.FirstName,
			u.LastName,
			u.Email,
			u.Mobile,
			string(u.Gender),
			string(u.Status),
			u.Location,
			storage.URLFor(u.ProfileImage, baseURL),
			isoTime(u.CreatedAt),
			isoTime(u.UpdatedAt),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write export row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func isoTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
