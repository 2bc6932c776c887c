// Package timinglog records acquisition timing measurements as CSV files
// for performance analysis.
//
// Every log starts a fresh timestamped file under a timing_logs directory,
// accompanied by a small TOML manifest describing the run. Per-filename
// aggregates are kept in memory and can be read while recording continues.
package timinglog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/puzpuzpuz/xsync/v3"
)

const (
	dirName         = "timing_logs"
	filePrefix      = "timing_log_"
	timestampLayout = "20060102_150405"
)

var header = []string{"Timestamp", "Filename", "Cycles", "Acquisition_ms"}

// Manifest describes one recording run. It is written next to the CSV file
// when the log is created.
type Manifest struct {
	StartedAt time.Time `toml:"started_at"`
	Hostname  string    `toml:"hostname"`
	BaseDir   string    `toml:"base_dir"`
	LogFile   string    `toml:"log_file"`
}

// FileStats aggregates the recorded timings of one spectrum filename.
type FileStats struct {
	Records int
	Total   time.Duration
	Min     time.Duration
	Max     time.Duration
}

// Mean returns the average recorded duration.
func (s FileStats) Mean() time.Duration {
	if s.Records == 0 {
		return 0
	}

	return s.Total / time.Duration(s.Records)
}

// TimingLog writes acquisition timings to a timestamped CSV file.
// It is safe for concurrent use.
type TimingLog struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
	path   string
	stats  *xsync.MapOf[string, FileStats]
}

// New creates a timing log rooted at baseDir. The CSV file is created under
// baseDir/timing_logs with the current timestamp in its name; a second run
// within the same second appends to the existing file without repeating the
// header.
func New(baseDir string) (*TimingLog, error) {
	dir := filepath.Join(baseDir, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("timinglog: create log dir: %w", err)
	}

	path := filepath.Join(dir, filePrefix+time.Now().Format(timestampLayout)+".csv")

	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("timinglog: open log file: %w", err)
	}

	l := &TimingLog{
		file:   file,
		writer: csv.NewWriter(file),
		path:   path,
		stats:  xsync.NewMapOf[string, FileStats](),
	}

	if writeHeader {
		if err := l.writeRow(header); err != nil {
			_ = file.Close()
			return nil, err
		}
	}

	if err := l.writeManifest(baseDir); err != nil {
		_ = file.Close()
		return nil, err
	}

	return l, nil
}

// Path returns the CSV file the log writes to.
func (l *TimingLog) Path() string { return l.path }

// Record appends one timing row and updates the in-memory aggregates.
// The duration is stored in milliseconds with one decimal, matching the
// resolution of the acquisition timing itself.
func (l *TimingLog) Record(filename string, cycles int, elapsed time.Duration) error {
	ms := float64(elapsed) / float64(time.Millisecond)

	err := l.writeRow([]string{
		time.Now().Format(time.RFC3339),
		filename,
		strconv.Itoa(cycles),
		strconv.FormatFloat(ms, 'f', 1, 64),
	})
	if err != nil {
		return err
	}

	l.stats.Compute(filename, func(old FileStats, loaded bool) (FileStats, bool) {
		if !loaded {
			return FileStats{Records: 1, Total: elapsed, Min: elapsed, Max: elapsed}, false
		}

		old.Records++
		old.Total += elapsed
		if elapsed < old.Min {
			old.Min = elapsed
		}
		if elapsed > old.Max {
			old.Max = elapsed
		}

		return old, false
	})

	return nil
}

// Stats returns the aggregates recorded for filename.
func (l *TimingLog) Stats(filename string) (FileStats, bool) {
	return l.stats.Load(filename)
}

// Snapshot returns a copy of the aggregates of all recorded filenames.
func (l *TimingLog) Snapshot() map[string]FileStats {
	snapshot := make(map[string]FileStats, l.stats.Size())
	l.stats.Range(func(filename string, stats FileStats) bool {
		snapshot[filename] = stats
		return true
	})

	return snapshot
}

// Close flushes pending rows and closes the CSV file. It is idempotent.
func (l *TimingLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	l.writer.Flush()
	flushErr := l.writer.Error()

	err := l.file.Close()
	l.file = nil

	if flushErr != nil {
		return fmt.Errorf("timinglog: flush: %w", flushErr)
	}
	if err != nil {
		return fmt.Errorf("timinglog: close: %w", err)
	}

	return nil
}

func (l *TimingLog) writeRow(row []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return fmt.Errorf("timinglog: log closed")
	}

	if err := l.writer.Write(row); err != nil {
		return fmt.Errorf("timinglog: write row: %w", err)
	}

	l.writer.Flush()
	if err := l.writer.Error(); err != nil {
		return fmt.Errorf("timinglog: write row: %w", err)
	}

	return nil
}

func (l *TimingLog) writeManifest(baseDir string) error {
	hostname, _ := os.Hostname()

	data, err := toml.Marshal(Manifest{
		StartedAt: time.Now(),
		Hostname:  hostname,
		BaseDir:   baseDir,
		LogFile:   filepath.Base(l.path),
	})
	if err != nil {
		return fmt.Errorf("timinglog: encode manifest: %w", err)
	}

	manifestPath := l.path[:len(l.path)-len(".csv")] + ".toml"
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return fmt.Errorf("timinglog: write manifest: %w", err)
	}

	return nil
}
