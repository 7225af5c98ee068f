package benchmark

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nvr-ai/inferbench/hardware"
	"github.com/nvr-ai/inferbench/inference/providers"
)

// DefaultResultsPath is the cumulative result log.
const DefaultResultsPath = "benchmark_results.txt"

// RecorderOptions configures a Recorder.
type RecorderOptions struct {
	// Path of the log file lines are appended to. Empty disables the file.
	Path     string
	Hardware *hardware.Info
	// Stdout receives a copy of every line. Nil disables the echo.
	Stdout io.Writer
	Logger *slog.Logger
}

// Recorder renders results as fixed-width lines and appends them to the
// result log. Write failures never reach the caller.
type Recorder struct {
	path     string
	hardware *hardware.Info
	stdout   io.Writer
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewRecorder creates a result recorder.
func NewRecorder(opts RecorderOptions) *Recorder {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	info := opts.Hardware
	if info == nil {
		info = hardware.NewInfo(nil)
	}
	return &Recorder{
		path:     opts.Path,
		hardware: info,
		stdout:   opts.Stdout,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Begin appends the header block that precedes the lines of one run.
func (r *Recorder) Begin(req Request) {
	var b strings.Builder
	fmt.Fprintf(&b, "\n=== inferbench %s run=%s ===\n", r.now().UTC().Format(time.RFC3339), r.newID())
	fmt.Fprintf(&b, "request:  %s\n", req)
	fmt.Fprintf(&b, "cpu:      %s\n", r.hardware.CPU())
	if req.Provider != string(providers.CPU) {
		fmt.Fprintf(&b, "gpu:      %s\n", r.hardware.GPU(req.GPU))
	}
	fmt.Fprintf(&b, "platform: %s\n", r.hardware.Platform())
	r.append(b.String())
}

// Record renders one result, appends it and echoes it.
//
// Arguments:
//   - res: The cell result.
//   - deviceIndex: The GPU index the request ran on.
//
// Returns:
//   - string: The rendered line without newline.
func (r *Recorder) Record(res RunResult, deviceIndex int) string {
	device := r.hardware.Descriptor(providers.Name(res.Provider), deviceIndex)
	line := FormatLine(device, r.hardware.Platform(), res)
	if r.stdout != nil {
		fmt.Fprintln(r.stdout, line)
	}
	r.append(line + "\n")
	return line
}

// append writes to the result log. Errors are logged at debug level and
// otherwise dropped so a read-only disk cannot stop a sweep.
func (r *Recorder) append(text string) {
	if r.path == "" {
		return
	}
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		r.logger.Debug("result log unavailable", "path", r.path, "error", err)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(text); err != nil {
		r.logger.Debug("result log write failed", "path", r.path, "error", err)
	}
}

// FormatLine renders a result as a fixed-width line. Timings are printed in
// milliseconds; load and first run in seconds.
//
// Arguments:
//   - device: The hardware descriptor of the cell.
//   - platform: The platform tag.
//   - res: The cell result.
//
// Returns:
//   - string: The line.
func FormatLine(device, platform string, res RunResult) string {
	prefix := fmt.Sprintf("%-40.40s | %-24.24s | %-9s | %-12s | %-10s | %-9s",
		device, platform, res.Provider, res.Model, res.Level, res.SizeString())
	if !res.Success {
		return fmt.Sprintf("%s | FAILED: %s", prefix, oneLine(res.Error))
	}
	return fmt.Sprintf("%s | load %7.3fs | first %8.3fs | avg %9.3fms | fps %8.2f | min %9.3fms | max %9.3fms",
		prefix,
		res.LoadTime,
		res.FirstRunTime,
		res.Average()*1e3,
		res.FPS(),
		res.Min()*1e3,
		res.Max()*1e3,
	)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
