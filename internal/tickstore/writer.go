// Package tickstore records tick streams to CSV files and reads them back,
// for offline digit analysis and replays.
package tickstore

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/your-org/digit-pulse-bot/internal/exchange/deriv"
)

const timeLayout = time.RFC3339Nano

var header = []string{"time", "symbol", "quote"}

// Writer appends ticks to a CSV file. It is safe for concurrent use.
type Writer struct {
	file   *os.File
	writer *csv.Writer
	logger *zap.Logger
	mu     sync.Mutex
}

// NewWriter creates the file and writes the header row.
func NewWriter(filePath string, logger *zap.Logger) (*Writer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create tick file: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write tick header: %w", err)
	}

	return &Writer{file: file, writer: writer, logger: logger}, nil
}

// WriteTick appends one tick record.
func (w *Writer) WriteTick(tick deriv.Tick) error {
	record := []string{
		tick.Epoch.UTC().Format(timeLayout),
		tick.Symbol,
		strconv.FormatFloat(tick.Quote, 'f', -1, 64),
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write tick record: %w", err)
	}
	return nil
}

// Flush flushes any buffered records to the underlying file.
func (w *Writer) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writer.Flush()
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	w.Flush()
	return w.file.Close()
}
