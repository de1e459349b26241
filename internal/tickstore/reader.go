package tickstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/your-org/digit-pulse-bot/internal/exchange/deriv"
	"github.com/your-org/digit-pulse-bot/pkg/logger"
)

// StreamTicks reads a recorded tick file and streams its ticks through a
// channel, in file order. Malformed rows are skipped with a warning. The
// error channel carries at most one error.
func StreamTicks(ctx context.Context, filePath string) (<-chan deriv.Tick, <-chan error) {
	tickCh := make(chan deriv.Tick)
	errCh := make(chan error, 1)

	go func() {
		defer close(tickCh)
		defer close(errCh)

		file, err := os.Open(filePath)
		if err != nil {
			errCh <- fmt.Errorf("failed to open tick file: %w", err)
			return
		}
		defer file.Close()

		reader := csv.NewReader(file)
		if _, err := reader.Read(); err != nil {
			if err != io.EOF {
				errCh <- fmt.Errorf("failed to read tick header: %w", err)
			}
			return // Empty file is not an error
		}

		var streamed int
		for {
			record, err := reader.Read()
			if err == io.EOF {
				logger.Infof("Streamed %d ticks from %s", streamed, filePath)
				return
			}
			if err != nil {
				errCh <- fmt.Errorf("failed to read tick record: %w", err)
				return
			}

			tick, ok := parseRecord(record)
			if !ok {
				continue
			}

			select {
			case tickCh <- tick:
				streamed++
			case <-ctx.Done():
				return
			}
		}
	}()

	return tickCh, errCh
}

// LoadTicks reads an entire recorded tick file into memory.
func LoadTicks(filePath string) ([]deriv.Tick, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open tick file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return []deriv.Tick{}, nil
		}
		return nil, fmt.Errorf("failed to read tick header: %w", err)
	}

	var ticks []deriv.Tick
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return ticks, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tick record: %w", err)
		}
		if tick, ok := parseRecord(record); ok {
			ticks = append(ticks, tick)
		}
	}
}

func parseRecord(record []string) (deriv.Tick, bool) {
	if len(record) != 3 {
		logger.Warnf("Skipping record: expected 3 columns, got %d", len(record))
		return deriv.Tick{}, false
	}

	epoch, err := time.Parse(timeLayout, record[0])
	if err != nil {
		logger.Warnf("Skipping record due to time parse error: %v", err)
		return deriv.Tick{}, false
	}
	quote, err := strconv.ParseFloat(record[2], 64)
	if err != nil {
		logger.Warnf("Skipping record due to quote parse error: %v", err)
		return deriv.Tick{}, false
	}

	return deriv.Tick{Symbol: record[1], Quote: quote, Epoch: epoch}, true
}
