// Package exchange provides the data collaborators around the feature core:
// CSV candle feeds and the historical downloader.
package exchange

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/raykavin/quantfeat/pkg/core"
	"github.com/samber/lo"
)

var (
	ErrInsufficientData = errors.New("insufficient data")

	// Column positions used when the CSV carries no header row
	defaultHeaderMap = map[string]int{
		"time": 0, "open": 1, "close": 2, "low": 3, "high": 4, "volume": 5,
	}

	csvHeaders = []string{"time", "open", "close", "low", "high", "volume"}
)

// parseHeaders inspects the first CSV line: when it starts with a number the
// file has no header and the default column layout applies
func parseHeaders(headers []string) (headerMap map[string]int, hasCustomHeaders bool) {
	if _, err := strconv.Atoi(headers[0]); err == nil {
		return defaultHeaderMap, false
	}

	headerMap = make(map[string]int)
	for index, header := range headers {
		headerMap[header] = index
	}
	return headerMap, true
}

// ReadCandlesFromCSV loads all candles for a pair from a CSV file
func ReadCandlesFromCSV(file, pair string) ([]core.Candle, error) {
	csvFile, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer csvFile.Close()

	csvLines, err := csv.NewReader(csvFile).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(csvLines) == 0 {
		return nil, ErrInsufficientData
	}

	headerMap, hasCustomHeaders := parseHeaders(csvLines[0])
	if hasCustomHeaders {
		csvLines = csvLines[1:]
	}

	for _, required := range csvHeaders {
		if _, ok := headerMap[required]; !ok {
			return nil, &core.SchemaError{Column: required, Reason: "column missing from CSV header"}
		}
	}

	candles := make([]core.Candle, 0, len(csvLines))
	for _, line := range csvLines {
		candle, err := parseCandleFromLine(line, headerMap, pair)
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}

	return candles, nil
}

// ReadDataframe loads a CSV candle file into a validated dataframe
func ReadDataframe(file, pair string) (*core.Dataframe, error) {
	candles, err := ReadCandlesFromCSV(file, pair)
	if err != nil {
		return nil, err
	}

	df := core.NewDataframe(pair, candles)
	if err := df.Validate(); err != nil {
		return nil, err
	}
	return df, nil
}

// parseCandleFromLine converts one CSV record into a candle
func parseCandleFromLine(line []string, headerMap map[string]int, pair string) (core.Candle, error) {
	fields := map[string]float64{}
	for _, name := range csvHeaders {
		index := headerMap[name]
		if index >= len(line) {
			return core.Candle{}, &core.SchemaError{Column: name, Reason: "record has too few fields"}
		}
		value, err := strconv.ParseFloat(line[index], 64)
		if err != nil {
			return core.Candle{}, fmt.Errorf("failed to parse %s value %q: %w", name, line[index], err)
		}
		fields[name] = value
	}

	return core.Candle{
		Pair:     pair,
		Time:     time.Unix(int64(fields["time"]), 0).UTC(),
		Open:     fields["open"],
		Close:    fields["close"],
		Low:      fields["low"],
		High:     fields["high"],
		Volume:   fields["volume"],
		Complete: true,
	}, nil
}

// WriteCandlesToCSV stores candles with the standard header and decimal
// precision
func WriteCandlesToCSV(file string, candles []core.Candle, precision int) error {
	recordFile, err := os.Create(file)
	if err != nil {
		return err
	}
	defer recordFile.Close()

	writer := csv.NewWriter(recordFile)
	if err := writer.Write(csvHeaders); err != nil {
		return err
	}

	records := lo.Map(candles, func(candle core.Candle, _ int) []string {
		return candle.ToSlice(precision)
	})
	if err := writer.WriteAll(records); err != nil {
		return err
	}

	writer.Flush()
	return writer.Error()
}
