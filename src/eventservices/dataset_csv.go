package eventservices

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/options-screener/src/eventmodels"
)

const datasetFileExt = ".csv"

func WriteDatasetCSV(w io.Writer, ds *eventmodels.Dataset) error {
	dtos := make([]*eventmodels.ContractDayDTO, 0, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		c := ds.At(i)
		dtos = append(dtos, c.ToDTO())
	}

	if len(dtos) == 0 {
		_, err := io.WriteString(w, strings.Join(eventmodels.ContractDayColumns, ",")+"\n")
		return err
	}

	if err := gocsv.Marshal(&dtos, w); err != nil {
		return fmt.Errorf("WriteDatasetCSV: %w", err)
	}

	return nil
}

// ReadDatasetCSV restores a persisted dataset. Every row must be valid: a
// persisted dataset that does not parse is corrupt, not noisy.
func ReadDatasetCSV(r io.Reader, symbol string, period eventmodels.Period, version uuid.UUID) (*eventmodels.Dataset, error) {
	var dtos []*eventmodels.ContractDayDTO
	if err := gocsv.Unmarshal(r, &dtos); err != nil {
		return nil, fmt.Errorf("ReadDatasetCSV: %w", err)
	}

	records := make([]eventmodels.ContractDay, 0, len(dtos))
	for i, dto := range dtos {
		c, err := dto.ToModel()
		if err != nil {
			return nil, fmt.Errorf("ReadDatasetCSV: row %d: %w", i+2, err)
		}

		records = append(records, *c)
	}

	return eventmodels.NewDatasetVersion(symbol, period, version, timeNow(), records), nil
}

func datasetDir(dir, symbol string, period eventmodels.Period) string {
	return filepath.Join(dir, strings.ToUpper(symbol), period.String())
}

// SaveDataset writes ds under dir/<SYMBOL>/<period>/<version>.csv. A version is
// never overwritten.
func SaveDataset(dir string, ds *eventmodels.Dataset) (string, error) {
	outDir := datasetDir(dir, ds.Symbol, ds.Period)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("SaveDataset: failed to create %s: %w", outDir, err)
	}

	outFile := filepath.Join(outDir, ds.Version.String()+datasetFileExt)
	f, err := os.OpenFile(outFile, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("SaveDataset: %w", err)
	}

	if err := WriteDatasetCSV(f, ds); err != nil {
		f.Close()
		os.Remove(outFile)
		return "", fmt.Errorf("SaveDataset: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("SaveDataset: %w", err)
	}

	log.Infof("saved %d records of %s %s to %s", ds.Len(), ds.Symbol, ds.Period, outFile)

	return outFile, nil
}

// LoadDataset reads a file written by SaveDataset. Symbol, period and version
// come from the path.
func LoadDataset(path string) (*eventmodels.Dataset, error) {
	version, err := uuid.Parse(strings.TrimSuffix(filepath.Base(path), datasetFileExt))
	if err != nil {
		return nil, fmt.Errorf("LoadDataset: %s is not a dataset version file: %w", path, err)
	}

	periodDir := filepath.Dir(path)
	period, err := eventmodels.ParsePeriod(filepath.Base(periodDir))
	if err != nil {
		return nil, fmt.Errorf("LoadDataset: %w", err)
	}

	symbol := filepath.Base(filepath.Dir(periodDir))

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("LoadDataset: %s: %w", path, eventmodels.ErrDatasetNotFound)
		}
		return nil, fmt.Errorf("LoadDataset: %w", err)
	}
	defer f.Close()

	ds, err := ReadDatasetCSV(f, symbol, period, version)
	if err != nil {
		return nil, fmt.Errorf("LoadDataset: %s: %w", path, err)
	}

	if info, err := f.Stat(); err == nil {
		ds.CreatedAt = info.ModTime().UTC()
	}

	return ds, nil
}

// FindLatestDataset returns the path of the most recently written version.
func FindLatestDataset(dir, symbol string, period eventmodels.Period) (string, error) {
	pattern := filepath.Join(datasetDir(dir, symbol, period), "*"+datasetFileExt)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("FindLatestDataset: %w", err)
	}

	latest := ""
	var latestInfo fs.FileInfo
	for _, m := range matches {
		if _, err := uuid.Parse(strings.TrimSuffix(filepath.Base(m), datasetFileExt)); err != nil {
			continue
		}

		info, err := os.Stat(m)
		if err != nil {
			continue
		}

		if latestInfo == nil || info.ModTime().After(latestInfo.ModTime()) || (info.ModTime().Equal(latestInfo.ModTime()) && m > latest) {
			latest, latestInfo = m, info
		}
	}

	if latest == "" {
		return "", fmt.Errorf("FindLatestDataset: %s %s in %s: %w", symbol, period, dir, eventmodels.ErrDatasetNotFound)
	}

	return latest, nil
}

func LoadLatestDataset(dir, symbol string, period eventmodels.Period) (*eventmodels.Dataset, error) {
	path, err := FindLatestDataset(dir, symbol, period)
	if err != nil {
		return nil, err
	}

	return LoadDataset(path)
}
