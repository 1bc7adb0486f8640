package eventmodels

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Dataset is an immutable, ordered collection of contract days for one
// underlying and one period. Re-aggregating produces a new Version.
type Dataset struct {
	Symbol    string
	Period    Period
	Version   uuid.UUID
	CreatedAt time.Time
	records   []ContractDay
}

func NewDataset(symbol string, period Period, records []ContractDay) *Dataset {
	return NewDatasetVersion(symbol, period, uuid.New(), time.Now().UTC(), records)
}

func NewDatasetVersion(symbol string, period Period, version uuid.UUID, createdAt time.Time, records []ContractDay) *Dataset {
	sorted := make([]ContractDay, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Less(&sorted[j])
	})

	return &Dataset{
		Symbol:    symbol,
		Period:    period,
		Version:   version,
		CreatedAt: createdAt,
		records:   sorted,
	}
}

func (d *Dataset) Len() int {
	return len(d.records)
}

func (d *Dataset) At(i int) ContractDay {
	return d.records[i]
}

// Records returns a copy of the ordered records.
func (d *Dataset) Records() []ContractDay {
	out := make([]ContractDay, len(d.records))
	copy(out, d.records)
	return out
}

// ForSymbol returns the time series of one contract using the sort order.
func (d *Dataset) ForSymbol(symbol OptionSymbol) []ContractDay {
	lo := sort.Search(len(d.records), func(i int) bool {
		return d.records[i].Symbol >= symbol
	})

	hi := sort.Search(len(d.records), func(i int) bool {
		return d.records[i].Symbol > symbol
	})

	out := make([]ContractDay, hi-lo)
	copy(out, d.records[lo:hi])
	return out
}

func (d *Dataset) Symbols() []OptionSymbol {
	var out []OptionSymbol
	for i := range d.records {
		if len(out) == 0 || out[len(out)-1] != d.records[i].Symbol {
			out = append(out, d.records[i].Symbol)
		}
	}

	return out
}

func (d *Dataset) TradeDates() []time.Time {
	seen := make(map[time.Time]struct{})
	var out []time.Time
	for i := range d.records {
		if _, ok := seen[d.records[i].TradeDate]; !ok {
			seen[d.records[i].TradeDate] = struct{}{}
			out = append(out, d.records[i].TradeDate)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Before(out[j])
	})

	return out
}
