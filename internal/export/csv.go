// Package export serializes facilities and scored city tables to CSV and
// XLSX for spreadsheet consumers.
package export

import (
	"io"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/padel-insights/market-cli/internal/model"
)

// WriteFacilitiesCSV writes the facility list as CSV.
func WriteFacilitiesCSV(w io.Writer, facilities []model.Facility) error {
	data, err := csvutil.Marshal(facilities)
	if err != nil {
		return eris.Wrap(err, "export: marshal facilities csv")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "export: write facilities csv")
	}
	return nil
}

// ReadFacilitiesCSV parses a facility CSV, normalizing city names and
// validating every record. One bad row fails the whole read; imports are
// all-or-nothing.
func ReadFacilitiesCSV(r io.Reader) ([]model.Facility, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "export: read facilities csv")
	}

	var facilities []model.Facility
	if err := csvutil.Unmarshal(data, &facilities); err != nil {
		return nil, eris.Wrap(err, "export: unmarshal facilities csv")
	}

	for i := range facilities {
		facilities[i].City = model.NormalizeCity(facilities[i].City)
		if err := facilities[i].Validate(); err != nil {
			return nil, eris.Wrapf(err, "export: facility row %d", i+1)
		}
	}
	return facilities, nil
}

// WriteCityStatsCSV writes the scored city table as CSV, preserving the
// ranking order of the input.
func WriteCityStatsCSV(w io.Writer, stats []model.CityStats) error {
	data, err := csvutil.Marshal(stats)
	if err != nil {
		return eris.Wrap(err, "export: marshal city stats csv")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "export: write city stats csv")
	}
	return nil
}
