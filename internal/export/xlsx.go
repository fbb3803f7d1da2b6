package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/padel-insights/market-cli/internal/model"
)

// WriteReportXLSX writes a two-sheet workbook: the ranked opportunity table
// and the raw facility list behind it.
func WriteReportXLSX(w io.Writer, stats []model.CityStats, facilities []model.Facility) error {
	file := xlsx.NewFile()

	if err := addOpportunitySheet(file, stats); err != nil {
		return err
	}
	if err := addFacilitySheet(file, facilities); err != nil {
		return err
	}

	return eris.Wrap(file.Write(w), "export: write xlsx")
}

func addOpportunitySheet(file *xlsx.File, stats []model.CityStats) error {
	sheet, err := file.AddSheet("Opportunities")
	if err != nil {
		return eris.Wrap(err, "export: add opportunities sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{
		"Rank", "City", "Score", "Facilities", "Avg Rating", "Median Rating",
		"Reviews", "Population", "Per 10k", "Nearest External (km)",
		"Population W", "Saturation W", "Quality Gap W", "Geographic Gap W",
	} {
		header.AddCell().SetString(h)
	}

	for i, s := range stats {
		row := sheet.AddRow()
		row.AddCell().SetInt(i + 1)
		row.AddCell().SetString(s.City)
		row.AddCell().SetFloat(s.OpportunityScore)
		row.AddCell().SetInt(s.TotalFacilities)
		setOptionalFloat(row, s.AvgRating)
		setOptionalFloat(row, s.MedianRating)
		row.AddCell().SetInt(s.TotalReviews)
		setOptionalInt(row, s.Population)
		setOptionalFloat(row, s.FacilitiesPerCapita)
		setOptionalFloat(row, s.AvgDistanceToNearest)
		row.AddCell().SetFloat(s.PopulationWeight)
		row.AddCell().SetFloat(s.SaturationWeight)
		row.AddCell().SetFloat(s.QualityGapWeight)
		row.AddCell().SetFloat(s.GeographicGapWeight)
	}
	return nil
}

func addFacilitySheet(file *xlsx.File, facilities []model.Facility) error {
	sheet, err := file.AddSheet("Facilities")
	if err != nil {
		return eris.Wrap(err, "export: add facilities sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{
		"City", "Name", "Address", "Postal Code", "Latitude", "Longitude",
		"Rating", "Reviews", "Court Type", "Phone", "Website",
	} {
		header.AddCell().SetString(h)
	}

	for _, f := range facilities {
		row := sheet.AddRow()
		row.AddCell().SetString(f.City)
		row.AddCell().SetString(f.Name)
		row.AddCell().SetString(f.Address)
		row.AddCell().SetString(f.PostalCode)
		row.AddCell().SetFloat(f.Latitude)
		row.AddCell().SetFloat(f.Longitude)
		setOptionalFloat(row, f.Rating)
		row.AddCell().SetInt(f.ReviewCount)
		row.AddCell().SetString(string(f.CourtType))
		row.AddCell().SetString(f.Phone)
		row.AddCell().SetString(f.Website)
	}
	return nil
}

func setOptionalFloat(row *xlsx.Row, v *float64) {
	cell := row.AddCell()
	if v != nil {
		cell.SetFloat(*v)
	}
}

func setOptionalInt(row *xlsx.Row, v *int) {
	cell := row.AddCell()
	if v != nil {
		cell.SetInt(*v)
	}
}
