package dataprocessing

import (
	"fmt"
	"math"
	"strings"

	"tabclean/internal/operations"
	"tabclean/internal/validation"
	"tabclean/pkg/contracts/domain"
)

const stepGeocode = "geocode"

// field widths of the zero padded components
const (
	districtWidth = 2
	wardWidth     = 3
	villageWidth  = 2
	hamletWidth   = 3
)

// ValidateRegion checks the user supplied region is exactly two digits
func ValidateRegion(region string) error {
	if err := validation.Var(stepGeocode, domain.ColRegion, region, "required,len=2,number"); err != nil {
		return operations.NewValidationErrorf(stepGeocode, "%s must be a 2-digit numeric value", domain.ColRegion)
	}
	return nil
}

// GenerateGeocode derives CODE1, CODE2 and an empty GEOCODE from the eight
// administrative columns, moves them to the front and drops the sources.
//
//	CODE1 = region + district(2) + council
//	CODE2 = constituency + division + ward(3) + village(2) + hamlet(3)
//
// The transform is terminal for the column set: running it again fails
// because the source columns are gone.
func GenerateGeocode(table *domain.Table, region string, log operations.Logger) error {
	if log == nil {
		log = operations.NopReporter{}
	}
	if missing := table.MissingColumns(domain.GeocodeSourceColumns...); len(missing) > 0 {
		return operations.NewMissingColumnsError(stepGeocode, missing)
	}
	region = strings.TrimSpace(region)
	if err := ValidateRegion(region); err != nil {
		return err
	}

	log.Log(fmt.Sprintf("Using %s value: %s", domain.ColRegion, region))
	n := table.Len()

	regions := make([]domain.Value, n)
	for i := range regions {
		regions[i] = domain.Text(region)
	}
	_ = table.SetColumn(domain.ColRegion, regions)

	log.Log("Generating CODE1...")
	district := padColumn(table, domain.ColDistrict, districtWidth)
	council := textColumn(table, domain.ColCouncil)
	code1 := make([]domain.Value, n)
	for i := 0; i < n; i++ {
		code1[i] = domain.Text(region + district[i] + council[i])
	}
	log.Log("CODE1 generated successfully.")

	log.Log("Generating CODE2...")
	constituency := textColumn(table, domain.ColConstituency)
	division := textColumn(table, domain.ColDivision)
	ward := padColumn(table, domain.ColWard, wardWidth)
	village := padColumn(table, domain.ColVillage, villageWidth)
	hamlet := padColumn(table, domain.ColHamlet, hamletWidth)
	code2 := make([]domain.Value, n)
	for i := 0; i < n; i++ {
		code2[i] = domain.Text(constituency[i] + division[i] + ward[i] + village[i] + hamlet[i])
	}
	log.Log("CODE2 generated successfully.")

	log.Log("Leaving GEOCODE empty...")
	geocode := make([]domain.Value, n)
	for i := range geocode {
		geocode[i] = domain.Text("")
	}

	_ = table.SetColumn(domain.ColCode1, code1)
	_ = table.SetColumn(domain.ColCode2, code2)
	_ = table.SetColumn(domain.ColGeocode, geocode)
	log.Log("GEOCODE initialized as empty.")

	table.MoveToFront(domain.ColCode1, domain.ColCode2, domain.ColGeocode)
	table.DropColumns(domain.GeocodeSourceColumns...)
	log.Log(fmt.Sprintf("Dropped original columns: %s", strings.Join(domain.GeocodeSourceColumns, ", ")))
	return nil
}

// PadCode renders v as a zero padded integer of the given width. Numbers are
// truncated toward zero; anything that is not a number pads to all zeros.
func PadCode(v domain.Value, width int) string {
	f, ok := v.Float()
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return strings.Repeat("0", width)
	}
	return fmt.Sprintf("%0*d", width, int64(f))
}

func padColumn(table *domain.Table, name string, width int) []string {
	col, _ := table.Column(name)
	out := make([]string, len(col))
	for i, v := range col {
		out[i] = PadCode(v, width)
	}
	return out
}

// textColumn renders cells verbatim; missing cells render as "".
func textColumn(table *domain.Table, name string) []string {
	col, _ := table.Column(name)
	out := make([]string, len(col))
	for i, v := range col {
		if v.IsNullLike() {
			continue
		}
		out[i] = v.String()
	}
	return out
}
