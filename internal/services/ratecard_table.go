package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx"

	"shipdesk/internal/apperrors"
	"shipdesk/internal/models"
	"shipdesk/internal/utils"
	"shipdesk/internal/validators"
)

// RateCardColumns is the fixed export/import layout: one row per card and
// zone.
var RateCardColumns = []string{
	"Name",
	"Zone",
	"Base Weight",
	"Base Price",
	"Additional Price Per Kg",
	"Status",
	"Start Date",
	"End Date",
	"Category",
	"Shipment Type",
	"Minimum Fare",
	"Minimum Fare Calculated On",
	"COD Percentage",
	"COD Minimum Charge",
	"Fuel Surcharge",
	"Zone B Type",
}

const (
	colName = iota
	colZone
	colBaseWeight
	colBasePrice
	colPerKg
	colStatus
	colStartDate
	colEndDate
	colCategory
	colShipmentType
	colMinimumFare
	colMinimumFareOn
	colCODPercentage
	colCODMinimum
	colFuelSurcharge
	colZoneBType
)

const xlsxSheetName = "Rate Cards"

// BuildExportRows renders five rows per card in zone order. A card missing
// any zone fails the whole export.
func BuildExportRows(cards []*models.RateCard) ([][]string, error) {
	rows := make([][]string, 0, len(cards)*len(models.Zones))

	for _, card := range cards {
		if missing := card.ZonePricing.MissingZones(); len(missing) > 0 {
			return nil, apperrors.Invalid("zonePricing", validators.MissingZonesMessage(card.Name, missing))
		}

		for _, zone := range models.Zones {
			price := card.ZonePricing[zone]
			rows = append(rows, []string{
				card.Name,
				zone.Letter(),
				formatFloat(price.BaseWeight),
				formatFloat(price.BasePrice),
				formatFloat(price.AdditionalPricePerKg),
				string(card.Status),
				utils.FormatDate(card.EffectiveDates.StartDate),
				utils.FormatDatePtr(card.EffectiveDates.EndDate),
				card.Category,
				string(card.ShipmentType),
				formatFloatPtr(card.MinimumFare),
				string(card.MinimumFareCalculatedOn),
				formatFloatPtr(card.CODPercentage),
				formatFloatPtr(card.CODMinimumCharge),
				formatFloatPtr(card.FuelSurcharge),
				string(card.ZoneBType),
			})
		}
	}

	return rows, nil
}

// EncodeCSV writes the header and rows, quoting fields that need it.
func EncodeCSV(rows [][]string) []byte {
	var buf bytes.Buffer
	buf.WriteString(utils.JoinCSVRow(RateCardColumns))
	buf.WriteByte('\n')
	for _, row := range rows {
		buf.WriteString(utils.JoinCSVRow(row))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func EncodeXLSX(rows [][]string) ([]byte, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(xlsxSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	header := sheet.AddRow()
	style := xlsx.NewStyle()
	font := xlsx.DefaultFont()
	font.Bold = true
	style.Font = *font
	for _, column := range RateCardColumns {
		cell := header.AddCell()
		cell.SetString(column)
		cell.SetStyle(style)
	}

	for _, values := range rows {
		row := sheet.AddRow()
		for i, value := range values {
			cell := row.AddCell()
			if isNumericColumn(i) && value != "" {
				if f, err := strconv.ParseFloat(value, 64); err == nil {
					cell.SetFloat(f)
					continue
				}
			}
			cell.SetString(value)
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeCSV reads every record; short or long records are kept and checked
// per row.
func DecodeCSV(content []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Invalid("file", "malformed CSV: "+err.Error())
		}
		records = append(records, record)
	}
	return records, nil
}

// DecodeXLSX reads the first sheet of the workbook.
func DecodeXLSX(content []byte) ([][]string, error) {
	file, err := xlsx.OpenBinary(content)
	if err != nil {
		return nil, apperrors.Invalid("file", "malformed XLSX: "+err.Error())
	}
	if len(file.Sheets) == 0 {
		return nil, apperrors.Invalid("file", "workbook has no sheets")
	}

	var records [][]string
	for _, row := range file.Sheets[0].Rows {
		if row == nil {
			records = append(records, nil)
			continue
		}
		record := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			if cell != nil {
				record[i] = cell.Value
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// importRow is one parsed data row. Line is the 1-based line in the file,
// counting the header.
type importRow struct {
	Line   int
	Name   string
	Zone   models.Zone
	Price  models.ZonePrice
	Values []string
}

// columnIndex maps header labels, matched case-insensitively, to positions.
type columnIndex map[int]int

func indexColumns(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, label := range header {
		positions[normalizeLabel(label)] = i
	}

	index := make(columnIndex, len(RateCardColumns))
	var errs validators.ValidationErrors
	for col, label := range RateCardColumns {
		pos, ok := positions[normalizeLabel(label)]
		if !ok {
			if col <= colPerKg {
				errs.Add("file", fmt.Sprintf("missing required column %q", label))
			}
			continue
		}
		index[col] = pos
	}

	if err := errs.Err("invalid import file"); err != nil {
		return nil, err
	}
	return index, nil
}

func (c columnIndex) value(record []string, col int) string {
	pos, ok := c[col]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

// parseImportRow extracts the per-zone part of a row. The remaining card
// attributes stay as raw values and are applied per group.
func parseImportRow(index columnIndex, record []string, line int) (*importRow, error) {
	row := &importRow{Line: line, Values: make([]string, len(RateCardColumns))}
	for col := range RateCardColumns {
		row.Values[col] = index.value(record, col)
	}

	row.Name = row.Values[colName]
	if row.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	zone, ok := models.ParseZone(row.Values[colZone])
	if !ok {
		return nil, fmt.Errorf("invalid zone %q", row.Values[colZone])
	}
	row.Zone = zone

	var err error
	if row.Price.BaseWeight, err = parseAmount("base weight", row.Values[colBaseWeight]); err != nil {
		return nil, err
	}
	if row.Price.BasePrice, err = parseAmount("base price", row.Values[colBasePrice]); err != nil {
		return nil, err
	}
	if row.Price.AdditionalPricePerKg, err = parseAmount("additional price per kg", row.Values[colPerKg]); err != nil {
		return nil, err
	}

	return row, nil
}

// applyRowAttributes copies the card-level columns of a row onto card. Empty
// cells leave the card's current value alone.
func applyRowAttributes(card *models.RateCard, values []string) error {
	if v := values[colStatus]; v != "" {
		status := models.RateCardStatus(strings.ToLower(v))
		switch status {
		case models.RateCardStatusDraft, models.RateCardStatusActive, models.RateCardStatusInactive:
			card.Status = status
		default:
			return fmt.Errorf("invalid status %q", v)
		}
	}

	if v := values[colStartDate]; v != "" {
		start, err := utils.ParseDate(v)
		if err != nil {
			return fmt.Errorf("invalid start date %q", v)
		}
		card.EffectiveDates.StartDate = start
	}
	if v := values[colEndDate]; v != "" {
		end, err := utils.ParseDate(v)
		if err != nil {
			return fmt.Errorf("invalid end date %q", v)
		}
		card.EffectiveDates.EndDate = &end
	}
	if end := card.EffectiveDates.EndDate; end != nil && end.Before(card.EffectiveDates.StartDate) {
		return fmt.Errorf("end date is before start date")
	}

	if v := values[colCategory]; v != "" {
		card.Category = v
	}

	if v := values[colShipmentType]; v != "" {
		shipmentType := models.ShipmentType(strings.ToLower(v))
		if shipmentType != models.ShipmentTypeForward && shipmentType != models.ShipmentTypeReverse {
			return fmt.Errorf("invalid shipment type %q", v)
		}
		card.ShipmentType = shipmentType
	}

	if v := values[colMinimumFareOn]; v != "" {
		basis := models.MinimumFareBasis(strings.ToLower(v))
		if basis != models.MinimumFareOnFreight && basis != models.MinimumFareOnFreightOverhead {
			return fmt.Errorf("invalid minimum fare basis %q", v)
		}
		card.MinimumFareCalculatedOn = basis
	}

	if v := values[colZoneBType]; v != "" {
		zoneBType := models.ZoneBType(strings.ToLower(v))
		if zoneBType != models.ZoneBTypeState && zoneBType != models.ZoneBTypeDistance {
			return fmt.Errorf("invalid zone B type %q", v)
		}
		card.ZoneBType = zoneBType
	}

	optional := []struct {
		label  string
		col    int
		target **float64
	}{
		{"minimum fare", colMinimumFare, &card.MinimumFare},
		{"COD percentage", colCODPercentage, &card.CODPercentage},
		{"COD minimum charge", colCODMinimum, &card.CODMinimumCharge},
		{"fuel surcharge", colFuelSurcharge, &card.FuelSurcharge},
	}
	for _, field := range optional {
		v := values[field.col]
		if v == "" {
			continue
		}
		amount, err := parseAmount(field.label, v)
		if err != nil {
			return err
		}
		*field.target = &amount
	}

	return nil
}

func parseAmount(label, value string) (float64, error) {
	if value == "" {
		return 0, fmt.Errorf("%s is required", label)
	}
	amount, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a number", label, value)
	}
	if amount < 0 {
		return 0, fmt.Errorf("%s must not be negative", label)
	}
	return amount, nil
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func isNumericColumn(col int) bool {
	switch col {
	case colBaseWeight, colBasePrice, colPerKg, colMinimumFare, colCODPercentage, colCODMinimum, colFuelSurcharge:
		return true
	}
	return false
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatFloatPtr(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}
