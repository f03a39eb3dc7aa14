package pipeline

import (
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/common"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/schema"
	"github.com/xitongsys/parquet-go/types"

	"nyc-trip-loader/internal/model"
)

// decodeBatchSize bounds how many rows are materialised at once.
const decodeBatchSize = 10000

// decodeResult describes what was read from one file.
type decodeResult struct {
	Rows       int64
	Missing    []string // standard columns the file does not have
	Additional []string // columns carried through outside the standard layout
	Ignored    []string // nested, repeated or duplicate columns that were not read
}

// sourceColumn is one leaf column of the file bound to its destination.
type sourceColumn struct {
	path     string // in-path used by the column reader
	name     string
	kind     model.ColumnKind
	convert  func(interface{}) (interface{}, error)
	standard int // index into model.TripColumns, -1 when carried through
	extra    int // index into TripRecord.Additional
}

type fileLayout struct {
	columns    []sourceColumn
	additional []model.Column
	result     decodeResult
}

// decodeTrips streams every row of a parquet file to visit. Columns are bound
// by name from the file's own schema: standard columns the file lacks stay
// NULL and unknown columns travel in TripRecord.Additional. A corrupt file
// that makes the decoder panic is reported as an error.
func decodeTrips(path string, visit func(*model.TripRecord)) (out decodeResult, err error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return out, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer fr.Close()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("corrupt parquet file %s: %v", path, r)
		}
	}()

	pr, err := reader.NewParquetColumnReader(fr, 4)
	if err != nil {
		return out, fmt.Errorf("failed to read parquet footer of %s: %w", path, err)
	}
	defer pr.ReadStop()

	layout, err := bindColumns(pr.SchemaHandler)
	if err != nil {
		return out, fmt.Errorf("unsupported schema in %s: %w", path, err)
	}
	out = layout.result

	total := pr.GetNumRows()
	for out.Rows < total {
		n := total - out.Rows
		if n > decodeBatchSize {
			n = decodeBatchSize
		}
		rows := make([]model.TripRecord, n)
		if len(layout.additional) > 0 {
			for i := range rows {
				rows[i].Additional = make([]model.Field, len(layout.additional))
				for j, c := range layout.additional {
					rows[i].Additional[j].Column = c
				}
			}
		}

		for _, col := range layout.columns {
			values, _, _, err := pr.ReadColumnByPath(col.path, n)
			if err != nil {
				return out, fmt.Errorf("failed to read column %s of %s: %w", col.name, path, err)
			}
			if int64(len(values)) != n {
				return out, fmt.Errorf("column %s of %s has %d values for rows %d-%d",
					col.name, path, len(values), out.Rows, out.Rows+n)
			}
			for i, raw := range values {
				if raw == nil {
					continue
				}
				v, err := col.convert(raw)
				if err != nil {
					return out, fmt.Errorf("column %s row %d of %s: %w", col.name, out.Rows+int64(i), path, err)
				}
				if col.standard >= 0 {
					rows[i].SetColumn(col.standard, v)
				} else {
					rows[i].Additional[col.extra].Value = v
				}
			}
		}

		for i := range rows {
			visit(&rows[i])
		}
		out.Rows += n
	}
	return out, nil
}

// bindColumns maps the leaf columns of a file schema to standard trip columns
// or to carried-through columns.
func bindColumns(sh *schema.SchemaHandler) (*fileLayout, error) {
	layout := &fileLayout{}
	bound := make(map[int]bool)
	seen := make(map[string]bool)

	for _, inPath := range sh.ValueColumns {
		idx, ok := sh.MapIndex[inPath]
		if !ok {
			continue
		}
		el := sh.SchemaElements[idx]
		name := sh.Infos[idx].ExName
		key := strings.ToLower(name)

		// Only top-level, non-repeated columns map to table columns.
		if len(common.StrToPath(inPath)) != 2 || el.GetRepetitionType() == parquet.FieldRepetitionType_REPEATED || seen[key] {
			layout.result.Ignored = append(layout.result.Ignored, name)
			continue
		}
		seen[key] = true

		kind, convert, err := columnConverter(el)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		col := sourceColumn{path: inPath, name: name, kind: kind, convert: convert, standard: -1}

		if i, ok := model.StandardColumn(name); ok && !bound[i] {
			want := model.TripColumns[i].Kind
			if !want.Accepts(kind) {
				return nil, fmt.Errorf("column %s holds %s values, want %s", name, kind, want)
			}
			bound[i] = true
			col.standard = i
		} else {
			col.extra = len(layout.additional)
			layout.additional = append(layout.additional, model.Column{Name: name, Kind: kind})
			layout.result.Additional = append(layout.result.Additional, name)
		}
		layout.columns = append(layout.columns, col)
	}

	for i, c := range model.TripColumns {
		if !bound[i] {
			layout.result.Missing = append(layout.result.Missing, c.Name)
		}
	}
	return layout, nil
}

// columnConverter picks the destination kind of a column and the function
// normalising its raw values to int64, float64, string, bool or time.Time.
func columnConverter(el *parquet.SchemaElement) (model.ColumnKind, func(interface{}) (interface{}, error), error) {
	if scale, ok := decimalScale(el); ok {
		return model.KindFloat, func(v interface{}) (interface{}, error) { return decimalValue(v, scale) }, nil
	}

	switch el.GetType() {
	case parquet.Type_BOOLEAN:
		return model.KindBoolean, identity, nil

	case parquet.Type_INT32:
		if isDate(el) {
			return model.KindTimestamp, func(v interface{}) (interface{}, error) {
				days, ok := v.(int32)
				if !ok {
					return nil, unexpected(v)
				}
				return time.Unix(int64(days)*86400, 0).UTC(), nil
			}, nil
		}
		return model.KindInteger, func(v interface{}) (interface{}, error) {
			n, ok := v.(int32)
			if !ok {
				return nil, unexpected(v)
			}
			return int64(n), nil
		}, nil

	case parquet.Type_INT64:
		if unit := timestampUnit(el); unit > 0 {
			return model.KindTimestamp, func(v interface{}) (interface{}, error) {
				n, ok := v.(int64)
				if !ok {
					return nil, unexpected(v)
				}
				switch unit {
				case time.Millisecond:
					return time.UnixMilli(n).UTC(), nil
				case time.Nanosecond:
					return time.Unix(0, n).UTC(), nil
				default:
					return time.UnixMicro(n).UTC(), nil
				}
			}, nil
		}
		return model.KindInteger, identity, nil

	case parquet.Type_INT96:
		return model.KindTimestamp, func(v interface{}) (interface{}, error) {
			s, ok := v.(string)
			if !ok || len(s) != 12 {
				return nil, unexpected(v)
			}
			return types.INT96ToTime(s).UTC(), nil
		}, nil

	case parquet.Type_FLOAT:
		return model.KindFloat, func(v interface{}) (interface{}, error) {
			f, ok := v.(float32)
			if !ok {
				return nil, unexpected(v)
			}
			return float64(f), nil
		}, nil

	case parquet.Type_DOUBLE:
		return model.KindFloat, identity, nil

	case parquet.Type_BYTE_ARRAY, parquet.Type_FIXED_LEN_BYTE_ARRAY:
		return model.KindText, identity, nil
	}
	return 0, nil, fmt.Errorf("unsupported parquet type %s", el.GetType())
}

func identity(v interface{}) (interface{}, error) { return v, nil }

func unexpected(v interface{}) error {
	return fmt.Errorf("unexpected value %v (%T)", v, v)
}

func timestampUnit(el *parquet.SchemaElement) time.Duration {
	if lt := el.GetLogicalType(); lt != nil && lt.IsSetTIMESTAMP() {
		unit := lt.GetTIMESTAMP().GetUnit()
		switch {
		case unit != nil && unit.IsSetMILLIS():
			return time.Millisecond
		case unit != nil && unit.IsSetNANOS():
			return time.Nanosecond
		default:
			return time.Microsecond
		}
	}
	if el.IsSetConvertedType() {
		switch el.GetConvertedType() {
		case parquet.ConvertedType_TIMESTAMP_MILLIS:
			return time.Millisecond
		case parquet.ConvertedType_TIMESTAMP_MICROS:
			return time.Microsecond
		}
	}
	return 0
}

func isDate(el *parquet.SchemaElement) bool {
	if lt := el.GetLogicalType(); lt != nil && lt.IsSetDATE() {
		return true
	}
	return el.IsSetConvertedType() && el.GetConvertedType() == parquet.ConvertedType_DATE
}

func decimalScale(el *parquet.SchemaElement) (int, bool) {
	if lt := el.GetLogicalType(); lt != nil && lt.IsSetDECIMAL() {
		return int(lt.GetDECIMAL().GetScale()), true
	}
	if el.IsSetConvertedType() && el.GetConvertedType() == parquet.ConvertedType_DECIMAL {
		return int(el.GetScale()), true
	}
	return 0, false
}

// decimalValue scales an unscaled decimal. Byte-array decimals are big-endian
// two's complement.
func decimalValue(v interface{}, scale int) (interface{}, error) {
	div := math.Pow10(scale)
	switch x := v.(type) {
	case int32:
		return float64(x) / div, nil
	case int64:
		return float64(x) / div, nil
	case string:
		b := []byte(x)
		n := new(big.Int).SetBytes(b)
		if len(b) > 0 && b[0]&0x80 != 0 {
			n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8)))
		}
		f, _ := new(big.Float).SetInt(n).Float64()
		return f / div, nil
	}
	return nil, unexpected(v)
}
