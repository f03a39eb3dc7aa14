package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TripRecord is one yellow-taxi trip as published in the monthly parquet files.
// Every column is optional in the source files, so every field is a pointer.
type TripRecord struct {
	VendorID             *int32   `parquet:"name=VendorID, type=INT32, repetitiontype=OPTIONAL"`
	PickupMicros         *int64   `parquet:"name=tpep_pickup_datetime, type=INT64, convertedtype=TIMESTAMP_MICROS, repetitiontype=OPTIONAL"`
	DropoffMicros        *int64   `parquet:"name=tpep_dropoff_datetime, type=INT64, convertedtype=TIMESTAMP_MICROS, repetitiontype=OPTIONAL"`
	PassengerCount       *int64   `parquet:"name=passenger_count, type=INT64, repetitiontype=OPTIONAL"`
	TripDistance         *float64 `parquet:"name=trip_distance, type=DOUBLE, repetitiontype=OPTIONAL"`
	RatecodeID           *int64   `parquet:"name=RatecodeID, type=INT64, repetitiontype=OPTIONAL"`
	StoreAndFwdFlag      *string  `parquet:"name=store_and_fwd_flag, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	PULocationID         *int32   `parquet:"name=PULocationID, type=INT32, repetitiontype=OPTIONAL"`
	DOLocationID         *int32   `parquet:"name=DOLocationID, type=INT32, repetitiontype=OPTIONAL"`
	PaymentType          *int64   `parquet:"name=payment_type, type=INT64, repetitiontype=OPTIONAL"`
	FareAmount           *float64 `parquet:"name=fare_amount, type=DOUBLE, repetitiontype=OPTIONAL"`
	Extra                *float64 `parquet:"name=extra, type=DOUBLE, repetitiontype=OPTIONAL"`
	MTATax               *float64 `parquet:"name=mta_tax, type=DOUBLE, repetitiontype=OPTIONAL"`
	TipAmount            *float64 `parquet:"name=tip_amount, type=DOUBLE, repetitiontype=OPTIONAL"`
	TollsAmount          *float64 `parquet:"name=tolls_amount, type=DOUBLE, repetitiontype=OPTIONAL"`
	ImprovementSurcharge *float64 `parquet:"name=improvement_surcharge, type=DOUBLE, repetitiontype=OPTIONAL"`
	TotalAmount          *float64 `parquet:"name=total_amount, type=DOUBLE, repetitiontype=OPTIONAL"`
	CongestionSurcharge  *float64 `parquet:"name=congestion_surcharge, type=DOUBLE, repetitiontype=OPTIONAL"`
	AirportFee           *float64 `parquet:"name=Airport_fee, type=DOUBLE, repetitiontype=OPTIONAL"`

	// Additional holds the file's columns outside the layout above.
	Additional []Field
}

// ColumnKind is the storage class of a destination column.
type ColumnKind int

const (
	KindInteger ColumnKind = iota
	KindFloat
	KindText
	KindTimestamp
	KindBoolean
)

// Accepts reports whether values of kind src can be stored in a column of kind k.
// Integers and floats convert into each other.
func (k ColumnKind) Accepts(src ColumnKind) bool {
	numeric := func(c ColumnKind) bool { return c == KindInteger || c == KindFloat }
	return k == src || numeric(k) && numeric(src)
}

func (k ColumnKind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindTimestamp:
		return "timestamp"
	case KindBoolean:
		return "boolean"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Column describes one destination column. Names mirror the source file.
type Column struct {
	Name string
	Kind ColumnKind
}

// Field is a source column outside the standard trip layout, carried through
// to the destination table as-is.
type Field struct {
	Column
	Value interface{}
}

type tripField struct {
	Column
	get func(*TripRecord) interface{}
	set func(*TripRecord, interface{})
}

// tripFields binds the standard columns to TripRecord, in destination order.
// Setters take normalised source values: int64, float64, string or time.Time.
var tripFields = []tripField{
	{Column{"VendorID", KindInteger},
		func(t *TripRecord) interface{} { return int32Value(t.VendorID) },
		func(t *TripRecord, v interface{}) { t.VendorID = toInt32(v) }},
	{Column{"tpep_pickup_datetime", KindTimestamp},
		func(t *TripRecord) interface{} { return microsValue(t.PickupMicros) },
		func(t *TripRecord, v interface{}) { t.PickupMicros = toMicros(v) }},
	{Column{"tpep_dropoff_datetime", KindTimestamp},
		func(t *TripRecord) interface{} { return microsValue(t.DropoffMicros) },
		func(t *TripRecord, v interface{}) { t.DropoffMicros = toMicros(v) }},
	{Column{"passenger_count", KindInteger},
		func(t *TripRecord) interface{} { return int64Value(t.PassengerCount) },
		func(t *TripRecord, v interface{}) { t.PassengerCount = toInt64(v) }},
	{Column{"trip_distance", KindFloat},
		func(t *TripRecord) interface{} { return floatValue(t.TripDistance) },
		func(t *TripRecord, v interface{}) { t.TripDistance = toFloat64(v) }},
	{Column{"RatecodeID", KindInteger},
		func(t *TripRecord) interface{} { return int64Value(t.RatecodeID) },
		func(t *TripRecord, v interface{}) { t.RatecodeID = toInt64(v) }},
	{Column{"store_and_fwd_flag", KindText},
		func(t *TripRecord) interface{} { return stringValue(t.StoreAndFwdFlag) },
		func(t *TripRecord, v interface{}) { t.StoreAndFwdFlag = toString(v) }},
	{Column{"PULocationID", KindInteger},
		func(t *TripRecord) interface{} { return int32Value(t.PULocationID) },
		func(t *TripRecord, v interface{}) { t.PULocationID = toInt32(v) }},
	{Column{"DOLocationID", KindInteger},
		func(t *TripRecord) interface{} { return int32Value(t.DOLocationID) },
		func(t *TripRecord, v interface{}) { t.DOLocationID = toInt32(v) }},
	{Column{"payment_type", KindInteger},
		func(t *TripRecord) interface{} { return int64Value(t.PaymentType) },
		func(t *TripRecord, v interface{}) { t.PaymentType = toInt64(v) }},
	{Column{"fare_amount", KindFloat},
		func(t *TripRecord) interface{} { return floatValue(t.FareAmount) },
		func(t *TripRecord, v interface{}) { t.FareAmount = toFloat64(v) }},
	{Column{"extra", KindFloat},
		func(t *TripRecord) interface{} { return floatValue(t.Extra) },
		func(t *TripRecord, v interface{}) { t.Extra = toFloat64(v) }},
	{Column{"mta_tax", KindFloat},
		func(t *TripRecord) interface{} { return floatValue(t.MTATax) },
		func(t *TripRecord, v interface{}) { t.MTATax = toFloat64(v) }},
	{Column{"tip_amount", KindFloat},
		func(t *TripRecord) interface{} { return floatValue(t.TipAmount) },
		func(t *TripRecord, v interface{}) { t.TipAmount = toFloat64(v) }},
	{Column{"tolls_amount", KindFloat},
		func(t *TripRecord) interface{} { return floatValue(t.TollsAmount) },
		func(t *TripRecord, v interface{}) { t.TollsAmount = toFloat64(v) }},
	{Column{"improvement_surcharge", KindFloat},
		func(t *TripRecord) interface{} { return floatValue(t.ImprovementSurcharge) },
		func(t *TripRecord, v interface{}) { t.ImprovementSurcharge = toFloat64(v) }},
	{Column{"total_amount", KindFloat},
		func(t *TripRecord) interface{} { return floatValue(t.TotalAmount) },
		func(t *TripRecord, v interface{}) { t.TotalAmount = toFloat64(v) }},
	{Column{"congestion_surcharge", KindFloat},
		func(t *TripRecord) interface{} { return floatValue(t.CongestionSurcharge) },
		func(t *TripRecord, v interface{}) { t.CongestionSurcharge = toFloat64(v) }},
	{Column{"Airport_fee", KindFloat},
		func(t *TripRecord) interface{} { return floatValue(t.AirportFee) },
		func(t *TripRecord, v interface{}) { t.AirportFee = toFloat64(v) }},
}

// TripColumns lists the standard destination columns in the order produced by TripRecord.Values.
var TripColumns = func() []Column {
	cols := make([]Column, len(tripFields))
	for i, f := range tripFields {
		cols[i] = f.Column
	}
	return cols
}()

// ColumnNames returns the names of TripColumns.
func ColumnNames() []string {
	names := make([]string, len(TripColumns))
	for i, c := range TripColumns {
		names[i] = c.Name
	}
	return names
}

// StandardColumn finds the standard column a source column name binds to.
// An exact match wins; otherwise names are compared case-insensitively, since
// the published files have changed the case of some columns over the years.
func StandardColumn(name string) (int, bool) {
	for i, c := range TripColumns {
		if c.Name == name {
			return i, true
		}
	}
	for i, c := range TripColumns {
		if strings.EqualFold(c.Name, name) {
			return i, true
		}
	}
	return -1, false
}

// SetColumn stores a normalised source value in the standard column i.
// A nil value leaves the field NULL.
func (t *TripRecord) SetColumn(i int, v interface{}) {
	if v == nil {
		return
	}
	tripFields[i].set(t, v)
}

// Values returns the standard columns as driver values, nil for missing fields.
func (t *TripRecord) Values() []interface{} {
	vals := make([]interface{}, len(tripFields))
	for i, f := range tripFields {
		vals[i] = f.get(t)
	}
	return vals
}

// PickupTime returns the pickup wall-clock time. The source timestamps are
// local New York time without zone, so they are kept as UTC wall-clock values.
func (t *TripRecord) PickupTime() (time.Time, bool) {
	if t.PickupMicros == nil {
		return time.Time{}, false
	}
	return time.UnixMicro(*t.PickupMicros).UTC(), true
}

// Micros converts a wall-clock time to the source timestamp encoding.
func Micros(ts time.Time) *int64 {
	v := ts.UnixMicro()
	return &v
}

func int32Value(v *int32) interface{} {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func int64Value(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func floatValue(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func stringValue(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func microsValue(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return time.UnixMicro(*v).UTC()
}

func toInt64(v interface{}) *int64 {
	var n int64
	switch x := v.(type) {
	case int64:
		n = x
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		n = int64(x)
	default:
		return nil
	}
	return &n
}

func toInt32(v interface{}) *int32 {
	n := toInt64(v)
	if n == nil || *n > math.MaxInt32 || *n < math.MinInt32 {
		return nil
	}
	m := int32(*n)
	return &m
}

func toFloat64(v interface{}) *float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int64:
		f = float64(x)
	default:
		return nil
	}
	return &f
}

func toString(v interface{}) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func toMicros(v interface{}) *int64 {
	ts, ok := v.(time.Time)
	if !ok {
		return nil
	}
	return Micros(ts)
}
