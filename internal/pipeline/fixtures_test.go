package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"nyc-trip-loader/internal/model"
	"nyc-trip-loader/pkg/utils"
)

// monthTrips builds `qualifying` trips that pass cleaning plus `junk` trips
// that don't, all picked up in the given month of 2024.
func monthTrips(month time.Month, qualifying, junk int) []model.TripRecord {
	trips := make([]model.TripRecord, 0, qualifying+junk)
	for i := 0; i < qualifying+junk; i++ {
		pickup := time.Date(2024, month, 1+i%28, i%24, i%60, 0, 0, time.UTC)
		t := model.TripRecord{
			VendorID:      utils.Int32Ptr(1 + int32(i%2)),
			PickupMicros:  model.Micros(pickup),
			DropoffMicros: model.Micros(pickup.Add(time.Duration(5+i%40) * time.Minute)),
			TripDistance:  utils.Float64Ptr(0.5 + float64(i%20)),
			PULocationID:  utils.Int32Ptr(int32(1 + i%263)),
			DOLocationID:  utils.Int32Ptr(int32(1 + (i*7)%263)),
			FareAmount:    utils.Float64Ptr(3 + float64(i%50)),
			TotalAmount:   utils.Float64Ptr(5 + float64(i%90)),
			TipAmount:     utils.Float64Ptr(float64(i % 5)),
		}
		if i >= qualifying {
			switch i % 4 {
			case 0:
				t.PULocationID = nil
			case 1:
				t.DOLocationID = nil
			case 2:
				t.TripDistance = utils.Float64Ptr(0)
			default:
				t.FareAmount = utils.Float64Ptr(-2.5)
			}
		}
		trips = append(trips, t)
	}
	return trips
}

func writeParquet(t *testing.T, path string, trips []model.TripRecord) {
	t.Helper()
	rows := make([]interface{}, len(trips))
	for i, trip := range trips {
		rows[i] = trip
	}
	writeRows(t, path, new(model.TripRecord), rows)
}

// writeRows writes rows of the struct type schema points to.
func writeRows(t *testing.T, path string, schema interface{}, rows []interface{}) {
	t.Helper()

	fw, err := local.NewLocalFileWriter(path)
	require.NoError(t, err)

	pw, err := writer.NewParquetWriter(fw, schema, 1)
	require.NoError(t, err)
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		require.NoError(t, pw.Write(row))
	}
	require.NoError(t, pw.WriteStop())
	require.NoError(t, fw.Close())
}

// legacyTrip is the older published layout: millisecond timestamps, 64-bit
// zone ids, a float passenger count and none of the later surcharge columns.
type legacyTrip struct {
	VendorID       *int64   `parquet:"name=VendorID, type=INT64, repetitiontype=OPTIONAL"`
	Pickup         *int64   `parquet:"name=tpep_pickup_datetime, type=INT64, convertedtype=TIMESTAMP_MILLIS, repetitiontype=OPTIONAL"`
	Dropoff        *int64   `parquet:"name=tpep_dropoff_datetime, type=INT64, convertedtype=TIMESTAMP_MILLIS, repetitiontype=OPTIONAL"`
	PassengerCount *float64 `parquet:"name=passenger_count, type=DOUBLE, repetitiontype=OPTIONAL"`
	TripDistance   *float64 `parquet:"name=trip_distance, type=DOUBLE, repetitiontype=OPTIONAL"`
	PULocationID   *int64   `parquet:"name=PULocationID, type=INT64, repetitiontype=OPTIONAL"`
	DOLocationID   *int64   `parquet:"name=DOLocationID, type=INT64, repetitiontype=OPTIONAL"`
	FareAmount     *float64 `parquet:"name=fare_amount, type=DOUBLE, repetitiontype=OPTIONAL"`
	TipAmount      *float64 `parquet:"name=tip_amount, type=DOUBLE, repetitiontype=OPTIONAL"`
	TotalAmount    *float64 `parquet:"name=total_amount, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// legacyTrips converts trips to the older layout.
func legacyTrips(trips []model.TripRecord) []interface{} {
	rows := make([]interface{}, len(trips))
	for i, tr := range trips {
		rows[i] = legacyTrip{
			VendorID:       widen(tr.VendorID),
			Pickup:         millis(tr.PickupMicros),
			Dropoff:        millis(tr.DropoffMicros),
			PassengerCount: utils.Float64Ptr(1),
			TripDistance:   tr.TripDistance,
			PULocationID:   widen(tr.PULocationID),
			DOLocationID:   widen(tr.DOLocationID),
			FareAmount:     tr.FareAmount,
			TipAmount:      tr.TipAmount,
			TotalAmount:    tr.TotalAmount,
		}
	}
	return rows
}

// recentTrip is a newer layout: the airport fee in lower case and an extra
// congestion pricing column.
type recentTrip struct {
	VendorID             *int32   `parquet:"name=VendorID, type=INT32, repetitiontype=OPTIONAL"`
	Pickup               *int64   `parquet:"name=tpep_pickup_datetime, type=INT64, convertedtype=TIMESTAMP_MICROS, repetitiontype=OPTIONAL"`
	Dropoff              *int64   `parquet:"name=tpep_dropoff_datetime, type=INT64, convertedtype=TIMESTAMP_MICROS, repetitiontype=OPTIONAL"`
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
	AirportFee           *float64 `parquet:"name=airport_fee, type=DOUBLE, repetitiontype=OPTIONAL"`
	CongestionCharge     *float64 `parquet:"name=cbd_congestion_fee, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// recentTrips converts trips to the newer layout with fixed fees.
func recentTrips(trips []model.TripRecord) []interface{} {
	rows := make([]interface{}, len(trips))
	for i, tr := range trips {
		rows[i] = recentTrip{
			VendorID:         tr.VendorID,
			Pickup:           tr.PickupMicros,
			Dropoff:          tr.DropoffMicros,
			TripDistance:     tr.TripDistance,
			PULocationID:     tr.PULocationID,
			DOLocationID:     tr.DOLocationID,
			FareAmount:       tr.FareAmount,
			TipAmount:        tr.TipAmount,
			TotalAmount:      tr.TotalAmount,
			AirportFee:       utils.Float64Ptr(1.75),
			CongestionCharge: utils.Float64Ptr(0.75),
		}
	}
	return rows
}

func widen(v *int32) *int64 {
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}

func millis(micros *int64) *int64 {
	if micros == nil {
		return nil
	}
	n := *micros / 1000
	return &n
}
