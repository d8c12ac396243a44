package core

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/typesniff/internal/classify"
	"github.com/JonMunkholm/typesniff/internal/sniff"
)

// ----------------------------------------------------------------------------
// Arrow Schema Tests
// ----------------------------------------------------------------------------

func TestArrowType(t *testing.T) {
	tests := []struct {
		kind classify.Kind
		want arrow.Type
	}{
		{classify.KindInt, arrow.INT64},
		{classify.KindHex, arrow.INT64},
		{classify.KindFloat, arrow.FLOAT64},
		{classify.KindBool, arrow.BOOL},
		{classify.KindDate, arrow.DATE32},
		{classify.KindTime, arrow.TIME64},
		{classify.KindDateTime, arrow.TIMESTAMP},
		{classify.KindUUID, arrow.STRING},
		{classify.KindDecimal, arrow.STRING},
		{classify.KindString, arrow.STRING},
		{classify.KindNull, arrow.STRING},
	}
	for _, tt := range tests {
		if got := ArrowType(tt.kind).ID(); got != tt.want {
			t.Errorf("ArrowType(%s) = %s, want %s", tt.kind, got, tt.want)
		}
	}
}

func TestArrowSchema_UsesColumnNames(t *testing.T) {
	schema := sniff.Sniff("Order ID,Total\n1,2.5\n", "")
	as := ArrowSchema(schema)
	if as.NumFields() != 2 {
		t.Fatalf("fields = %d", as.NumFields())
	}
	if as.Field(0).Name != "order_id" || as.Field(1).Name != "total" {
		t.Errorf("names = %q, %q", as.Field(0).Name, as.Field(1).Name)
	}
	if !as.Field(0).Nullable {
		t.Error("fields should be nullable")
	}
}

// ----------------------------------------------------------------------------
// Arrow Export Tests
// ----------------------------------------------------------------------------

func TestExportArrow_RoundTrip(t *testing.T) {
	svc := NewService(nil, nil, Options{Workers: 1})
	content := "id,flag,day,name\n1,true,2021-01-02,\"x\"\nfoo,false,2021-01-03,y\n"

	var buf bytes.Buffer
	n, err := svc.ExportArrow(context.Background(), &buf, content, SniffRequest{})
	if err != nil {
		t.Fatalf("ExportArrow: %v", err)
	}
	if n != 2 {
		t.Fatalf("rows = %d, want 2", n)
	}

	r, err := ipc.NewReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Release()

	if !r.Next() {
		t.Fatal("expected one record batch")
	}
	rec := r.Record()
	if rec.NumRows() != 2 || rec.NumCols() != 4 {
		t.Fatalf("shape = %dx%d", rec.NumRows(), rec.NumCols())
	}

	ids := rec.Column(0).(*array.Int64)
	if ids.Value(0) != 1 || !ids.IsNull(1) {
		t.Errorf("id column: %v", ids)
	}

	flags := rec.Column(1).(*array.Boolean)
	if !flags.Value(0) || flags.Value(1) {
		t.Errorf("flag column: %v", flags)
	}

	days := rec.Column(2).(*array.Date32)
	if got := days.Value(0).ToTime().Format("2006-01-02"); got != "2021-01-02" {
		t.Errorf("day[0] = %s", got)
	}

	names := rec.Column(3).(*array.String)
	if names.Value(0) != "x" || names.Value(1) != "y" {
		t.Errorf("name column: %q, %q", names.Value(0), names.Value(1))
	}

	if r.Next() {
		t.Error("expected a single batch")
	}
}

func TestWriteArrow_ShortRowsAreNull(t *testing.T) {
	schema := sniff.Sniff("a,b\n1,2\n3\n", "")

	var buf bytes.Buffer
	if _, err := WriteArrow(&buf, sniff.Records("a,b\n1,2\n3\n", schema), schema, classify.New(classify.Options{})); err != nil {
		t.Fatal(err)
	}

	r, err := ipc.NewReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Release()
	r.Next()

	b := r.Record().Column(1).(*array.Int64)
	if b.Value(0) != 2 || !b.IsNull(1) {
		t.Errorf("b column: %v", b)
	}
}

func TestWriteArrow_DateColumnMatchesPostgres(t *testing.T) {
	content := "d\n2006-03-17\n2006-03-17T23:30:00+05:00\n"
	schema := sniff.Sniff(content, "")
	if schema.Columns[0].Type != classify.KindDate {
		t.Fatalf("column type = %v, want date", schema.Columns[0].Type)
	}
	c := classify.New(classify.Options{})

	var buf bytes.Buffer
	if _, err := WriteArrow(&buf, sniff.Records(content, schema), schema, c); err != nil {
		t.Fatal(err)
	}
	r, err := ipc.NewReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Release()
	r.Next()

	days := r.Record().Column(0).(*array.Date32)
	want := arrow.Date32FromTime(time.Date(2006, 3, 17, 0, 0, 0, 0, time.UTC))
	for i, raw := range []string{"2006-03-17", "2006-03-17T23:30:00+05:00"} {
		if days.IsNull(i) || days.Value(i) != want {
			t.Errorf("row %d: arrow date = %v (null %v), want %v", i, days.Value(i), days.IsNull(i), want)
		}
		pg, ok := ToPgValue(c.Classify(raw), classify.KindDate)
		if !ok || !pg.(pgtype.Date).Time.Equal(want.ToTime()) {
			t.Errorf("row %d: postgres date = %v, %v", i, pg, ok)
		}
	}
}
