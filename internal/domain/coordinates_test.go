package domain

import (
	"reflect"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestParseCoordinates(t *testing.T) {
	cases := []struct {
		name    string
		lon     *string
		lat     *string
		want    Coordinates
		wantErr bool
	}{
		{"valid", strPtr("-74.0060"), strPtr("40.7128"), Coordinates{Lon: -74.0060, Lat: 40.7128}, false},
		{"valid with whitespace", strPtr(" 101.6869 "), strPtr(" 3.1390 "), Coordinates{Lon: 101.6869, Lat: 3.1390}, false},
		{"boundary values", strPtr("180"), strPtr("-90"), Coordinates{Lon: 180, Lat: -90}, false},
		{"nil longitude", nil, strPtr("40.7128"), Coordinates{}, true},
		{"nil latitude", strPtr("-74.0060"), nil, Coordinates{}, true},
		{"blank longitude", strPtr("  "), strPtr("40.7128"), Coordinates{}, true},
		{"non-numeric", strPtr("abc"), strPtr("40.7128"), Coordinates{}, true},
		{"latitude out of range", strPtr("-74.0060"), strPtr("200.0"), Coordinates{}, true},
		{"longitude out of range", strPtr("-181"), strPtr("40.7128"), Coordinates{}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCoordinates(tc.lon, tc.lat)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	if err := (Coordinates{Lon: -74, Lat: 40}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Coordinates{Lon: 181, Lat: 40}).Validate(); err == nil {
		t.Fatal("expected longitude range error")
	}
	if err := (Coordinates{Lon: -74, Lat: -91}).Validate(); err == nil {
		t.Fatal("expected latitude range error")
	}
}

func TestCoordsToListOrder(t *testing.T) {
	c := Coordinates{Lon: -74.0060, Lat: 40.7128}
	got := c.CoordsToList()
	want := []float64{-74.0060, 40.7128}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v (lon first)", got, want)
	}
}
