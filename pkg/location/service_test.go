package location_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"attractions/pkg/location"
)

func TestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing User-Agent")
		}
		switch r.URL.Query().Get("q") {
		case "Alamo San Antonio":
			_, _ = w.Write([]byte(`[{"lat":"29.4259","lon":"-98.4861","type":"museum","address":{"town":"San Antonio","state":"Texas","country":"United States"}}]`))
		case "Bad Coordinates":
			_, _ = w.Write([]byte(`[{"lat":"north","lon":"0"}]`))
		case "Server Error":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	g := location.NewGeocoder(srv.Client(), srv.URL)

	tests := []struct {
		name      string
		query     string
		wantErr   bool
		wantLat   float64
		wantLon   float64
		wantCity  string
		wantState string
	}{
		{name: "found", query: "Alamo San Antonio", wantLat: 29.4259, wantLon: -98.4861, wantCity: "San Antonio", wantState: "Texas"},
		{name: "no results", query: "Atlantis", wantErr: true},
		{name: "bad coordinates", query: "Bad Coordinates", wantErr: true},
		{name: "server error", query: "Server Error", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Geocode(context.Background(), tt.query)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Geocode(%q) expected error, got %+v", tt.query, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Geocode(%q) returned error: %v", tt.query, err)
			}
			if got.Latitude != tt.wantLat || got.Longitude != tt.wantLon {
				t.Errorf("position = %v,%v, want %v,%v", got.Latitude, got.Longitude, tt.wantLat, tt.wantLon)
			}
			if got.City != tt.wantCity {
				t.Errorf("City = %s, want %s", got.City, tt.wantCity)
			}
			if got.State != tt.wantState {
				t.Errorf("State = %s, want %s", got.State, tt.wantState)
			}
		})
	}
}
