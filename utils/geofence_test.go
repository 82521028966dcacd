package utils

import (
	"testing"
)

func TestValidateCoordinate(t *testing.T) {
	cases := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"valid", 45.5231, -122.6765, false},
		{"zero zero", 0, 0, false},
		{"lat too high", 90.0001, 0, true},
		{"lat too low", -91, 0, true},
		{"lng too high", 0, 180.5, true},
		{"lng too low", 0, -181, true},
		{"boundary lat", 90, 180, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCoordinate(tc.lat, tc.lng)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateCoordinate(%v, %v) error = %v, wantErr %v", tc.lat, tc.lng, err, tc.wantErr)
			}
		})
	}
}

func TestDistanceMeters(t *testing.T) {
	// Two points roughly 111m apart along a meridian (0.001 deg latitude).
	d := DistanceMeters(45.0, -122.0, 45.001, -122.0)
	if d < 100 || d > 120 {
		t.Errorf("DistanceMeters = %.2f, want ~111", d)
	}

	if d := DistanceMeters(45.0, -122.0, 45.0, -122.0); d != 0 {
		t.Errorf("distance to self = %.6f, want 0", d)
	}
}

func TestWithinRadius(t *testing.T) {
	shopLat, shopLng := 45.5231, -122.6765

	ok, d := WithinRadius(shopLat, shopLng, shopLat, shopLng, 20)
	if !ok || d != 0 {
		t.Errorf("same point: ok=%v d=%.2f, want inside at 0", ok, d)
	}

	// ~111m north of the fence center, well outside a 20m radius.
	ok, d = WithinRadius(shopLat+0.001, shopLng, shopLat, shopLng, 20)
	if ok {
		t.Errorf("point %.2fm away reported inside 20m fence", d)
	}
	if d < 100 {
		t.Errorf("distance %.2f, want >100", d)
	}

	// Same point inside a radius that covers it.
	ok, _ = WithinRadius(shopLat+0.001, shopLng, shopLat, shopLng, 200)
	if !ok {
		t.Error("point ~111m away reported outside 200m fence")
	}
}
