package timezone

import "testing"

func TestFinder_GetTimezone(t *testing.T) {
	f, err := NewFinder()
	if err != nil {
		t.Fatalf("Failed to create finder: %v", err)
	}

	tests := []struct {
		name      string
		latitude  float64
		longitude float64
		want      string
	}{
		{name: "Mississauga", latitude: 43.5890, longitude: -79.6441, want: "America/Toronto"},
		{name: "Lod", latitude: 31.9510, longitude: 34.8881, want: "Asia/Jerusalem"},
		{name: "London", latitude: 51.5074, longitude: -0.1278, want: "Europe/London"},
		{name: "Tokyo", latitude: 35.6762, longitude: 139.6503, want: "Asia/Tokyo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.GetTimezone(tt.latitude, tt.longitude)
			if err != nil {
				t.Fatalf("GetTimezone() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("GetTimezone() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewFinderIsShared(t *testing.T) {
	a, err := NewFinder()
	if err != nil {
		t.Fatalf("Failed to create finder: %v", err)
	}
	b, err := NewFinder()
	if err != nil {
		t.Fatalf("Failed to create finder: %v", err)
	}
	if a != b {
		t.Errorf("expected the same finder instance")
	}
}
