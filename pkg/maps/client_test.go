package maps

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestClientDrivingRouteRequest(t *testing.T) {
	const expectedURL = "http://routes.test/directions/v2:computeRoutes"
	respBody := `{"routes":[{"distanceMeters":40234,"duration":"1800s"}]}`

	var capturedURL string
	var capturedHeaders http.Header

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedHeaders = req.Header.Clone()

		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		var payload map[string]any
		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		if payload["travelMode"] != "DRIVE" {
			t.Fatalf("unexpected travel mode %v", payload["travelMode"])
		}

		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("test-key",
		WithRoutesBaseURL("http://routes.test"),
		WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	route, err := client.DrivingRoute(context.Background(),
		LatLng{Latitude: 42.33, Longitude: -83.05},
		LatLng{Latitude: 42.28, Longitude: -83.39})
	if err != nil {
		t.Fatalf("driving route: %v", err)
	}
	if capturedURL != expectedURL {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if capturedHeaders.Get("X-Goog-Api-Key") != "test-key" {
		t.Fatalf("api key header missing")
	}
	if capturedHeaders.Get("X-Goog-FieldMask") != routeFieldMask {
		t.Fatalf("unexpected field mask %q", capturedHeaders.Get("X-Goog-FieldMask"))
	}
	// 40234 meters is 25 miles.
	if math.Abs(route.Miles-25) > 0.01 {
		t.Fatalf("unexpected miles %.4f", route.Miles)
	}
	if route.Duration != 30*time.Minute {
		t.Fatalf("unexpected duration %s", route.Duration)
	}
}

func TestClientDrivingRouteNoRoutes(t *testing.T) {
	rt := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"routes":[]}`)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("test-key", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.DrivingRoute(context.Background(),
		LatLng{Latitude: 42.33, Longitude: -83.05},
		LatLng{Latitude: 42.28, Longitude: -83.39})
	if err == nil {
		t.Fatal("expected error for empty route list")
	}
}

func TestClientDrivingRouteRequiresCoordinates(t *testing.T) {
	client, err := NewClient("test-key")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.DrivingRoute(context.Background(), LatLng{}, LatLng{Latitude: 42, Longitude: -83})
	if err == nil {
		t.Fatal("expected validation error for missing origin")
	}
}

func TestClientGeocodeRequest(t *testing.T) {
	const expectedURL = "http://places.test/v1/places:searchText"
	respBody := `{"places":[{"formattedAddress":"123 Demo St, Livonia, MI 48150","location":{"latitude":42.36,"longitude":-83.37}}]}`

	var capturedURL string
	var capturedHeaders http.Header

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedHeaders = req.Header.Clone()

		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		var payload map[string]any
		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		if payload["textQuery"] != "123 Demo St, Livonia MI" {
			t.Fatalf("unexpected query %v", payload["textQuery"])
		}

		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("test-key",
		WithPlacesBaseURL("http://places.test/v1"),
		WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	geo, err := client.Geocode(context.Background(), "123 Demo St, Livonia MI")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if capturedURL != expectedURL {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if capturedHeaders.Get("X-Goog-FieldMask") != geocodeFieldMask {
		t.Fatalf("unexpected field mask %q", capturedHeaders.Get("X-Goog-FieldMask"))
	}
	if geo.Location.Latitude != 42.36 || geo.Location.Longitude != -83.37 {
		t.Fatalf("unexpected location %+v", geo.Location)
	}
	if geo.FormattedAddress == "" {
		t.Fatal("expected formatted address")
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient("   "); err == nil {
		t.Fatal("expected error for blank api key")
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
