// Package geocode wraps the reverse-geocoding web API. Geocoding is
// best-effort everywhere it is used: callers treat any error as "no location
// details" and never block alert creation on it.
package geocode

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/alerta-api/internal/config"
)

// Resolved is the location detail extracted from a geocoder response.
type Resolved struct {
	FormattedAddress string
	City             string
	District         string
	State            string
	Country          string
}

// Client resolves coordinates to address details.
type Client interface {
	Reverse(ctx context.Context, lat, lng float64) (*Resolved, error)
}

type response struct {
	Results []struct {
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName  string   `json:"long_name"`
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
	Status string `json:"status"`
}

type client struct {
	http   *resty.Client
	apiKey string
}

func NewClient(cfg *config.Config) Client {
	return &client{
		http: resty.New().
			SetBaseURL(cfg.GeocodeBaseURL).
			SetTimeout(10 * time.Second).
			SetHeader("Accept", "application/json"),
		apiKey: cfg.GeocodeAPIKey,
	}
}

// Reverse calls the geocoder and extracts locality, district
// (administrative_area_level_2), state (administrative_area_level_1) and
// country from the first result. When the state's short name is "CABA"
// (Buenos Aires city reports no level-2 area) the district is taken from the
// state's long name instead.
func (c *client) Reverse(ctx context.Context, lat, lng float64) (*Resolved, error) {
	var body response
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("latlng", fmt.Sprintf("%f,%f", lat, lng)).
		SetQueryParam("key", c.apiKey).
		SetResult(&body).
		Get("")
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("geocode status %d", resp.StatusCode())
	}
	if len(body.Results) == 0 {
		return nil, nil
	}

	first := body.Results[0]
	r := &Resolved{FormattedAddress: first.FormattedAddress}
	var stateShort string
	for _, comp := range first.AddressComponents {
		for _, t := range comp.Types {
			switch t {
			case "locality":
				r.City = comp.LongName
			case "administrative_area_level_2":
				r.District = comp.LongName
			case "administrative_area_level_1":
				r.State = comp.LongName
				stateShort = comp.ShortName
			case "country":
				r.Country = comp.LongName
			}
		}
	}
	if stateShort == "CABA" {
		r.District = r.State
	}
	return r, nil
}
