// client_integration_test.go
// +build integration

package client

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

var c = Client{
	Addr:   "http://localhost:8000",
	Client: http.Client{},
}

func TestPing(t *testing.T) {
	if s, err := c.Ping(); err != nil || s != "pong" {
		t.Fail()
	}
}

func TestTripFlow(t *testing.T) {
	name := fmt.Sprintf("it-%d", time.Now().UnixNano())

	_, err := c.Register(RegisterParams{
		Username: name,
		Email:    name + "@example.com",
		Password: "swordfish9",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Login(name, "swordfish9"); err != nil {
		t.Fatal(err)
	}

	trip, err := c.CreateTrip(CreateTripParams{
		Title:              "integration trip",
		PickupLocation:     "New York, NY",
		PickupCoordinates:  "40.7128,-74.0060",
		DropoffLocation:    "Philadelphia, PA",
		DropoffCoordinates: "39.9526,-75.1652",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.StartTrip(trip.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := c.HOSStatus(); err != nil {
		t.Fatal(err)
	}
}
