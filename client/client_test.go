// client_test.go
// +build !integration

package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func stubServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})

	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)

		if in["password"] != "swordfish9" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "Unauthorized.",
				"error":  "invalid credentials",
			})

			return
		}

		json.NewEncoder(w).Encode(map[string]string{
			"access":  "access-token",
			"refresh": "refresh-token",
		})
	})

	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-token" {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       1,
			"username": "alice",
		})
	})

	mux.HandleFunc("/api/trips", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":        42,
				"status":    "planned",
				"has_route": true,
			})
		default:
			if r.URL.Query().Get("status") == "planned" {
				json.NewEncoder(w).Encode([]map[string]interface{}{{"id": 42}})

				return
			}

			json.NewEncoder(w).Encode([]map[string]interface{}{})
		}
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return ts
}

func TestClientPing(t *testing.T) {
	ts := stubServer(t)
	c := Client{Addr: ts.URL}

	s, err := c.Ping()
	if err != nil || s != "pong" {
		t.Fatalf("ping: %v %q", err, s)
	}
}

func TestClientLoginInstallsToken(t *testing.T) {
	ts := stubServer(t)
	c := Client{Addr: ts.URL}

	pair, err := c.Login("alice", "swordfish9")
	if err != nil {
		t.Fatal(err)
	}

	if pair.Access != "access-token" || c.Token != "access-token" {
		t.Fatalf("token not installed: %+v", pair)
	}

	u, err := c.Me()
	if err != nil {
		t.Fatal(err)
	}

	if u.Username != "alice" {
		t.Fatalf("me: %+v", u)
	}
}

func TestClientLoginError(t *testing.T) {
	ts := stubServer(t)
	c := Client{Addr: ts.URL}

	_, err := c.Login("alice", "wrong")
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("want *APIError, got %v", err)
	}

	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.ErrorText != "invalid credentials" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
}

func TestClientTrips(t *testing.T) {
	ts := stubServer(t)
	c := Client{Addr: ts.URL, Token: "access-token"}

	trip, err := c.CreateTrip(CreateTripParams{
		PickupCoordinates:  "40.7,-74.0",
		DropoffCoordinates: "39.9,-75.1",
	})
	if err != nil {
		t.Fatal(err)
	}

	if trip.ID != 42 || !trip.HasRoute {
		t.Fatalf("create: %+v", trip)
	}

	planned, err := c.Trips("planned")
	if err != nil || len(planned) != 1 {
		t.Fatalf("trips: %v %d", err, len(planned))
	}

	all, err := c.Trips("")
	if err != nil || len(all) != 0 {
		t.Fatalf("trips: %v %d", err, len(all))
	}
}
