package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
)

// Vehicle is the registration payload sent to the API.
type Vehicle struct {
	VIN   string `json:"vin"`
	Type  string `json:"type"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
}

// Reading is an odometer reading payload.
type Reading struct {
	Mileage     float64 `json:"mileage"`
	ServiceType string  `json:"service_type,omitempty"`
}

// ReadingResponse is the subset of the API's reading result the simulator uses.
type ReadingResponse struct {
	NextServiceMileage *float64 `json:"next_service_mileage"`
	ServiceID          string   `json:"service_id,omitempty"`
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s (%s)", e.Status, e.Message, e.Code)
}

// errBlocked is returned while a vehicle has an open unpaid service.
var errBlocked = errors.New("vehicle has an open unpaid service")

var fleetModels = map[string][]Vehicle{
	"Car": {
		{Make: "Toyota", Model: "Innova"},
		{Make: "Honda", Model: "City"},
		{Make: "Hyundai", Model: "Creta"},
		{Make: "Suzuki", Model: "Swift"},
		{Make: "Tata", Model: "Nexon"},
	},
	"Truck": {
		{Make: "Tata", Model: "Prima"},
		{Make: "AshokLeyland", Model: "Ecomet"},
		{Make: "Eicher", Model: "Pro 3015"},
		{Make: "BharatBenz", Model: "1617R"},
	},
}

var serviceTypes = []string{"Oil Change", "Brake Repair", "Battery Test"}

const vinAlphabet = "ABCDEFGHJKLMNPRSTUVWXYZ0123456789"

func randomVIN(r *rand.Rand) string {
	b := make([]byte, 17)
	for i := range b {
		b[i] = vinAlphabet[r.Intn(len(vinAlphabet))]
	}
	return string(b)
}

func randomVehicle(r *rand.Rand) Vehicle {
	vtype := []string{"Car", "Truck"}[r.Intn(2)]
	options := fleetModels[vtype]
	v := options[r.Intn(len(options))]
	v.VIN = randomVIN(r)
	v.Type = vtype
	v.Year = 2018 + r.Intn(7)
	return v
}

// Client talks to the fleet maintenance API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates an API client for baseURL.
func NewClient(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: 10 * time.Second}}
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Login signs in and keeps the token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.post(ctx, "/auth/login", map[string]string{"email": email, "password": password}, &resp); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return errors.New("login: empty token")
	}
	c.token = resp.Token
	return nil
}

// CreateVehicle registers v.
func (c *Client) CreateVehicle(ctx context.Context, v Vehicle) error {
	if err := c.post(ctx, "/api/vehicles", v, nil); err != nil {
		return fmt.Errorf("create vehicle %s: %w", v.VIN, err)
	}
	log.WithFields(log.Fields{
		"vin":   v.VIN,
		"type":  v.Type,
		"make":  v.Make,
		"model": v.Model,
	}).Info("Created vehicle")
	return nil
}

// PostReading sends an odometer reading for vin.
func (c *Client) PostReading(ctx context.Context, vin string, reading Reading) (*ReadingResponse, error) {
	var resp ReadingResponse
	err := c.post(ctx, "/api/vehicles/"+vin+"/odometer", reading, &resp)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == "OPEN_UNPAID_SERVICE" {
		return nil, errBlocked
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// VehicleState tracks the simulated odometer of one vehicle.
type VehicleState struct {
	Vehicle
	Mileage     float64
	NextService *float64
}

// advance drives the vehicle between 20 and 80 km.
func (s *VehicleState) advance(r *rand.Rand) {
	s.Mileage += 20 + r.Float64()*60
}

// nextReading builds the reading to send. It reports false until the
// vehicle reaches NextService; the API only records due readings.
func (s *VehicleState) nextReading(r *rand.Rand) (Reading, bool) {
	reading := Reading{Mileage: float64(int(s.Mileage))}
	if s.NextService != nil && reading.Mileage < *s.NextService {
		return reading, false
	}
	reading.ServiceType = serviceTypes[r.Intn(len(serviceTypes))]
	return reading, true
}

// tick advances s and reports the reading to the API once it is due.
func tick(ctx context.Context, c *Client, s *VehicleState, r *rand.Rand) {
	s.advance(r)
	reading, due := s.nextReading(r)
	if !due {
		return
	}
	resp, err := c.PostReading(ctx, s.VIN, reading)
	switch {
	case errors.Is(err, errBlocked):
		log.WithField("vin", s.VIN).Debug("Reading skipped, service unpaid")
		return
	case err != nil:
		log.WithError(err).WithField("vin", s.VIN).Error("Failed to send reading")
		return
	}
	s.NextService = resp.NextServiceMileage
	log.WithFields(log.Fields{
		"vin":          s.VIN,
		"mileage":      reading.Mileage,
		"service_id":   resp.ServiceID,
		"service_type": reading.ServiceType,
	}).Info("Service due")
}

func simulateVehicle(ctx context.Context, c *Client, s *VehicleState, interval time.Duration, seed int64) {
	r := rand.New(rand.NewSource(seed))
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			tick(ctx, c, s, r)
		}
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			return n
		}
	}
	return def
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	fleetSize := envInt("FLEET_SIZE", 10)
	interval := time.Duration(envInt("SIM_TICK_SECONDS", 2)) * time.Second
	apiURL := envString("API_BASE_URL", "http://localhost:8080")

	log.WithFields(log.Fields{
		"fleet_size": fleetSize,
		"api_url":    apiURL,
		"interval":   interval,
	}).Info("Starting odometer simulation")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := NewClient(apiURL)
	if token := os.Getenv("SIM_AUTH_TOKEN"); token != "" {
		c.token = token
	} else if err := c.Login(ctx, os.Getenv("SIM_ADMIN_EMAIL"), os.Getenv("SIM_ADMIN_PASSWORD")); err != nil {
		log.WithError(err).Fatal("Failed to sign in")
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	var wg sync.WaitGroup
	for i := 0; i < fleetSize; i++ {
		v := randomVehicle(r)
		if err := c.CreateVehicle(ctx, v); err != nil {
			log.WithError(err).Error("Failed to create vehicle")
			continue
		}
		state := &VehicleState{Vehicle: v, Mileage: float64(500 + r.Intn(5000))}
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			simulateVehicle(ctx, c, state, interval, seed)
		}(r.Int63())
	}

	wg.Wait()
	log.Info("Simulation stopped")
}
