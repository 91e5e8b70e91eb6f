package sensorstream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"AirCast/internal/domain/models"
	drepo "AirCast/internal/domain/repository"
	"AirCast/pkg/logger"
)

// Client implements a SensorStream backed by the monitoring network's
// WebSocket gateway.
type Client struct {
	apiKey         string
	websocketURL   string
	stations       []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *logger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// New creates a sensor gateway stream.
func New(lgr *logger.Logger, apiKey, websocketURL string, stations []string, reconnectDelay, pingInterval time.Duration) drepo.SensorStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		stations:       stations,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            lgr,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("sensor gateway connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	c.log.Info("sensor gateway: connected")
	return nil
}

// Subscribe subscribes to configured stations.
func (c *Client) Subscribe(ctx context.Context) error {
	c.mu.Lock()
	conn, connected := c.conn, c.connected
	c.mu.Unlock()
	if conn == nil || !connected {
		return fmt.Errorf("sensor gateway not connected")
	}
	for _, s := range c.stations {
		msg := map[string]string{"type": "subscribe", "station": s}
		if err := conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", s, err)
		}
		c.log.Info("sensor gateway: subscribed", logger.String("station", s))
	}
	return nil
}

// gateway wire frame: {"type":"reading","data":[...]}
type gwReading struct {
	Area        string  `json:"area"`
	TS          int64   `json:"ts"`
	AQI         float64 `json:"aqi"`
	PM25        float64 `json:"pm25"`
	PM10        float64 `json:"pm10"`
	NO2         float64 `json:"no2"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Pressure    float64 `json:"pressure"`
	WindSpeed   float64 `json:"wind_speed"`
}

type gwMessage struct {
	Type string      `json:"type"`
	Data []gwReading `json:"data"`
}

// Read streams StationReading events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.StationReading, <-chan error) {
	readings := make(chan *models.StationReading, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.mu.Lock()
				conn := c.conn
				c.mu.Unlock()
				if conn != nil {
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(readings)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				c.mu.Lock()
				conn := c.conn
				c.mu.Unlock()
				if conn == nil {
					errs <- fmt.Errorf("sensor gateway conn nil")
					return
				}
				_, b, err := conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("sensor gateway read: %w", err)
					return
				}
				var m gwMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-reading frames
					continue
				}
				if m.Type != "reading" {
					continue
				}
				for _, d := range m.Data {
					r := &models.StationReading{
						Area:        d.Area,
						Timestamp:   d.TS,
						AQI:         d.AQI,
						PM25:        d.PM25,
						PM10:        d.PM10,
						NO2:         d.NO2,
						Temperature: d.Temperature,
						Humidity:    d.Humidity,
						Pressure:    d.Pressure,
						WindSpeed:   d.WindSpeed,
					}
					select {
					case readings <- r:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return readings, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}
