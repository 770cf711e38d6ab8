package lock

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cerberus/internal/adapters/config"
	"cerberus/internal/metrics"
	"cerberus/pkg/logger"
)

// Controller issues unlock requests to the physical lock controller.
//
// The controller speaks plain HTTP and authenticates with a key in the
// query string. That protocol predates this service and is preserved
// as-is for compatibility; see DESIGN.md for the flag.
type Controller struct {
	host    string
	port    int
	authKey string
	client  *http.Client
	log     *logger.Logger
}

// NewController creates a lock controller client with a bounded timeout
func NewController(cfg config.LockConfig) *Controller {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Controller{
		host:    cfg.Host,
		port:    cfg.Port,
		authKey: cfg.AuthKey,
		client:  &http.Client{Timeout: timeout},
		log:     logger.Get().With("component", "lock_controller"),
	}
}

// Unlock sends the unlock command and reports whether it succeeded.
//
// Exactly HTTP 200 counts as success. Every other status and every
// transport failure (timeout, refused connection, DNS) collapses to
// false; the cause is logged for operators only.
func (c *Controller) Unlock(ctx context.Context) bool {
	endpoint := c.unlockURL()

	c.log.Debugw("Sending unlock request", "host", c.host, "port", c.port)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.log.Errorw("Failed to build unlock request", "error", err)
		metrics.UnlockAttempts.WithLabelValues("failure").Inc()
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Errorw("Unlock request failed", "error", err)
		metrics.UnlockAttempts.WithLabelValues("failure").Inc()
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warnw("Lock controller rejected unlock", "status", resp.StatusCode)
		metrics.UnlockAttempts.WithLabelValues("failure").Inc()
		return false
	}

	c.log.Infow("Unlock successful")
	metrics.UnlockAttempts.WithLabelValues("success").Inc()
	return true
}

func (c *Controller) unlockURL() string {
	return fmt.Sprintf("http://%s/unlock?code=%s",
		net.JoinHostPort(c.host, strconv.Itoa(c.port)),
		url.QueryEscape(c.authKey),
	)
}
