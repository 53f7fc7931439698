package amqp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/pkg/config"
	"github.com/SoundFoodPhygital/menu-server-demo/pkg/logger"
	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	ErrClosed       = errors.New("publisher closed")
	ErrNotConnected = errors.New("broker not connected")
)

const (
	defaultDialTimeout = 2 * time.Second
	minBackoff         = 500 * time.Millisecond
	maxBackoff         = 30 * time.Second
)

// Publisher sends menu change events to a durable queue. Connecting and
// reconnecting happen in a background loop, Publish never dials.
type Publisher struct {
	url         string
	queue       string
	dialTimeout time.Duration
	lg          logger.Logger

	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed bool

	stop chan struct{}
	done chan struct{}
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.MenuEvent) error { return nil }

func (NopPublisher) Close() error { return nil }

type EventPublisher interface {
	Publish(context.Context, models.MenuEvent) error
	Close() error
}

// New returns a no-op publisher when no URL is configured. Otherwise the
// broker is dialed in the background and events published while it is
// unreachable fail with ErrNotConnected.
func New(cfg config.Events, lg logger.Logger) EventPublisher {
	if cfg.URL == "" {
		lg.Info("events disabled, no amqp url")

		return NopPublisher{}
	}

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}

	p := &Publisher{
		url:         cfg.URL,
		queue:       cfg.Queue,
		dialTimeout: dialTimeout,
		lg:          lg,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}

	go p.run()

	return p
}

func (p *Publisher) run() {
	defer close(p.done)

	backoff := minBackoff

	for {
		select {
		case <-p.stop:
			return
		default:
		}

		lost, err := p.connect()
		if err != nil {
			p.lg.Warnf("amqp connect error: %s, retry in %s", err.Error(), backoff)

			select {
			case <-p.stop:
				return
			case <-time.After(backoff):
			}

			backoff = min(backoff*2, maxBackoff) //nolint:gomnd

			continue
		}

		backoff = minBackoff

		select {
		case <-p.stop:
			return
		case amqpErr := <-lost:
			if amqpErr != nil {
				p.lg.Warnf("amqp connection lost: %s", amqpErr.Error())
			}

			p.mu.Lock()
			p.release()
			p.mu.Unlock()
		}
	}
}

// connect dials the broker and installs the new channel. The returned
// channel fires when the connection goes away.
func (p *Publisher) connect() (<-chan *amqp.Error, error) {
	conn, err := amqp.DialConfig(p.url, amqp.Config{ //nolint:exhaustruct
		Dial: amqp.DefaultDial(p.dialTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("dial error: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("channel error: %w", err)
	}

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("queue declare error: %w", err)
	}

	lost := conn.NotifyClose(make(chan *amqp.Error, 1))

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		_ = conn.Close()

		return nil, ErrClosed
	}

	p.conn = conn
	p.ch = ch

	p.lg.Infof("amqp connected, queue %s", p.queue)

	return lost, nil
}

func (p *Publisher) Publish(ctx context.Context, ev models.MenuEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	if p.ch == nil || p.ch.IsClosed() {
		return ErrNotConnected
	}

	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{ //nolint:exhaustruct
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         string(ev.Type),
		Body:         body,
	})
	if err != nil {
		// closing the connection wakes the loop, which dials again
		p.release()

		return fmt.Errorf("publish error: %w", err)
	}

	p.lg.Debugf("published %s for menu %d", ev.Type, ev.MenuID)

	return nil
}

// release must be called with p.mu held.
func (p *Publisher) release() {
	p.ch = nil

	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close stops the reconnect loop and closes the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()

	if p.closed {
		p.mu.Unlock()

		return nil
	}

	p.closed = true
	close(p.stop)

	var err error
	if p.conn != nil {
		err = p.conn.Close()
		p.conn = nil
		p.ch = nil
	}

	p.mu.Unlock()

	<-p.done

	if err != nil && !errors.Is(err, amqp.ErrClosed) {
		return fmt.Errorf("close error: %w", err)
	}

	return nil
}
