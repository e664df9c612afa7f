package mqtt

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/vitalvas/mqttv5"

	"github.com/nerrad567/dab-broker/internal/dab"
	"github.com/nerrad567/dab-broker/internal/infrastructure/logging"
	"github.com/nerrad567/dab-broker/internal/jsonvalue"
)

const (
	maxPacketSize      = 256 * 1024
	fallbackReplyTopic = "dab/response"
	pendingQueueDepth  = 64
	defaultDialTimeout = 10 * time.Second
	subscribeQoS       = 1
	tlsMinVersion      = tls.VersionTLS12
)

// Session is a single MQTT v5 connection dedicated to running the DAB
// request/reply loop for one broker-side process. It owns the connection
// for its entire lifetime: one read-loop goroutine decodes inbound
// PUBLISHes and hands them to a bounded channel, and a single worker
// goroutine drains that channel, dispatches each request, and writes the
// reply back. Replies, unsolicited Publish calls and keep-alive pings all
// take writeMu, so writes to the wire are never interleaved by two
// goroutines racing each other.
type Session struct {
	conn       net.Conn
	dispatcher *dab.Dispatcher
	logger     *logging.Logger

	clientID       string
	keepAlive      time.Duration
	drainTimeout   time.Duration
	publishTimeout time.Duration

	writeMu sync.Mutex

	pending chan *mqttv5.PublishPacket

	connMu    sync.RWMutex
	connected bool

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewSession constructs a Session bound to dispatcher. Connect must be
// called before the session does any useful work.
func NewSession(dispatcher *dab.Dispatcher, logger *logging.Logger, keepAlive, drainTimeout, publishTimeout time.Duration) *Session {
	return &Session{
		dispatcher:     dispatcher,
		logger:         logger,
		keepAlive:      keepAlive,
		drainTimeout:   drainTimeout,
		publishTimeout: publishTimeout,
		pending:        make(chan *mqttv5.PublishPacket, pendingQueueDepth),
		done:           make(chan struct{}),
	}
}

// Connect dials brokerURI (tcp://host:port or tls://host:port), performs
// the CONNECT/CONNACK handshake as clientID, subscribes to every topic at
// QoS 1, and starts the read loop and dispatch worker. It returns once the
// broker has acknowledged every subscription.
func (s *Session) Connect(ctx context.Context, brokerURI, clientID string, topics []string) error {
	conn, err := dialBroker(ctx, brokerURI)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	s.conn = conn
	s.clientID = clientID

	connect := &mqttv5.ConnectPacket{
		ClientID:   clientID,
		CleanStart: true,
		KeepAlive:  uint16(s.keepAlive / time.Second),
	}
	if _, err := mqttv5.WritePacket(conn, connect, maxPacketSize); err != nil {
		conn.Close()
		return fmt.Errorf("%w: writing CONNECT: %w", ErrConnectionFailed, err)
	}

	pkt, _, err := mqttv5.ReadPacket(conn, maxPacketSize)
	if err != nil {
		conn.Close()
		return fmt.Errorf("%w: reading CONNACK: %w", ErrConnectionFailed, err)
	}
	connack, ok := pkt.(*mqttv5.ConnackPacket)
	if !ok {
		conn.Close()
		return fmt.Errorf("%w: expected CONNACK, got %T", ErrConnectionFailed, pkt)
	}
	if connack.ReasonCode != mqttv5.ReasonSuccess {
		conn.Close()
		return fmt.Errorf("%w: broker refused connection: %s", ErrConnectionFailed, connack.ReasonCode.String())
	}

	if err := s.subscribe(topics); err != nil {
		conn.Close()
		return err
	}

	s.connMu.Lock()
	s.connected = true
	s.connMu.Unlock()

	s.wg.Add(2)
	go s.readLoop()
	go s.worker()

	if s.keepAlive > 0 {
		s.wg.Add(1)
		go s.pingLoop()
	}

	return nil
}

func dialBroker(ctx context.Context, brokerURI string) (net.Conn, error) {
	u, err := url.Parse(brokerURI)
	if err != nil {
		return nil, fmt.Errorf("parsing broker URI: %w", err)
	}

	dialCtx, cancel := context.WithTimeout(ctx, defaultDialTimeout)
	defer cancel()

	dialer := &net.Dialer{}
	switch u.Scheme {
	case "tcp", "mqtt", "":
		return dialer.DialContext(dialCtx, "tcp", u.Host)
	case "tls", "mqtts", "ssl":
		rawConn, err := dialer.DialContext(dialCtx, "tcp", u.Host)
		if err != nil {
			return nil, err
		}
		tlsConn := tls.Client(rawConn, &tls.Config{MinVersion: tlsMinVersion, ServerName: u.Hostname()})
		if err := tlsConn.HandshakeContext(dialCtx); err != nil {
			rawConn.Close()
			return nil, err
		}
		return tlsConn, nil
	default:
		return nil, fmt.Errorf("unsupported broker scheme %q", u.Scheme)
	}
}

func (s *Session) subscribe(topics []string) error {
	subs := make([]mqttv5.Subscription, len(topics))
	for i, t := range topics {
		subs[i] = mqttv5.Subscription{TopicFilter: t, QoS: subscribeQoS}
	}

	packet := &mqttv5.SubscribePacket{PacketID: 1, Subscriptions: subs}
	if _, err := mqttv5.WritePacket(s.conn, packet, maxPacketSize); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	pkt, _, err := mqttv5.ReadPacket(s.conn, maxPacketSize)
	if err != nil {
		return fmt.Errorf("%w: reading SUBACK: %w", ErrSubscribeFailed, err)
	}
	suback, ok := pkt.(*mqttv5.SubackPacket)
	if !ok {
		return fmt.Errorf("%w: expected SUBACK, got %T", ErrSubscribeFailed, pkt)
	}
	for i, rc := range suback.ReasonCodes {
		if byte(rc) > 1 {
			return fmt.Errorf("%w: topic %q refused with reason %s", ErrSubscribeFailed, topics[i], rc.String())
		}
	}
	return nil
}

// readLoop owns the read half of the connection for the session's entire
// life. It never writes to s.conn; writes are serialized through writeMu
// by the worker goroutine and Publish.
func (s *Session) readLoop() {
	defer s.wg.Done()
	defer s.markDisconnected()
	defer close(s.pending)

	for {
		pkt, _, err := mqttv5.ReadPacket(s.conn, maxPacketSize)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("mqtt read loop exiting", "error", err)
			}
			return
		}

		switch p := pkt.(type) {
		case *mqttv5.PublishPacket:
			s.pending <- p
		case *mqttv5.PingrespPacket:
			// nothing to do; keep-alive confirmed
		case *mqttv5.DisconnectPacket:
			if s.logger != nil {
				s.logger.Info("broker sent DISCONNECT", "reason", p.ReasonCode.String())
			}
			return
		default:
			// PUBACK/SUBACK outside the handshake, AUTH, etc. are not
			// part of the DAB request/reply contract and are ignored.
		}
	}
}

// worker drains s.pending, one message at a time, and is the sole writer
// of request replies. Unsolicited Publish() calls from device instances
// share writeMu with this goroutine so a reply and a telemetry publish
// never interleave their bytes on the wire.
func (s *Session) worker() {
	defer s.wg.Done()

	for pub := range s.pending {
		s.handlePublish(pub)
	}
}

func (s *Session) handlePublish(pub *mqttv5.PublishPacket) {
	payload, err := jsonvalue.Parse(pub.Payload)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("dropping malformed DAB request", "topic", pub.Topic, "error", err)
		}
		return
	}

	req := dab.RequestEnvelope{Topic: pub.Topic, Payload: payload}
	if pub.Properties != nil {
		req.ResponseTopic = pub.Properties.ResponseTopic
		req.CorrelationData = pub.Properties.CorrelationData
	}

	reply := s.dispatcher.Dispatch(req)

	replyTopic := req.ResponseTopic
	if replyTopic == "" {
		replyTopic = fallbackReplyTopic
	}

	if err := s.publish(replyTopic, reply, req.CorrelationData); err != nil && s.logger != nil {
		s.logger.Error("failed to publish DAB reply", "topic", replyTopic, "error", err)
	}
}

// Publish is the dab.Publisher callback a Registry hands to every
// instance, used for unsolicited telemetry rather than request replies.
func (s *Session) Publish(topic string, payload jsonvalue.Value) {
	if err := s.publish(topic, payload, nil); err != nil && s.logger != nil {
		s.logger.Error("failed to publish telemetry", "topic", topic, "error", err)
	}
}

func (s *Session) publish(topic string, payload jsonvalue.Value, correlationData []byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	body, err := jsonvalue.Serialize(payload, true)
	if err != nil {
		return fmt.Errorf("%w: encoding payload: %w", ErrPublishFailed, err)
	}

	packet := &mqttv5.PublishPacket{
		Topic:   topic,
		QoS:     0,
		Payload: []byte(body),
	}
	if len(correlationData) > 0 {
		packet.Properties = &mqttv5.Properties{CorrelationData: correlationData}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if !s.IsConnected() {
		return ErrNotConnected
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.publishTimeout))
	defer s.conn.SetWriteDeadline(time.Time{})
	if _, err := mqttv5.WritePacket(s.conn, packet, maxPacketSize); err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

func (s *Session) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			_, err := mqttv5.WritePacket(s.conn, &mqttv5.PingreqPacket{}, maxPacketSize)
			s.writeMu.Unlock()
			if err != nil {
				if s.logger != nil {
					s.logger.Warn("ping failed", "error", err)
				}
				return
			}
		}
	}
}

// IsConnected reports whether the session currently believes it has a live
// connection. It does not perform an active probe.
func (s *Session) IsConnected() bool {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	return s.connected
}

func (s *Session) markDisconnected() {
	s.connMu.Lock()
	s.connected = false
	s.connMu.Unlock()
	s.closeOnce.Do(func() { close(s.done) })
}

// Disconnect sends a graceful MQTT DISCONNECT, closes the connection, and
// waits up to drainTimeout for in-flight dispatch work to finish before
// returning.
func (s *Session) Disconnect() error {
	if !s.IsConnected() {
		return nil
	}

	s.writeMu.Lock()
	mqttv5.WritePacket(s.conn, &mqttv5.DisconnectPacket{ReasonCode: mqttv5.ReasonSuccess}, maxPacketSize)
	s.writeMu.Unlock()

	s.conn.Close()
	s.markDisconnected()

	drained := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-time.After(s.drainTimeout):
		if s.logger != nil {
			s.logger.Warn("mqtt disconnect drain timed out", "timeout", s.drainTimeout)
		}
	}
	return nil
}

// Wait blocks until the session's connection is lost or Disconnect is
// called, whichever happens first.
func (s *Session) Wait() {
	<-s.done
}
