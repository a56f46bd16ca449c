// Package notify coordinates notification fan-out: it writes one durable
// record per recipient, resolves device endpoints, partitions them by
// transport family and drives both push transports, feeding permanent
// failures back into the device registry for pruning.
//
// Records always precede push. Push is an acceleration channel on top of
// the feed, so a failed or skipped push never rolls back a record and
// never surfaces to whoever triggered the event. Delivery is best-effort,
// one attempt per recipient per event; the resilience layer may retry a
// single attempt in-call, but nothing is rescheduled afterwards.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pawtrail/pawtrail/internal/device"
	"github.com/pawtrail/pawtrail/internal/notification"
	"github.com/pawtrail/pawtrail/internal/push"
	"github.com/pawtrail/pawtrail/internal/push/expo"
	"github.com/pawtrail/pawtrail/internal/push/fcm"
)

// ExpoSender delivers one payload to a batch of tokens. Satisfied by
// expo.Client.
type ExpoSender interface {
	SendBatch(ctx context.Context, tokens []string, payload push.Payload) ([]push.DeliveryResult, error)
}

// FCMSender delivers one payload to a single token. Satisfied by
// fcm.Client.
type FCMSender interface {
	Send(ctx context.Context, token string, payload push.Payload) (push.DeliveryResult, error)
}

// EndpointRegistry resolves and prunes device endpoints. Satisfied by
// device.Registry.
type EndpointRegistry interface {
	TokensFor(ctx context.Context, userID string) ([]*device.Endpoint, error)
	TokensForMany(ctx context.Context, userIDs []string) ([]*device.Endpoint, error)
	Invalidate(ctx context.Context, token string) error
}

// RecordStore persists notification records. Satisfied by
// notification.Store.
type RecordStore interface {
	Create(ctx context.Context, params notification.CreateParams) (*notification.Notification, error)
}

// TransportObserver receives per-transport call outcomes for the ops
// status endpoint. Satisfied by resilience.Registry.
type TransportObserver interface {
	RecordSuccess(name string)
	RecordFailure(name string, err error)
}

// DeliveryMetrics records push delivery measurements. Satisfied by
// middleware.TransportMetrics.
type DeliveryMetrics interface {
	RecordSend(transport string, duration time.Duration, ok bool)
	RecordPruned(transport string)
}

// Params describes one logical notification to fan out.
type Params struct {
	Type     notification.Type
	Title    string
	Message  string
	Data     map[string]any
	ImageURL *string
	SenderID *string

	// ChannelID and ThreadID shape the push (Android channel, message
	// grouping). They never reach the stored record.
	ChannelID string
	ThreadID  string
}

// OrchestratorConfig holds configuration for creating an Orchestrator.
type OrchestratorConfig struct {
	Records RecordStore
	Devices EndpointRegistry
	Expo    ExpoSender
	FCM     FCMSender
	Logger  zerolog.Logger

	// Health and Metrics are optional observability sinks.
	Health  TransportObserver
	Metrics DeliveryMetrics
}

// Orchestrator is the fan-out coordination point.
type Orchestrator struct {
	records RecordStore
	devices EndpointRegistry
	expo    ExpoSender
	fcm     FCMSender
	logger  zerolog.Logger
	health  TransportObserver
	metrics DeliveryMetrics
}

// NewOrchestrator creates a new fan-out orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	return &Orchestrator{
		records: cfg.Records,
		devices: cfg.Devices,
		expo:    cfg.Expo,
		fcm:     cfg.FCM,
		logger:  cfg.Logger,
		health:  cfg.Health,
		metrics: cfg.Metrics,
	}
}

// NotifyOne records a notification for one user and attempts push to all
// of their endpoints. The record is returned once it exists; push
// failures are logged and never propagate.
func (o *Orchestrator) NotifyOne(ctx context.Context, userID string, params Params) (*notification.Notification, error) {
	record, err := o.records.Create(ctx, notification.CreateParams{
		UserID:   userID,
		Type:     params.Type,
		Title:    params.Title,
		Message:  params.Message,
		Data:     params.Data,
		ImageURL: params.ImageURL,
		SenderID: params.SenderID,
	})
	if err != nil {
		return nil, err
	}

	endpoints, err := o.devices.TokensFor(ctx, userID)
	if err != nil {
		o.logger.Error().Err(err).
			Str("user_id", userID).
			Msg("resolving endpoints failed, record kept without push")
		return record, nil
	}

	o.dispatch(ctx, endpoints, o.payload(params))
	return record, nil
}

// NotifyMany records one notification per recipient, then pushes to the
// union of their endpoints. Record creation runs as independent
// concurrent attempts: one recipient's storage error is logged and skips
// only that recipient's push, the rest proceed. Recipients are not
// deduplicated here; callers union overlapping candidate sets themselves.
func (o *Orchestrator) NotifyMany(ctx context.Context, userIDs []string, params Params) []*notification.Notification {
	if len(userIDs) == 0 {
		return nil
	}

	createParams := notification.CreateParams{
		Type:     params.Type,
		Title:    params.Title,
		Message:  params.Message,
		Data:     params.Data,
		ImageURL: params.ImageURL,
		SenderID: params.SenderID,
	}

	created := make([]*notification.Notification, len(userIDs))
	var wg sync.WaitGroup
	for i, userID := range userIDs {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			p := createParams
			p.UserID = userID
			record, err := o.records.Create(ctx, p)
			if err != nil {
				o.logger.Error().Err(err).
					Str("user_id", userID).
					Str("type", string(params.Type)).
					Msg("creating notification record failed, recipient skipped")
				return
			}
			created[i] = record
		}(i, userID)
	}
	wg.Wait()

	// No record, no push: only successfully recorded recipients are
	// resolved for delivery.
	var records []*notification.Notification
	recorded := make([]string, 0, len(userIDs))
	for _, record := range created {
		if record == nil {
			continue
		}
		records = append(records, record)
		recorded = append(recorded, record.UserID)
	}
	if len(recorded) == 0 {
		return records
	}

	endpoints, err := o.devices.TokensForMany(ctx, recorded)
	if err != nil {
		o.logger.Error().Err(err).
			Int("recipients", len(recorded)).
			Msg("resolving endpoints failed, records kept without push")
		return records
	}

	o.dispatch(ctx, endpoints, o.payload(params))
	return records
}

func (o *Orchestrator) payload(params Params) push.Payload {
	return push.Payload{
		Title:     params.Title,
		Body:      params.Message,
		Data:      params.Data,
		ImageURL:  params.ImageURL,
		ChannelID: params.ChannelID,
		ThreadID:  params.ThreadID,
	}
}

// dispatch partitions endpoints by transport family and drives both
// transports. Transports are isolated from each other: an aborted FCM
// batch never touches Expo delivery and vice versa.
func (o *Orchestrator) dispatch(ctx context.Context, endpoints []*device.Endpoint, payload push.Payload) {
	if len(endpoints) == 0 {
		return
	}

	var expoTokens, fcmTokens []string
	for _, e := range endpoints {
		switch e.Family {
		case device.FamilyExpo:
			expoTokens = append(expoTokens, e.Token)
		default:
			fcmTokens = append(fcmTokens, e.Token)
		}
	}

	o.dispatchExpo(ctx, expoTokens, payload)
	o.dispatchFCM(ctx, fcmTokens, payload)
}

// dispatchExpo sends sequential batches of up to expo.MaxBatchSize. A
// whole-call failure is transient for every token in that batch; later
// batches still run.
func (o *Orchestrator) dispatchExpo(ctx context.Context, tokens []string, payload push.Payload) {
	if o.expo == nil || len(tokens) == 0 {
		return
	}

	for start := 0; start < len(tokens); start += expo.MaxBatchSize {
		end := start + expo.MaxBatchSize
		if end > len(tokens) {
			end = len(tokens)
		}

		callStart := time.Now()
		results, err := o.expo.SendBatch(ctx, tokens[start:end], payload)
		o.observeCall(expo.TransportName, time.Since(callStart), err)
		if err != nil {
			o.logger.Warn().Err(err).
				Int("batch_size", end-start).
				Msg("expo batch failed")
			continue
		}

		o.observe(ctx, expo.TransportName, results)
	}
}

// dispatchFCM sends one call per endpoint in chunks of fcm.MaxChunkSize.
// A credential error aborts every remaining FCM send for this fan-out;
// any other failure only affects its own endpoint.
func (o *Orchestrator) dispatchFCM(ctx context.Context, tokens []string, payload push.Payload) {
	if o.fcm == nil || len(tokens) == 0 {
		return
	}

	for start := 0; start < len(tokens); start += fcm.MaxChunkSize {
		end := start + fcm.MaxChunkSize
		if end > len(tokens) {
			end = len(tokens)
		}

		for _, token := range tokens[start:end] {
			callStart := time.Now()
			result, err := o.fcm.Send(ctx, token, payload)
			o.observeCall(fcm.TransportName, time.Since(callStart), err)
			if err != nil {
				if errors.Is(err, fcm.ErrCredentials) {
					o.logger.Error().Err(err).
						Msg("fcm credentials unavailable, aborting remaining fcm sends")
					return
				}
				o.logger.Warn().Err(err).
					Str("token_last4", device.TokenLast4(token)).
					Msg("fcm send failed")
				continue
			}

			o.observe(ctx, fcm.TransportName, []push.DeliveryResult{result})
		}
	}
}

// observeCall feeds one transport call into the health registry and the
// delivery metrics. Both sinks are optional.
func (o *Orchestrator) observeCall(transport string, duration time.Duration, err error) {
	if o.health != nil {
		if err != nil {
			o.health.RecordFailure(transport, err)
		} else {
			o.health.RecordSuccess(transport)
		}
	}
	if o.metrics != nil {
		o.metrics.RecordSend(transport, duration, err == nil)
	}
}

// observe logs delivery outcomes and prunes endpoints the provider
// confirmed dead.
func (o *Orchestrator) observe(ctx context.Context, transport string, results []push.DeliveryResult) {
	for _, r := range results {
		if r.OK {
			continue
		}

		if !r.PermanentFailure {
			o.logger.Warn().
				Str("transport", transport).
				Str("token_last4", device.TokenLast4(r.Token)).
				Str("detail", r.Raw).
				Msg("push delivery failed")
			continue
		}

		o.logger.Info().
			Str("transport", transport).
			Str("token_last4", device.TokenLast4(r.Token)).
			Msg("endpoint reported dead, pruning")
		if o.metrics != nil {
			o.metrics.RecordPruned(transport)
		}
		if err := o.devices.Invalidate(ctx, r.Token); err != nil {
			o.logger.Error().Err(err).
				Str("token_last4", device.TokenLast4(r.Token)).
				Msg("pruning endpoint failed")
		}
	}
}
