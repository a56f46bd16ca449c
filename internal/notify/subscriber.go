package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pawtrail/pawtrail/internal/events"
	"github.com/pawtrail/pawtrail/internal/geo"
	"github.com/pawtrail/pawtrail/internal/notification"
	"github.com/pawtrail/pawtrail/internal/user"
)

// UserDirectory lists radius-targetable users. Satisfied by user.Service.
type UserDirectory interface {
	ListGeotargetable(ctx context.Context) ([]*user.User, error)
}

// PresenceOracle answers whether a user is actively viewing a chat room.
// Satisfied by presence.Registry.
type PresenceOracle interface {
	IsViewingRoom(userID, roomID string) bool
}

// Notification channels, matching the mobile client's Android channel set.
const (
	channelAlerts   = "alerts"
	channelMessages = "messages"
	channelSocial   = "social"
)

// Subscriber translates domain events into fan-out calls. It runs on the
// event bus dispatcher, which keeps fan-out out of the request path and
// behind the bus's panic boundary.
type Subscriber struct {
	orchestrator *Orchestrator
	users        UserDirectory
	presence     PresenceOracle
	logger       zerolog.Logger
}

// NewSubscriber creates a new fan-out subscriber.
func NewSubscriber(orchestrator *Orchestrator, users UserDirectory, presence PresenceOracle, logger zerolog.Logger) *Subscriber {
	return &Subscriber{
		orchestrator: orchestrator,
		users:        users,
		presence:     presence,
		logger:       logger,
	}
}

// HandleEvent routes one domain event. Registered with events.Bus.
func (s *Subscriber) HandleEvent(ctx context.Context, event events.Event) {
	switch e := event.(type) {
	case events.AlertCreated:
		s.handleAlertCreated(ctx, e)
	case events.ClaimStatusChanged:
		s.handleClaimStatusChanged(ctx, e)
	case events.ChatMessageSent:
		s.handleChatMessageSent(ctx, e)
	case events.UserFollowed:
		s.handleUserFollowed(ctx, e)
	}
}

// handleAlertCreated fans a lost/found report out to users within the
// report's radius. Users without coordinates cannot be evaluated and are
// skipped; a report without coordinates targets nobody. The reporter
// never notifies themselves.
func (s *Subscriber) handleAlertCreated(ctx context.Context, e events.AlertCreated) {
	if e.Origin == nil {
		s.logger.Debug().
			Str("alert_id", e.AlertID).
			Msg("alert has no coordinates, skipping radius fan-out")
		return
	}

	candidates, err := s.users.ListGeotargetable(ctx)
	if err != nil {
		s.logger.Error().Err(err).
			Str("alert_id", e.AlertID).
			Msg("listing targetable users failed")
		return
	}

	matched := geo.FilterWithinRadius(*e.Origin, candidates, e.RadiusKm)

	recipients := make([]string, 0, len(matched))
	for _, u := range matched {
		if u.ID == e.ReporterID {
			continue
		}
		recipients = append(recipients, u.ID)
	}
	if len(recipients) == 0 {
		s.logger.Debug().
			Str("alert_id", e.AlertID).
			Msg("no users in radius")
		return
	}

	notifType := notification.TypeLostPetNearby
	title := "Lost pet near you"
	message := fmt.Sprintf("A %s was reported lost in your area", e.Species)
	if e.AlertType == "found" {
		notifType = notification.TypeFoundPetNearby
		title = "Found pet near you"
		message = fmt.Sprintf("A %s was found in your area", e.Species)
	}
	if e.PetName != "" {
		message = fmt.Sprintf("%s (%s)", message, e.PetName)
	}

	s.logger.Info().
		Str("alert_id", e.AlertID).
		Int("recipients", len(recipients)).
		Float64("radius_km", e.RadiusKm).
		Msg("fanning out alert")

	s.orchestrator.NotifyMany(ctx, recipients, Params{
		Type:    notifType,
		Title:   title,
		Message: message,
		Data: map[string]any{
			"alert_id":   e.AlertID,
			"alert_type": e.AlertType,
			"species":    e.Species,
		},
		ImageURL:  e.PhotoURL,
		SenderID:  &e.ReporterID,
		ChannelID: channelAlerts,
	})
}

// handleClaimStatusChanged notifies the alert reporter of a new claim and
// the claimant of a decision.
func (s *Subscriber) handleClaimStatusChanged(ctx context.Context, e events.ClaimStatusChanged) {
	petName := e.PetName
	if petName == "" {
		petName = "your pet"
	}

	var recipientID, senderID, title, message string
	switch e.Status {
	case "pending":
		recipientID = e.OwnerID
		senderID = e.ClaimantID
		title = "New claim on your report"
		message = fmt.Sprintf("Someone says %s is theirs", petName)
	case "accepted":
		recipientID = e.ClaimantID
		senderID = e.OwnerID
		title = "Claim accepted"
		message = fmt.Sprintf("Your claim for %s was accepted", petName)
	case "rejected":
		recipientID = e.ClaimantID
		senderID = e.OwnerID
		title = "Claim update"
		message = fmt.Sprintf("Your claim for %s was not accepted", petName)
	default:
		return
	}

	if _, err := s.orchestrator.NotifyOne(ctx, recipientID, Params{
		Type:    notification.TypeClaimUpdate,
		Title:   title,
		Message: message,
		Data: map[string]any{
			"claim_id": e.ClaimID,
			"alert_id": e.AlertID,
			"status":   e.Status,
		},
		SenderID:  &senderID,
		ChannelID: channelAlerts,
	}); err != nil {
		s.logger.Error().Err(err).
			Str("claim_id", e.ClaimID).
			Msg("recording claim notification failed")
	}
}

// handleChatMessageSent pushes a chat message unless the recipient is
// already viewing the room, in which case the realtime channel delivers
// it and a push would be a duplicate.
func (s *Subscriber) handleChatMessageSent(ctx context.Context, e events.ChatMessageSent) {
	if s.presence != nil && s.presence.IsViewingRoom(e.RecipientID, e.RoomID) {
		s.logger.Debug().
			Str("room_id", e.RoomID).
			Str("recipient_id", e.RecipientID).
			Msg("recipient viewing room, suppressing push")
		return
	}

	if _, err := s.orchestrator.NotifyOne(ctx, e.RecipientID, Params{
		Type:    notification.TypeChatMessage,
		Title:   e.SenderName,
		Message: e.Preview,
		Data: map[string]any{
			"room_id":   e.RoomID,
			"sender_id": e.SenderID,
		},
		SenderID:  &e.SenderID,
		ChannelID: channelMessages,
		ThreadID:  e.RoomID,
	}); err != nil {
		s.logger.Error().Err(err).
			Str("room_id", e.RoomID).
			Msg("recording chat notification failed")
	}
}

func (s *Subscriber) handleUserFollowed(ctx context.Context, e events.UserFollowed) {
	followerName := e.FollowerName
	if followerName == "" {
		followerName = "Someone"
	}

	if _, err := s.orchestrator.NotifyOne(ctx, e.FolloweeID, Params{
		Type:    notification.TypeNewFollower,
		Title:   "New follower",
		Message: fmt.Sprintf("%s started following you", followerName),
		Data: map[string]any{
			"follower_id": e.FollowerID,
		},
		SenderID:  &e.FollowerID,
		ChannelID: channelSocial,
	}); err != nil {
		s.logger.Error().Err(err).
			Str("followee_id", e.FolloweeID).
			Msg("recording follow notification failed")
	}
}
