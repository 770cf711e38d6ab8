package bot

import (
	"context"
	"time"

	"cerberus/internal/domain/session"
	"cerberus/internal/metrics"
	"cerberus/pkg/errors"
	"cerberus/pkg/logger"
)

// Reply texts. Kept verbatim from the legacy bot so existing users see
// no behavior change.
const (
	ReplyUnlocking     = "Unlocking..."
	ReplyUnlocked      = "Door is unlocked!"
	ReplyUnlockFailed  = "Unlock failed!"
	ReplyLogout        = "See you soon!"
	ReplyUnknown       = "Unknown command!"
	ReplyWelcome       = "Password correct! Welcome :-)"
	ReplyWrongPassword = "Wrong password!"
	ReplyEnterPassword = "Please enter the password."
	ReplyNotLoggedIn   = "You are not currently logged in!\nUse /login to start a session."
)

// Recognized commands
const (
	cmdUnlock = "/unlock"
	cmdLogout = "/logout"
	cmdLogin  = "/login"
)

// Messenger delivers reply text back to a chat. Delivery failures are
// not awaited by the dispatcher; implementations log them.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Unlocker triggers the physical unlock and classifies the outcome
type Unlocker interface {
	Unlock(ctx context.Context) bool
}

// Dispatcher authorizes chat commands against the resolved session
// state and executes the resulting action.
//
// Session mutations are persisted before any reply that depends on the
// new state. The one exception is /unlock, where the acknowledgment is
// sent before the actuator call and a second message carries the
// outcome.
type Dispatcher struct {
	resolver *session.Resolver
	store    session.Store
	unlocker Unlocker
	msgr     Messenger
	password string
	log      *logger.Logger
}

// NewDispatcher creates a new command dispatcher
func NewDispatcher(
	resolver *session.Resolver,
	store session.Store,
	unlocker Unlocker,
	msgr Messenger,
	password string,
) *Dispatcher {
	return &Dispatcher{
		resolver: resolver,
		store:    store,
		unlocker: unlocker,
		msgr:     msgr,
		password: password,
		log:      logger.Get().With("component", "dispatcher"),
	}
}

// Handle processes one inbound command for a chat.
//
// Storage failures propagate to the caller so the webhook can answer
// non-OK and the transport layer can retry. Actuator failures never
// propagate; they collapse into the failure reply.
func (d *Dispatcher) Handle(ctx context.Context, chatID int64, text string) error {
	start := time.Now()
	defer func() {
		metrics.CommandDuration.Observe(time.Since(start).Seconds())
	}()

	d.log.Debugw("Handling command", "chat_id", chatID, "text_length", len(text))

	sess, err := d.resolver.Resolve(ctx, chatID)
	if err != nil {
		metrics.CommandsProcessed.WithLabelValues("error").Inc()
		return errors.Wrap(err, "failed to resolve session")
	}

	switch {
	case sess.Status == session.StatusAuthenticated:
		return d.handleAuthenticated(ctx, sess, text)

	case sess.Status == session.StatusPending:
		return d.handlePending(ctx, sess, text)

	default:
		// Defensive fallback: a record with a status outside the enum
		// is treated as logged-out. Unreachable in normal operation
		// since the resolver only ever creates PENDING records.
		return d.handleUnknownStatus(ctx, sess, text)
	}
}

func (d *Dispatcher) handleAuthenticated(ctx context.Context, sess *session.Session, text string) error {
	switch text {
	case cmdUnlock:
		d.send(ctx, sess.ChatID, ReplyUnlocking)

		if d.unlocker.Unlock(ctx) {
			d.send(ctx, sess.ChatID, ReplyUnlocked)
		} else {
			d.send(ctx, sess.ChatID, ReplyUnlockFailed)
		}

		metrics.CommandsProcessed.WithLabelValues("unlock").Inc()
		return nil

	case cmdLogout:
		if err := d.store.Delete(ctx, sess); err != nil {
			metrics.CommandsProcessed.WithLabelValues("error").Inc()
			return errors.Wrap(err, "failed to delete session on logout")
		}

		d.log.Infow("Chat logged out", "chat_id", sess.ChatID)
		d.send(ctx, sess.ChatID, ReplyLogout)
		metrics.CommandsProcessed.WithLabelValues("logout").Inc()
		return nil

	default:
		d.send(ctx, sess.ChatID, ReplyUnknown)
		metrics.CommandsProcessed.WithLabelValues("unknown").Inc()
		return nil
	}
}

func (d *Dispatcher) handlePending(ctx context.Context, sess *session.Session, text string) error {
	if text == d.password {
		sess.Status = session.StatusAuthenticated
		if err := d.store.Upsert(ctx, sess); err != nil {
			metrics.CommandsProcessed.WithLabelValues("error").Inc()
			return errors.Wrap(err, "failed to persist authenticated session")
		}

		d.log.Infow("Chat authenticated", "chat_id", sess.ChatID)
		d.send(ctx, sess.ChatID, ReplyWelcome)
		metrics.CommandsProcessed.WithLabelValues("authenticated").Inc()
		return nil
	}

	// Wrong password logs the chat out entirely; the next message
	// re-creates a fresh PENDING session via the resolver.
	if err := d.store.Delete(ctx, sess); err != nil {
		metrics.CommandsProcessed.WithLabelValues("error").Inc()
		return errors.Wrap(err, "failed to delete session on failed login")
	}

	d.log.Warnw("Wrong password attempt", "chat_id", sess.ChatID)
	d.send(ctx, sess.ChatID, ReplyWrongPassword)
	metrics.CommandsProcessed.WithLabelValues("rejected").Inc()
	return nil
}

func (d *Dispatcher) handleUnknownStatus(ctx context.Context, sess *session.Session, text string) error {
	d.log.Errorw("Session with undefined status",
		"chat_id", sess.ChatID,
		"status", int(sess.Status),
	)

	if text == cmdLogin {
		sess.Status = session.StatusPending
		if err := d.store.Upsert(ctx, sess); err != nil {
			metrics.CommandsProcessed.WithLabelValues("error").Inc()
			return errors.Wrap(err, "failed to re-arm session")
		}

		d.send(ctx, sess.ChatID, ReplyEnterPassword)
		metrics.CommandsProcessed.WithLabelValues("login").Inc()
		return nil
	}

	d.send(ctx, sess.ChatID, ReplyNotLoggedIn)
	metrics.CommandsProcessed.WithLabelValues("unknown").Inc()
	return nil
}

// send delivers a reply without awaiting delivery success; failures are
// logged and never fail the command.
func (d *Dispatcher) send(ctx context.Context, chatID int64, text string) {
	if err := d.msgr.SendMessage(ctx, chatID, text); err != nil {
		d.log.Errorw("Failed to send reply", "chat_id", chatID, "error", err)
	}
}
