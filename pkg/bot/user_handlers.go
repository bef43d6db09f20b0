package bot

import (
	"context"
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v3"

	"anonbot/pkg/logger"
	"anonbot/pkg/models"
	"anonbot/service"
)

func (b *Bot) handleStart(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()

	user, created, err := b.svc.User().Register(ctx, sender.ID, sender.Username, senderName(sender))
	if err != nil {
		b.log.Error("register user", logger.Int64("user_id", sender.ID), logger.Error(err))
		return c.Send(messages["generic_error"])
	}
	if created {
		b.notifyAdmins(ctx, user)
	}

	b.sessions.Clear(sender.ID)

	payload := c.Message().Payload
	if payload != "" {
		target, err := b.svc.User().FindByToken(ctx, payload)
		if errors.Is(err, service.ErrRecipientNotFound) {
			_ = c.Send(messages["bad_link"])
			return b.sendWelcome(c, user)
		}
		if err != nil {
			b.log.Error("resolve token", logger.Error(err))
			return c.Send(messages["generic_error"])
		}
		if target.UserID == sender.ID {
			return b.sendWelcome(c, user)
		}

		b.sessions.Set(sender.ID, Session{State: StateAwaitingMessage, TargetID: target.UserID})
		return c.Send(messages["write_message"])
	}

	return b.sendWelcome(c, user)
}

func (b *Bot) sendWelcome(c tele.Context, user *models.User) error {
	link := b.link(user.LinkToken)

	markup := &tele.ReplyMarkup{}
	share := markup.URL(messages["share_button"], "https://t.me/share/url?url="+link)
	markup.Inline(markup.Row(share))

	return c.Send(fmt.Sprintf(messages["welcome"], user.Name, link), markup)
}

func (b *Bot) handleHelp(c tele.Context) error {
	ctx := context.Background()

	isAdmin, err := b.svc.User().IsAdmin(ctx, c.Sender().ID)
	if err != nil {
		b.log.Error("admin check", logger.Error(err))
	}
	if isAdmin {
		_ = c.Send(messages["help_admin"])
	}
	return c.Send(messages["help_user"])
}

func (b *Bot) handleInfo(c tele.Context) error {
	return c.Send(fmt.Sprintf(messages["info"], b.cfg.AdminURL))
}

type route int

const (
	routeIdle route = iota
	routePending
	routeChat
	routeReply
)

// routeFor decides where a non-command message goes. An active live chat
// takes priority over Telegram's reply mechanics: while connected, every
// message belongs to the chat, replies included.
func routeFor(sess Session, partner int64, isReply bool) route {
	switch {
	case sess.State == StateAwaitingMessage:
		return routePending
	case partner != 0:
		return routeChat
	case isReply:
		return routeReply
	}
	return routeIdle
}

// handleIncoming routes any non-command message. Admin prompt states take
// priority, then a pending anonymous send, then the live chat, then a
// reply to a relayed message.
func (b *Bot) handleIncoming(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	m := c.Message()

	if _, _, err := b.svc.User().Register(ctx, sender.ID, sender.Username, senderName(sender)); err != nil {
		b.log.Error("register user", logger.Int64("user_id", sender.ID), logger.Error(err))
	}

	sess := b.sessions.Get(sender.ID)
	if isAdminInputState(sess.State) {
		return b.handleAdminInput(c, sess)
	}

	var partner int64
	if sess.State != StateAwaitingMessage {
		var err error
		partner, err = b.svc.Chat().PartnerOf(ctx, sender.ID)
		if err != nil {
			b.log.Error("lookup partner", logger.Error(err))
			return c.Send(messages["generic_error"])
		}
	}

	switch routeFor(sess, partner, m.ReplyTo != nil) {
	case routePending:
		content, ok := extractContent(m)
		if !ok {
			return c.Send(messages["unsupported"])
		}
		if err := b.svc.Relay().Relay(ctx, sender.ID, sess.TargetID, content); err != nil {
			return b.sendRelayError(c, err)
		}
		b.sessions.Clear(sender.ID)
		return c.Send(messages["sent"])

	case routeChat:
		content, ok := extractContent(m)
		if !ok {
			return c.Send(messages["unsupported"])
		}
		if err := b.svc.Relay().RelayChat(ctx, sender.ID, partner, content); err != nil {
			if isDeliveryFailure(err) {
				if _, _, lerr := b.svc.Chat().Leave(ctx, sender.ID); lerr != nil {
					b.log.Error("end chat after failed delivery", logger.Error(lerr))
				}
				return c.Send(messages["chat_partner_off"])
			}
			return b.sendRelayError(c, err)
		}
		return nil

	case routeReply:
		content, ok := extractContent(m)
		if !ok {
			return c.Send(messages["unsupported"])
		}
		err := b.svc.Relay().RelayReply(ctx, sender.ID, c.Chat().ID, int64(m.ReplyTo.ID), content)
		if errors.Is(err, service.ErrNoThread) {
			return c.Send(messages["thread_gone"])
		}
		if err != nil {
			return b.sendRelayError(c, err)
		}
		return c.Send(messages["sent"])
	}

	return c.Send(messages["idle_hint"])
}

func (b *Bot) handleFindChat(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()

	if _, _, err := b.svc.User().Register(ctx, sender.ID, sender.Username, senderName(sender)); err != nil {
		b.log.Error("register user", logger.Int64("user_id", sender.ID), logger.Error(err))
	}

	muted, until, err := b.svc.Moderation().IsMuted(ctx, sender.ID)
	if err != nil {
		b.log.Error("mute check", logger.Error(err))
		return c.Send(messages["generic_error"])
	}
	if muted {
		mutedErr := &service.MutedError{}
		if until != nil {
			mutedErr.Until = *until
		}
		return b.sendRelayError(c, mutedErr)
	}

	result, partner, err := b.svc.Chat().Find(ctx, sender.ID)
	if err != nil {
		b.log.Error("find chat", logger.Int64("user_id", sender.ID), logger.Error(err))
		return c.Send(messages["generic_error"])
	}

	switch result {
	case service.FindInChat:
		return c.Send(messages["chat_in_chat"])
	case service.FindInQueue:
		return c.Send(messages["chat_in_queue"])
	case service.FindQueued:
		return c.Send(messages["chat_searching"])
	case service.FindMatched:
		if _, err := b.tg.Send(&tele.User{ID: partner}, messages["chat_found"]); err != nil {
			b.log.Error("notify partner", logger.Int64("partner_id", partner), logger.Error(err))
		}
		return c.Send(messages["chat_found"])
	}
	return nil
}

func (b *Bot) handleEndChat(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()

	result, partner, err := b.svc.Chat().Leave(ctx, sender.ID)
	if err != nil {
		b.log.Error("end chat", logger.Int64("user_id", sender.ID), logger.Error(err))
		return c.Send(messages["generic_error"])
	}

	switch result {
	case service.LeftChat:
		if _, err := b.tg.Send(&tele.User{ID: partner}, messages["chat_ended"]); err != nil {
			b.log.Error("notify partner", logger.Int64("partner_id", partner), logger.Error(err))
		}
		return c.Send(messages["chat_ended"])
	case service.LeftQueue:
		return c.Send(messages["chat_left_queue"])
	default:
		return c.Send(messages["chat_not_in_chat"])
	}
}

func (b *Bot) sendRelayError(c tele.Context, err error) error {
	var muted *service.MutedError
	switch {
	case errors.As(err, &muted):
		return c.Send(fmt.Sprintf(messages["muted"], muted.Until.Format("2006-01-02 15:04")))
	case errors.Is(err, service.ErrUnsupportedContent):
		return c.Send(messages["unsupported"])
	case isDeliveryFailure(err):
		return c.Send(messages["recipient_blocked"])
	default:
		b.log.Error("relay", logger.Error(err))
		return c.Send(messages["generic_error"])
	}
}

// isDeliveryFailure reports whether the error came back from the Telegram
// API rather than from storage, meaning the recipient is unreachable.
func isDeliveryFailure(err error) bool {
	var apiErr *tele.Error
	return errors.As(err, &apiErr)
}

func (b *Bot) notifyAdmins(ctx context.Context, user *models.User) {
	admins, err := b.svc.User().AdminIDs(ctx)
	if err != nil {
		b.log.Error("list admins", logger.Error(err))
		return
	}
	username := user.Username
	if username == "" {
		username = "yo'q"
	} else {
		username = "@" + username
	}
	text := fmt.Sprintf(messages["admin_new_user"], user.Name, user.UserID, username)
	for _, id := range admins {
		if _, err := b.tg.Send(&tele.User{ID: id}, text); err != nil {
			b.log.Error("notify admin", logger.Int64("admin_id", id), logger.Error(err))
		}
	}
}

func senderName(u *tele.User) string {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}
