package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"anonbot/pkg/logger"
)

func (b *Bot) handleAdmin(c tele.Context) error {
	ctx := context.Background()

	isAdmin, err := b.svc.User().IsAdmin(ctx, c.Sender().ID)
	if err != nil {
		b.log.Error("admin check", logger.Error(err))
		return nil
	}
	// Non-admins get no hint that the command exists.
	if !isAdmin {
		return nil
	}

	b.sessions.Clear(c.Sender().ID)
	return c.Send(messages["admin_panel"], adminMenu())
}

func (b *Bot) handleCallback(c tele.Context) error {
	data := callbackData(c)
	if !strings.HasPrefix(data, "admin_") {
		return c.Respond()
	}

	ctx := context.Background()
	isAdmin, err := b.svc.User().IsAdmin(ctx, c.Sender().ID)
	if err != nil {
		b.log.Error("admin check", logger.Error(err))
		return c.Respond()
	}
	if !isAdmin {
		return c.Respond()
	}

	switch {
	case data == "admin_panel":
		b.sessions.Clear(c.Sender().ID)
		_ = c.Send(messages["admin_panel"], adminMenu())

	case data == "admin_broadcast":
		b.sessions.Set(c.Sender().ID, Session{State: StateAwaitingBcast})
		_ = c.Send(messages["admin_ask_bcast"], cancelMenu())

	case data == "admin_stats":
		b.showStats(c)

	case data == "admin_users":
		_ = c.Send(messages["admin_users_menu"], usersMenu())

	case data == "admin_search":
		b.sessions.Set(c.Sender().ID, Session{State: StateAwaitingSearchID})
		_ = c.Send(messages["admin_ask_search"], cancelMenu())

	case data == "admin_mute":
		b.sessions.Set(c.Sender().ID, Session{State: StateAwaitingMuteID})
		_ = c.Send(messages["admin_ask_mute_id"], cancelMenu())

	case data == "admin_unmute":
		b.sessions.Set(c.Sender().ID, Session{State: StateAwaitingUnmuteID})
		_ = c.Send(messages["admin_ask_unmute"], cancelMenu())

	case data == "admin_banned":
		b.showBanned(c)

	case data == "admin_chats":
		b.showChats(c)

	case data == "admin_cancel":
		b.sessions.Clear(c.Sender().ID)
		_ = c.Send(messages["admin_cancelled"])

	case data == "admin_settings":
		_ = c.Send(fmt.Sprintf(messages["admin_settings"],
			b.cfg.BroadcastBatchSize, b.cfg.BroadcastDelay,
			b.cfg.LogChannelID, b.cfg.AdminURL), backMenu())

	case strings.HasPrefix(data, "admin_recent_"):
		page, err := strconv.Atoi(strings.TrimPrefix(data, "admin_recent_"))
		if err != nil || page < 1 {
			page = 1
		}
		b.showRecent(c, page)

	case strings.HasPrefix(data, "admin_user_"):
		if id, err := strconv.ParseInt(strings.TrimPrefix(data, "admin_user_"), 10, 64); err == nil {
			b.showUserCard(c, id)
		}

	case strings.HasPrefix(data, "admin_mute_"):
		if id, err := strconv.ParseInt(strings.TrimPrefix(data, "admin_mute_"), 10, 64); err == nil {
			b.sessions.Set(c.Sender().ID, Session{State: StateAwaitingDuration, MuteTarget: id})
			_ = c.Send(messages["admin_ask_duration"], cancelMenu())
		}

	case strings.HasPrefix(data, "admin_unmute_"):
		if id, err := strconv.ParseInt(strings.TrimPrefix(data, "admin_unmute_"), 10, 64); err == nil {
			b.doUnmute(c, id)
		}

	case strings.HasPrefix(data, "admin_endchat_"):
		if id, err := strconv.ParseInt(strings.TrimPrefix(data, "admin_endchat_"), 10, 64); err == nil {
			b.endChatByID(c, id)
		}

	case strings.HasPrefix(data, "admin_enduserchat_"):
		if id, err := strconv.ParseInt(strings.TrimPrefix(data, "admin_enduserchat_"), 10, 64); err == nil {
			b.endChatForUser(c, id)
		}
	}

	return c.Respond()
}

// handleAdminInput consumes a message while an admin prompt is pending.
func (b *Bot) handleAdminInput(c tele.Context, sess Session) error {
	ctx := context.Background()
	adminID := c.Sender().ID

	isAdmin, err := b.svc.User().IsAdmin(ctx, adminID)
	if err != nil {
		b.log.Error("admin check", logger.Error(err))
		return c.Send(messages["generic_error"])
	}
	if !isAdmin {
		// Stale state from a demoted admin.
		b.sessions.Clear(adminID)
		return nil
	}

	switch sess.State {
	case StateAwaitingSearchID:
		id, ok := parseID(c.Text())
		if !ok {
			return c.Send(messages["admin_bad_id"])
		}
		b.sessions.Clear(adminID)
		b.showUserCard(c, id)
		return nil

	case StateAwaitingMuteID:
		id, ok := parseID(c.Text())
		if !ok {
			return c.Send(messages["admin_bad_id"])
		}
		user, err := b.svc.User().Get(ctx, id)
		if err != nil {
			b.log.Error("get user", logger.Error(err))
			return c.Send(messages["generic_error"])
		}
		if user == nil {
			b.sessions.Clear(adminID)
			return c.Send(messages["admin_not_found"])
		}
		b.sessions.Set(adminID, Session{State: StateAwaitingDuration, MuteTarget: id})
		return c.Send(messages["admin_ask_duration"], cancelMenu())

	case StateAwaitingDuration:
		d, err := parseMuteDuration(c.Text())
		if err != nil {
			return c.Send(messages["admin_bad_duration"])
		}
		b.sessions.Set(adminID, Session{State: StateAwaitingReason, MuteTarget: sess.MuteTarget, MuteDuration: d})
		return c.Send(messages["admin_ask_reason"], cancelMenu())

	case StateAwaitingReason:
		b.sessions.Clear(adminID)
		until, err := b.svc.Moderation().Mute(ctx, sess.MuteTarget, sess.MuteDuration, c.Text(), adminID)
		if err != nil {
			b.log.Error("mute user", logger.Int64("user_id", sess.MuteTarget), logger.Error(err))
			return c.Send(messages["generic_error"])
		}
		if _, err := b.tg.Send(&tele.User{ID: sess.MuteTarget},
			fmt.Sprintf(messages["muted"], until.Format("2006-01-02 15:04"))); err != nil {
			b.log.Warning("notify muted user", logger.Int64("user_id", sess.MuteTarget), logger.Error(err))
		}
		return c.Send(fmt.Sprintf(messages["admin_muted"], until.Format("2006-01-02 15:04")))

	case StateAwaitingUnmuteID:
		id, ok := parseID(c.Text())
		if !ok {
			return c.Send(messages["admin_bad_id"])
		}
		b.sessions.Clear(adminID)
		b.doUnmute(c, id)
		return nil

	case StateAwaitingBcast:
		b.sessions.Clear(adminID)
		b.runBroadcast(c)
		return nil
	}

	return nil
}

func (b *Bot) runBroadcast(c tele.Context) {
	adminID := c.Sender().ID
	fromChatID := c.Chat().ID
	messageID := c.Message().ID

	_ = c.Send(messages["admin_bcast_run"])

	go func() {
		ctx := context.Background()

		lastMilestone := 0
		onProgress := func(done, total int) {
			if done-lastMilestone < 100 {
				return
			}
			lastMilestone = done
			if _, err := b.tg.Send(&tele.User{ID: adminID},
				fmt.Sprintf(messages["admin_bcast_prog"], done, total)); err != nil {
				b.log.Warning("broadcast progress", logger.Error(err))
			}
		}

		report, err := b.broadcast.Run(ctx, fromChatID, messageID, onProgress)
		if err != nil {
			b.log.Error("broadcast run", logger.Error(err))
		}

		_ = b.stg.AdminLog().Log(ctx, adminID, "broadcast",
			fmt.Sprintf("total=%d success=%d failed=%d", report.Total, report.Success, report.Failed))

		if _, err := b.tg.Send(&tele.User{ID: adminID},
			fmt.Sprintf(messages["admin_bcast_done"], report.Success, report.Failed)); err != nil {
			b.log.Error("broadcast report", logger.Error(err))
		}
	}()
}

func (b *Bot) showStats(c tele.Context) {
	ctx := context.Background()

	stats, err := b.svc.User().Stats(ctx)
	if err != nil {
		b.log.Error("user stats", logger.Error(err))
		_ = c.Send(messages["generic_error"])
		return
	}
	activeChats, err := b.stg.Chat().ActiveCount(ctx)
	if err != nil {
		b.log.Error("chat count", logger.Error(err))
	}
	banned, err := b.svc.Moderation().ActiveCount(ctx)
	if err != nil {
		b.log.Error("mute count", logger.Error(err))
	}
	queued, err := b.stg.Chat().QueueCount(ctx)
	if err != nil {
		b.log.Error("queue count", logger.Error(err))
	}

	_ = c.Send(fmt.Sprintf(messages["admin_stats"],
		stats.Total, stats.CreatedMonth, stats.CreatedToday,
		activeChats, banned, queued), backMenu())
}

func (b *Bot) showRecent(c tele.Context, page int) {
	ctx := context.Background()
	const pageSize = 10

	users, pages, err := b.svc.User().ListRecent(ctx, page, pageSize)
	if err != nil {
		b.log.Error("list recent", logger.Error(err))
		_ = c.Send(messages["generic_error"])
		return
	}
	if pages == 0 {
		pages = 1
	}

	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	for _, u := range users {
		label := fmt.Sprintf("👤 %s (%d)", u.Name, u.UserID)
		rows = append(rows, markup.Row(markup.Data(label, "admin_user_"+strconv.FormatInt(u.UserID, 10))))
	}

	var nav []tele.Btn
	if page > 1 {
		nav = append(nav, markup.Data("⬅️", "admin_recent_"+strconv.Itoa(page-1)))
	}
	if page < pages {
		nav = append(nav, markup.Data("➡️", "admin_recent_"+strconv.Itoa(page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, markup.Row(nav...))
	}
	rows = append(rows, markup.Row(markup.Data("⬅️ Orqaga", "admin_users")))
	markup.Inline(rows...)

	_ = c.Send(fmt.Sprintf(messages["admin_recent_header"], page, pages), markup)
}

func (b *Bot) showUserCard(c tele.Context, userID int64) {
	ctx := context.Background()

	user, err := b.svc.User().Get(ctx, userID)
	if err != nil {
		b.log.Error("get user", logger.Error(err))
		_ = c.Send(messages["generic_error"])
		return
	}
	if user == nil {
		_ = c.Send(messages["admin_not_found"])
		return
	}

	username := "yo'q"
	if user.Username != "" {
		username = "@" + user.Username
	}

	muted, until, err := b.svc.Moderation().IsMuted(ctx, userID)
	if err != nil {
		b.log.Error("mute check", logger.Error(err))
	}
	status := "✅ Faol"
	if muted && until != nil {
		status = "⛔ Bloklangan (" + until.Format("2006-01-02 15:04") + " gacha)"
	}

	partner, err := b.svc.Chat().PartnerOf(ctx, userID)
	if err != nil {
		b.log.Error("lookup partner", logger.Error(err))
	}

	lastSeen := "yo'q"
	if last, err := b.svc.Relay().LastActivity(ctx, userID); err != nil {
		b.log.Error("last activity", logger.Error(err))
	} else if last != nil {
		lastSeen = last.Format("2006-01-02 15:04")
	}

	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	idStr := strconv.FormatInt(userID, 10)
	if muted {
		rows = append(rows, markup.Row(markup.Data("🔓 Blokdan chiqarish", "admin_unmute_"+idStr)))
	} else {
		rows = append(rows, markup.Row(markup.Data("🚫 Bloklash", "admin_mute_"+idStr)))
	}
	if partner != 0 {
		rows = append(rows, markup.Row(markup.Data("❌ Chatni tugatish", "admin_enduserchat_"+idStr)))
	}
	rows = append(rows, markup.Row(markup.Data("⬅️ Orqaga", "admin_users")))
	markup.Inline(rows...)

	_ = c.Send(fmt.Sprintf(messages["admin_user_card"],
		user.UserID, user.Name, username,
		user.CreatedAt.Format("2006-01-02 15:04"), lastSeen, status), markup)
}

func (b *Bot) showBanned(c tele.Context) {
	ctx := context.Background()

	mutes, err := b.svc.Moderation().ActiveMutes(ctx)
	if err != nil {
		b.log.Error("list mutes", logger.Error(err))
		_ = c.Send(messages["generic_error"])
		return
	}
	if len(mutes) == 0 {
		_ = c.Send(messages["admin_no_banned"], backMenu())
		return
	}

	var sb strings.Builder
	sb.WriteString("⛔ Bloklangan foydalanuvchilar:\n\n")
	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	for i, m := range mutes {
		fmt.Fprintf(&sb, "%d. %s (ID: %d)\n   ⏲ %s gacha\n   📝 %s\n",
			i+1, m.Name, m.UserID, m.MutedUntil.Format("2006-01-02 15:04"), m.Reason)
		rows = append(rows, markup.Row(markup.Data(
			fmt.Sprintf("🔓 %s", m.Name), "admin_unmute_"+strconv.FormatInt(m.UserID, 10))))
	}
	rows = append(rows, markup.Row(markup.Data("⬅️ Orqaga", "admin_users")))
	markup.Inline(rows...)

	_ = c.Send(sb.String(), markup)
}

func (b *Bot) showChats(c tele.Context) {
	ctx := context.Background()

	conns, err := b.svc.Chat().Active(ctx)
	if err != nil {
		b.log.Error("list chats", logger.Error(err))
		_ = c.Send(messages["generic_error"])
		return
	}
	if len(conns) == 0 {
		_ = c.Send(messages["admin_no_chats"], backMenu())
		return
	}

	var sb strings.Builder
	sb.WriteString("💬 Faol chatlar:\n\n")
	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	for _, conn := range conns {
		count, err := b.svc.Relay().MessageCount(ctx, conn.User1ID, conn.User2ID)
		if err != nil {
			b.log.Error("count chat messages", logger.Int64("chat_id", conn.ID), logger.Error(err))
		}
		fmt.Fprintf(&sb, "#%d: %s ↔ %s (%s dan beri, %d ta xabar)\n",
			conn.ID, conn.User1Name, conn.User2Name, conn.CreatedAt.Format("15:04"), count)
		rows = append(rows, markup.Row(markup.Data(
			fmt.Sprintf("❌ #%d ni tugatish", conn.ID), "admin_endchat_"+strconv.FormatInt(conn.ID, 10))))
	}
	rows = append(rows, markup.Row(markup.Data("⬅️ Orqaga", "admin_panel")))
	markup.Inline(rows...)

	_ = c.Send(sb.String(), markup)
}

func (b *Bot) doUnmute(c tele.Context, userID int64) {
	ctx := context.Background()

	ok, err := b.svc.Moderation().Unmute(ctx, userID, c.Sender().ID)
	if err != nil {
		b.log.Error("unmute user", logger.Int64("user_id", userID), logger.Error(err))
		_ = c.Send(messages["generic_error"])
		return
	}
	if !ok {
		_ = c.Send(messages["admin_not_muted"])
		return
	}
	_ = c.Send(messages["admin_unmuted"])
}

func (b *Bot) endChatByID(c tele.Context, chatID int64) {
	ctx := context.Background()

	conn, err := b.svc.Chat().EndByID(ctx, chatID, c.Sender().ID)
	if err != nil {
		b.log.Error("end chat", logger.Int64("chat_id", chatID), logger.Error(err))
		_ = c.Send(messages["generic_error"])
		return
	}
	if conn == nil {
		_ = c.Send(messages["admin_chat_missing"])
		return
	}

	for _, id := range []int64{conn.User1ID, conn.User2ID} {
		if _, err := b.tg.Send(&tele.User{ID: id}, messages["chat_ended_admin"]); err != nil {
			b.log.Warning("notify chat user", logger.Int64("user_id", id), logger.Error(err))
		}
	}
	_ = c.Send(messages["admin_chat_ended"])
}

func (b *Bot) endChatForUser(c tele.Context, userID int64) {
	ctx := context.Background()

	partner, err := b.svc.Chat().EndFor(ctx, userID, c.Sender().ID)
	if err != nil {
		b.log.Error("end chat", logger.Int64("user_id", userID), logger.Error(err))
		_ = c.Send(messages["generic_error"])
		return
	}
	if partner == 0 {
		_ = c.Send(messages["admin_chat_missing"])
		return
	}

	for _, id := range []int64{userID, partner} {
		if _, err := b.tg.Send(&tele.User{ID: id}, messages["chat_ended_admin"]); err != nil {
			b.log.Warning("notify chat user", logger.Int64("user_id", id), logger.Error(err))
		}
	}
	_ = c.Send(messages["admin_chat_ended"])
}

func adminMenu() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.Inline(
		m.Row(m.Data("📢 Broadcast", "admin_broadcast"), m.Data("📊 Statistika", "admin_stats")),
		m.Row(m.Data("👥 Foydalanuvchilar", "admin_users"), m.Data("💬 Live chatlar", "admin_chats")),
		m.Row(m.Data("⚙️ Sozlamalar", "admin_settings")),
	)
	return m
}

func usersMenu() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.Inline(
		m.Row(m.Data("🔍 Qidirish", "admin_search"), m.Data("🕐 Oxirgilar", "admin_recent_1")),
		m.Row(m.Data("🚫 Bloklash", "admin_mute"), m.Data("🔓 Blokdan chiqarish", "admin_unmute")),
		m.Row(m.Data("⛔ Bloklanganlar", "admin_banned")),
		m.Row(m.Data("⬅️ Orqaga", "admin_panel")),
	)
	return m
}

func backMenu() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.Inline(m.Row(m.Data("⬅️ Orqaga", "admin_panel")))
	return m
}

func cancelMenu() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.Inline(m.Row(m.Data("❌ Bekor qilish", "admin_cancel")))
	return m
}

func isAdminInputState(s State) bool {
	switch s {
	case StateAwaitingMuteID, StateAwaitingDuration, StateAwaitingReason,
		StateAwaitingUnmuteID, StateAwaitingBcast, StateAwaitingSearchID:
		return true
	}
	return false
}

func parseID(text string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseMuteDuration accepts the usual Go forms plus a "d" suffix for days.
func parseMuteDuration(text string) (time.Duration, error) {
	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(text, "d"))
		if err != nil || days <= 0 {
			return 0, fmt.Errorf("invalid day count %q", text)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(text)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("non-positive duration %q", text)
	}
	return d, nil
}
