package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"anonbot/pkg/logger"
	"anonbot/pkg/models"
	"anonbot/storage"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...logger.Field)    {}
func (nopLogger) Error(string, ...logger.Field)   {}
func (nopLogger) Warning(string, ...logger.Field) {}

type fakeStorage struct {
	users  *fakeUserStore
	mutes  *fakeMuteStore
	msgLog *fakeMessageLog
	links  *fakeLinkStore
	chats  *fakeChatStore
	audits *fakeAdminLog
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		users:  &fakeUserStore{users: make(map[int64]*models.User)},
		mutes:  &fakeMuteStore{rows: make(map[int64][]muteRow)},
		msgLog: &fakeMessageLog{},
		links:  &fakeLinkStore{links: make(map[linkKey]int64)},
		chats:  &fakeChatStore{},
		audits: &fakeAdminLog{},
	}
}

func (s *fakeStorage) User() storage.IUserStorage             { return s.users }
func (s *fakeStorage) Mute() storage.IMuteStorage             { return s.mutes }
func (s *fakeStorage) MessageLog() storage.IMessageLogStorage { return s.msgLog }
func (s *fakeStorage) Relay() storage.IRelayStorage           { return s.links }
func (s *fakeStorage) Chat() storage.IChatStorage             { return s.chats }
func (s *fakeStorage) AdminLog() storage.IAdminLogStorage     { return s.audits }
func (s *fakeStorage) Close()                                 {}
func (s *fakeStorage) GetPool() *pgxpool.Pool                 { return nil }

type fakeUserStore struct {
	users map[int64]*models.User
	order []int64
}

func (f *fakeUserStore) add(u *models.User) {
	f.users[u.UserID] = u
	f.order = append(f.order, u.UserID)
}

func (f *fakeUserStore) GetOrCreate(_ context.Context, userID int64, username, name string) (*models.User, bool, error) {
	if u, ok := f.users[userID]; ok {
		u.Username = username
		u.Name = name
		return u, false, nil
	}
	u := &models.User{
		UserID:    userID,
		Username:  username,
		Name:      name,
		LinkToken: "tok" + strconv.FormatInt(userID, 10),
	}
	f.add(u)
	return u, true, nil
}

func (f *fakeUserStore) Get(_ context.Context, userID int64) (*models.User, error) {
	return f.users[userID], nil
}

func (f *fakeUserStore) GetByToken(_ context.Context, token string) (*models.User, error) {
	for _, u := range f.users {
		if u.LinkToken == token {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) ListRecent(_ context.Context, page, pageSize int) ([]*models.User, error) {
	ids := make([]int64, len(f.order))
	copy(ids, f.order)
	sort.Slice(ids, func(i, j int) bool {
		return f.users[ids[i]].CreatedAt.After(f.users[ids[j]].CreatedAt)
	})

	start := (page - 1) * pageSize
	if start >= len(ids) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(ids) {
		end = len(ids)
	}
	var out []*models.User
	for _, id := range ids[start:end] {
		out = append(out, f.users[id])
	}
	return out, nil
}

func (f *fakeUserStore) Count(_ context.Context) (int, error) {
	return len(f.users), nil
}

func (f *fakeUserStore) Stats(_ context.Context, todayStart, monthStart time.Time) (*models.UserStats, error) {
	st := &models.UserStats{Total: len(f.users)}
	for _, u := range f.users {
		if !u.CreatedAt.Before(monthStart) {
			st.CreatedMonth++
		}
		if !u.CreatedAt.Before(todayStart) {
			st.CreatedToday++
		}
	}
	return st, nil
}

func (f *fakeUserStore) SetAdmin(_ context.Context, userID int64, isAdmin bool) error {
	if u, ok := f.users[userID]; ok {
		u.IsAdmin = isAdmin
	}
	return nil
}

func (f *fakeUserStore) IsAdmin(_ context.Context, userID int64) (bool, error) {
	u, ok := f.users[userID]
	return ok && u.IsAdmin, nil
}

func (f *fakeUserStore) AdminIDs(_ context.Context) ([]int64, error) {
	var out []int64
	for _, id := range f.order {
		if f.users[id].IsAdmin {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeUserStore) AllIDs(_ context.Context) ([]int64, error) {
	out := make([]int64, len(f.order))
	copy(out, f.order)
	return out, nil
}

func (f *fakeUserStore) UpdateInfo(_ context.Context, userID int64, username, name string) error {
	if u, ok := f.users[userID]; ok {
		u.Username = username
		u.Name = name
	}
	return nil
}

type muteRow struct {
	until  time.Time
	reason string
	by     int64
}

type fakeMuteStore struct {
	rows map[int64][]muteRow
}

func (f *fakeMuteStore) Mute(_ context.Context, userID int64, until time.Time, reason string, createdBy int64) error {
	f.rows[userID] = append(f.rows[userID], muteRow{until: until, reason: reason, by: createdBy})
	return nil
}

func (f *fakeMuteStore) latest(userID int64) *muteRow {
	rows := f.rows[userID]
	if len(rows) == 0 {
		return nil
	}
	best := &rows[0]
	for i := range rows {
		if rows[i].until.After(best.until) {
			best = &rows[i]
		}
	}
	return best
}

func (f *fakeMuteStore) Unmute(_ context.Context, userID int64, now time.Time) (bool, error) {
	expired := false
	rows := f.rows[userID]
	for i := range rows {
		if rows[i].until.After(now) {
			rows[i].until = now
			expired = true
		}
	}
	return expired, nil
}

func (f *fakeMuteStore) IsMuted(_ context.Context, userID int64, now time.Time) (bool, *time.Time, error) {
	row := f.latest(userID)
	if row == nil || !row.until.After(now) {
		return false, nil, nil
	}
	until := row.until
	return true, &until, nil
}

func (f *fakeMuteStore) ActiveMutes(_ context.Context, now time.Time) ([]*models.ActiveMute, error) {
	var out []*models.ActiveMute
	for userID := range f.rows {
		if row := f.latest(userID); row != nil && row.until.After(now) {
			out = append(out, &models.ActiveMute{
				UserID:     userID,
				MutedUntil: row.until,
				Reason:     row.reason,
			})
		}
	}
	return out, nil
}

func (f *fakeMuteStore) ActiveCount(ctx context.Context, now time.Time) (int, error) {
	mutes, _ := f.ActiveMutes(ctx, now)
	return len(mutes), nil
}

type fakeMessageLog struct {
	entries []*models.MessageLogEntry
}

func (f *fakeMessageLog) Append(_ context.Context, entry *models.MessageLogEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeMessageLog) CountBetween(_ context.Context, user1ID, user2ID int64) (int, error) {
	n := 0
	for _, e := range f.entries {
		if (e.SourceUserID == user1ID && e.DestinationID == user2ID) ||
			(e.SourceUserID == user2ID && e.DestinationID == user1ID) {
			n++
		}
	}
	return n, nil
}

func (f *fakeMessageLog) LastSentAt(_ context.Context, userID int64) (*time.Time, error) {
	var last *time.Time
	for _, e := range f.entries {
		if e.SourceUserID == userID && (last == nil || e.SentAt.After(*last)) {
			t := e.SentAt
			last = &t
		}
	}
	return last, nil
}

type linkKey struct {
	chatID    int64
	messageID int64
}

type fakeLinkStore struct {
	links map[linkKey]int64
}

func (f *fakeLinkStore) SaveLink(_ context.Context, link *models.MessageLink) error {
	key := linkKey{chatID: link.ChatID, messageID: link.MessageID}
	if _, exists := f.links[key]; !exists {
		f.links[key] = link.SenderID
	}
	return nil
}

func (f *fakeLinkStore) ResolveSender(_ context.Context, chatID, messageID int64) (int64, error) {
	return f.links[linkKey{chatID: chatID, messageID: messageID}], nil
}

type fakeChatStore struct {
	queue  []int64
	conns  []*models.ChatConnection
	nextID int64
}

func (f *fakeChatStore) Enqueue(ctx context.Context, userID int64) (bool, error) {
	if in, _ := f.InQueue(ctx, userID); in {
		return false, nil
	}
	f.queue = append(f.queue, userID)
	return true, nil
}

func (f *fakeChatStore) Dequeue(_ context.Context, userID int64) error {
	for i, id := range f.queue {
		if id == userID {
			f.queue = append(f.queue[:i], f.queue[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeChatStore) QueueCount(_ context.Context) (int, error) {
	return len(f.queue), nil
}

func (f *fakeChatStore) InQueue(_ context.Context, userID int64) (bool, error) {
	for _, id := range f.queue {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeChatStore) MatchPartner(ctx context.Context, userID int64) (int64, error) {
	if in, _ := f.InQueue(ctx, userID); !in {
		return 0, nil
	}
	for _, id := range f.queue {
		if id != userID {
			_ = f.Dequeue(ctx, id)
			_ = f.Dequeue(ctx, userID)
			f.nextID++
			f.conns = append(f.conns, &models.ChatConnection{
				ID:      f.nextID,
				User1ID: userID,
				User2ID: id,
			})
			return id, nil
		}
	}
	return 0, nil
}

func (f *fakeChatStore) PartnerOf(_ context.Context, userID int64) (int64, error) {
	for _, conn := range f.conns {
		if conn.User1ID == userID || conn.User2ID == userID {
			return conn.Partner(userID), nil
		}
	}
	return 0, nil
}

func (f *fakeChatStore) End(_ context.Context, userID int64) (int64, error) {
	for i, conn := range f.conns {
		if conn.User1ID == userID || conn.User2ID == userID {
			f.conns = append(f.conns[:i], f.conns[i+1:]...)
			return conn.Partner(userID), nil
		}
	}
	return 0, nil
}

func (f *fakeChatStore) EndByID(_ context.Context, chatID int64) (*models.ChatConnection, error) {
	for i, conn := range f.conns {
		if conn.ID == chatID {
			f.conns = append(f.conns[:i], f.conns[i+1:]...)
			return conn, nil
		}
	}
	return nil, nil
}

func (f *fakeChatStore) Active(_ context.Context) ([]*models.ChatConnection, error) {
	out := make([]*models.ChatConnection, len(f.conns))
	copy(out, f.conns)
	return out, nil
}

func (f *fakeChatStore) ActiveCount(_ context.Context) (int, error) {
	return len(f.conns), nil
}

type auditEntry struct {
	adminID int64
	action  string
	details string
}

type fakeAdminLog struct {
	entries []auditEntry
}

func (f *fakeAdminLog) Log(_ context.Context, adminID int64, action, details string) error {
	f.entries = append(f.entries, auditEntry{adminID: adminID, action: action, details: details})
	return nil
}

type delivery struct {
	chatID     int64
	content    models.Content
	header     string
	replyToken string
}

// fakeMessenger records deliveries and hands out sequential message IDs.
type fakeMessenger struct {
	deliveries []delivery
	nextID     int64
	failFor    map[int64]error
}

func (m *fakeMessenger) Deliver(chatID int64, content models.Content, header, replyToken string) (int64, error) {
	if err := m.failFor[chatID]; err != nil {
		return 0, err
	}
	m.nextID++
	m.deliveries = append(m.deliveries, delivery{
		chatID:     chatID,
		content:    content,
		header:     header,
		replyToken: replyToken,
	})
	return m.nextID, nil
}

func (m *fakeMessenger) to(chatID int64) []delivery {
	var out []delivery
	for _, d := range m.deliveries {
		if d.chatID == chatID {
			out = append(out, d)
		}
	}
	return out
}

// fakeCopier is used by broadcast tests; sends run concurrently.
type fakeCopier struct {
	mu   sync.Mutex
	sent []int64
	fail map[int64]error
}

func (c *fakeCopier) Copy(toChatID, fromChatID int64, messageID int) error {
	if err := c.fail[toChatID]; err != nil {
		return err
	}
	c.mu.Lock()
	c.sent = append(c.sent, toChatID)
	c.mu.Unlock()
	return nil
}
