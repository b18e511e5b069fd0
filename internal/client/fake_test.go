package client

import (
	"context"
	"slices"
	"strings"
	gosync "sync"
	"time"

	"github.com/M0hammadUsman/campusboard/internal/domain"
	"github.com/google/uuid"
)

var _ domain.Store = (*fakeStore)(nil)

// fakeStore is an in-memory domain.Store, every returned row is a copy like a real store's would be
type fakeStore struct {
	mu       gosync.Mutex
	convos   []*domain.ConversationRow
	msgs     map[string][]*domain.Message
	profiles map[string]*domain.Profile
	posts    []*domain.Post
	clock    time.Time

	errList, errInsertMessage, errBulk, errTouch, errLookup, errInsertPost, errInsertProfile error
	// called without mu held at the start of the named operation
	onLookup, onInsertMessage, onInsertProfile func()
	// called without mu held once the insert committed, before InsertMessage returns
	afterInsertMessage func()

	inserts, bulkCalls, listCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		msgs:     make(map[string][]*domain.Message),
		profiles: make(map[string]*domain.Profile),
		clock:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

// now hands out strictly increasing timestamps, caller holds mu
func (f *fakeStore) now() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeStore) addProfile(id, username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[id] = &domain.Profile{UserID: id, Username: username}
}

func (f *fakeStore) ListConversations(_ context.Context, usrID string) ([]*domain.ConversationRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.errList != nil {
		return nil, f.errList
	}
	out := make([]*domain.ConversationRow, 0)
	for _, c := range f.convos {
		if c.User1ID == usrID || c.User2ID == usrID {
			cp := *c
			out = append(out, &cp)
		}
	}
	slices.SortStableFunc(out, func(a, b *domain.ConversationRow) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	return out, nil
}

func (f *fakeStore) FindConversation(_ context.Context, userA, userB string) (*domain.ConversationRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(userA, userB)
}

func (f *fakeStore) find(userA, userB string) (*domain.ConversationRow, error) {
	for _, c := range f.convos {
		if domain.PairKey(c.User1ID, c.User2ID) == domain.PairKey(userA, userB) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (f *fakeStore) InsertConversation(_ context.Context, userA, userB string) (*domain.ConversationRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, err := f.find(userA, userB); err == nil {
		return c, nil
	}
	f.inserts++
	now := f.now()
	c := &domain.ConversationRow{ID: uuid.NewString(), User1ID: userA, User2ID: userB, CreatedAt: now, UpdatedAt: now}
	f.convos = append(f.convos, c)
	cp := *c
	return &cp, nil
}

func (f *fakeStore) TouchConversation(_ context.Context, id string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errTouch != nil {
		return f.errTouch
	}
	for _, c := range f.convos {
		if c.ID == id {
			c.UpdatedAt = f.now()
			return nil
		}
	}
	return domain.ErrRecordNotFound
}

func (f *fakeStore) ListMessages(_ context.Context, conversationID string) ([]*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Message, 0, len(f.msgs[conversationID]))
	for _, m := range f.msgs[conversationID] {
		cp := *m
		out = append(out, &cp)
	}
	slices.SortStableFunc(out, func(a, b *domain.Message) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (f *fakeStore) InsertMessage(_ context.Context, msg *domain.Message) error {
	if f.onInsertMessage != nil {
		f.onInsertMessage()
	}
	if err := f.insertMessage(msg); err != nil {
		return err
	}
	if f.afterInsertMessage != nil {
		f.afterInsertMessage()
	}
	return nil
}

func (f *fakeStore) insertMessage(msg *domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errInsertMessage != nil {
		return f.errInsertMessage
	}
	if _, err := f.byID(msg.ConversationID); err != nil {
		return err
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.CreatedAt = f.now()
	msg.Read = false
	cp := *msg
	f.msgs[msg.ConversationID] = append(f.msgs[msg.ConversationID], &cp)
	return nil
}

func (f *fakeStore) byID(id string) (*domain.ConversationRow, error) {
	for _, c := range f.convos {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (f *fakeStore) BulkMarkRead(_ context.Context, conversationID, excludingSender string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkCalls++
	if f.errBulk != nil {
		return 0, f.errBulk
	}
	var n int64
	for _, m := range f.msgs[conversationID] {
		if !m.Read && m.SenderID != excludingSender {
			m.Read = true
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) LookupUsername(ctx context.Context, userID string) (string, error) {
	names, err := f.LookupUsernames(ctx, userID)
	if err != nil {
		return "", err
	}
	name, ok := names[userID]
	if !ok {
		return "", domain.ErrRecordNotFound
	}
	return name, nil
}

func (f *fakeStore) LookupUsernames(_ context.Context, userIDs ...string) (map[string]string, error) {
	if f.onLookup != nil {
		f.onLookup()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errLookup != nil {
		return nil, f.errLookup
	}
	names := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		if p, ok := f.profiles[id]; ok {
			names[id] = p.Username
		}
	}
	return names, nil
}

func (f *fakeStore) GetProfileByUsername(_ context.Context, username string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (f *fakeStore) InsertProfile(_ context.Context, p *domain.Profile) error {
	if f.onInsertProfile != nil {
		f.onInsertProfile()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errInsertProfile != nil {
		return f.errInsertProfile
	}
	if _, ok := f.profiles[p.UserID]; ok {
		return nil
	}
	for _, existing := range f.profiles {
		if existing.Username == p.Username {
			return nil
		}
	}
	cp := *p
	f.profiles[p.UserID] = &cp
	return nil
}

func (f *fakeStore) ListPosts(_ context.Context, filter domain.Filter) ([]*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errList != nil {
		return nil, f.errList
	}
	out := make([]*domain.Post, 0)
	for _, p := range slices.Backward(f.posts) {
		if filter.Filtered() && p.Category != filter.Category {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeStore) InsertPost(_ context.Context, p *domain.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errInsertPost != nil {
		return f.errInsertPost
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	f.posts = append(f.posts, &cp)
	return nil
}

// RunInTX has no rollback, tests only check that the work went through it
func (f *fakeStore) RunInTX(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// seedMessage stores a message from sender in the conversation between sender & recipient
func (f *fakeStore) seedMessage(sender, recipient, content string) string {
	c, _ := f.InsertConversation(context.Background(), sender, recipient)
	m := &domain.Message{ConversationID: c.ID, SenderID: sender, Content: content}
	_ = f.InsertMessage(context.Background(), m)
	_ = f.TouchConversation(context.Background(), c.ID, m.CreatedAt)
	return c.ID
}

type identity struct {
	mu  gosync.Mutex
	usr *domain.User
	err error
}

func as(id, username string) *identity {
	return &identity{usr: &domain.User{ID: id, Username: username}}
}

func (i *identity) CurrentUser(context.Context) (*domain.User, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.usr == nil {
		return nil, i.err
	}
	u := *i.usr
	return &u, i.err
}

func (i *identity) signOut() {
	i.mu.Lock()
	i.usr = nil
	i.mu.Unlock()
}

// gate blocks the first caller of wait until open is called
type gate struct {
	once    gosync.Once
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gate) wait() {
	first := false
	g.once.Do(func() { first = true })
	if !first {
		return
	}
	close(g.entered)
	<-g.release
}

func (g *gate) open() { close(g.release) }

func hasUnreadInvariant(in *domain.Inbox) bool {
	for _, c := range in.Conversations {
		if c.Unread != c.HasUnreadFor(in.UserID) {
			return false
		}
	}
	return in.HasUnread() == slices.ContainsFunc(in.Conversations, func(c *domain.Conversation) bool {
		return c.HasUnreadFor(in.UserID)
	})
}

func contents(c *domain.Conversation) string {
	parts := make([]string, 0, len(c.Messages))
	for _, m := range c.Messages {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, ",")
}

func (f *fakeStore) lists() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

type chanTrigger chan struct{}

func (t chanTrigger) C() <-chan struct{} { return t }
