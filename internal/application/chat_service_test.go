package application

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"convohub/internal/domain/entity"
	repo "convohub/internal/domain/repository"
)

type fakeUserRepo struct {
	users  map[string]*entity.User
	getErr error
}

func newFakeUserRepo(ids ...string) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, id := range ids {
		r.users[id] = &entity.User{ID: id, Email: id + "@example.com", FullName: id}
	}
	return r
}

func (r *fakeUserRepo) Create(u *entity.User) error { r.users[u.ID] = u; return nil }

func (r *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*entity.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *fakeUserRepo) Update(u *entity.User) error { r.users[u.ID] = u; return nil }

func (r *fakeUserRepo) ListOthers(excludeID string) ([]*entity.User, error) {
	out := make([]*entity.User, 0)
	for id, u := range r.users {
		if id != excludeID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeMessageRepo struct {
	msgs      []*entity.Message
	createErr error
	seq       int
}

func (r *fakeMessageRepo) Create(m *entity.Message) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	m.ID = string(rune('a' + r.seq - 1))
	m.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	r.msgs = append(r.msgs, m)
	return nil
}

func (r *fakeMessageRepo) ListBetween(userA, userB string) ([]*entity.Message, error) {
	out := make([]*entity.Message, 0)
	for _, m := range r.msgs {
		if (m.SenderID == userA && m.RecipientID == userB) ||
			(m.SenderID == userB && m.RecipientID == userA) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type recordingDeliverer struct {
	delivered []*entity.Message
}

func (d *recordingDeliverer) Deliver(m *entity.Message) { d.delivered = append(d.delivered, m) }

func newTestChatService(users *fakeUserRepo, msgs *fakeMessageRepo, d MessageDeliverer) *ChatService {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewChatService(users, msgs, d, nil, "", log)
}

func TestChatService_SendMessage_PersistsThenDelivers(t *testing.T) {
	req := require.New(t)
	users := newFakeUserRepo("alice", "bob")
	msgs := &fakeMessageRepo{}
	deliverer := &recordingDeliverer{}
	svc := newTestChatService(users, msgs, deliverer)

	got, err := svc.SendMessage(context.Background(), "alice", "bob", SendMessageInput{Text: "hi"})
	req.NoError(err)
	req.NotEmpty(got.ID)
	req.Equal("alice", got.SenderID)
	req.Equal("bob", got.RecipientID)
	req.Equal("hi", got.Text)
	req.Empty(got.ImageURL)

	// Exactly one persisted record and one push, and they are the same record.
	req.Len(msgs.msgs, 1)
	req.Len(deliverer.delivered, 1)
	req.Same(got, deliverer.delivered[0])
}

func TestChatService_SendMessage_EmptyPayloadRejected(t *testing.T) {
	req := require.New(t)
	users := newFakeUserRepo("alice", "bob")
	msgs := &fakeMessageRepo{}
	deliverer := &recordingDeliverer{}
	svc := newTestChatService(users, msgs, deliverer)

	_, err := svc.SendMessage(context.Background(), "alice", "bob", SendMessageInput{})
	req.ErrorIs(err, ErrEmptyMessage)

	// Nothing stored, nothing pushed.
	req.Empty(msgs.msgs)
	req.Empty(deliverer.delivered)
}

func TestChatService_SendMessage_UnknownRecipient(t *testing.T) {
	req := require.New(t)
	users := newFakeUserRepo("alice")
	msgs := &fakeMessageRepo{}
	deliverer := &recordingDeliverer{}
	svc := newTestChatService(users, msgs, deliverer)

	_, err := svc.SendMessage(context.Background(), "alice", "nobody", SendMessageInput{Text: "hi"})
	req.ErrorIs(err, ErrUserNotFound)
	req.Empty(msgs.msgs)
	req.Empty(deliverer.delivered)
}

func TestChatService_DirectoryOutageIsNotNotFound(t *testing.T) {
	req := require.New(t)
	users := newFakeUserRepo("alice", "bob")
	users.getErr = errors.New("directory down")
	msgs := &fakeMessageRepo{}
	deliverer := &recordingDeliverer{}
	svc := newTestChatService(users, msgs, deliverer)

	// A failing directory lookup is a store error, not a missing user.
	_, err := svc.SendMessage(context.Background(), "alice", "bob", SendMessageInput{Text: "hi"})
	req.Error(err)
	req.NotErrorIs(err, ErrUserNotFound)
	req.Empty(msgs.msgs)
	req.Empty(deliverer.delivered)

	_, err = svc.ListMessages("alice", "bob")
	req.Error(err)
	req.NotErrorIs(err, ErrUserNotFound)
}

func TestChatService_SendMessage_StoreFailureSkipsDelivery(t *testing.T) {
	req := require.New(t)
	users := newFakeUserRepo("alice", "bob")
	msgs := &fakeMessageRepo{createErr: errors.New("db down")}
	deliverer := &recordingDeliverer{}
	svc := newTestChatService(users, msgs, deliverer)

	_, err := svc.SendMessage(context.Background(), "alice", "bob", SendMessageInput{Text: "hi"})
	req.Error(err)
	req.Empty(deliverer.delivered, "delivery must not be attempted when persistence fails")
}

func TestChatService_SendMessage_StoredEvenWithoutDeliverer(t *testing.T) {
	req := require.New(t)
	users := newFakeUserRepo("alice", "carol")
	msgs := &fakeMessageRepo{}
	svc := newTestChatService(users, msgs, nil)

	got, err := svc.SendMessage(context.Background(), "alice", "carol", SendMessageInput{Text: "hi"})
	req.NoError(err)
	req.Len(msgs.msgs, 1)

	// The recipient sees it on the next history fetch.
	hist, err := svc.ListMessages("carol", "alice")
	req.NoError(err)
	req.Len(hist, 1)
	req.Equal(got.ID, hist[0].ID)
}

func TestChatService_ListMessages_PairIsSymmetric(t *testing.T) {
	req := require.New(t)
	users := newFakeUserRepo("alice", "bob", "carol")
	msgs := &fakeMessageRepo{}
	svc := newTestChatService(users, msgs, &recordingDeliverer{})

	ctx := context.Background()
	_, err := svc.SendMessage(ctx, "alice", "bob", SendMessageInput{Text: "one"})
	req.NoError(err)
	_, err = svc.SendMessage(ctx, "bob", "alice", SendMessageInput{Text: "two"})
	req.NoError(err)
	_, err = svc.SendMessage(ctx, "alice", "carol", SendMessageInput{Text: "other thread"})
	req.NoError(err)

	ab, err := svc.ListMessages("alice", "bob")
	req.NoError(err)
	ba, err := svc.ListMessages("bob", "alice")
	req.NoError(err)

	req.Equal(ab, ba)
	req.Len(ab, 2)
	req.Equal("one", ab[0].Text)
	req.Equal("two", ab[1].Text)
}

func TestChatService_ListMessages_UnknownPeer(t *testing.T) {
	req := require.New(t)
	svc := newTestChatService(newFakeUserRepo("alice"), &fakeMessageRepo{}, nil)

	_, err := svc.ListMessages("alice", "nobody")
	req.ErrorIs(err, ErrUserNotFound)
}

func TestChatService_ListContacts_ExcludesRequester(t *testing.T) {
	req := require.New(t)
	svc := newTestChatService(newFakeUserRepo("alice", "bob", "carol"), &fakeMessageRepo{}, nil)

	contacts, err := svc.ListContacts("alice")
	req.NoError(err)
	req.Len(contacts, 2)
	for _, c := range contacts {
		req.NotEqual("alice", c.ID)
	}
}

func TestDecodeDataURL(t *testing.T) {
	req := require.New(t)

	ct, data, err := decodeDataURL("data:image/jpeg;base64,aGVsbG8=")
	req.NoError(err)
	req.Equal("image/jpeg", ct)
	req.Equal([]byte("hello"), data)

	// Bare base64 defaults to png.
	ct, _, err = decodeDataURL("aGVsbG8=")
	req.NoError(err)
	req.Equal("image/png", ct)

	_, _, err = decodeDataURL("data:text/plain;base64,aGVsbG8=")
	req.ErrorIs(err, ErrInvalidImage)

	_, _, err = decodeDataURL("data:image/png;base64,!!!")
	req.ErrorIs(err, ErrInvalidImage)
}
