package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainauth "churnportal/internal/domain/auth"
)

const sessionsCollection = "portal_sessions"

// SessionStore persists login sessions so they survive a portal restart.
// Sessions live until logout; there is no TTL index.
type SessionStore struct {
	col *mongo.Collection
}

func NewSessionStore(ctx context.Context, db *mongo.Database) (*SessionStore, error) {
	col := db.Collection(sessionsCollection)
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "username", Value: 1}},
	})
	if err != nil {
		return nil, err
	}
	return &SessionStore{col: col}, nil
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	if session == nil || session.BrowserID == "" {
		return domainauth.ErrBrowserIDRequired
	}
	doc := newSessionDocument(session)
	_, err := s.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

func (s *SessionStore) Get(ctx context.Context, id domainauth.BrowserID) (*domainauth.Session, error) {
	var doc sessionDocument
	if err := s.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainauth.ErrSessionNotFound
		}
		return nil, err
	}
	return doc.toSession(), nil
}

func (s *SessionStore) Delete(ctx context.Context, id domainauth.BrowserID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainauth.ErrSessionNotFound
	}
	return nil
}

type sessionDocument struct {
	ID        string    `bson:"_id"`
	Token     string    `bson:"auth_token"`
	Username  string    `bson:"username"`
	CreatedAt time.Time `bson:"created_at"`
}

func newSessionDocument(s *domainauth.Session) sessionDocument {
	return sessionDocument{
		ID:        string(s.BrowserID),
		Token:     string(s.Token),
		Username:  s.Username,
		CreatedAt: s.CreatedAt.UTC(),
	}
}

func (d sessionDocument) toSession() *domainauth.Session {
	return &domainauth.Session{
		BrowserID: domainauth.BrowserID(d.ID),
		Token:     domainauth.Token(d.Token),
		Username:  d.Username,
		CreatedAt: d.CreatedAt,
	}
}

var _ domainauth.SessionStore = (*SessionStore)(nil)
