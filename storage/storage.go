package storage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"trustbyte/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when registering an already-known email.
	ErrDuplicateEmail = errors.New("user already exists")
)

// Storage provides access to the underlying MongoDB collections.
type Storage struct {
	client *mongo.Client
	users  *mongo.Collection
	tasks  *mongo.Collection
}

// New connects to MongoDB, verifies the connection and ensures indexes.
func New(ctx context.Context, uri, database string) (*Storage, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetRetryWrites(true).
		SetServerSelectionTimeout(10 * time.Second)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	db := client.Database(database)
	s := &Storage{
		client: client,
		users:  db.Collection("users"),
		tasks:  db.Collection("tasks"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Storage) ensureIndexes(ctx context.Context) error {
	unique := true
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: &options.IndexOptions{Unique: &unique},
	})
	if err != nil {
		return err
	}
	_, err = s.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	return err
}

// Close tears down the MongoDB connection.
func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// CreateUser inserts a new account. Emails are unique.
func (s *Storage) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := s.users.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return err
}

// UserByEmail loads an account including its password hash.
func (s *Storage) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// FetchTasks retrieves all tasks owned by the given user, in creation order.
// The order is stable because creation timestamps come from a monotonic
// clock, so clients can rely on it as insertion order.
func (s *Storage) FetchTasks(ctx context.Context, owner string) ([]domain.Task, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := s.tasks.Find(ctx, bson.M{"user": owner}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	tasks := []domain.Task{}
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// InsertTask stores a new task and returns it with its server-assigned id.
func (s *Storage) InsertTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	t.ID = primitive.NewObjectID()
	now := nextCreationTime()
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.tasks.InsertOne(ctx, t); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// ReplaceTask overwrites the task with the matching id. It reports whether a
// document was matched so callers can distinguish an update from a miss.
func (s *Storage) ReplaceTask(ctx context.Context, t domain.Task) (bool, error) {
	t.UpdatedAt = time.Now().UTC()
	res, err := s.tasks.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// DeleteTask removes the task with the given id when it belongs to owner.
func (s *Storage) DeleteTask(ctx context.Context, id primitive.ObjectID, owner string) (bool, error) {
	res, err := s.tasks.DeleteOne(ctx, bson.M{"_id": id, "user": owner})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
