package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lemon16/models"
)

// MongoUsers implements Users on a MongoDB collection.
type MongoUsers struct {
	coll *mongo.Collection
}

func NewMongoUsers(coll *mongo.Collection) *MongoUsers {
	return &MongoUsers{coll: coll}
}

var _ Users = (*MongoUsers)(nil)

func (s *MongoUsers) Get(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoUsers) Insert(ctx context.Context, user *models.User) error {
	_, err := s.coll.InsertOne(ctx, user)
	return err
}

func (s *MongoUsers) Delete(ctx context.Context, userID int64) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"userId": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUsers) All(ctx context.Context) ([]models.User, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// RecordLike appends target to likedUsers and spends a swipe in one
// conditional update. Two filters are tried: subscribed users swipe for free,
// free users must still have allowance left. Both filters require that the
// target has not been swiped on before.
func (s *MongoUsers) RecordLike(ctx context.Context, userID, targetID int64, now time.Time) error {
	if userID == targetID {
		return ErrSelfSwipe
	}

	unseen := bson.M{
		"userId":        userID,
		"likedUsers":    bson.M{"$ne": targetID},
		"dislikedUsers": bson.M{"$ne": targetID},
	}

	subscribed := bson.M{"isSubscribed": true}
	for k, v := range unseen {
		subscribed[k] = v
	}
	res, err := s.coll.UpdateOne(ctx, subscribed, bson.M{
		"$addToSet": bson.M{"likedUsers": targetID},
		"$set":      bson.M{"lastSwipe": now},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	free := bson.M{"isSubscribed": false, "swipeCount": bson.M{"$gt": 0}}
	for k, v := range unseen {
		free[k] = v
	}
	res, err = s.coll.UpdateOne(ctx, free, bson.M{
		"$addToSet": bson.M{"likedUsers": targetID},
		"$inc":      bson.M{"swipeCount": -1},
		"$set":      bson.M{"lastSwipe": now},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	return s.classifyLikeFailure(ctx, userID, targetID)
}

func (s *MongoUsers) classifyLikeFailure(ctx context.Context, userID, targetID int64) error {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.HasSwiped(targetID) {
		return ErrAlreadySwiped
	}
	return ErrOutOfSwipes
}

// RecordDislike is idempotent: repeating a dislike matches the filter and the
// $addToSet is a no-op. A prior like on the same target rejects the update.
func (s *MongoUsers) RecordDislike(ctx context.Context, userID, targetID int64, now time.Time) error {
	if userID == targetID {
		return ErrSelfSwipe
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{
		"userId":     userID,
		"likedUsers": bson.M{"$ne": targetID},
	}, bson.M{
		"$addToSet": bson.M{"dislikedUsers": targetID},
		"$set":      bson.M{"lastSwipe": now},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.Likes(targetID) {
		return ErrAlreadySwiped
	}
	return ErrNotFound
}

func (s *MongoUsers) SetBanned(ctx context.Context, userID int64, banned bool) error {
	return s.updateOne(ctx, userID, bson.M{"$set": bson.M{"isBanned": banned}})
}

func (s *MongoUsers) SetSubscription(ctx context.Context, userID int64, subscribed bool, expiry *time.Time, swipeCount int) error {
	return s.updateOne(ctx, userID, bson.M{"$set": bson.M{
		"isSubscribed":       subscribed,
		"subscriptionExpiry": expiry,
		"swipeCount":         swipeCount,
	}})
}

func (s *MongoUsers) ApplyEdits(ctx context.Context, userID int64, edits Edits) error {
	set := bson.M{}
	if edits.Name != nil {
		set["name"] = *edits.Name
	}
	if edits.Age != nil {
		set["age"] = *edits.Age
	}
	if edits.SwipeCount != nil {
		set["swipeCount"] = *edits.SwipeCount
	}
	if len(set) == 0 {
		// Nothing to change, but the caller still expects ErrNotFound for a
		// missing user.
		_, err := s.Get(ctx, userID)
		return err
	}
	return s.updateOne(ctx, userID, bson.M{"$set": set})
}

func (s *MongoUsers) SetProfilePic(ctx context.Context, userID int64, fileID string) error {
	return s.updateOne(ctx, userID, bson.M{"$set": bson.M{"profilePic": fileID}})
}

func (s *MongoUsers) ResetFreeSwipes(ctx context.Context) (int64, error) {
	res, err := s.coll.UpdateMany(ctx,
		bson.M{"isSubscribed": false},
		bson.M{"$set": bson.M{"swipeCount": models.DefaultSwipeCount}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *MongoUsers) ExpiredSubscribers(ctx context.Context, now time.Time) ([]models.User, error) {
	cursor, err := s.coll.Find(ctx, bson.M{
		"isSubscribed":       true,
		"subscriptionExpiry": bson.M{"$lt": now},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *MongoUsers) Downgrade(ctx context.Context, userID int64) error {
	return s.updateOne(ctx, userID, bson.M{"$set": bson.M{
		"isSubscribed": false,
		"swipeCount":   models.DefaultSwipeCount,
	}})
}

func (s *MongoUsers) Inactive(ctx context.Context, olderThan time.Time) ([]models.User, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"lastSwipe": bson.M{"$lt": olderThan}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *MongoUsers) updateOne(ctx context.Context, userID int64, update bson.M) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"userId": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MongoLogs implements Logs on a MongoDB collection. Retention comes from a
// TTL index on the timestamp field, created at startup.
type MongoLogs struct {
	coll *mongo.Collection
}

func NewMongoLogs(coll *mongo.Collection) *MongoLogs {
	return &MongoLogs{coll: coll}
}

var _ Logs = (*MongoLogs)(nil)

func (s *MongoLogs) Append(ctx context.Context, entry models.LogEntry) error {
	_, err := s.coll.InsertOne(ctx, entry)
	return err
}

func (s *MongoLogs) Recent(ctx context.Context, limit int) ([]models.LogEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.LogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// MongoSessions implements Sessions on a MongoDB collection with a TTL index
// on updatedAt, so abandoned onboarding runs disappear on their own.
type MongoSessions struct {
	coll *mongo.Collection
}

func NewMongoSessions(coll *mongo.Collection) *MongoSessions {
	return &MongoSessions{coll: coll}
}

var _ Sessions = (*MongoSessions)(nil)

func (s *MongoSessions) Get(ctx context.Context, userID int64) (*models.Session, error) {
	var session models.Session
	err := s.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *MongoSessions) Put(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = time.Now()
	opts := options.Replace().SetUpsert(true)
	_, err := s.coll.ReplaceOne(ctx, bson.M{"userId": session.UserID}, session, opts)
	return err
}

func (s *MongoSessions) Delete(ctx context.Context, userID int64) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"userId": userID})
	return err
}
